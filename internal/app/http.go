package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/adanyl0v/go-tasks/internal/config"
	"github.com/adanyl0v/go-tasks/internal/delivery/http/v1"
	"github.com/adanyl0v/go-tasks/internal/services"
)

const healthCheckTimeout = 2 * time.Second

func MustListenAndServeHTTP() {
	cfg := config.Global()
	if cfg.Env != config.EnvLocal {
		gin.SetMode(gin.ReleaseMode)
	}

	httpCfg := cfg.HTTP

	router := gin.New()
	router.Use(v1.RequestLogger(componentLogger("http")))
	router.Use(gin.Recovery())
	router.Use(newCORS(httpCfg.Origins()))
	router.GET("/healthz", handleHealthz)
	registerRoutes(router)

	server := &http.Server{
		Addr:    net.JoinHostPort(httpCfg.Host, httpCfg.Port),
		Handler: router,
	}

	go func() {
		globalLogger.Info().
			Str("host", httpCfg.Host).
			Str("port", httpCfg.Port).
			Msg("setting up http server")
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			globalLogger.Error().
				Err(err).
				Msg("failed to listen and serve http")
			panic(err)
		}
	}()

	// kill (no params) by default sends syscall.SIGTERM
	// kill -2 is syscall.SIGINT
	// kill -9 is syscall.SIGKILL but can't be caught, so don't need to add it
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	globalLogger.Info().
		Msg("shutting down http server")

	// Hijacked WebSocket connections are not tracked by Shutdown.
	CloseNotifications()

	ctx, cancel := context.WithTimeout(context.Background(), httpCfg.ShutdownTimeout)
	defer cancel()

	err := server.Shutdown(ctx)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to shutdown http server")
		panic(err)
	}
	globalLogger.Info().Msg("shut down http server")
}

func newCORS(origins []string) gin.HandlerFunc {
	corsCfg := cors.DefaultConfig()
	if slices.Contains(origins, "*") {
		// Credentialed requests are only allowed from listed origins.
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = origins
		corsCfg.AllowCredentials = true
	}
	corsCfg.AddAllowHeaders("Authorization")
	corsCfg.MaxAge = 12 * time.Hour
	return cors.New(corsCfg)
}

func handleHealthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c, healthCheckTimeout)
	defer cancel()

	status := gin.H{"postgres": "ok", "mongo": "ok"}
	code := http.StatusOK

	err := globalPostgresPool.Ping(ctx)
	if err != nil {
		globalLogger.Warn().
			Err(err).
			Msg("postgres health check failed")
		status["postgres"] = err.Error()
		code = http.StatusServiceUnavailable
	}

	err = globalMongoClient.Ping(ctx, readpref.Primary())
	if err != nil {
		globalLogger.Warn().
			Err(err).
			Msg("mongo health check failed")
		status["mongo"] = err.Error()
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, status)
}

func registerRoutes(router gin.IRouter) {
	cfg := config.Global()
	jwtCfg := cfg.JWT

	authService := services.NewAuthService(
		componentLogger("auth"),
		globalIdentityStore,
		jwtCfg.Issuer,
		[]byte(jwtCfg.SigningKey),
		jwtCfg.AccessTokenTTL,
		jwtCfg.RefreshTokenTTL,
	)
	sessionService := services.NewSessionService(componentLogger("sessions"), globalIdentityStore)
	userService := services.NewUserService(componentLogger("users"), globalIdentityStore)
	taskService := services.NewTaskService(
		componentLogger("tasks"),
		globalTaskStore,
		globalIdentityStore,
		globalRegistry,
	)
	analyticsService := services.NewAnalyticsService(componentLogger("analytics"), globalTaskStore)

	v1Handler := v1.New(
		componentLogger("api"),
		v1.Config{
			AllowedOrigins: cfg.HTTP.Origins(),
			SendBuffer:     cfg.Notify.SendBuffer,
		},
		authService,
		sessionService,
		userService,
		taskService,
		analyticsService,
		globalRegistry,
	)
	v1.Register(router.Group("/api"), v1Handler)
}
