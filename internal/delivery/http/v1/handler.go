package v1

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-tasks/internal/notify"
	"github.com/adanyl0v/go-tasks/internal/services"
)

type Handler interface {
	HandleLogin(c *gin.Context)
	HandleRefresh(c *gin.Context)
	HandleRegister(c *gin.Context)
	HandleLogout(c *gin.Context)
	HandleAuthMiddleware(c *gin.Context)

	HandleGetMe(c *gin.Context)
	HandleFindUser(c *gin.Context)

	HandleCreateTask(c *gin.Context)
	HandleGetTasks(c *gin.Context)
	HandleGetSharedTasks(c *gin.Context)
	HandleGetTask(c *gin.Context)
	HandleUpdateTask(c *gin.Context)
	HandleDeleteTask(c *gin.Context)
	HandleShareTask(c *gin.Context)

	HandleAnalyticsOverview(c *gin.Context)
	HandleAnalyticsTrends(c *gin.Context)

	HandleNotifications(c *gin.Context)
}

type Config struct {
	// Origins allowed to open the notification socket. "*" allows any.
	AllowedOrigins []string
	// Events buffered per socket before new ones are dropped.
	SendBuffer int
}

type handlerImpl struct {
	logger    zerolog.Logger
	cfg       Config
	auth      services.AuthService
	sessions  services.SessionService
	users     services.UserService
	tasks     services.TaskService
	analytics services.AnalyticsService
	registry  *notify.Registry
	upgrader  websocket.Upgrader
}

func New(
	logger zerolog.Logger,
	cfg Config,
	authService services.AuthService,
	sessionService services.SessionService,
	userService services.UserService,
	taskService services.TaskService,
	analyticsService services.AnalyticsService,
	registry *notify.Registry,
) Handler {
	h := &handlerImpl{
		logger:    logger,
		cfg:       cfg,
		auth:      authService,
		sessions:  sessionService,
		users:     userService,
		tasks:     taskService,
		analytics: analyticsService,
		registry:  registry,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

func (h *handlerImpl) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	return slices.Contains(h.cfg.AllowedOrigins, "*") ||
		slices.Contains(h.cfg.AllowedOrigins, origin)
}

// Register mounts every route under router.
func Register(router gin.IRouter, h Handler) {
	authRouter := router.Group("/auth")
	authRouter.POST("/login", h.HandleLogin)
	authRouter.POST("/refresh", h.HandleRefresh)
	authRouter.POST("/register", h.HandleRegister)
	authRouter.POST("/logout", h.HandleAuthMiddleware, h.HandleLogout)

	protected := router.Group("", h.HandleAuthMiddleware)

	usersRouter := protected.Group("/users")
	usersRouter.GET("/me", h.HandleGetMe)
	usersRouter.GET("", h.HandleFindUser)

	tasksRouter := protected.Group("/tasks")
	tasksRouter.GET("", h.HandleGetTasks)
	tasksRouter.POST("", h.HandleCreateTask)
	tasksRouter.GET("/shared", h.HandleGetSharedTasks)
	tasksRouter.GET("/:id", h.HandleGetTask)
	tasksRouter.PUT("/:id", h.HandleUpdateTask)
	tasksRouter.DELETE("/:id", h.HandleDeleteTask)
	tasksRouter.PUT("/:id/share", h.HandleShareTask)

	analyticsRouter := protected.Group("/analytics")
	analyticsRouter.GET("/overview", h.HandleAnalyticsOverview)
	analyticsRouter.GET("/trends", h.HandleAnalyticsTrends)

	protected.GET("/notifications/ws", h.HandleNotifications)
}
