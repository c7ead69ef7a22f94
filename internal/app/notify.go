package app

import "github.com/adanyl0v/go-tasks/internal/notify"

var globalRegistry *notify.Registry

func InitNotifications() {
	globalRegistry = notify.NewRegistry(componentLogger("notify"))
	globalLogger.Info().Msg("initialized notification registry")
}

// CloseNotifications disconnects every open socket.
func CloseNotifications() {
	globalRegistry.Close()
}
