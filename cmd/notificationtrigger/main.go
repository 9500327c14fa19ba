// --- File: cmd/notificationtrigger/main.go ---
// Command notificationtrigger hosts the SendNotification CloudEvent function
// locally with the Functions Framework.
package main

import (
	"log/slog"
	"os"

	"github.com/GoogleCloudPlatform/functions-framework-go/funcframework"

	notifytrigger "github.com/tinywideclouds/go-notification-trigger"
)

func main() {
	port := "8080"
	if val := os.Getenv("PORT"); val != "" {
		port = val
	}
	if os.Getenv("FUNCTION_TARGET") == "" {
		_ = os.Setenv("FUNCTION_TARGET", notifytrigger.FunctionName)
	}

	slog.Info("Starting functions framework", "port", port, "target", os.Getenv("FUNCTION_TARGET"))
	if err := funcframework.Start(port); err != nil {
		slog.Error("Functions framework stopped with error", "err", err)
		os.Exit(1)
	}
}
