// Package notifytrigger is the Cloud Functions entry point. It relays every
// document created under notifications/{notificationId} to Firebase Cloud
// Messaging.
//
// Deploy with an Eventarc Firestore trigger:
//
//	gcloud functions deploy send-notification --gen2 --runtime=go124 \
//	  --entry-point=SendNotification \
//	  --trigger-event-filters=type=google.cloud.firestore.document.v1.created \
//	  --trigger-event-filters=database='(default)' \
//	  --trigger-event-filters-path-pattern=document='notifications/{notificationId}'
package notifytrigger

import (
	"context"
	"os"

	firebase "firebase.google.com/go/v4"
	"github.com/GoogleCloudPlatform/functions-framework-go/functions"

	"github.com/tinywideclouds/go-notification-trigger/internal/logging"
	"github.com/tinywideclouds/go-notification-trigger/internal/pipeline"
	"github.com/tinywideclouds/go-notification-trigger/internal/platform/fcm"
	"github.com/tinywideclouds/go-notification-trigger/internal/trigger"
)

// FunctionName is the entry point registered with the Functions Framework.
const FunctionName = "SendNotification"

func init() {
	logger := logging.New(os.Stdout, "go-notification-trigger", os.Getenv("LOG_LEVEL"))
	ctx := context.Background()

	// Boot once per process. There is no re-initialisation path.
	fbApp, err := firebase.NewApp(ctx, nil)
	if err != nil {
		logger.Error("Failed to initialize Firebase App", "err", err)
		os.Exit(1)
	}
	fcmMessaging, err := fbApp.Messaging(ctx)
	if err != nil {
		logger.Error("Failed to create FCM messaging client", "err", err)
		os.Exit(1)
	}

	processor := pipeline.NewProcessor(fcm.NewDispatcher(fcmMessaging, logger), logger)
	functions.CloudEvent(FunctionName, trigger.NewCloudEventHandler(processor, logger))
}
