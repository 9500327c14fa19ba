// Package trigger adapts platform events into processor invocations.
package trigger

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/cloudevents/sdk-go/v2/event"
	"github.com/googleapis/google-cloudevents-go/cloud/firestoredata"
	"github.com/tinywideclouds/go-notification-trigger/internal/pipeline"
	"github.com/tinywideclouds/go-notification-trigger/pkg/dispatch"
	"google.golang.org/protobuf/proto"
)

// DocumentCreatedEventType is the Eventarc type fired when a Firestore
// document is created.
const DocumentCreatedEventType = "google.cloud.firestore.document.v1.created"

// RecordProcessor is the part of pipeline.Processor the trigger needs.
type RecordProcessor interface {
	Process(ctx context.Context, notificationID string, decode pipeline.Decoder) pipeline.Outcome
}

// NewCloudEventHandler returns a Functions Framework CloudEvent handler for
// document-created events. It always returns nil so the platform never
// retries on a reported failure.
func NewCloudEventHandler(processor RecordProcessor, logger *slog.Logger) func(context.Context, event.Event) error {
	logger = logger.With("component", "CloudEventTrigger")

	return func(ctx context.Context, e event.Event) error {
		evLogger := logger.With("event_id", e.ID(), "subject", e.Subject())

		if e.Type() != DocumentCreatedEventType {
			evLogger.Warn("Ignoring unexpected event type", "type", e.Type())
			return nil
		}

		notificationID := documentID(e.Subject())
		outcome := processor.Process(ctx, notificationID, func() (*dispatch.NotificationRecord, error) {
			var data firestoredata.DocumentEventData
			if err := proto.Unmarshal(e.Data(), &data); err != nil {
				return nil, fmt.Errorf("failed to unmarshal firestore event %s: %w", e.ID(), err)
			}
			return pipeline.DecodeDocumentFields(data.GetValue().GetFields())
		})

		evLogger.Debug("Event handled", "notification_id", notificationID, "outcome", outcome.String())
		return nil
	}
}

// documentID extracts the last path segment of a subject such as
// "documents/notifications/abc".
func documentID(subject string) string {
	subject = strings.TrimSuffix(subject, "/")
	if subject == "" {
		return ""
	}
	return path.Base(subject)
}
