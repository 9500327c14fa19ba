package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tinywideclouds/go-notification-trigger/pkg/dispatch"
)

// Outcome describes how a single invocation ended. It is informational only:
// every outcome is a successful completion for the trigger.
type Outcome int

const (
	OutcomeSent Outcome = iota
	OutcomeSkipped
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSent:
		return "sent"
	case OutcomeSkipped:
		return "skipped"
	default:
		return "failed"
	}
}

// Processor forwards one notification record to the push platform.
type Processor struct {
	dispatcher dispatch.Dispatcher
	logger     *slog.Logger
}

func NewProcessor(dispatcher dispatch.Dispatcher, logger *slog.Logger) *Processor {
	return &Processor{
		dispatcher: dispatcher,
		logger:     logger.With("component", "NotificationProcessor"),
	}
}

// Process decodes, validates and dispatches a single record. It never
// returns an error and never panics: every failure is logged and absorbed.
// Repeated calls with the same record dispatch again; there is no dedup.
func (p *Processor) Process(ctx context.Context, notificationID string, decode Decoder) (outcome Outcome) {
	procLogger := p.logger.With("notification_id", notificationID)

	defer func() {
		if r := recover(); r != nil {
			procLogger.Error("Error sending notification", "err", fmt.Errorf("panic: %v", r))
			outcome = OutcomeFailed
		}
	}()

	rec, err := decode()
	if err != nil {
		procLogger.Error("Error sending notification", "err", err)
		return OutcomeFailed
	}
	procLogger = procLogger.With("user_id", rec.UserID)

	if !rec.HasTargets() {
		procLogger.Info("No FCM tokens found for user")
		return OutcomeSkipped
	}

	if err := rec.Validate(); err != nil {
		procLogger.Error("Error sending notification", "err", err)
		return OutcomeFailed
	}

	payload := dispatch.NewDeliveryPayload(rec)
	procLogger.Info("Sending FCM message", "message", payload)

	receipt, err := p.dispatcher.Dispatch(ctx, payload)
	if err != nil {
		procLogger.Error("Error sending notification", "err", err)
		return OutcomeFailed
	}

	procLogger.Info("Successfully sent message",
		"success_count", receipt.SuccessCount,
		"failure_count", receipt.FailureCount,
		"responses", receipt.Results,
	)
	return OutcomeSent
}
