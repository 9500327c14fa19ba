// --- File: internal/platform/fcm/fcmdispatcher.go ---
package fcm

import (
	"context"
	"fmt"
	"log/slog"

	"firebase.google.com/go/v4/messaging"
	"github.com/tinywideclouds/go-notification-trigger/pkg/dispatch"
)

// MessagingClient defines the subset of the Firebase Messaging API we use.
// *messaging.Client satisfies it; tests supply a mock.
type MessagingClient interface {
	SendEachForMulticast(ctx context.Context, msg *messaging.MulticastMessage) (*messaging.BatchResponse, error)
}

type Dispatcher struct {
	client MessagingClient
	logger *slog.Logger
}

func NewDispatcher(client MessagingClient, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		client: client,
		logger: logger.With("component", "FCMDispatcher"),
	}
}

// Dispatch issues exactly one multicast send for the payload. The batch
// response is converted to a Receipt as-is; failed tokens are not retried
// or cleaned up.
func (d *Dispatcher) Dispatch(ctx context.Context, payload dispatch.DeliveryPayload) (*dispatch.Receipt, error) {
	msg := &messaging.MulticastMessage{
		Tokens: payload.Tokens,
		Data:   payload.Data,
		Notification: &messaging.Notification{
			Title: payload.Notification.Title,
			Body:  payload.Notification.Body,
		},
	}

	br, err := d.client.SendEachForMulticast(ctx, msg)
	if err != nil {
		return nil, fmt.Errorf("fcm multicast failed: %w", err)
	}

	d.logger.Debug("FCM batch response received", "success", br.SuccessCount, "failure", br.FailureCount)
	return newReceipt(payload.Tokens, br), nil
}

// newReceipt pairs the batch responses with the tokens they were sent to.
// The SDK returns responses in token order.
func newReceipt(tokens []string, br *messaging.BatchResponse) *dispatch.Receipt {
	receipt := &dispatch.Receipt{
		SuccessCount: br.SuccessCount,
		FailureCount: br.FailureCount,
		Results:      make([]dispatch.TokenResult, 0, len(br.Responses)),
	}

	for idx, resp := range br.Responses {
		if resp == nil {
			continue
		}
		result := dispatch.TokenResult{
			Success:   resp.Success,
			MessageID: resp.MessageID,
		}
		if idx < len(tokens) {
			result.Token = tokens[idx]
		}
		if resp.Error != nil {
			result.Error = resp.Error.Error()
		}
		receipt.Results = append(receipt.Results, result)
	}
	return receipt
}
