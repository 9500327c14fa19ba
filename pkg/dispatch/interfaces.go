// --- File: pkg/dispatch/interfaces.go ---
package dispatch

import (
	"context"
)

// Dispatcher defines the contract for a component that delivers a payload
// to a push platform (e.g. Google's FCM) in a single bulk-send call.
type Dispatcher interface {
	// Dispatch sends the payload to every token it carries and returns the
	// platform's aggregate response. Per-token failures are reported in the
	// Receipt, not as an error.
	Dispatch(ctx context.Context, payload DeliveryPayload) (*Receipt, error)
}

// TokenResult is the outcome of the bulk-send for a single token.
type TokenResult struct {
	Token     string `json:"token"`
	Success   bool   `json:"success"`
	MessageID string `json:"message_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Receipt is the aggregate response of one bulk-send.
type Receipt struct {
	SuccessCount int           `json:"success_count"`
	FailureCount int           `json:"failure_count"`
	Results      []TokenResult `json:"results"`
}
