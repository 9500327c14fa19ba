// Package dispatch contains the public domain models and interfaces shared by
// the trigger entry points and the delivery platforms.
package dispatch

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/tinywideclouds/go-platform/pkg/notification/v1"
)

var (
	// ErrMalformedRecord is returned when a stored document does not match
	// the NotificationRecord shape (e.g. a non-string title).
	ErrMalformedRecord = errors.New("malformed notification record")
	ErrMissingTitle    = errors.New("notification record has no title")
	ErrMissingBody     = errors.New("notification record has no body")
)

// NotificationRecord is a document in the watched notifications collection.
// It is written by an upstream service and is never modified here.
//
// Title and Body are required but are pointers so that "absent" can be told
// apart from "empty". Data and FCMTokens are optional.
type NotificationRecord struct {
	UserID    string            `firestore:"userId"`
	Title     *string           `firestore:"title"`
	Body      *string           `firestore:"body"`
	Data      map[string]string `firestore:"data"`
	FCMTokens []string          `firestore:"fcmTokens"`
}

// HasTargets reports whether the record carries at least one device token.
func (r *NotificationRecord) HasTargets() bool {
	return len(r.FCMTokens) > 0
}

// Validate checks the required fields. Empty strings are valid.
func (r *NotificationRecord) Validate() error {
	if r.Title == nil {
		return fmt.Errorf("user %q: %w", r.UserID, ErrMissingTitle)
	}
	if r.Body == nil {
		return fmt.Errorf("user %q: %w", r.UserID, ErrMissingBody)
	}
	return nil
}

// DeliveryPayload is the message handed to a Dispatcher. It is built fresh
// for every invocation and never persisted.
type DeliveryPayload struct {
	Notification notification.NotificationContent
	Data         map[string]string
	Tokens       []string
}

// NewDeliveryPayload copies the record's fields verbatim. The record must
// have passed Validate.
func NewDeliveryPayload(rec *NotificationRecord) DeliveryPayload {
	return DeliveryPayload{
		Notification: notification.NotificationContent{
			Title: *rec.Title,
			Body:  *rec.Body,
		},
		Data:   rec.Data,
		Tokens: rec.FCMTokens,
	}
}

// LogValue summarises the payload for structured logs.
func (p DeliveryPayload) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("title", p.Notification.Title),
		slog.String("body", p.Notification.Body),
		slog.Any("data", p.Data),
		slog.Any("tokens", p.Tokens),
		slog.Int("token_count", len(p.Tokens)),
	)
}
