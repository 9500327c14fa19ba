// --- File: internal/platform/fcm/fcmdispatcher_test.go ---
package fcm_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"firebase.google.com/go/v4/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tinywideclouds/go-notification-trigger/internal/platform/fcm"
	"github.com/tinywideclouds/go-notification-trigger/pkg/dispatch"
	"github.com/tinywideclouds/go-platform/pkg/notification/v1"
)

// MockClient satisfies the MessagingClient interface
type MockClient struct {
	mock.Mock
}

func (m *MockClient) SendEachForMulticast(ctx context.Context, msg *messaging.MulticastMessage) (*messaging.BatchResponse, error) {
	args := m.Called(ctx, msg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*messaging.BatchResponse), args.Error(1)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFCMDispatch(t *testing.T) {
	logger := newTestLogger()
	ctx := context.Background()
	payload := dispatch.DeliveryPayload{
		Notification: notification.NotificationContent{Title: "Hi", Body: "There"},
		Data:         map[string]string{"k": "v"},
		Tokens:       []string{"tokA", "tokB"},
	}

	t.Run("Builds the multicast message verbatim", func(t *testing.T) {
		mockClient := new(MockClient)
		dispatcher := fcm.NewDispatcher(mockClient, logger)

		matchesPayload := mock.MatchedBy(func(msg *messaging.MulticastMessage) bool {
			return assert.ObjectsAreEqual([]string{"tokA", "tokB"}, msg.Tokens) &&
				assert.ObjectsAreEqual(map[string]string{"k": "v"}, msg.Data) &&
				msg.Notification != nil &&
				msg.Notification.Title == "Hi" &&
				msg.Notification.Body == "There" &&
				msg.Android == nil && msg.APNS == nil && msg.Webpush == nil
		})
		mockResponse := &messaging.BatchResponse{
			SuccessCount: 2,
			Responses: []*messaging.SendResponse{
				{Success: true, MessageID: "msg-1"},
				{Success: true, MessageID: "msg-2"},
			},
		}
		mockClient.On("SendEachForMulticast", ctx, matchesPayload).Return(mockResponse, nil).Once()

		receipt, err := dispatcher.Dispatch(ctx, payload)

		require.NoError(t, err)
		assert.Equal(t, 2, receipt.SuccessCount)
		assert.Equal(t, 0, receipt.FailureCount)
		require.Len(t, receipt.Results, 2)
		assert.Equal(t, dispatch.TokenResult{Token: "tokA", Success: true, MessageID: "msg-1"}, receipt.Results[0])
		assert.Equal(t, dispatch.TokenResult{Token: "tokB", Success: true, MessageID: "msg-2"}, receipt.Results[1])
		mockClient.AssertExpectations(t)
	})

	t.Run("Partial failure is reported in the receipt, not as an error", func(t *testing.T) {
		mockClient := new(MockClient)
		dispatcher := fcm.NewDispatcher(mockClient, logger)

		mockResponse := &messaging.BatchResponse{
			SuccessCount: 1,
			FailureCount: 1,
			Responses: []*messaging.SendResponse{
				{Success: true, MessageID: "msg-1"},
				{Success: false, Error: errors.New("registration-token-not-registered")},
			},
		}
		mockClient.On("SendEachForMulticast", ctx, mock.Anything).Return(mockResponse, nil).Once()

		receipt, err := dispatcher.Dispatch(ctx, payload)

		require.NoError(t, err)
		assert.Equal(t, 1, receipt.FailureCount)
		require.Len(t, receipt.Results, 2)
		assert.False(t, receipt.Results[1].Success)
		assert.Equal(t, "tokB", receipt.Results[1].Token)
		assert.Equal(t, "registration-token-not-registered", receipt.Results[1].Error)
	})

	t.Run("Transport failure is returned wrapped", func(t *testing.T) {
		mockClient := new(MockClient)
		dispatcher := fcm.NewDispatcher(mockClient, logger)

		transportErr := errors.New("network down")
		mockClient.On("SendEachForMulticast", ctx, mock.Anything).Return(nil, transportErr).Once()

		receipt, err := dispatcher.Dispatch(ctx, payload)

		require.Error(t, err)
		assert.Nil(t, receipt)
		assert.ErrorIs(t, err, transportErr)
		assert.Contains(t, err.Error(), "fcm multicast failed")
		mockClient.AssertNumberOfCalls(t, "SendEachForMulticast", 1)
	})
}
