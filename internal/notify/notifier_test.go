package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "driverpro-notifier/internal/common/errors"
	"driverpro-notifier/internal/common/logger"
)

// ==========================
// Mock Implementations
// ==========================

type MockMailer struct {
	SendTemplatedFunc func(ctx context.Context, req SendRequest) error
	Requests          []SendRequest
}

func (m *MockMailer) SendTemplated(ctx context.Context, req SendRequest) error {
	m.Requests = append(m.Requests, req)
	if m.SendTemplatedFunc != nil {
		return m.SendTemplatedFunc(ctx, req)
	}
	return nil
}

func testTemplate() TemplateDescriptor {
	return TemplateDescriptor{
		StatusKey:  "driver_confirmed",
		Subject:    "Course confirmée par votre chauffeur",
		TemplateID: "driver-course-confirmed",
	}
}

func testPayload() Payload {
	return Payload{
		ReservationID: "abcdef12",
		ClientName:    "Marie",
		DriverName:    "Jo",
		DriverPhone:   "555",
		Date:          "vendredi 8 mars 2024 à 18:00",
		Origin:        "A",
		Destination:   "B",
		Price:         "62.50",
	}
}

func TestNotifier_Send_BuildsRequest(t *testing.T) {
	mailer := &MockMailer{}
	n := NewNotifier(mailer, "no-reply@driverpro.fr", "DriverPro Notifications", logger.NewTestLogger(t))

	err := n.Send(context.Background(), "marie@example.com", testTemplate(), testPayload())
	require.NoError(t, err)

	require.Len(t, mailer.Requests, 1)
	req := mailer.Requests[0]
	assert.Equal(t, "marie@example.com", req.To)
	assert.Equal(t, "no-reply@driverpro.fr", req.FromEmail)
	assert.Equal(t, "DriverPro Notifications", req.FromName)
	assert.Equal(t, "Course confirmée par votre chauffeur", req.Subject)
	assert.Equal(t, "driver-course-confirmed", req.TemplateID)
	assert.Equal(t, "abcdef12", req.TemplateData["reservationId"])
	assert.Equal(t, "Jo", req.TemplateData["driverName"])
}

func TestNotifier_Send_ClassifiesFailure(t *testing.T) {
	mailer := &MockMailer{
		SendTemplatedFunc: func(ctx context.Context, req SendRequest) error {
			return &ProviderError{
				ResponseBody: `{"ErrorCode":406,"Message":"Inactive recipient"}`,
				Err:          errors.New("rejected"),
			}
		},
	}
	n := NewNotifier(mailer, "no-reply@driverpro.fr", "DriverPro Notifications", logger.NewNoOpLogger())

	err := n.Send(context.Background(), "marie@example.com", testTemplate(), testPayload())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeDispatchFailed, apperrors.CodeOf(err))

	var stdErr *apperrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Contains(t, stdErr.Metadata["providerResponse"], "Inactive recipient")
}

func TestNotifier_Send_NoInternalRetry(t *testing.T) {
	calls := 0
	mailer := &MockMailer{
		SendTemplatedFunc: func(ctx context.Context, req SendRequest) error {
			calls++
			return &ProviderError{Err: errors.New("transient")}
		},
	}
	n := NewNotifier(mailer, "no-reply@driverpro.fr", "DriverPro Notifications", logger.NewNoOpLogger())

	err := n.Send(context.Background(), "marie@example.com", testTemplate(), testPayload())
	require.Error(t, err)
	// At-most-one-attempt policy: a failed send is dropped, never retried here.
	assert.Equal(t, 1, calls)
}

func TestNotifier_SendTest_UsesConfirmedTemplate(t *testing.T) {
	mailer := &MockMailer{}
	n := NewNotifier(mailer, "no-reply@driverpro.fr", "DriverPro Notifications", logger.NewTestLogger(t))

	require.NoError(t, n.SendTest(context.Background(), "ops@driverpro.fr"))

	require.Len(t, mailer.Requests, 1)
	assert.Equal(t, "ops@driverpro.fr", mailer.Requests[0].To)
	assert.Equal(t, "driver-course-confirmed", mailer.Requests[0].TemplateID)
}
