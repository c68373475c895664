package notifications

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	ws "givetrace/donor-portal/donor-portal-backend/internal/notifications/websocket"
)

type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sesv2.SendEmailOutput), args.Error(1)
}

func TestSendEmailNoticeDeliversThroughSender(t *testing.T) {
	sender := new(MockEmailSender)
	service := NewService(nil, ws.NewManager(), sender, "noreply@givetrace.org", nil)
	entityID := uuid.New()

	sender.On("SendEmail", mock.Anything, mock.MatchedBy(func(in *sesv2.SendEmailInput) bool {
		return *in.FromEmailAddress == "noreply@givetrace.org" &&
			in.Destination.ToAddresses[0] == "owner@cause.org" &&
			*in.Content.Simple.Subject.Data == "Funds released"
	})).Return(&sesv2.SendEmailOutput{}, nil)

	err := service.SendEmailNotice(context.Background(), EventReleaseCompleted, entityID,
		"owner@cause.org", "Funds released", "body")

	require.NoError(t, err)
	sender.AssertExpectations(t)
}

func TestSendEmailNoticeWrapsSenderError(t *testing.T) {
	sender := new(MockEmailSender)
	service := NewService(nil, ws.NewManager(), sender, "noreply@givetrace.org", nil)

	sender.On("SendEmail", mock.Anything, mock.Anything).Return(nil, assert.AnError)

	err := service.SendEmailNotice(context.Background(), EventReleaseCompleted, uuid.New(),
		"owner@cause.org", "subject", "body")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "owner@cause.org")
}

func TestSendEmailNoticeNoopWithoutSender(t *testing.T) {
	service := NewService(nil, ws.NewManager(), nil, "", nil)

	err := service.SendEmailNotice(context.Background(), EventTaskVerified, uuid.New(),
		"owner@cause.org", "subject", "body")

	require.NoError(t, err)
}

func TestBroadcastEventsDoNotRequireConnections(t *testing.T) {
	manager := ws.NewManager()
	service := NewService(nil, manager, nil, "", nil)

	service.NotifyDonationVerified(uuid.New(), uuid.New())
	service.NotifyTaskVerified(uuid.New(), uuid.New())

	assert.Equal(t, 0, manager.ConnectionCount())
}
