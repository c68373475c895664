package notifications

import (
	"context"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/google/uuid"
	"gorm.io/gorm"

	ws "givetrace/donor-portal/donor-portal-backend/internal/notifications/websocket"
)

// EmailSender is the slice of the SES v2 API the service uses.
type EmailSender interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// EmailPreferences reports whether a user accepts email notifications.
// A nil implementation means everyone does.
type EmailPreferences interface {
	EmailEnabled(ctx context.Context, userID uuid.UUID) bool
}

// Service fans events out to WebSocket clients and, when an email sender is
// configured, to subscribed addresses. Every delivery is recorded in the
// sent_notifications outbox.
type Service struct {
	db        *gorm.DB
	wsManager *ws.Manager
	email     EmailSender
	sender    string
	prefs     EmailPreferences
}

// NewService creates the notification service. email may be nil, in which
// case only WebSocket delivery happens.
func NewService(db *gorm.DB, wsManager *ws.Manager, email EmailSender, sender string, prefs EmailPreferences) *Service {
	return &Service{db: db, wsManager: wsManager, email: email, sender: sender, prefs: prefs}
}

// Manager exposes the WebSocket manager for route wiring.
func (s *Service) Manager() *ws.Manager {
	return s.wsManager
}

// NotifyReleaseCompleted announces a completed fund release over WebSocket
// and emails the cause owner. It never blocks the caller and never returns
// an error upstream.
func (s *Service) NotifyReleaseCompleted(recordType string, recordID, causeID uuid.UUID, txHash string) {
	payload := map[string]interface{}{
		"record_type":   recordType,
		"record_id":     recordID,
		"cause_id":      causeID,
		"transfer_hash": txHash,
	}
	s.broadcast(EventReleaseCompleted, recordID, payload)

	go s.emailCauseOwner(causeID, recordType, recordID, txHash)
}

func (s *Service) emailCauseOwner(causeID uuid.UUID, recordType string, recordID uuid.UUID, txHash string) {
	if s.db == nil || s.email == nil {
		return
	}

	var owner struct {
		ID    uuid.UUID
		Email string
	}
	err := s.db.Table("users").
		Select("users.id, users.email").
		Joins("JOIN causes ON causes.owner_id = users.id").
		Where("causes.id = ?", causeID).
		Scan(&owner).Error
	if err != nil || owner.Email == "" {
		return
	}
	if s.prefs != nil && !s.prefs.EmailEnabled(context.Background(), owner.ID) {
		return
	}

	subject := "Funds released"
	body := fmt.Sprintf("Funds for %s %s have been released. Transfer hash: %s", recordType, recordID, txHash)
	if err := s.SendEmailNotice(context.Background(), EventReleaseCompleted, recordID, owner.Email, subject, body); err != nil {
		log.Printf("release email failed: %v", err)
	}
}

// NotifyDonationVerified announces that a donation passed verification.
func (s *Service) NotifyDonationVerified(donationID, causeID uuid.UUID) {
	s.broadcast(EventDonationVerified, donationID, map[string]interface{}{
		"donation_id": donationID,
		"cause_id":    causeID,
	})
}

// NotifyTaskVerified announces that a task passed evidence verification.
func (s *Service) NotifyTaskVerified(taskID, causeID uuid.UUID) {
	s.broadcast(EventTaskVerified, taskID, map[string]interface{}{
		"task_id":  taskID,
		"cause_id": causeID,
	})
}

func (s *Service) broadcast(eventType string, entityID uuid.UUID, payload map[string]interface{}) {
	s.wsManager.Broadcast(ws.Message{Type: eventType, Payload: payload})
	s.record(&SentNotification{
		EventType: eventType,
		Channel:   ChannelWebSocket,
		EntityID:  entityID,
	})
}

// SendEmailNotice delivers a plain-text email and records it. Callers use
// it for recipient-specific notices such as release confirmations to cause
// representatives.
func (s *Service) SendEmailNotice(ctx context.Context, eventType string, entityID uuid.UUID, recipient, subject, body string) error {
	if s.email == nil {
		return nil
	}

	_, err := s.email.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: &s.sender,
		Destination:      &types.Destination{ToAddresses: []string{recipient}},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: &subject},
				Body:    &types.Body{Text: &types.Content{Data: &body}},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to send %s email to %s: %w", eventType, recipient, err)
	}

	s.record(&SentNotification{
		EventType: eventType,
		Channel:   ChannelEmail,
		Recipient: recipient,
		Subject:   subject,
		Body:      body,
		EntityID:  entityID,
	})
	return nil
}

func (s *Service) record(n *SentNotification) {
	if s.db == nil {
		return
	}
	if err := s.db.Create(n).Error; err != nil {
		log.Printf("failed to record %s notification: %v", n.EventType, err)
	}
}
