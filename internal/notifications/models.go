package notifications

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Event types pushed over WebSocket and recorded in the outbox.
const (
	EventDonationVerified = "donation_verified"
	EventTaskVerified     = "task_verified"
	EventReleaseCompleted = "release_completed"
)

// Delivery channels.
const (
	ChannelWebSocket = "websocket"
	ChannelEmail     = "email"
)

// SentNotification is the outbox row kept for every delivered notification.
type SentNotification struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	EventType string    `gorm:"not null;index" json:"event_type"`
	Channel   string    `gorm:"not null" json:"channel"`
	Recipient string    `json:"recipient,omitempty"`
	Subject   string    `json:"subject,omitempty"`
	Body      string    `gorm:"type:text" json:"body,omitempty"`
	EntityID  uuid.UUID `gorm:"type:uuid;index" json:"entity_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (n *SentNotification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
