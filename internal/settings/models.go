package settings

import (
	"time"

	"github.com/google/uuid"
)

// UserProfile holds display settings a user manages for themselves.
type UserProfile struct {
	UserID      uuid.UUID `gorm:"type:uuid;primary_key" json:"user_id"`
	DisplayName string    `json:"display_name"`
	Language    string    `json:"language"`
	Timezone    string    `json:"timezone"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NotificationPreferences controls which channels a user receives
// notifications on. Email defaults to enabled for users who never saved
// preferences.
type NotificationPreferences struct {
	UserID       uuid.UUID `gorm:"type:uuid;primary_key" json:"user_id"`
	EmailEnabled bool      `gorm:"default:true" json:"email_enabled"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UpdateProfileRequest is the payload for profile updates.
type UpdateProfileRequest struct {
	DisplayName string `json:"display_name"`
	Language    string `json:"language"`
	Timezone    string `json:"timezone"`
}

// UpdatePreferencesRequest is the payload for notification preference
// updates.
type UpdatePreferencesRequest struct {
	EmailEnabled *bool `json:"email_enabled" binding:"required"`
}
