package causes

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Cause is a charity entity that owns tasks and receives donations. The
// wallet address is the release destination on file; releases are refused
// while it is empty.
type Cause struct {
	ID            uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name          string         `gorm:"not null" json:"name"`
	Description   string         `json:"description"`
	WalletAddress string         `json:"wallet_address"`
	OwnerID       uuid.UUID      `gorm:"type:uuid;not null" json:"owner_id"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}
