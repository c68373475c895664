package auth

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Roles recognized by the platform.
const (
	RoleDonor  = "donor"
	RoleOrgRep = "org_rep"
	RoleAdmin  = "admin"
)

// User is a platform account. Organization representatives carry the cause
// they represent.
type User struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string         `gorm:"not null" json:"-"`
	DisplayName  string         `json:"display_name"`
	Role         string         `gorm:"not null;default:'donor'" json:"role"`
	CauseID      *uuid.UUID     `gorm:"type:uuid" json:"cause_id,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// Actor identifies the caller of a gated operation. It is resolved from the
// request token by the middleware and passed explicitly into services; there
// is no ambient session state.
type Actor struct {
	UserID  uuid.UUID
	Role    string
	CauseID *uuid.UUID
}

// IsAdmin reports administrative authority.
func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

// RepresentsCause reports whether the actor is the organization
// representative for the given cause. Admins pass every cause check.
func (a Actor) RepresentsCause(causeID uuid.UUID) bool {
	if a.IsAdmin() {
		return true
	}
	return a.Role == RoleOrgRep && a.CauseID != nil && *a.CauseID == causeID
}
