package donations

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Donation statuses.
const (
	StatusPending   = "pending"
	StatusVerified  = "verified"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Currency units.
const (
	CurrencyNative = "XLM"
	CurrencyFiat   = "USD"
)

// Donation is a donor's contribution to a cause. Completion is reachable
// only through the release authority; verified_at and completed_at are
// stamped by the transitions that set those statuses and never edited
// directly.
type Donation struct {
	ID                uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CauseID           uuid.UUID       `gorm:"type:uuid;not null;index" json:"cause_id"`
	DonorID           *uuid.UUID      `gorm:"type:uuid" json:"donor_id,omitempty"`
	Anonymous         bool            `json:"anonymous"`
	Amount            decimal.Decimal `gorm:"type:numeric(20,7);not null" json:"amount"`
	Currency          string          `gorm:"not null;default:'XLM'" json:"currency"`
	Message           string          `json:"message"`
	TxHash            *string         `gorm:"uniqueIndex" json:"tx_hash,omitempty"`
	Status            string          `gorm:"not null;default:'pending';index" json:"status"`
	EvidenceRefs      datatypes.JSON  `json:"evidence_refs"`
	VerificationNotes string          `json:"verification_notes"`
	FundsReleased     bool            `gorm:"not null;default:false" json:"funds_released"`
	ReleaseInFlight   bool            `gorm:"not null;default:false" json:"-"`
	ReleasedTxHash    *string         `json:"released_tx_hash,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
	VerifiedAt        *time.Time      `json:"verified_at,omitempty"`
	CompletedAt       *time.Time      `json:"completed_at,omitempty"`
	DeletedAt         gorm.DeletedAt  `gorm:"index" json:"-"`
}

// MarshalJSON strips the donor reference from every external projection of
// an anonymous donation.
func (d Donation) MarshalJSON() ([]byte, error) {
	type alias Donation
	a := alias(d)
	if a.Anonymous {
		a.DonorID = nil
	}
	return json.Marshal(a)
}

// EvidenceList decodes the ordered proof references.
func (d *Donation) EvidenceList() []string {
	var refs []string
	if len(d.EvidenceRefs) > 0 {
		_ = json.Unmarshal(d.EvidenceRefs, &refs)
	}
	return refs
}

// AppendEvidence appends proof references, preserving order.
func (d *Donation) AppendEvidence(refs []string) error {
	merged := append(d.EvidenceList(), refs...)
	data, err := json.Marshal(merged)
	if err != nil {
		return err
	}
	d.EvidenceRefs = data
	return nil
}
