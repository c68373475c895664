package tasks

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Task statuses.
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusVerified   = "verified"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Evidence kinds.
const (
	EvidenceKindPicture  = "picture"
	EvidenceKindDocument = "document"
)

// PictureProofTarget is the number of picture proofs the evidence gate
// requires before a task can be verified.
const PictureProofTarget = 5

// EvidenceRef is one attached proof artifact.
type EvidenceRef struct {
	Ref  string `json:"ref"`
	Kind string `json:"kind"`
}

// Task is a funded sub-project of a cause, released as one milestone.
// AmountReceived only grows; FundsReleased flips to true at most once, and
// only from the verified status.
type Task struct {
	ID                uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CauseID           uuid.UUID       `gorm:"type:uuid;not null;index" json:"cause_id"`
	Title             string          `gorm:"not null" json:"title"`
	Description       string          `json:"description"`
	TargetAmount      decimal.Decimal `gorm:"type:numeric(20,7);not null" json:"target_amount"`
	AmountReceived    decimal.Decimal `gorm:"type:numeric(20,7);not null;default:0" json:"amount_received"`
	Currency          string          `gorm:"not null;default:'XLM'" json:"currency"`
	Status            string          `gorm:"not null;default:'pending';index" json:"status"`
	PictureProofCount int             `gorm:"not null;default:0" json:"picture_proof_count"`
	HasDocumentProof  bool            `gorm:"not null;default:false" json:"has_document_proof"`
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

// EvidenceList decodes the ordered proof references.
func (t *Task) EvidenceList() []EvidenceRef {
	var refs []EvidenceRef
	if len(t.EvidenceRefs) > 0 {
		_ = json.Unmarshal(t.EvidenceRefs, &refs)
	}
	return refs
}

// AppendEvidence appends proof references and keeps the completeness
// counters in sync.
func (t *Task) AppendEvidence(refs []EvidenceRef) error {
	merged := append(t.EvidenceList(), refs...)
	data, err := json.Marshal(merged)
	if err != nil {
		return err
	}
	t.EvidenceRefs = data

	for _, ref := range refs {
		switch ref.Kind {
		case EvidenceKindPicture:
			t.PictureProofCount++
		case EvidenceKindDocument:
			t.HasDocumentProof = true
		}
	}
	return nil
}
