package transactions

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Entry sources.
const (
	SourceLedgerService     = "ledger_service"
	SourceDistributedLedger = "distributed_ledger"
)

// Normalized transaction types.
const (
	TypeDonation         = "donation"
	TypeTaskFunding      = "task_funding"
	TypeMilestonePayment = "milestone_payment"
)

// Normalized statuses.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// LedgerRecord is the authoritative (off-chain) transaction record. It
// carries the business metadata the chain cannot: donor reference, message,
// associated cause and task.
type LedgerRecord struct {
	ID           uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Type         string          `gorm:"not null;index" json:"type"`
	Status       string          `gorm:"not null;default:'pending';index" json:"status"`
	Amount       decimal.Decimal `gorm:"type:numeric(20,7);not null" json:"amount"`
	Currency     string          `gorm:"not null" json:"currency"`
	TxHash       *string         `gorm:"uniqueIndex" json:"tx_hash,omitempty"`
	CauseID      *uuid.UUID      `gorm:"type:uuid;index" json:"cause_id,omitempty"`
	CauseName    string          `json:"cause_name"`
	TaskID       *uuid.UUID      `gorm:"type:uuid;index" json:"task_id,omitempty"`
	DonationID   *uuid.UUID      `gorm:"type:uuid" json:"donation_id,omitempty"`
	Counterparty string          `json:"counterparty"`
	Message      string          `json:"message"`
	CreatedAt    time.Time       `json:"created_at"`
}

// UnifiedTransactionEntry is the derived, never-persisted merge of the two
// transaction sources. Recomputed on every query.
type UnifiedTransactionEntry struct {
	ID           string          `json:"id"`
	Source       string          `json:"source"`
	Type         string          `json:"type"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
	Status       string          `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
	CauseID      *uuid.UUID      `json:"cause_id,omitempty"`
	CauseName    string          `json:"cause_name,omitempty"`
	TaskID       *uuid.UUID      `json:"task_id,omitempty"`
	Counterparty string          `json:"counterparty,omitempty"`
	TxHash       *string         `json:"tx_hash,omitempty"`
}
