package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Transfer event types as reported by the chain, relative to the queried
// account.
const (
	EventPaymentReceived = "payment_received"
	EventPaymentSent     = "payment_sent"
)

// TransferEvent is one settled value transfer observed on the distributed
// ledger. Amount is in the native ledger unit.
type TransferEvent struct {
	Hash      string          `json:"hash"`
	From      string          `json:"from"`
	To        string          `json:"to"`
	Amount    decimal.Decimal `json:"amount"`
	Timestamp time.Time       `json:"timestamp"`
	Type      string          `json:"type"`
}

// TransferOutcome is the result of re-querying a previously submitted
// transfer. Found=false means the network has no record of the hash.
type TransferOutcome struct {
	Hash       string `json:"hash"`
	Found      bool   `json:"found"`
	Successful bool   `json:"successful"`
}

// Gateway is the distributed-ledger collaborator. Submission is
// at-least-once from the network's point of view: once SubmitTransfer has
// been accepted, a timed-out caller must call GetTransferOutcome before
// retrying rather than resubmit.
type Gateway interface {
	SubmitTransfer(ctx context.Context, destination string, amount decimal.Decimal, memo string) (string, error)
	GetTransferHistory(ctx context.Context, account string) ([]TransferEvent, error)
	GetTransferOutcome(ctx context.Context, hash string) (*TransferOutcome, error)
}
