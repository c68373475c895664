package release

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"givetrace/donor-portal/donor-portal-backend/internal/auth"
	"givetrace/donor-portal/donor-portal-backend/internal/causes"
	"givetrace/donor-portal/donor-portal-backend/internal/donations"
	"givetrace/donor-portal/donor-portal-backend/internal/ledger"
	"givetrace/donor-portal/donor-portal-backend/internal/tasks"
	"givetrace/donor-portal/donor-portal-backend/pkg/apperrors"
)

// Record types accepted by Release.
const (
	RecordTypeDonation = "donation"
	RecordTypeTask     = "task"
)

// ReleaseRecorder mirrors a completed release into the authoritative
// transaction record keeper.
type ReleaseRecorder interface {
	RecordRelease(ctx context.Context, recordType string, recordID, causeID uuid.UUID, amount decimal.Decimal, currency, txHash string) error
}

// Notifier is told about completed releases. Implementations must not
// block.
type Notifier interface {
	NotifyReleaseCompleted(recordType string, recordID, causeID uuid.UUID, txHash string)
}

// Result reports a completed release.
type Result struct {
	RecordType   string          `json:"record_type"`
	RecordID     uuid.UUID       `json:"record_id"`
	CauseID      uuid.UUID       `json:"cause_id"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
	TransferHash string          `json:"transfer_hash"`
	CompletedAt  time.Time       `json:"completed_at"`
}

// Authority is the single path by which an approved record causes a value
// transfer. The claim/flip on the record row is a compare-and-swap, so a
// second concurrent release on the same record is rejected, never queued or
// re-executed.
type Authority struct {
	donationRepo donations.Repository
	taskRepo     tasks.Repository
	causeRepo    causes.Repository
	gateway      ledger.Gateway
	recorder     ReleaseRecorder
	notifier     Notifier
}

// NewAuthority creates the release authority.
func NewAuthority(
	donationRepo donations.Repository,
	taskRepo tasks.Repository,
	causeRepo causes.Repository,
	gateway ledger.Gateway,
	recorder ReleaseRecorder,
	notifier Notifier,
) *Authority {
	return &Authority{
		donationRepo: donationRepo,
		taskRepo:     taskRepo,
		causeRepo:    causeRepo,
		gateway:      gateway,
		recorder:     recorder,
		notifier:     notifier,
	}
}

// Release transfers the record's accumulated balance to the destination
// wallet on file for the owning cause and stamps the record completed.
// Preconditions are checked before any transfer attempt; a gateway failure
// leaves the record verified and the claim released so the caller can
// retry after re-checking the transfer outcome.
func (a *Authority) Release(ctx context.Context, recordType string, id uuid.UUID, actor auth.Actor) (*Result, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.NewAuthorizationError(actor.Role, auth.RoleAdmin)
	}

	switch recordType {
	case RecordTypeDonation:
		return a.releaseDonation(ctx, id)
	case RecordTypeTask:
		return a.releaseTask(ctx, id)
	default:
		return nil, apperrors.NewValidationError("record_type", "unknown record type %q", recordType)
	}
}

func (a *Authority) releaseDonation(ctx context.Context, id uuid.UUID) (*Result, error) {
	donation, err := a.donationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if donation.Status != donations.StatusVerified {
		return nil, apperrors.NewStateConflictError("donation", id.String(), donation.Status, donations.StatusVerified)
	}

	wallet, err := a.destinationWallet(ctx, donation.CauseID)
	if err != nil {
		return nil, err
	}

	claimed, err := a.donationRepo.ClaimRelease(ctx, id)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, apperrors.NewReleaseConflictError("donation", id.String())
	}

	txHash, err := a.gateway.SubmitTransfer(ctx, wallet, donation.Amount, "release")
	if err != nil {
		if clearErr := a.donationRepo.ClearReleaseClaim(ctx, id); clearErr != nil {
			log.Printf("failed to clear release claim for donation %s: %v", id, clearErr)
		}
		return nil, apperrors.NewGatewayError("submit_transfer", err)
	}

	completedAt := time.Now()
	if err := a.donationRepo.MarkReleased(ctx, id, txHash, completedAt); err != nil {
		// money moved but the stamp failed; never hide the hash
		log.Printf("release of donation %s settled as %s but stamping failed: %v", id, txHash, err)
		return nil, err
	}

	result := &Result{
		RecordType:   RecordTypeDonation,
		RecordID:     id,
		CauseID:      donation.CauseID,
		Amount:       donation.Amount,
		Currency:     donation.Currency,
		TransferHash: txHash,
		CompletedAt:  completedAt,
	}
	a.finish(ctx, result)
	return result, nil
}

func (a *Authority) releaseTask(ctx context.Context, id uuid.UUID) (*Result, error) {
	task, err := a.taskRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task.Status != tasks.StatusVerified || task.FundsReleased {
		if task.FundsReleased {
			return nil, apperrors.NewReleaseConflictError("task", id.String())
		}
		return nil, apperrors.NewStateConflictError("task", id.String(), task.Status, tasks.StatusVerified)
	}

	wallet, err := a.destinationWallet(ctx, task.CauseID)
	if err != nil {
		return nil, err
	}

	claimed, err := a.taskRepo.ClaimRelease(ctx, id)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, apperrors.NewReleaseConflictError("task", id.String())
	}

	txHash, err := a.gateway.SubmitTransfer(ctx, wallet, task.AmountReceived, "milestone")
	if err != nil {
		if clearErr := a.taskRepo.ClearReleaseClaim(ctx, id); clearErr != nil {
			log.Printf("failed to clear release claim for task %s: %v", id, clearErr)
		}
		return nil, apperrors.NewGatewayError("submit_transfer", err)
	}

	completedAt := time.Now()
	if err := a.taskRepo.MarkReleased(ctx, id, txHash, completedAt); err != nil {
		log.Printf("release of task %s settled as %s but stamping failed: %v", id, txHash, err)
		return nil, err
	}

	result := &Result{
		RecordType:   RecordTypeTask,
		RecordID:     id,
		CauseID:      task.CauseID,
		Amount:       task.AmountReceived,
		Currency:     task.Currency,
		TransferHash: txHash,
		CompletedAt:  completedAt,
	}
	a.finish(ctx, result)
	return result, nil
}

// destinationWallet resolves the wallet on file; its absence is a
// precondition failure, not a gateway failure.
func (a *Authority) destinationWallet(ctx context.Context, causeID uuid.UUID) (string, error) {
	cause, err := a.causeRepo.GetByID(ctx, causeID)
	if err != nil {
		return "", err
	}
	if cause.WalletAddress == "" {
		return "", apperrors.NewValidationError("destination_wallet",
			"cause %s has no destination wallet on file", causeID)
	}
	return cause.WalletAddress, nil
}

func (a *Authority) finish(ctx context.Context, result *Result) {
	if a.recorder != nil {
		if err := a.recorder.RecordRelease(ctx, result.RecordType, result.RecordID, result.CauseID,
			result.Amount, result.Currency, result.TransferHash); err != nil {
			log.Printf("failed to record release %s in transaction ledger: %v", result.TransferHash, err)
		}
	}
	if a.notifier != nil {
		a.notifier.NotifyReleaseCompleted(result.RecordType, result.RecordID, result.CauseID, result.TransferHash)
	}
}
