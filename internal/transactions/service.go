package transactions

import (
	"context"
	"log"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"givetrace/donor-portal/donor-portal-backend/internal/causes"
	"givetrace/donor-portal/donor-portal-backend/internal/donations"
	"givetrace/donor-portal/donor-portal-backend/internal/ledger"
	"givetrace/donor-portal/donor-portal-backend/internal/tasks"
)

// Service merges the two transaction sources on demand and records new
// ledger-service entries as funding and releases happen.
type Service struct {
	repo      Repository
	causeRepo causes.Repository
	gateway   ledger.Gateway
	cache     *ChainHistoryCache
}

// NewService creates the transactions service. cache may be nil, in which
// case every query fetches chain history from the gateway.
func NewService(repo Repository, causeRepo causes.Repository, gateway ledger.Gateway, cache *ChainHistoryCache) *Service {
	return &Service{repo: repo, causeRepo: causeRepo, gateway: gateway, cache: cache}
}

// GetUnifiedTransactions reconciles the ledger-service records with the
// chain histories of every cause wallet, then filters and sorts the merged
// set. Read-only: the unified view is recomputed on every call.
func (s *Service) GetUnifiedTransactions(ctx context.Context, filter Filter, sortOrder string) ([]UnifiedTransactionEntry, error) {
	records, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	events, err := s.collectChainEvents(ctx)
	if err != nil {
		return nil, err
	}

	merged := Reconcile(records, events)
	filtered := ApplyFilter(merged, filter)
	SortEntries(filtered, sortOrder)
	return filtered, nil
}

func (s *Service) collectChainEvents(ctx context.Context) ([]ledger.TransferEvent, error) {
	causeList, err := s.causeRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	var events []ledger.TransferEvent
	seen := make(map[string]struct{})
	for _, cause := range causeList {
		if cause.WalletAddress == "" {
			continue
		}
		if _, dup := seen[cause.WalletAddress]; dup {
			continue
		}
		seen[cause.WalletAddress] = struct{}{}

		history, err := s.ChainHistory(ctx, cause.WalletAddress)
		if err != nil {
			return nil, err
		}
		events = append(events, history...)
	}
	return events, nil
}

// ChainHistory returns the transfer history for a wallet, cache first.
func (s *Service) ChainHistory(ctx context.Context, wallet string) ([]ledger.TransferEvent, error) {
	if s.cache != nil {
		if events, ok := s.cache.Get(ctx, wallet); ok {
			return events, nil
		}
	}

	events, err := s.gateway.GetTransferHistory(ctx, wallet)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, wallet, events); err != nil {
			log.Printf("failed to cache chain history for %s: %v", wallet, err)
		}
	}
	return events, nil
}

// RefreshChainHistory bypasses the cache and repopulates it. Used by the
// sync worker.
func (s *Service) RefreshChainHistory(ctx context.Context, wallet string) error {
	events, err := s.gateway.GetTransferHistory(ctx, wallet)
	if err != nil {
		return err
	}
	if s.cache != nil {
		return s.cache.Set(ctx, wallet, events)
	}
	return nil
}

// RecordDonationIntake implements donations.IntakeRecorder.
func (s *Service) RecordDonationIntake(ctx context.Context, donation *donations.Donation, total decimal.Decimal) error {
	counterparty := "anonymous"
	if !donation.Anonymous && donation.DonorID != nil {
		counterparty = donation.DonorID.String()
	}

	causeID := donation.CauseID
	donationID := donation.ID
	record := &LedgerRecord{
		Type:         TypeDonation,
		Status:       StatusPending,
		Amount:       total,
		Currency:     donation.Currency,
		TxHash:       donation.TxHash,
		CauseID:      &causeID,
		CauseName:    s.causeName(ctx, causeID),
		DonationID:   &donationID,
		Counterparty: counterparty,
		Message:      donation.Message,
	}
	return s.repo.Create(ctx, record)
}

// RecordTaskFunding implements tasks.FundingRecorder.
func (s *Service) RecordTaskFunding(ctx context.Context, task *tasks.Task, funderRef string, amount decimal.Decimal, txHash *string) error {
	causeID := task.CauseID
	taskID := task.ID
	record := &LedgerRecord{
		Type:         TypeTaskFunding,
		Status:       StatusCompleted,
		Amount:       amount,
		Currency:     task.Currency,
		TxHash:       txHash,
		CauseID:      &causeID,
		CauseName:    s.causeName(ctx, causeID),
		TaskID:       &taskID,
		Counterparty: funderRef,
		Message:      task.Title,
	}
	return s.repo.Create(ctx, record)
}

// RecordRelease implements release.ReleaseRecorder.
func (s *Service) RecordRelease(ctx context.Context, recordType string, recordID, causeID uuid.UUID, amount decimal.Decimal, currency, txHash string) error {
	record := &LedgerRecord{
		Type:      TypeMilestonePayment,
		Status:    StatusCompleted,
		Amount:    amount,
		Currency:  currency,
		TxHash:    &txHash,
		CauseID:   &causeID,
		CauseName: s.causeName(ctx, causeID),
		Message:   recordType + " release",
	}
	if recordType == "task" {
		taskID := recordID
		record.TaskID = &taskID
	} else {
		donationID := recordID
		record.DonationID = &donationID
	}

	if err := s.repo.Create(ctx, record); err != nil {
		return err
	}

	// the release settled a new on-chain transfer; drop the stale history
	if s.cache != nil {
		if cause, err := s.causeRepo.GetByID(ctx, causeID); err == nil && cause.WalletAddress != "" {
			if err := s.cache.Invalidate(ctx, cause.WalletAddress); err != nil {
				log.Printf("failed to invalidate chain history for %s: %v", cause.WalletAddress, err)
			}
		}
	}
	return nil
}

func (s *Service) causeName(ctx context.Context, causeID uuid.UUID) string {
	cause, err := s.causeRepo.GetByID(ctx, causeID)
	if err != nil {
		return ""
	}
	return cause.Name
}
