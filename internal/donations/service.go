package donations

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"givetrace/donor-portal/donor-portal-backend/internal/auth"
	"givetrace/donor-portal/donor-portal-backend/internal/fees"
	"givetrace/donor-portal/donor-portal-backend/pkg/apperrors"
	"givetrace/donor-portal/donor-portal-backend/pkg/workflows"
)

// IntakeRecorder mirrors a donation into the authoritative transaction
// record keeper so the reconciliation engine sees it.
type IntakeRecorder interface {
	RecordDonationIntake(ctx context.Context, donation *Donation, total decimal.Decimal) error
}

type CreateDonationRequest struct {
	CauseID   uuid.UUID       `json:"cause_id" binding:"required"`
	Amount    decimal.Decimal `json:"amount" binding:"required"`
	Currency  string          `json:"currency"`
	Message   string          `json:"message"`
	Anonymous bool            `json:"anonymous"`
	TxHash    *string         `json:"tx_hash"`
}

type SubmitEvidenceRequest struct {
	EvidenceRefs []string `json:"evidence_refs" binding:"required"`
	Notes        string   `json:"notes"`
}

type Service interface {
	CreateDonation(ctx context.Context, req CreateDonationRequest, actor auth.Actor) (*Donation, error)
	GetDonation(ctx context.Context, id uuid.UUID) (*Donation, error)
	ListByCause(ctx context.Context, causeID uuid.UUID) ([]Donation, error)
	SubmitEvidence(ctx context.Context, id uuid.UUID, req SubmitEvidenceRequest, actor auth.Actor) (*Donation, error)
	AttachTransferHash(ctx context.Context, id uuid.UUID, txHash string) (*Donation, error)
	Fail(ctx context.Context, id uuid.UUID, actor auth.Actor) (*Donation, error)
	Quote(rawAmount decimal.Decimal) (*fees.Quote, error)
}

type donationService struct {
	repo         Repository
	recorder     IntakeRecorder
	stateMachine *workflows.StateMachine
	feePercent   decimal.Decimal
	minAmount    decimal.Decimal
}

func NewService(repo Repository, recorder IntakeRecorder, feePercent, minAmount decimal.Decimal) Service {
	return &donationService{
		repo:         repo,
		recorder:     recorder,
		stateMachine: workflows.NewDonationStateMachine(),
		feePercent:   feePercent,
		minAmount:    minAmount,
	}
}

func (s *donationService) Quote(rawAmount decimal.Decimal) (*fees.Quote, error) {
	return fees.QuoteFunding(rawAmount, s.feePercent, s.minAmount)
}

func (s *donationService) CreateDonation(ctx context.Context, req CreateDonationRequest, actor auth.Actor) (*Donation, error) {
	quote, err := fees.QuoteFunding(req.Amount, s.feePercent, s.minAmount)
	if err != nil {
		return nil, err
	}

	currency := req.Currency
	if currency == "" {
		currency = CurrencyNative
	}

	donation := &Donation{
		CauseID:   req.CauseID,
		Amount:    req.Amount,
		Currency:  currency,
		Message:   req.Message,
		Anonymous: req.Anonymous,
		TxHash:    req.TxHash,
		Status:    StatusPending,
	}
	if !req.Anonymous {
		donorID := actor.UserID
		donation.DonorID = &donorID
	}

	if err := s.repo.Create(ctx, donation); err != nil {
		return nil, err
	}
	if err := s.recorder.RecordDonationIntake(ctx, donation, quote.Total); err != nil {
		return nil, err
	}
	return donation, nil
}

func (s *donationService) GetDonation(ctx context.Context, id uuid.UUID) (*Donation, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *donationService) ListByCause(ctx context.Context, causeID uuid.UUID) ([]Donation, error) {
	return s.repo.ListByCause(ctx, causeID)
}

// SubmitEvidence advances a pending donation to verified. Requires at least
// one proof reference and non-empty notes, and may only be performed by the
// representative of the associated cause.
func (s *donationService) SubmitEvidence(ctx context.Context, id uuid.UUID, req SubmitEvidenceRequest, actor auth.Actor) (*Donation, error) {
	donation, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !actor.RepresentsCause(donation.CauseID) {
		return nil, apperrors.NewAuthorizationError(actor.Role, auth.RoleOrgRep)
	}
	if !s.stateMachine.CanTransition(donation.Status, StatusVerified) {
		return nil, apperrors.NewStateConflictError("donation", id.String(), donation.Status, StatusPending)
	}
	if len(req.EvidenceRefs) == 0 && len(donation.EvidenceList()) == 0 {
		return nil, apperrors.NewValidationError("evidence", "at least one proof reference is required")
	}
	if req.Notes == "" {
		return nil, apperrors.NewValidationError("notes", "verification notes must not be empty")
	}

	if err := donation.AppendEvidence(req.EvidenceRefs); err != nil {
		return nil, err
	}
	now := time.Now()
	donation.VerificationNotes = req.Notes
	donation.Status = StatusVerified
	donation.VerifiedAt = &now

	if err := s.repo.Update(ctx, donation); err != nil {
		return nil, err
	}
	return donation, nil
}

// AttachTransferHash records the settled on-chain hash for a donation funded
// over the distributed ledger rail.
func (s *donationService) AttachTransferHash(ctx context.Context, id uuid.UUID, txHash string) (*Donation, error) {
	donation, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if donation.TxHash != nil && *donation.TxHash != txHash {
		return nil, apperrors.NewStateConflictError("donation", id.String(), "settled", "unsettled")
	}
	donation.TxHash = &txHash
	if err := s.repo.Update(ctx, donation); err != nil {
		return nil, err
	}
	return donation, nil
}

// Fail is the administrative override; terminal.
func (s *donationService) Fail(ctx context.Context, id uuid.UUID, actor auth.Actor) (*Donation, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.NewAuthorizationError(actor.Role, auth.RoleAdmin)
	}

	donation, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.stateMachine.CanTransition(donation.Status, StatusFailed) {
		return nil, apperrors.NewStateConflictError("donation", id.String(), donation.Status, "pending or verified")
	}

	donation.Status = StatusFailed
	if err := s.repo.Update(ctx, donation); err != nil {
		return nil, err
	}
	return donation, nil
}
