package tasks

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

// FundingRecorder mirrors a task funding transaction into the authoritative
// transaction record keeper so the reconciliation engine sees it.
type FundingRecorder interface {
	RecordTaskFunding(ctx context.Context, task *Task, funderRef string, amount decimal.Decimal, txHash *string) error
}

type CreateTaskRequest struct {
	CauseID      uuid.UUID       `json:"cause_id" binding:"required"`
	Title        string          `json:"title" binding:"required"`
	Description  string          `json:"description"`
	TargetAmount decimal.Decimal `json:"target_amount" binding:"required"`
	Currency     string          `json:"currency"`
}

type ApplyFundingRequest struct {
	Amount    decimal.Decimal `json:"amount" binding:"required"`
	FunderRef string          `json:"funder_ref"`
	TxHash    *string         `json:"tx_hash"`
}

type SubmitEvidenceRequest struct {
	EvidenceRefs []EvidenceRef `json:"evidence_refs"`
	Notes        string        `json:"notes"`
}

type Service interface {
	CreateTask(ctx context.Context, req CreateTaskRequest, actor auth.Actor) (*Task, error)
	GetTask(ctx context.Context, id uuid.UUID) (*Task, error)
	ListByCause(ctx context.Context, causeID uuid.UUID) ([]Task, error)
	ApplyFunding(ctx context.Context, id uuid.UUID, req ApplyFundingRequest) (*Task, error)
	SubmitEvidence(ctx context.Context, id uuid.UUID, req SubmitEvidenceRequest, actor auth.Actor) (*Task, error)
	Fail(ctx context.Context, id uuid.UUID, actor auth.Actor) (*Task, error)
}

type taskService struct {
	repo         Repository
	recorder     FundingRecorder
	stateMachine *workflows.StateMachine
	feePercent   decimal.Decimal
	minAmount    decimal.Decimal
}

func NewService(repo Repository, recorder FundingRecorder, feePercent, minAmount decimal.Decimal) Service {
	return &taskService{
		repo:         repo,
		recorder:     recorder,
		stateMachine: workflows.NewTaskStateMachine(),
		feePercent:   feePercent,
		minAmount:    minAmount,
	}
}

func (s *taskService) CreateTask(ctx context.Context, req CreateTaskRequest, actor auth.Actor) (*Task, error) {
	if !actor.RepresentsCause(req.CauseID) {
		return nil, apperrors.NewAuthorizationError(actor.Role, auth.RoleOrgRep)
	}
	if req.TargetAmount.LessThanOrEqual(decimal.Zero) {
		return nil, apperrors.NewValidationError("target_amount", "target amount must be positive")
	}

	currency := req.Currency
	if currency == "" {
		currency = "XLM"
	}
	task := &Task{
		CauseID:        req.CauseID,
		Title:          req.Title,
		Description:    req.Description,
		TargetAmount:   req.TargetAmount,
		AmountReceived: decimal.Zero,
		Currency:       currency,
		Status:         StatusPending,
	}
	if err := s.repo.Create(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *taskService) GetTask(ctx context.Context, id uuid.UUID) (*Task, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *taskService) ListByCause(ctx context.Context, causeID uuid.UUID) ([]Task, error) {
	return s.repo.ListByCause(ctx, causeID)
}

// ApplyFunding records a funding transaction against the task. The received
// amount only grows; the first funding moves the task from pending to
// in_progress.
func (s *taskService) ApplyFunding(ctx context.Context, id uuid.UUID, req ApplyFundingRequest) (*Task, error) {
	if _, err := fees.QuoteFunding(req.Amount, s.feePercent, s.minAmount); err != nil {
		return nil, err
	}

	task, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task.Status != StatusPending && task.Status != StatusInProgress {
		return nil, apperrors.NewStateConflictError("task", id.String(), task.Status, "pending or in_progress")
	}

	task.AmountReceived = task.AmountReceived.Add(req.Amount)
	if task.Status == StatusPending {
		task.Status = StatusInProgress
	}
	if err := s.repo.Update(ctx, task); err != nil {
		return nil, err
	}
	if err := s.recorder.RecordTaskFunding(ctx, task, req.FunderRef, req.Amount, req.TxHash); err != nil {
		return nil, err
	}
	return task, nil
}

// SubmitEvidence attaches proof artifacts and attempts to advance the task
// to verified. Attached evidence is kept even when the completeness gate
// rejects the verification, so a later call can supply only what is
// missing. The gate requires at least five picture proofs and one document
// proof; a rejection names the unmet requirement.
func (s *taskService) SubmitEvidence(ctx context.Context, id uuid.UUID, req SubmitEvidenceRequest, actor auth.Actor) (*Task, error) {
	task, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !actor.RepresentsCause(task.CauseID) {
		return nil, apperrors.NewAuthorizationError(actor.Role, auth.RoleOrgRep)
	}
	if !s.stateMachine.CanTransition(task.Status, StatusVerified) {
		return nil, apperrors.NewStateConflictError("task", id.String(), task.Status, StatusInProgress)
	}

	for _, ref := range req.EvidenceRefs {
		if ref.Kind != EvidenceKindPicture && ref.Kind != EvidenceKindDocument {
			return nil, apperrors.NewValidationError("evidence_kind", "unknown evidence kind %q", ref.Kind)
		}
	}

	if len(req.EvidenceRefs) > 0 {
		if err := task.AppendEvidence(req.EvidenceRefs); err != nil {
			return nil, err
		}
	}
	if req.Notes != "" {
		task.VerificationNotes = req.Notes
	}

	if task.PictureProofCount < PictureProofTarget {
		// persist what was attached before rejecting
		if err := s.repo.Update(ctx, task); err != nil {
			return nil, err
		}
		return nil, apperrors.NewValidationError("pictures",
			"verification requires %d picture proofs, have %d", PictureProofTarget, task.PictureProofCount)
	}
	if !task.HasDocumentProof {
		if err := s.repo.Update(ctx, task); err != nil {
			return nil, err
		}
		return nil, apperrors.NewValidationError("document",
			"verification requires a document proof")
	}

	now := time.Now()
	task.Status = StatusVerified
	task.VerifiedAt = &now
	if err := s.repo.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// Fail is the administrative override; terminal.
func (s *taskService) Fail(ctx context.Context, id uuid.UUID, actor auth.Actor) (*Task, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.NewAuthorizationError(actor.Role, auth.RoleAdmin)
	}

	task, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.stateMachine.CanTransition(task.Status, StatusFailed) {
		return nil, apperrors.NewStateConflictError("task", id.String(), task.Status, "any non-terminal state")
	}

	task.Status = StatusFailed
	if err := s.repo.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}
