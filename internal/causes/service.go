package causes

import (
	"context"

	"github.com/google/uuid"

	"givetrace/donor-portal/donor-portal-backend/internal/auth"
	"givetrace/donor-portal/donor-portal-backend/pkg/apperrors"
)

type CreateCauseRequest struct {
	Name          string    `json:"name" binding:"required"`
	Description   string    `json:"description"`
	WalletAddress string    `json:"wallet_address"`
	OwnerID       uuid.UUID `json:"owner_id"`
}

type Service interface {
	CreateCause(ctx context.Context, req CreateCauseRequest, actor auth.Actor) (*Cause, error)
	GetCause(ctx context.Context, id uuid.UUID) (*Cause, error)
	ListCauses(ctx context.Context) ([]Cause, error)
	SetWallet(ctx context.Context, id uuid.UUID, wallet string, actor auth.Actor) (*Cause, error)
}

type causeService struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &causeService{repo: repo}
}

func (s *causeService) CreateCause(ctx context.Context, req CreateCauseRequest, actor auth.Actor) (*Cause, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.NewAuthorizationError(actor.Role, auth.RoleAdmin)
	}
	if req.Name == "" {
		return nil, apperrors.NewValidationError("name", "name is required")
	}

	owner := req.OwnerID
	if owner == uuid.Nil {
		owner = actor.UserID
	}
	cause := &Cause{
		Name:          req.Name,
		Description:   req.Description,
		WalletAddress: req.WalletAddress,
		OwnerID:       owner,
	}
	if err := s.repo.Create(ctx, cause); err != nil {
		return nil, err
	}
	return cause, nil
}

func (s *causeService) GetCause(ctx context.Context, id uuid.UUID) (*Cause, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *causeService) ListCauses(ctx context.Context) ([]Cause, error) {
	return s.repo.List(ctx)
}

// SetWallet updates the release destination on file. Only the representative
// of the cause or an admin may change it.
func (s *causeService) SetWallet(ctx context.Context, id uuid.UUID, wallet string, actor auth.Actor) (*Cause, error) {
	cause, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.RepresentsCause(cause.ID) {
		return nil, apperrors.NewAuthorizationError(actor.Role, auth.RoleOrgRep)
	}
	if wallet == "" {
		return nil, apperrors.NewValidationError("wallet_address", "wallet address is required")
	}
	cause.WalletAddress = wallet
	if err := s.repo.Update(ctx, cause); err != nil {
		return nil, err
	}
	return cause, nil
}
