package donations

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, donation *Donation) error
	GetByID(ctx context.Context, id uuid.UUID) (*Donation, error)
	ListByCause(ctx context.Context, causeID uuid.UUID) ([]Donation, error)
	Update(ctx context.Context, donation *Donation) error

	// ClaimRelease atomically marks the donation as having a release in
	// flight. Returns false when the donation is not verified, already
	// released, or another release holds the claim.
	ClaimRelease(ctx context.Context, id uuid.UUID) (bool, error)
	ClearReleaseClaim(ctx context.Context, id uuid.UUID) error
	MarkReleased(ctx context.Context, id uuid.UUID, txHash string, completedAt time.Time) error
}

type gormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, donation *Donation) error {
	return r.db.WithContext(ctx).Create(donation).Error
}

func (r *gormRepository) GetByID(ctx context.Context, id uuid.UUID) (*Donation, error) {
	var donation Donation
	if err := r.db.WithContext(ctx).First(&donation, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &donation, nil
}

func (r *gormRepository) ListByCause(ctx context.Context, causeID uuid.UUID) ([]Donation, error) {
	var list []Donation
	err := r.db.WithContext(ctx).
		Where("cause_id = ?", causeID).
		Order("created_at DESC").
		Find(&list).Error
	return list, err
}

func (r *gormRepository) Update(ctx context.Context, donation *Donation) error {
	return r.db.WithContext(ctx).Save(donation).Error
}

func (r *gormRepository) ClaimRelease(ctx context.Context, id uuid.UUID) (bool, error) {
	// single compare-and-swap: the WHERE clause is the precondition check
	res := r.db.WithContext(ctx).Model(&Donation{}).
		Where("id = ? AND status = ? AND funds_released = false AND release_in_flight = false", id, StatusVerified).
		Update("release_in_flight", true)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *gormRepository) ClearReleaseClaim(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&Donation{}).
		Where("id = ?", id).
		Update("release_in_flight", false).Error
}

func (r *gormRepository) MarkReleased(ctx context.Context, id uuid.UUID, txHash string, completedAt time.Time) error {
	return r.db.WithContext(ctx).Model(&Donation{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":            StatusCompleted,
			"funds_released":    true,
			"released_tx_hash":  txHash,
			"completed_at":      completedAt,
			"release_in_flight": false,
		}).Error
}
