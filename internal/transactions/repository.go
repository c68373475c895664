package transactions

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, record *LedgerRecord) error
	List(ctx context.Context) ([]LedgerRecord, error)
	ListByCause(ctx context.Context, causeID uuid.UUID) ([]LedgerRecord, error)
	GetByTxHash(ctx context.Context, txHash string) (*LedgerRecord, error)
}

type gormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, record *LedgerRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *gormRepository) List(ctx context.Context) ([]LedgerRecord, error) {
	var list []LedgerRecord
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&list).Error
	return list, err
}

func (r *gormRepository) ListByCause(ctx context.Context, causeID uuid.UUID) ([]LedgerRecord, error) {
	var list []LedgerRecord
	err := r.db.WithContext(ctx).
		Where("cause_id = ?", causeID).
		Order("created_at DESC").
		Find(&list).Error
	return list, err
}

func (r *gormRepository) GetByTxHash(ctx context.Context, txHash string) (*LedgerRecord, error) {
	var record LedgerRecord
	if err := r.db.WithContext(ctx).First(&record, "tx_hash = ?", txHash).Error; err != nil {
		return nil, err
	}
	return &record, nil
}
