package causes

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, cause *Cause) error
	GetByID(ctx context.Context, id uuid.UUID) (*Cause, error)
	List(ctx context.Context) ([]Cause, error)
	Update(ctx context.Context, cause *Cause) error
}

type gormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, cause *Cause) error {
	return r.db.WithContext(ctx).Create(cause).Error
}

func (r *gormRepository) GetByID(ctx context.Context, id uuid.UUID) (*Cause, error) {
	var cause Cause
	if err := r.db.WithContext(ctx).First(&cause, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &cause, nil
}

func (r *gormRepository) List(ctx context.Context) ([]Cause, error) {
	var list []Cause
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&list).Error
	return list, err
}

func (r *gormRepository) Update(ctx context.Context, cause *Cause) error {
	return r.db.WithContext(ctx).Save(cause).Error
}
