package settings

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*UserProfile, error)
	SaveProfile(ctx context.Context, profile *UserProfile) error

	GetPreferences(ctx context.Context, userID uuid.UUID) (*NotificationPreferences, error)
	SavePreferences(ctx context.Context, prefs *NotificationPreferences) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a settings repository backed by Postgres.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) GetProfile(ctx context.Context, userID uuid.UUID) (*UserProfile, error) {
	var profile UserProfile
	err := r.db.WithContext(ctx).First(&profile, "user_id = ?", userID).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *gormRepository) SaveProfile(ctx context.Context, profile *UserProfile) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		UpdateAll: true,
	}).Create(profile).Error
}

func (r *gormRepository) GetPreferences(ctx context.Context, userID uuid.UUID) (*NotificationPreferences, error) {
	var prefs NotificationPreferences
	err := r.db.WithContext(ctx).First(&prefs, "user_id = ?", userID).Error
	if err != nil {
		return nil, err
	}
	return &prefs, nil
}

func (r *gormRepository) SavePreferences(ctx context.Context, prefs *NotificationPreferences) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		UpdateAll: true,
	}).Create(prefs).Error
}
