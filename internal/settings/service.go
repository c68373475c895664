package settings

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service manages per-user settings. Users only ever see and edit their
// own rows; the calling handler passes the authenticated user's id.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// GetProfile returns the user's profile, or sensible defaults when the
// user never saved one.
func (s *Service) GetProfile(ctx context.Context, userID uuid.UUID) (*UserProfile, error) {
	profile, err := s.repo.GetProfile(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &UserProfile{UserID: userID, Language: "en", Timezone: "UTC"}, nil
	}
	if err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, req UpdateProfileRequest) (*UserProfile, error) {
	profile := &UserProfile{
		UserID:      userID,
		DisplayName: req.DisplayName,
		Language:    req.Language,
		Timezone:    req.Timezone,
	}
	if err := s.repo.SaveProfile(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// GetPreferences returns the user's notification preferences; email is on
// by default.
func (s *Service) GetPreferences(ctx context.Context, userID uuid.UUID) (*NotificationPreferences, error) {
	prefs, err := s.repo.GetPreferences(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &NotificationPreferences{UserID: userID, EmailEnabled: true}, nil
	}
	if err != nil {
		return nil, err
	}
	return prefs, nil
}

func (s *Service) UpdatePreferences(ctx context.Context, userID uuid.UUID, req UpdatePreferencesRequest) (*NotificationPreferences, error) {
	prefs := &NotificationPreferences{
		UserID:       userID,
		EmailEnabled: *req.EmailEnabled,
	}
	if err := s.repo.SavePreferences(ctx, prefs); err != nil {
		return nil, err
	}
	return prefs, nil
}

// EmailEnabled reports whether the user accepts email notifications.
// Lookup failures fall back to enabled so delivery never silently stops
// on a read error.
func (s *Service) EmailEnabled(ctx context.Context, userID uuid.UUID) bool {
	prefs, err := s.GetPreferences(ctx, userID)
	if err != nil {
		return true
	}
	return prefs.EmailEnabled
}
