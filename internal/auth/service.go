package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"givetrace/donor-portal/donor-portal-backend/pkg/apperrors"
)

// Service issues and validates access tokens.
type Service struct {
	db        *gorm.DB
	jwtSecret []byte
	tokenTTL  time.Duration
}

// NewService creates the auth service.
func NewService(db *gorm.DB, jwtSecret string, tokenTTL time.Duration) *Service {
	if tokenTTL == 0 {
		tokenTTL = 24 * time.Hour
	}
	return &Service{db: db, jwtSecret: []byte(jwtSecret), tokenTTL: tokenTTL}
}

type claims struct {
	Role    string `json:"role"`
	CauseID string `json:"cause_id,omitempty"`
	jwt.RegisteredClaims
}

// RegisterRequest creates a new account.
type RegisterRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	DisplayName string `json:"display_name"`
}

// Register creates a donor account. Org-rep and admin roles are assigned
// administratively, never self-service.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &User{
		Email:        req.Email,
		PasswordHash: string(hash),
		DisplayName:  req.DisplayName,
		Role:         RoleDonor,
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies credentials and returns a signed token.
func (s *Service) Login(ctx context.Context, email, password string) (string, *User, error) {
	var user User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil, apperrors.NewAuthorizationError("anonymous", "valid credentials")
	}
	if err != nil {
		return "", nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, apperrors.NewAuthorizationError("anonymous", "valid credentials")
	}

	token, err := s.issueToken(&user)
	if err != nil {
		return "", nil, err
	}
	return token, &user, nil
}

func (s *Service) issueToken(user *User) (string, error) {
	c := claims{
		Role: user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.tokenTTL)),
		},
	}
	if user.CauseID != nil {
		c.CauseID = user.CauseID.String()
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.jwtSecret)
}

// Refresh issues a fresh token for an authenticated actor, re-reading the
// user row so role or cause changes take effect without re-login.
func (s *Service) Refresh(ctx context.Context, actor Actor) (string, error) {
	var user User
	err := s.db.WithContext(ctx).First(&user, "id = ?", actor.UserID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", apperrors.NewAuthorizationError(actor.Role, "valid account")
	}
	if err != nil {
		return "", err
	}
	return s.issueToken(&user)
}

// ParseToken validates a token and resolves the Actor it identifies.
func (s *Service) ParseToken(tokenString string) (*Actor, error) {
	var c claims
	token, err := jwt.ParseWithClaims(tokenString, &c, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, apperrors.NewAuthorizationError("anonymous", "valid token")
	}

	userID, err := uuid.Parse(c.Subject)
	if err != nil {
		return nil, apperrors.NewAuthorizationError("anonymous", "valid token")
	}

	actor := &Actor{UserID: userID, Role: c.Role}
	if c.CauseID != "" {
		if causeID, err := uuid.Parse(c.CauseID); err == nil {
			actor.CauseID = &causeID
		}
	}
	return actor, nil
}
