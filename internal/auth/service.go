// Package auth implements registration, login, and email verification on top
// of the store. Passwords are bcrypt-hashed; access tokens are HS256 JWTs.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/stavrogyn/illumate-api/internal/mail"
	"github.com/stavrogyn/illumate-api/internal/store"
	"github.com/stavrogyn/illumate-api/pkg/models"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrAlreadyVerified = errors.New("email already verified")

const verificationTokenBytes = 32

// Service wires the store and mailer into the auth operations.
type Service struct {
	store  store.Store
	mailer mail.Mailer

	secretKey string
	tokenTTL  time.Duration
}

// NewService creates an auth Service.
func NewService(s store.Store, m mail.Mailer, secretKey string, tokenTTL time.Duration) *Service {
	return &Service{store: s, mailer: m, secretKey: secretKey, tokenTTL: tokenTTL}
}

// RegisterParams holds validated input for Register.
type RegisterParams struct {
	Email      string
	Password   string
	TenantName string
	Role       string
	Locale     string
}

// Register creates a tenant and its first user atomically, then dispatches a
// verification email. Email dispatch is best-effort: a failed send is logged
// and the registration still succeeds, since the token can be re-sent.
func (s *Service) Register(ctx context.Context, params RegisterParams) (*models.User, error) {
	hash, err := HashPassword(params.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	token, err := generateVerificationToken()
	if err != nil {
		return nil, fmt.Errorf("generate verification token: %w", err)
	}

	now := time.Now().UTC()
	tenant := &models.Tenant{
		ID:        uuid.New(),
		Name:      params.TenantName,
		Plan:      models.PlanFree,
		CreatedAt: now,
		UpdatedAt: now,
	}
	user := &models.User{
		ID:                uuid.New(),
		TenantID:          tenant.ID,
		Email:             params.Email,
		PasswordHash:      hash,
		Role:              params.Role,
		Locale:            params.Locale,
		IsVerified:        false,
		VerificationToken: &token,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.store.CreateTenantWithOwner(ctx, tenant, user); err != nil {
		return nil, err
	}

	if err := s.mailer.SendVerification(ctx, user.Email, token, tenant.Name); err != nil {
		slog.Error("verification email failed", "email", user.Email, "error", err)
	}

	return user, nil
}

// Login checks credentials and issues an access token.
func (s *Service) Login(ctx context.Context, email, password string) (*models.User, string, time.Time, error) {
	user, err := s.store.GetUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		// Burn a bcrypt comparison so missing and present users take the same time.
		bcrypt.CompareHashAndPassword([]byte("$2a$10$000000000000000000000uGyjlXVE1B/pP8J0tAErff1c9H6aG4xW"), []byte(password))
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", time.Time{}, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}

	token, expiresAt, err := IssueToken(user, s.secretKey, s.tokenTTL)
	if err != nil {
		return nil, "", time.Time{}, fmt.Errorf("issue token: %w", err)
	}
	return user, token, expiresAt, nil
}

// VerifyEmail marks the user holding the token as verified and clears it.
func (s *Service) VerifyEmail(ctx context.Context, token string) (*models.User, error) {
	user, err := s.store.GetUserByVerificationToken(ctx, token)
	if err != nil {
		return nil, err
	}

	if err := s.store.MarkUserVerified(ctx, user.ID); err != nil {
		return nil, err
	}

	user.IsVerified = true
	user.VerificationToken = nil
	return user, nil
}

// ResendVerification rotates the verification token for an unverified user
// and re-sends the email.
func (s *Service) ResendVerification(ctx context.Context, email string) error {
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user.IsVerified {
		return ErrAlreadyVerified
	}

	token, err := generateVerificationToken()
	if err != nil {
		return fmt.Errorf("generate verification token: %w", err)
	}
	if err := s.store.SetVerificationToken(ctx, user.ID, token); err != nil {
		return err
	}

	tenant, err := s.store.GetTenant(ctx, user.TenantID)
	if err != nil {
		return err
	}
	return s.mailer.SendVerification(ctx, user.Email, token, tenant.Name)
}

// ValidateAccessToken verifies a token against the service secret.
func (s *Service) ValidateAccessToken(token string) (*Claims, error) {
	return ValidateToken(token, s.secretKey)
}

// HashPassword bcrypt-hashes a password with the default cost.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether password matches the stored hash.
func VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func generateVerificationToken() (string, error) {
	buf := make([]byte, verificationTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
