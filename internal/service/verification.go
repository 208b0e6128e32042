package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	domainauth "github.com/target/marketplace-gateway/internal/domain/auth"
	apperrors "github.com/target/marketplace-gateway/internal/errors"
	"github.com/target/marketplace-gateway/internal/ports"
)

// VerificationServiceOptions groups dependencies for VerificationService.
type VerificationServiceOptions struct {
	Repo   ports.VerificationRepository
	Logger *slog.Logger // Optional
}

// VerificationService serves buyer verification state from the server-side store.
type VerificationService struct {
	repo   ports.VerificationRepository
	logger *slog.Logger
}

// NewVerificationService constructs a new VerificationService.
func NewVerificationService(opts VerificationServiceOptions) *VerificationService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &VerificationService{repo: opts.Repo, logger: logger.With("component", "verification_service")}
}

// Status returns the verification state for userID.
func (s *VerificationService) Status(ctx context.Context, userID string) (domainauth.Verification, error) {
	if strings.TrimSpace(userID) == "" {
		return domainauth.Verification{}, apperrors.ValidationField("user_id", "user id is required")
	}
	if s.repo == nil {
		return domainauth.Verification{}, errors.New("verification repository not configured")
	}
	v, err := s.repo.Get(ctx, userID)
	if err != nil {
		return domainauth.Verification{}, err
	}
	return v, nil
}

// Set records a new verification state for userID. status is parsed case-insensitively.
func (s *VerificationService) Set(ctx context.Context, userID, status string, locked bool) (domainauth.Verification, error) {
	if strings.TrimSpace(userID) == "" {
		return domainauth.Verification{}, apperrors.ValidationField("user_id", "user id is required")
	}
	st, ok := domainauth.ParseVerificationStatus(status)
	if !ok {
		return domainauth.Verification{}, apperrors.ValidationField("status", "status must be pending, verified or rejected")
	}
	if s.repo == nil {
		return domainauth.Verification{}, errors.New("verification repository not configured")
	}

	v := domainauth.Verification{Status: st, AccountLocked: locked}
	if err := s.repo.Upsert(ctx, userID, v); err != nil {
		return domainauth.Verification{}, err
	}
	s.logger.InfoContext(ctx, "verification updated",
		"user_id", userID, "status", string(st), "account_locked", locked)
	return v, nil
}
