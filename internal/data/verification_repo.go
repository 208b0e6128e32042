package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	domainauth "github.com/target/marketplace-gateway/internal/domain/auth"
	apperrors "github.com/target/marketplace-gateway/internal/errors"
)

// VerificationRepo stores buyer verification state.
type VerificationRepo struct {
	DB *sql.DB
}

// NewVerificationRepo creates a new verification repository.
func NewVerificationRepo(db *sql.DB) *VerificationRepo {
	return &VerificationRepo{DB: db}
}

// Get returns the verification state for userID. Users without a row are pending and unlocked.
func (r *VerificationRepo) Get(ctx context.Context, userID string) (domainauth.Verification, error) {
	if strings.TrimSpace(userID) == "" {
		return domainauth.Verification{}, ErrUserIDRequired
	}

	var (
		status string
		locked bool
	)
	err := r.DB.QueryRowContext(ctx,
		`SELECT status, account_locked FROM buyer_verifications WHERE user_id = $1`, userID,
	).Scan(&status, &locked)
	if errors.Is(err, sql.ErrNoRows) {
		return domainauth.Verification{Status: domainauth.VerificationPending}, nil
	}
	if err != nil {
		return domainauth.Verification{}, apperrors.MapDBError(err)
	}

	st, ok := domainauth.ParseVerificationStatus(status)
	if !ok {
		return domainauth.Verification{}, fmt.Errorf("stored verification status %q is invalid", status)
	}
	return domainauth.Verification{Status: st, AccountLocked: locked}, nil
}

// Upsert writes the verification state for userID.
func (r *VerificationRepo) Upsert(ctx context.Context, userID string, v domainauth.Verification) error {
	if strings.TrimSpace(userID) == "" {
		return ErrUserIDRequired
	}
	if !v.Status.Valid() {
		return apperrors.ValidationField("status", "status must be pending, verified or rejected")
	}

	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO buyer_verifications (user_id, status, account_locked, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (user_id) DO UPDATE
		SET status = EXCLUDED.status, account_locked = EXCLUDED.account_locked, updated_at = now()`,
		userID, string(v.Status), v.AccountLocked)
	return apperrors.MapDBError(err)
}
