package data

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"

	apperrors "github.com/target/marketplace-gateway/internal/errors"
	"github.com/target/marketplace-gateway/internal/ports"
)

// AccessLogRepo appends rows to the access_details audit table.
type AccessLogRepo struct {
	DB    *sql.DB
	newID func() uuid.UUID
}

// NewAccessLogRepo creates a new access log repository.
func NewAccessLogRepo(db *sql.DB) *AccessLogRepo {
	return &AccessLogRepo{DB: db, newID: uuid.New}
}

// Record inserts one audit row.
func (r *AccessLogRepo) Record(ctx context.Context, rec ports.AccessRecord) error {
	if strings.TrimSpace(rec.UserID) == "" {
		return ErrUserIDRequired
	}
	if strings.TrimSpace(rec.Event) == "" {
		return ErrEventRequired
	}

	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO access_details (id, user_id, role, event, session_id)
		VALUES ($1, $2, $3, $4, $5)`,
		r.newID(), rec.UserID, string(rec.Role), rec.Event, rec.SessionID)
	return apperrors.MapDBError(err)
}
