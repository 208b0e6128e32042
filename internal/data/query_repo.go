package data

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/target/marketplace-gateway/internal/data/pgxutil"
	apperrors "github.com/target/marketplace-gateway/internal/errors"
)

// QueryRepo runs dynamic read statements built by the query service.
type QueryRepo struct {
	DB *sql.DB
}

// NewQueryRepo creates a new query repository.
func NewQueryRepo(db *sql.DB) *QueryRepo {
	return &QueryRepo{DB: db}
}

// QueryRows executes query inside a read-only transaction and returns each row as a column map.
func (r *QueryRepo) QueryRows(ctx context.Context, query string, args ...any) ([]map[string]any, error) {
	if query == "" {
		return nil, errors.New("query is required")
	}

	var out []map[string]any
	err := pgxutil.InTx(ctx, r.DB, pgxutil.ReadOnlyTx, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		out, err = pgx.CollectRows(rows, pgx.RowToMap)
		return err
	})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	if out == nil {
		out = []map[string]any{}
	}
	return out, nil
}
