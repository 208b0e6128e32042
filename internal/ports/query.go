package ports

import "context"

// RowQuerier runs a parameterized read statement and returns rows keyed by column name.
type RowQuerier interface {
	QueryRows(ctx context.Context, query string, args ...any) ([]map[string]any, error)
}
