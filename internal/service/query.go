package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strings"
	"time"
	"unicode"

	"github.com/target/marketplace-gateway/internal/data/database"
	"github.com/target/marketplace-gateway/internal/domain/queryguard"
	apperrors "github.com/target/marketplace-gateway/internal/errors"
	"github.com/target/marketplace-gateway/internal/observability/metrics"
	"github.com/target/marketplace-gateway/internal/ports"
)

const (
	defaultQueryMaxLimit = 100
	defaultQueryTimeout  = 5 * time.Second
)

// queryKeys are the request body keys the query endpoint understands.
var queryKeys = []string{"operation", "where", "select", "orderBy", "limit", "offset"}

// QueryServiceOptions groups dependencies for QueryService.
type QueryServiceOptions struct {
	Guard    *queryguard.Guard
	Rows     ports.RowQuerier
	Models   []string
	MaxLimit int
	Timeout  time.Duration
	Metrics  metrics.Recorder // Optional
	Logger   *slog.Logger     // Optional
}

// QueryService runs caller-supplied read queries after the restricted-field guard has cleared them.
type QueryService struct {
	guard    *queryguard.Guard
	rows     ports.RowQuerier
	models   queryguard.NameSet
	maxLimit int
	timeout  time.Duration
	metrics  metrics.Recorder
	logger   *slog.Logger
}

// NewQueryService constructs a new QueryService.
func NewQueryService(opts QueryServiceOptions) *QueryService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	maxLimit := opts.MaxLimit
	if maxLimit <= 0 {
		maxLimit = defaultQueryMaxLimit
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultQueryTimeout
	}
	var rec metrics.Recorder = (*metrics.GatewayMetrics)(nil)
	if opts.Metrics != nil {
		rec = opts.Metrics
	}
	return &QueryService{
		guard:    opts.Guard,
		rows:     opts.Rows,
		models:   queryguard.NewNameSet(opts.Models...),
		maxLimit: maxLimit,
		timeout:  timeout,
		metrics:  rec,
		logger:   logger.With("component", "query_service"),
	}
}

// QueryResult is the answer to an allowed query.
type QueryResult struct {
	Model string           `json:"model"`
	Rows  []map[string]any `json:"rows"`
}

// Run checks body against the guard and, when allowed, executes it against model.
//
// The body mirrors the JSON accepted by POST /api/query/{model}:
//
//	{"operation": "findMany", "where": {"status": "active", "price_cents": {"gte": 100}},
//	 "select": {"id": true, "title": true}, "orderBy": {"created_at": "desc"}, "limit": 20}
//
// The whole body is inspected, so restricted names are rejected wherever they appear.
func (s *QueryService) Run(ctx context.Context, model string, body map[string]any) (*QueryResult, error) {
	model = strings.TrimSpace(model)
	op, _ := body["operation"].(string)

	if err := s.guard.Check(model, op, queryguard.FromAny(body)); err != nil {
		s.metrics.QueryGuard(metrics.ResultBlocked)
		s.logger.WarnContext(ctx, "restricted query rejected", "model", model, "operation", op)
		return nil, err
	}
	s.metrics.QueryGuard(metrics.ResultAllowed)

	if model == "" || !s.models.Has(model) {
		return nil, apperrors.NotFoundf("unknown model %q", model)
	}

	opts, err := s.buildOptions(strings.ToLower(model), op, body)
	if err != nil {
		return nil, err
	}
	if s.rows == nil {
		return nil, errors.New("query executor not configured")
	}

	query, args := database.BuildListQuery(opts)
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := s.rows.QueryRows(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", model, err)
	}
	s.logger.DebugContext(ctx, "query executed", "model", model, "operation", op, "rows", len(rows))
	return &QueryResult{Model: model, Rows: rows}, nil
}

func (s *QueryService) buildOptions(table, op string, body map[string]any) (*database.ListQueryOptions, error) {
	for key := range body {
		if !slices.Contains(queryKeys, key) {
			return nil, apperrors.ValidationField(key, fmt.Sprintf("unsupported query key %q", key))
		}
	}

	limit, err := s.limitFor(op, body["limit"])
	if err != nil {
		return nil, err
	}
	offset, err := intArg("offset", body["offset"], 0)
	if err != nil {
		return nil, err
	}

	conds, err := whereConditions(body["where"])
	if err != nil {
		return nil, err
	}
	cols, err := selectColumns(body["select"])
	if err != nil {
		return nil, err
	}

	opts := []database.ListQueryOption{
		database.WithConditions(conds...),
		database.WithColumns(cols...),
		database.WithLimit(limit),
		database.WithOffset(offset),
	}
	if raw, ok := body["orderBy"]; ok && raw != nil {
		col, dir, err := orderBy(raw)
		if err != nil {
			return nil, err
		}
		opts = append(opts, database.WithOrderBy(col, dir))
	}
	return database.NewListQueryOptions(table, opts...), nil
}

// limitFor resolves the row limit. Single-row operations always read one row.
func (s *QueryService) limitFor(op string, raw any) (int, error) {
	if !queryguard.IsReadOperation(op, []string{"find"}) {
		return 0, apperrors.ValidationField("operation", fmt.Sprintf("operation %q is not supported", op))
	}
	lower := strings.ToLower(op)
	if strings.Contains(lower, "first") || strings.Contains(lower, "unique") {
		return 1, nil
	}
	limit, err := intArg("limit", raw, s.maxLimit)
	if err != nil {
		return 0, err
	}
	if limit == 0 || limit > s.maxLimit {
		limit = s.maxLimit
	}
	return limit, nil
}

func intArg(field string, raw any, def int) (int, error) {
	switch v := raw.(type) {
	case nil:
		return def, nil
	case float64:
		if v < 0 || v != math.Trunc(v) || v > math.MaxInt32 {
			return 0, apperrors.ValidationField(field, field+" must be a non-negative integer")
		}
		return int(v), nil
	case int:
		if v < 0 {
			return 0, apperrors.ValidationField(field, field+" must be a non-negative integer")
		}
		return v, nil
	default:
		return 0, apperrors.ValidationField(field, field+" must be a non-negative integer")
	}
}

// whereConditions flattens {"field": value} to equality and {"field": {"op": value}} to the
// named comparison.
func whereConditions(raw any) ([]database.Condition, error) {
	if raw == nil {
		return nil, nil
	}
	where, ok := raw.(map[string]any)
	if !ok {
		return nil, apperrors.ValidationField("where", "where must be an object")
	}

	fields := make([]string, 0, len(where))
	for f := range where {
		fields = append(fields, f)
	}
	slices.Sort(fields)

	conds := make([]database.Condition, 0, len(fields))
	for _, field := range fields {
		if err := checkIdentifier("where", field); err != nil {
			return nil, err
		}
		switch v := where[field].(type) {
		case nil:
			return nil, apperrors.ValidationField(field, "null comparisons are not supported")
		case map[string]any:
			ops := make([]string, 0, len(v))
			for name := range v {
				ops = append(ops, name)
			}
			slices.Sort(ops)
			for _, name := range ops {
				ct, ok := database.OperatorFor(name)
				if !ok {
					return nil, apperrors.ValidationField(field, fmt.Sprintf("unsupported operator %q", name))
				}
				val := v[name]
				if err := checkOperand(field, ct, val); err != nil {
					return nil, err
				}
				conds = append(conds, database.WhereCond(field, ct, val))
			}
		case []any:
			return nil, apperrors.ValidationField(field, "use {\"in\": [...]} for list comparisons")
		default:
			conds = append(conds, database.WhereCond(field, database.Equal, v))
		}
	}
	return conds, nil
}

// checkIdentifier rejects column names that quoting would silently rewrite.
func checkIdentifier(field, name string) error {
	if strings.TrimSpace(name) == "" || strings.IndexFunc(name, unicode.IsControl) >= 0 {
		return apperrors.ValidationField(field, "column names must be non-empty and free of control characters")
	}
	return nil
}

func checkOperand(field string, ct database.ConditionType, val any) error {
	switch val.(type) {
	case nil:
		return apperrors.ValidationField(field, "null comparisons are not supported")
	case map[string]any:
		return apperrors.ValidationField(field, "nested filters are not supported")
	case []any:
		if ct != database.In {
			return apperrors.ValidationField(field, "only the in operator accepts a list")
		}
	default:
		if ct == database.In {
			return apperrors.ValidationField(field, "the in operator requires a list")
		}
	}
	return nil
}

// selectColumns accepts {"col": true}; false entries are skipped.
func selectColumns(raw any) ([]string, error) {
	if raw == nil {
		return nil, nil
	}
	sel, ok := raw.(map[string]any)
	if !ok {
		return nil, apperrors.ValidationField("select", "select must be an object of column: true")
	}
	cols := make([]string, 0, len(sel))
	for col, v := range sel {
		if err := checkIdentifier("select", col); err != nil {
			return nil, err
		}
		include, ok := v.(bool)
		if !ok {
			return nil, apperrors.ValidationField("select", "select values must be booleans")
		}
		if include {
			cols = append(cols, col)
		}
	}
	slices.Sort(cols)
	return cols, nil
}

func orderBy(raw any) (string, string, error) {
	m, ok := raw.(map[string]any)
	if !ok || len(m) != 1 {
		return "", "", apperrors.ValidationField("orderBy", "orderBy must name exactly one column")
	}
	for col, v := range m {
		if err := checkIdentifier("orderBy", col); err != nil {
			return "", "", err
		}
		dir, _ := v.(string)
		switch strings.ToLower(dir) {
		case "asc", "desc":
			return col, dir, nil
		}
	}
	return "", "", apperrors.ValidationField("orderBy", "orderBy direction must be asc or desc")
}
