package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/target/marketplace-gateway/internal/domain/queryguard"
	"github.com/target/marketplace-gateway/internal/service"
)

const maxQueryBodyBytes = 1 << 20

// QueryRunner is the subset of service.QueryService the handler needs.
type QueryRunner interface {
	Run(ctx context.Context, model string, body map[string]any) (*service.QueryResult, error)
}

// QueryHandlers serves the guarded dynamic query endpoint.
type QueryHandlers struct {
	Svc    QueryRunner
	Logger *slog.Logger
}

// Run handles POST /api/query/{model}.
func (h *QueryHandlers) Run(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxQueryBodyBytes)

	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_json", Err: errors.New("request body must be a JSON object")})
		return
	}
	if body == nil {
		body = map[string]any{}
	}

	model := r.PathValue("model")
	res, err := h.Svc.Run(r.Context(), model, body)
	if err != nil {
		if errors.Is(err, queryguard.ErrRestrictedQuery) {
			loggerOrDefault(h.Logger).WarnContext(r.Context(), "restricted query rejected",
				"model", model, "user", PrincipalFromContext(r.Context()).Username)
		}
		writeServiceError(w, r, loggerOrDefault(h.Logger), err)
		return
	}
	WriteJSON(w, http.StatusOK, res)
}
