package httpx

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/target/marketplace-gateway/internal/domain/queryguard"
	apperrors "github.com/target/marketplace-gateway/internal/errors"
)

// statusForCode maps application error codes to HTTP statuses.
var statusForCode = map[apperrors.ErrorCode]int{
	apperrors.ErrCodeNotFound:     http.StatusNotFound,
	apperrors.ErrCodeConflict:     http.StatusConflict,
	apperrors.ErrCodeValidation:   http.StatusBadRequest,
	apperrors.ErrCodeForeignKey:   http.StatusConflict,
	apperrors.ErrCodeTimeout:      http.StatusGatewayTimeout,
	apperrors.ErrCodeCanceled:     499,
	apperrors.ErrCodeUnauthorized: http.StatusUnauthorized,
	apperrors.ErrCodeForbidden:    http.StatusForbidden,
	apperrors.ErrCodeUnavailable:  http.StatusServiceUnavailable,
}

// writeServiceError renders err as JSON. Restricted-query rejections carry no detail, and
// internal errors never leak their message.
func writeServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	if errors.Is(err, queryguard.ErrRestrictedQuery) {
		writeRejected(w)
		return
	}

	code := apperrors.GetCode(err)
	status, ok := statusForCode[code]
	if !ok {
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal_error"})
		return
	}

	WriteError(w, ErrorParams{Code: status, ErrCode: string(code), Err: err, Field: apperrors.GetField(err)})
}
