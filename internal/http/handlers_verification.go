package httpx

import (
	"context"
	"log/slog"
	"net/http"

	domainauth "github.com/target/marketplace-gateway/internal/domain/auth"
)

// VerificationStatusService is the subset of service.VerificationService the handler needs.
type VerificationStatusService interface {
	Status(ctx context.Context, userID string) (domainauth.Verification, error)
}

// VerificationHandlers serves the caller's own verification state.
type VerificationHandlers struct {
	Svc    VerificationStatusService
	Logger *slog.Logger
}

// Status handles GET /api/auth/verification-status. It must run behind RequireSession.
func (h *VerificationHandlers) Status(w http.ResponseWriter, r *http.Request) {
	session, ok := SessionFromContext(r.Context())
	if !ok {
		writeUnauthenticated(w)
		return
	}

	v, err := h.Svc.Status(r.Context(), session.UserID)
	if err != nil {
		writeServiceError(w, r, loggerOrDefault(h.Logger), err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	WriteJSON(w, http.StatusOK, v)
}

func loggerOrDefault(l *slog.Logger) *slog.Logger {
	if l != nil {
		return l
	}
	return slog.Default()
}
