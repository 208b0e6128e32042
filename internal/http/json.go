package httpx

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
)

// WriteJSON encodes v before touching the response, so an encoding failure still yields a clean 500.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = buf.WriteTo(w)
}

// ErrorParams groups parameters for WriteError.
type ErrorParams struct {
	Code    int
	ErrCode string
	Err     error
	// Field is echoed back for validation failures.
	Field string
}

// WriteError writes {"error": ErrCode, "message": Err, "field": Field}.
func WriteError(w http.ResponseWriter, p ErrorParams) {
	body := map[string]string{"error": p.ErrCode}
	if p.Err != nil {
		body["message"] = p.Err.Error()
	}
	if p.Field != "" {
		body["field"] = p.Field
	}
	WriteJSON(w, p.Code, body)
}

// writeRejected answers a restricted query. The body names nothing about what matched.
func writeRejected(w http.ResponseWriter) {
	WriteJSON(w, http.StatusForbidden, map[string]string{"error": "request rejected"})
}

func writeUnauthenticated(w http.ResponseWriter) {
	WriteError(w, ErrorParams{
		Code:    http.StatusUnauthorized,
		ErrCode: "authentication_required",
		Err:     errors.New("authentication required"),
	})
}
