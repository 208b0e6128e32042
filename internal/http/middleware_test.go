package httpx

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/target/marketplace-gateway/internal/domain/auth"
	"github.com/target/marketplace-gateway/internal/service"
)

func TestCompression(t *testing.T) {
	payload := strings.Repeat(`{"id":"listing"},`, 200)
	jsonHandler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, payload)
	})

	tests := []struct {
		name           string
		acceptEncoding string
		contentType    string
		expectGzip     bool
	}{
		{name: "client accepts gzip", acceptEncoding: "gzip, deflate", expectGzip: true},
		{name: "client does not accept gzip", acceptEncoding: "deflate"},
		{name: "no accept-encoding header"},
		{name: "gzip explicitly refused", acceptEncoding: "gzip;q=0, br"},
		{name: "non-compressible type", acceptEncoding: "gzip", contentType: "image/png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := http.Handler(jsonHandler)
			if tt.contentType != "" {
				handler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
					w.Header().Set("Content-Type", tt.contentType)
					_, _ = io.WriteString(w, payload)
				})
			}
			req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
			if tt.acceptEncoding != "" {
				req.Header.Set("Accept-Encoding", tt.acceptEncoding)
			}
			rec := httptest.NewRecorder()
			Compression(CompressionConfig{Level: 6})(handler).ServeHTTP(rec, req)

			if !tt.expectGzip {
				assert.Empty(t, rec.Header().Get("Content-Encoding"))
				assert.Equal(t, payload, rec.Body.String())
				return
			}
			assert.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))
			zr, err := gzip.NewReader(bytes.NewReader(rec.Body.Bytes()))
			require.NoError(t, err)
			got, err := io.ReadAll(zr)
			require.NoError(t, err)
			assert.Equal(t, payload, string(got))
		})
	}
}

func TestCompression_SkipsNoContent(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNoContent)
	})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	Compression(CompressionConfig{})(handler).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Header().Get("Content-Encoding"))
}

func TestRecover(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))
	handler := Recover(logger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, logs.String(), `"msg":"panic"`)
}

func TestLogging(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))
	handler := Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/brew", nil))

	assert.Contains(t, logs.String(), `"status":418`)
	assert.Contains(t, logs.String(), `"path":"/brew"`)
}

func TestRequireSession(t *testing.T) {
	svc := &mockAuthService{
		getSessionFunc: func(_ context.Context, id string) (*domainauth.Session, error) {
			if id != "good" {
				return nil, errors.New("unknown")
			}
			return &domainauth.Session{ID: id, UserID: "u-1", ExpiresAt: time.Now().Add(time.Hour)}, nil
		},
	}
	var seen string
	handler := RequireSession(svc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, _ := SessionFromContext(r.Context())
		seen = s.UserID
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: service.SessionCookieName, Value: "bad"})
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: service.SessionCookieName, Value: "good"})
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u-1", seen)
}

func TestStripGatewayHeaders(t *testing.T) {
	h := http.Header{}
	h.Set("X-Gateway-User", "mallory")
	h.Set("x-gateway-role", "seller")
	h.Set("X-Request-Id", "r-1")

	stripGatewayHeaders(h)

	assert.Equal(t, http.Header{"X-Request-Id": {"r-1"}}, h)
}

func TestNewUpstream_PassThrough(t *testing.T) {
	up, err := NewUpstream("", nil)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	up.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/anything", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "next", rec.Body.String())
}

func TestNewUpstream_Proxy(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, r.URL.Path+"|"+r.Header.Get(service.HeaderUser))
	}))
	defer backend.Close()

	up, err := NewUpstream(backend.URL, nil)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/buyer/deals", nil)
	req.Header.Set(service.HeaderUser, "bob")
	rec := httptest.NewRecorder()
	up.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/buyer/deals|bob", rec.Body.String())
}

func TestNewUpstream_Unreachable(t *testing.T) {
	backend := httptest.NewServer(http.NotFoundHandler())
	url := backend.URL
	backend.Close()

	up, err := NewUpstream(url, nil)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	up.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestNewUpstream_InvalidURL(t *testing.T) {
	for _, raw := range []string{"ftp://files.example.com", "not a url", "/relative"} {
		_, err := NewUpstream(raw, nil)
		assert.Error(t, err, raw)
	}
}
