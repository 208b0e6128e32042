package httpx

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
)

const passThroughBody = "next"

// NewUpstream returns the handler allowed requests are forwarded to. An empty upstreamURL
// yields the pass-through handler, which answers 200 "next".
func NewUpstream(upstreamURL string, logger *slog.Logger) (http.Handler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if upstreamURL == "" {
		return http.HandlerFunc(passThrough), nil
	}

	target, err := url.Parse(upstreamURL)
	if err != nil {
		return nil, fmt.Errorf("parse upstream url: %w", err)
	}
	if target.Scheme != "http" && target.Scheme != "https" || target.Host == "" {
		return nil, errors.New("upstream url must be an absolute http(s) URL")
	}

	return &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(target)
			pr.SetXForwarded()
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			logger.ErrorContext(r.Context(), "upstream request failed",
				"path", r.URL.Path, "upstream", target.Host, "error", err)
			WriteError(w, ErrorParams{
				Code:    http.StatusBadGateway,
				ErrCode: "upstream_unavailable",
				Err:     errors.New("upstream unavailable"),
			})
		},
	}, nil
}

func passThrough(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	_, _ = io.WriteString(w, passThroughBody)
}
