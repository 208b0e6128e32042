package verification

// Package verification fetches a buyer's verification state from the marketplace's
// verification-status endpoint, forwarding the caller's cookies.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	jmespath "github.com/jmespath-community/go-jmespath"
	"golang.org/x/net/http/httpguts"

	domainauth "github.com/target/marketplace-gateway/internal/domain/auth"
	"github.com/target/marketplace-gateway/internal/ports"
)

const maxBodyBytes = 64 << 10

// ErrBadResponse is returned when the endpoint answers with an unusable payload.
var ErrBadResponse = errors.New("verification: bad response")

// Options configures a Client.
type Options struct {
	URL        string
	Timeout    time.Duration
	StatusExpr string
	LockedExpr string
	HTTPClient *http.Client // Optional
}

// Client implements ports.VerificationLookup over HTTP.
type Client struct {
	url        string
	timeout    time.Duration
	statusExpr string
	lockedExpr string
	http       *http.Client
}

var _ ports.VerificationLookup = (*Client)(nil)

// NewClient validates the JMESPath expressions and builds a Client.
func NewClient(opts Options) (*Client, error) {
	if opts.URL == "" {
		return nil, errors.New("verification: URL is required")
	}
	if opts.StatusExpr == "" {
		opts.StatusExpr = "verificationStatus"
	}
	if opts.LockedExpr == "" {
		opts.LockedExpr = "accountLocked"
	}
	for _, expr := range []string{opts.StatusExpr, opts.LockedExpr} {
		if _, err := jmespath.Compile(expr); err != nil {
			return nil, fmt.Errorf("verification: invalid expression %q: %w", expr, err)
		}
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 2 * time.Second
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{
			// The endpoint must answer directly; a redirect means the session was not accepted.
			CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
		}
	}
	return &Client{
		url:        opts.URL,
		timeout:    opts.Timeout,
		statusExpr: opts.StatusExpr,
		lockedExpr: opts.LockedExpr,
		http:       hc,
	}, nil
}

// Lookup calls the endpoint with the caller's cookies. Any transport failure, non-2xx
// status, or unrecognised status value is an error; callers treat errors as "not verified".
func (c *Client) Lookup(ctx context.Context, cookies []*http.Cookie) (domainauth.Verification, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return domainauth.Verification{}, fmt.Errorf("verification: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for _, ck := range cookies {
		if ck == nil || !forwardable(ck) {
			continue
		}
		req.AddCookie(&http.Cookie{Name: ck.Name, Value: ck.Value})
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return domainauth.Verification{}, fmt.Errorf("verification: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return domainauth.Verification{}, fmt.Errorf("%w: status %d", ErrBadResponse, resp.StatusCode)
	}

	var body any
	if decodeErr := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&body); decodeErr != nil {
		return domainauth.Verification{}, fmt.Errorf("%w: decode: %w", ErrBadResponse, decodeErr)
	}
	return c.extract(body)
}

func (c *Client) extract(body any) (domainauth.Verification, error) {
	rawStatus, err := jmespath.Search(c.statusExpr, body)
	if err != nil {
		return domainauth.Verification{}, fmt.Errorf("%w: status expression: %w", ErrBadResponse, err)
	}
	s, ok := rawStatus.(string)
	if !ok {
		return domainauth.Verification{}, fmt.Errorf("%w: status is %T", ErrBadResponse, rawStatus)
	}
	status, ok := domainauth.ParseVerificationStatus(s)
	if !ok {
		return domainauth.Verification{}, fmt.Errorf("%w: unknown status %q", ErrBadResponse, s)
	}

	rawLocked, err := jmespath.Search(c.lockedExpr, body)
	if err != nil {
		return domainauth.Verification{}, fmt.Errorf("%w: locked expression: %w", ErrBadResponse, err)
	}
	locked, ok := rawLocked.(bool)
	if !ok {
		return domainauth.Verification{}, fmt.Errorf("%w: accountLocked is %T", ErrBadResponse, rawLocked)
	}

	return domainauth.Verification{Status: status, AccountLocked: locked}, nil
}

// forwardable drops cookies that could not be sent as a valid Cookie header.
func forwardable(ck *http.Cookie) bool {
	if ck.Name == "" || strings.ContainsAny(ck.Name, "=;") {
		return false
	}
	return httpguts.ValidHeaderFieldName(ck.Name) && httpguts.ValidHeaderFieldValue(ck.Value)
}
