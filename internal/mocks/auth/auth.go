package auth

// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sync"
	"time"

	domainauth "github.com/target/marketplace-gateway/internal/domain/auth"
	"github.com/target/marketplace-gateway/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.AuthProvider           = (*MockAuthProvider)(nil)
	_ ports.SessionStore           = (*MemorySessionStore)(nil)
	_ ports.SessionProvider        = (*MemorySessionStore)(nil)
	_ ports.AccessRecorder         = (*MemoryAccessRecorder)(nil)
	_ ports.VerificationRepository = (*MemoryVerificationRepo)(nil)
)

// MockAuthProvider simulates an IdP for tests with deterministic state/nonce handling.
type MockAuthProvider struct {
	BeginFunc    func(ctx context.Context, in ports.BeginInput) (authURL, state, nonce string, err error)
	ExchangeFunc func(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error)

	AuthURL     string
	StatePrefix string
	NoncePrefix string
	DefaultUser domainauth.Identity

	mu        sync.Mutex
	callCount int
}

// NewMockAuthProvider creates a MockAuthProvider that logs in a buyer.
func NewMockAuthProvider() *MockAuthProvider {
	return &MockAuthProvider{
		AuthURL:     "https://mock-idp/auth",
		StatePrefix: "state",
		NoncePrefix: "nonce",
		DefaultUser: defaultIdentity(),
	}
}

func defaultIdentity() domainauth.Identity {
	return domainauth.Identity{
		UserID:     "mock-user-1",
		Username:   "mock.buyer",
		FirstName:  "Mock",
		LastName:   "Buyer",
		Email:      "mock.buyer@example.com",
		Groups:     []string{"buyers"},
		Attributes: map[string]string{"custom:role": "buyer"},
	}
}

func (m *MockAuthProvider) Begin(ctx context.Context, in ports.BeginInput) (string, string, string, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx, in)
	}

	m.mu.Lock()
	m.callCount++
	n := m.callCount
	m.mu.Unlock()

	authURL := m.AuthURL
	if authURL == "" {
		authURL = "https://mock-idp/auth"
	}
	statePrefix := m.StatePrefix
	if statePrefix == "" {
		statePrefix = "state"
	}
	noncePrefix := m.NoncePrefix
	if noncePrefix == "" {
		noncePrefix = "nonce"
	}

	return authURL, fmt.Sprintf("%s-%d", statePrefix, n), fmt.Sprintf("%s-%d", noncePrefix, n), nil
}

func (m *MockAuthProvider) Exchange(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error) {
	if m.ExchangeFunc != nil {
		return m.ExchangeFunc(ctx, in)
	}

	user := m.DefaultUser
	if user.UserID == "" {
		user = defaultIdentity()
	}
	user.Attributes = maps.Clone(user.Attributes)
	user.ExpiresAt = time.Now().Add(time.Hour)
	return user, nil
}

// MemorySessionStore is an in-memory session store for unit tests.
// It also serves as a SessionProvider; Err, when set, is returned from CurrentSession.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]domainauth.Session
	Err      error
}

// NewMemorySessionStore creates a new in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]domainauth.Session),
	}
}

func (m *MemorySessionStore) Save(_ context.Context, sess domainauth.Session) error {
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sess.ID] = sess
	return nil
}

func (m *MemorySessionStore) Get(_ context.Context, id string) (domainauth.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[id]
	if id == "" || !ok {
		return domainauth.Session{}, ErrNotFound
	}
	return sess, nil
}

func (m *MemorySessionStore) CurrentSession(ctx context.Context, id string) (domainauth.Session, error) {
	if m.Err != nil {
		return domainauth.Session{}, m.Err
	}
	sess, err := m.Get(ctx, id)
	if err != nil {
		return sess, err
	}
	if time.Now().After(sess.ExpiresAt) {
		return domainauth.Session{}, ErrNotFound
	}
	return sess, nil
}

func (m *MemorySessionStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// Len reports the number of stored sessions.
func (m *MemorySessionStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// ErrNotFound is returned by mocks when a session is not present. It matches ports.ErrUnauthenticated.
type notFoundError struct{}

func (notFoundError) Error() string { return "not found" }

func (notFoundError) Is(target error) bool { return target == ports.ErrUnauthenticated }

var ErrNotFound error = notFoundError{}

// MemoryAccessRecorder collects access records in memory.
type MemoryAccessRecorder struct {
	mu      sync.Mutex
	records []ports.AccessRecord
	Err     error
}

func (m *MemoryAccessRecorder) Record(_ context.Context, rec ports.AccessRecord) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, rec)
	return nil
}

// Records returns a copy of everything recorded so far.
func (m *MemoryAccessRecorder) Records() []ports.AccessRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ports.AccessRecord(nil), m.records...)
}

// MemoryVerificationRepo is an in-memory VerificationRepository. Unknown users are pending.
type MemoryVerificationRepo struct {
	mu   sync.Mutex
	rows map[string]domainauth.Verification
	Err  error
}

func NewMemoryVerificationRepo() *MemoryVerificationRepo {
	return &MemoryVerificationRepo{rows: make(map[string]domainauth.Verification)}
}

func (m *MemoryVerificationRepo) Get(_ context.Context, userID string) (domainauth.Verification, error) {
	if m.Err != nil {
		return domainauth.Verification{}, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.rows[userID]
	if !ok {
		return domainauth.Verification{Status: domainauth.VerificationPending}, nil
	}
	return v, nil
}

func (m *MemoryVerificationRepo) Upsert(_ context.Context, userID string, v domainauth.Verification) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[userID] = v
	return nil
}
