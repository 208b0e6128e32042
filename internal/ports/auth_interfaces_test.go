package ports_test

import (
	"testing"

	"github.com/target/marketplace-gateway/internal/mocks"
	authmocks "github.com/target/marketplace-gateway/internal/mocks/auth"
	"github.com/target/marketplace-gateway/internal/ports"
)

// This test only verifies that our mocks conform to the ports at compile time.
func TestMocksImplementPorts(t *testing.T) {
	t.Helper()

	var _ ports.AuthProvider = (*authmocks.MockAuthProvider)(nil)
	var _ ports.SessionStore = (*authmocks.MemorySessionStore)(nil)
	var _ ports.SessionProvider = (*authmocks.MemorySessionStore)(nil)
	var _ ports.AccessRecorder = (*authmocks.MemoryAccessRecorder)(nil)
	var _ ports.VerificationRepository = (*authmocks.MemoryVerificationRepo)(nil)
	var _ ports.SessionProvider = (*mocks.MockSessionProvider)(nil)
	var _ ports.VerificationLookup = (*mocks.MockVerificationLookup)(nil)
	var _ ports.RowQuerier = (*mocks.MockRowQuerier)(nil)
}
