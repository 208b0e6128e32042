// Package mocks provides gomock implementations of the gateway ports.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	sessions := mocks.NewMockSessionProvider(ctrl)
//	sessions.EXPECT().CurrentSession(gomock.Any(), "sid").Return(sess, nil)
package mocks

// SessionProvider: CurrentSession
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=session_provider_mock.go github.com/target/marketplace-gateway/internal/ports SessionProvider

// VerificationLookup: Lookup
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=verification_lookup_mock.go github.com/target/marketplace-gateway/internal/ports VerificationLookup

// RowQuerier: QueryRows
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=row_querier_mock.go github.com/target/marketplace-gateway/internal/ports RowQuerier
