package auth

import "strings"

// VerificationStatus is the server-held vetting state of a buyer identity.
type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationVerified VerificationStatus = "verified"
	VerificationRejected VerificationStatus = "rejected"
)

// Valid reports whether s is a known status.
func (s VerificationStatus) Valid() bool {
	switch s {
	case VerificationPending, VerificationVerified, VerificationRejected:
		return true
	default:
		return false
	}
}

// ParseVerificationStatus normalizes s and reports whether it names a known status.
func ParseVerificationStatus(s string) (VerificationStatus, bool) {
	st := VerificationStatus(strings.ToLower(strings.TrimSpace(s)))
	return st, st.Valid()
}

// Verification is the result of a verification-status lookup.
type Verification struct {
	Status        VerificationStatus `json:"verificationStatus"`
	AccountLocked bool               `json:"accountLocked"`
}

// Cleared reports whether the buyer may proceed: verified and not locked.
func (v Verification) Cleared() bool {
	return v.Status == VerificationVerified && !v.AccountLocked
}
