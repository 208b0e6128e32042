package auth

import (
	"testing"
	"time"
)

func TestParseRole(t *testing.T) {
	cases := map[string]Role{
		"buyer":    RoleBuyer,
		" Seller ": RoleSeller,
		"BUYER":    RoleBuyer,
		"admin":    RoleNone,
		"":         RoleNone,
	}
	for in, want := range cases {
		if got := ParseRole(in); got != want {
			t.Fatalf("ParseRole(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSession_HasRole(t *testing.T) {
	if !(Session{Role: RoleSeller}).HasRole() {
		t.Fatalf("expected seller to count as a role")
	}
	if (Session{}).HasRole() {
		t.Fatalf("did not expect empty role to count")
	}
}

func TestPrincipalFromSession(t *testing.T) {
	s := Session{UserID: "u-1", Role: RoleBuyer, ExpiresAt: time.Now().Add(time.Hour)}
	p := PrincipalFromSession(s)
	if !p.Authenticated || p.Username != "u-1" || p.Role != RoleBuyer {
		t.Fatalf("unexpected principal: %+v", p)
	}

	s.Username = "alice"
	if got := PrincipalFromSession(s).Username; got != "alice" {
		t.Fatalf("expected username to win over user id, got %q", got)
	}
}

func TestVerification_Cleared(t *testing.T) {
	tests := []struct {
		v    Verification
		want bool
	}{
		{Verification{Status: VerificationVerified}, true},
		{Verification{Status: VerificationVerified, AccountLocked: true}, false},
		{Verification{Status: VerificationPending}, false},
		{Verification{Status: VerificationRejected}, false},
		{Verification{Status: "bogus"}, false},
	}
	for _, tt := range tests {
		if got := tt.v.Cleared(); got != tt.want {
			t.Fatalf("Cleared(%+v) = %v, want %v", tt.v, got, tt.want)
		}
	}
}

func TestParseVerificationStatus(t *testing.T) {
	st, ok := ParseVerificationStatus(" Verified")
	if !ok || st != VerificationVerified {
		t.Fatalf("unexpected parse: %q %v", st, ok)
	}
	if _, ok := ParseVerificationStatus("approved"); ok {
		t.Fatalf("expected unknown status to be rejected")
	}
}
