package queryguard

import (
	"strings"

	apperrors "github.com/target/marketplace-gateway/internal/errors"
)

// DefaultReadMarkers is the operation-name convention for read-style operations.
var DefaultReadMarkers = []string{"find"}

// NameSet is a case-insensitive set of field or table names.
type NameSet map[string]struct{}

// canonicalName lower-cases name and drops NUL bytes, which identifier quoting strips before
// the name reaches SQL.
func canonicalName(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, "\x00", ""))
}

// NewNameSet lower-cases and trims names; empty entries are skipped.
func NewNameSet(names ...string) NameSet {
	s := make(NameSet, len(names))
	for _, n := range names {
		n = canonicalName(strings.TrimSpace(n))
		if n == "" {
			continue
		}
		s[n] = struct{}{}
	}
	return s
}

// Has reports whether name is in the set, ignoring case.
func (s NameSet) Has(name string) bool {
	_, ok := s[canonicalName(name)]
	return ok
}

// Intersects reports whether any member of other is in s.
func (s NameSet) Intersects(other NameSet) bool {
	small, large := s, other
	if len(small) > len(large) {
		small, large = large, small
	}
	for n := range small {
		if _, ok := large[n]; ok {
			return true
		}
	}
	return false
}

// TouchedNames collects every key at any depth of payload, plus the last segment of any dotted
// key, in canonical form.
func TouchedNames(payload Node) NameSet {
	touched := make(NameSet)
	Walk(payload, func(key string, _ Node) {
		k := canonicalName(key)
		touched[k] = struct{}{}
		if i := strings.LastIndexByte(k, '.'); i >= 0 && i < len(k)-1 {
			touched[k[i+1:]] = struct{}{}
		}
	})
	return touched
}

// IsReadOperation reports whether op contains any marker, ignoring case.
func IsReadOperation(op string, markers []string) bool {
	op = strings.ToLower(op)
	for _, m := range markers {
		m = strings.ToLower(strings.TrimSpace(m))
		if m != "" && strings.Contains(op, m) {
			return true
		}
	}
	return false
}

// IsBlocked reports whether a read-style op over payload touches a restricted name. Write-style
// operations are not guarded.
func IsBlocked(restricted NameSet, op string, payload Node) bool {
	return isBlocked(restricted, DefaultReadMarkers, op, payload)
}

func isBlocked(restricted NameSet, markers []string, op string, payload Node) bool {
	if len(restricted) == 0 || !IsReadOperation(op, markers) {
		return false
	}
	return restricted.Intersects(TouchedNames(payload))
}

// Options configures a Guard.
type Options struct {
	Restricted  []string
	ReadMarkers []string
}

// Guard applies an immutable restricted-name policy to dynamic queries.
type Guard struct {
	restricted NameSet
	markers    []string
}

// New builds a Guard. Empty ReadMarkers fall back to DefaultReadMarkers.
func New(opts Options) *Guard {
	markers := make([]string, 0, len(opts.ReadMarkers))
	for _, m := range opts.ReadMarkers {
		if m = strings.TrimSpace(m); m != "" {
			markers = append(markers, m)
		}
	}
	if len(markers) == 0 {
		markers = append(markers, DefaultReadMarkers...)
	}
	return &Guard{restricted: NewNameSet(opts.Restricted...), markers: markers}
}

// Blocked reports whether op over payload targeting model must be rejected. The model name
// counts as a touched name.
func (g *Guard) Blocked(model, op string, payload Node) bool {
	if g == nil {
		return false
	}
	if IsReadOperation(op, g.markers) && g.restricted.Has(model) {
		return true
	}
	return isBlocked(g.restricted, g.markers, op, payload)
}

// ErrRestrictedQuery is the generic rejection returned to callers. It never names the field.
var ErrRestrictedQuery = &apperrors.AppError{Code: apperrors.ErrCodeForbidden, Message: "request rejected"}

// Check returns ErrRestrictedQuery when the query is blocked.
func (g *Guard) Check(model, op string, payload Node) error {
	if g.Blocked(model, op, payload) {
		return ErrRestrictedQuery
	}
	return nil
}
