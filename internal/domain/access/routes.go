package access

import "strings"

// RouteClass is the static category assigned to a normalized path.
type RouteClass string

const (
	RoutePublic          RouteClass = "public"
	RouteAuthExempt      RouteClass = "auth_exempt"
	RouteBuyerProtected  RouteClass = "buyer"
	RouteSellerProtected RouteClass = "seller"
)

// Protected reports whether the class requires an authenticated session.
func (c RouteClass) Protected() bool {
	return c == RouteBuyerProtected || c == RouteSellerProtected
}

// RouteRule maps a path prefix to a class. Exact rules only match the path itself.
type RouteRule struct {
	Prefix string
	Class  RouteClass
	Exact  bool
}

func (r RouteRule) matches(path string) bool {
	if r.Exact {
		return path == r.Prefix
	}
	return strings.HasPrefix(path, r.Prefix)
}

// RouteTable is an ordered, immutable list of route rules. First match wins.
type RouteTable struct {
	rules []RouteRule
}

// NewRouteTable copies rules into a new table; later mutation of the slice has no effect.
func NewRouteTable(rules []RouteRule) RouteTable {
	cp := make([]RouteRule, 0, len(rules))
	for _, r := range rules {
		if r.Prefix == "" {
			continue
		}
		cp = append(cp, r)
	}
	return RouteTable{rules: cp}
}

// RouteTableOptions lists prefixes per class. Order within the table is public, exempt,
// seller, buyer, followed by the exact root rule.
type RouteTableOptions struct {
	Public []string
	Exempt []string
	Buyer  []string
	Seller []string
}

// BuildRouteTable assembles a table from prefix lists.
func BuildRouteTable(opts RouteTableOptions) RouteTable {
	rules := make([]RouteRule, 0, len(opts.Public)+len(opts.Exempt)+len(opts.Buyer)+len(opts.Seller)+1)
	add := func(prefixes []string, class RouteClass) {
		for _, p := range prefixes {
			rules = append(rules, RouteRule{Prefix: p, Class: class})
		}
	}
	add(opts.Public, RoutePublic)
	add(opts.Exempt, RouteAuthExempt)
	add(opts.Seller, RouteSellerProtected)
	add(opts.Buyer, RouteBuyerProtected)
	rules = append(rules, RouteRule{Prefix: "/", Class: RoutePublic, Exact: true})
	return NewRouteTable(rules)
}

// DefaultRouteTableOptions returns the stock marketplace prefixes.
func DefaultRouteTableOptions() RouteTableOptions {
	return RouteTableOptions{
		Public: []string{"/_next", "/static", "/assets", "/favicon.ico", "/api", "/healthz", "/metrics"},
		Exempt: []string{"/auth"},
		Buyer:  []string{"/buyer", "/marketplace", "/search", "/collections"},
		Seller: []string{"/seller"},
	}
}

// DefaultRouteTable is BuildRouteTable(DefaultRouteTableOptions()).
func DefaultRouteTable() RouteTable {
	return BuildRouteTable(DefaultRouteTableOptions())
}

func (t RouteTable) match(path string) (RouteRule, bool) {
	for _, r := range t.rules {
		if r.matches(path) {
			return r, true
		}
	}
	return RouteRule{}, false
}

// Classify returns the class of the first matching rule. Unmatched paths are public; the
// decision engine still decides them.
func (t RouteTable) Classify(path string) RouteClass {
	if r, ok := t.match(path); ok {
		return r.Class
	}
	return RoutePublic
}

// Bypass reports whether path is explicitly listed as public or auth-exempt and therefore
// skips the gateway pipeline entirely.
func (t RouteTable) Bypass(path string) bool {
	r, ok := t.match(path)
	return ok && !r.Class.Protected()
}

// Rules returns a copy of the table's rules.
func (t RouteTable) Rules() []RouteRule {
	out := make([]RouteRule, len(t.rules))
	copy(out, t.rules)
	return out
}
