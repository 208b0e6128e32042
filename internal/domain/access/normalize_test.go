package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "root", in: "/", want: "/"},
		{name: "empty", in: "", want: "/"},
		{name: "only slashes", in: "///", want: "/"},
		{name: "trailing slash", in: "/buyer/deals/", want: "/buyer/deals"},
		{name: "lower cases", in: "/Seller/Dashboard", want: "/seller/dashboard"},
		{name: "double slashes", in: "//buyer//deals", want: "/buyer/deals"},
		{name: "missing leading slash", in: "buyer", want: "/buyer"},
		{name: "marketplace preserves identifier", in: "//Marketplace/Catalog/AbC123/", want: "/marketplace/catalog/AbC123"},
		{name: "marketplace deep identifier", in: "/MARKETPLACE/Offers/XyZ/Items/Q1", want: "/marketplace/offers/XyZ/Items/Q1"},
		{name: "marketplace single segment", in: "/Marketplace", want: "/marketplace"},
		{name: "marketplace lookalike folds fully", in: "/MarketplaceX/Catalog/AbC", want: "/marketplacex/catalog/abc"},
		{name: "dot segments", in: "/buyer/./deals/../offers", want: "/buyer/offers"},
		{name: "dot dot above root", in: "/../../seller", want: "/seller"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"/", "", "//Marketplace/Catalog/AbC123/", "/Buyer/Deals/", "/a//b/./c/../D/",
		"/marketplace/x/Y/z/", "/search?Q=1", "/SEARCH/%2Fencoded", "/marketplace/..//Catalog/Ab",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestNeedsRedirect(t *testing.T) {
	canonical, redirect := NeedsRedirect("//Marketplace/Catalog/AbC123/")
	assert.True(t, redirect)
	assert.Equal(t, "/marketplace/catalog/AbC123", canonical)

	canonical, redirect = NeedsRedirect("/marketplace/catalog/AbC123")
	assert.False(t, redirect)
	assert.Equal(t, "/marketplace/catalog/AbC123", canonical)
}
