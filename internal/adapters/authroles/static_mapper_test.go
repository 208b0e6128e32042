package authroles

import (
	"testing"

	"github.com/stretchr/testify/assert"

	domainauth "github.com/target/marketplace-gateway/internal/domain/auth"
)

func TestStaticRoleMapper_Map(t *testing.T) {
	m := StaticRoleMapper{Attribute: "custom:role", BuyerGroup: "buyers", SellerGroup: "sellers"}

	tests := []struct {
		name   string
		attrs  map[string]string
		groups []string
		want   domainauth.Role
	}{
		{name: "attribute buyer", attrs: map[string]string{"custom:role": "buyer"}, want: domainauth.RoleBuyer},
		{name: "attribute case", attrs: map[string]string{"custom:role": " Seller "}, want: domainauth.RoleSeller},
		{name: "attribute beats groups", attrs: map[string]string{"custom:role": "buyer"}, groups: []string{"sellers"}, want: domainauth.RoleBuyer},
		{name: "unknown attribute falls back", attrs: map[string]string{"custom:role": "admin"}, groups: []string{"Buyers"}, want: domainauth.RoleBuyer},
		{name: "seller group preferred", groups: []string{"buyers", "sellers"}, want: domainauth.RoleSeller},
		{name: "nothing", groups: []string{"staff"}, want: domainauth.RoleNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.Map(tt.attrs, tt.groups))
		})
	}
}

func TestStaticRoleMapper_EmptyConfig(t *testing.T) {
	var m StaticRoleMapper
	assert.Equal(t, domainauth.RoleNone, m.Map(map[string]string{"custom:role": "buyer"}, []string{""}))
}
