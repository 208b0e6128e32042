package authroles

import (
	"strings"

	domainauth "github.com/target/marketplace-gateway/internal/domain/auth"
	"github.com/target/marketplace-gateway/internal/ports"
)

// StaticRoleMapper maps an identity to a marketplace role.
// A recognised value in the role attribute wins; group membership is the fallback.
type StaticRoleMapper struct {
	Attribute   string
	BuyerGroup  string
	SellerGroup string
}

var _ ports.RoleMapper = StaticRoleMapper{}

func (m StaticRoleMapper) Map(attributes map[string]string, groups []string) domainauth.Role {
	if m.Attribute != "" {
		if role := domainauth.ParseRole(attributes[m.Attribute]); role.Valid() {
			return role
		}
	}
	for _, g := range groups {
		if m.SellerGroup != "" && strings.EqualFold(g, m.SellerGroup) {
			return domainauth.RoleSeller
		}
	}
	for _, g := range groups {
		if m.BuyerGroup != "" && strings.EqualFold(g, m.BuyerGroup) {
			return domainauth.RoleBuyer
		}
	}
	return domainauth.RoleNone
}
