package models

import "fmt"

// Role is the caller's role as forwarded by the gateway. The set is closed:
// every role belongs to exactly one Tier, assigned in ParseRole.
type Role string

const (
	RoleUberAPIAdmin         Role = "UBER_API_ADMIN"
	RoleAPIAdmin             Role = "API_ADMIN"
	RoleAdmin                Role = "ADMIN"
	RoleAccountManager       Role = "ACCOUNT_MANAGER"
	RoleBusinessManager      Role = "BUSINESS_MANAGER"
	RoleBusinessManagerInbox Role = "BUSINESS_MANAGER_INBOX"
	RoleLocationManager      Role = "LOCATION_MANAGER"
)

// Tier groups roles for resolution and authorization dispatch. All branching
// on caller privileges goes through the tier, never through individual roles,
// so a new role forces classification here and nowhere else.
type Tier int

const (
	TierAdmin Tier = iota
	TierBusinessManager
	TierLocationManager
)

func (t Tier) String() string {
	switch t {
	case TierAdmin:
		return "admin"
	case TierBusinessManager:
		return "business-manager"
	case TierLocationManager:
		return "location-manager"
	}
	return fmt.Sprintf("tier(%d)", int(t))
}

var roleTiers = map[Role]Tier{
	RoleUberAPIAdmin:         TierAdmin,
	RoleAPIAdmin:             TierAdmin,
	RoleAdmin:                TierAdmin,
	RoleAccountManager:       TierBusinessManager,
	RoleBusinessManager:      TierBusinessManager,
	RoleBusinessManagerInbox: TierBusinessManager,
	RoleLocationManager:      TierLocationManager,
}

// ParseRole validates a role string and returns its tier.
func ParseRole(s string) (Role, Tier, error) {
	tier, ok := roleTiers[Role(s)]
	if !ok {
		return "", 0, fmt.Errorf("unknown role %q", s)
	}
	return Role(s), tier, nil
}

// Feature is a product feature flag granted to the caller.
type Feature string

const FeatureDAM Feature = "DAM"

// User is the caller identity for one request. Immutable once built from
// the request headers.
type User struct {
	ID             int64
	SalesPartnerID int64
	Role           Role
	Tier           Tier
	Features       map[Feature]bool
	AccessToken    string
}

func (u *User) HasFeature(f Feature) bool { return u.Features[f] }
