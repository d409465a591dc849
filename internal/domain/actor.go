package domain

import "strings"

// ActorRole differentiates league administrators from club staff.
type ActorRole string

const (
	ActorRoleLeagueAdmin ActorRole = "LEAGUE_ADMIN"
	ActorRoleClub        ActorRole = "CLUB"
)

// Valid reports whether the role is one of the known roles.
func (r ActorRole) Valid() bool {
	return r == ActorRoleLeagueAdmin || r == ActorRoleClub
}

// ParseActorRole accepts the canonical form as well as lower/kebab variants.
func ParseActorRole(raw string) (ActorRole, bool) {
	normalized := strings.ToUpper(strings.TrimSpace(raw))
	normalized = strings.ReplaceAll(normalized, "-", "_")
	switch ActorRole(normalized) {
	case ActorRoleLeagueAdmin:
		return ActorRoleLeagueAdmin, true
	case ActorRoleClub:
		return ActorRoleClub, true
	default:
		return "", false
	}
}

// Actor is the caller of a governance operation. The role is fixed when the
// session is opened and carried explicitly into every call.
type Actor struct {
	Role ActorRole
	Name string
}

// IsLeagueAdmin is a shorthand for role checks.
func (a Actor) IsLeagueAdmin() bool {
	return a.Role == ActorRoleLeagueAdmin
}
