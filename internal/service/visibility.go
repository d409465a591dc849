package service

import "github.com/leaguedesk/roster-service/internal/domain"

// VisibleRecords returns the records the role may see, in input order.
// League admins see everything; club actors see only non-private profiles.
func VisibleRecords(records []domain.StaffRecord, role domain.ActorRole) []domain.StaffRecord {
	out := make([]domain.StaffRecord, 0, len(records))
	for i := range records {
		if CanView(&records[i], role) {
			out = append(out, records[i])
		}
	}
	return out
}

// CanView reports whether a single record is visible to the role.
func CanView(record *domain.StaffRecord, role domain.ActorRole) bool {
	switch role {
	case domain.ActorRoleLeagueAdmin:
		return true
	case domain.ActorRoleClub:
		return !record.IsPrivate()
	default:
		return false
	}
}
