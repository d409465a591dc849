package dto

import (
	"time"

	"github.com/leaguedesk/roster-service/internal/domain"
)

// ResolveRequest carries the reviewer's note.
type ResolveRequest struct {
	Note string `json:"note"`
}

// ChangeRequestResponse renders a tag change request.
type ChangeRequestResponse struct {
	ID              string               `json:"id"`
	StaffID         string               `json:"staff_id"`
	RequestingActor string               `json:"requesting_actor"`
	OldTags         []string             `json:"old_tags"`
	NewTags         []string             `json:"new_tags"`
	Status          domain.RequestStatus `json:"status"`
	ResponseNote    string               `json:"response_note,omitempty"`
	ResolvedBy      string               `json:"resolved_by,omitempty"`
	CreatedAt       time.Time            `json:"created_at"`
	ResolvedAt      *time.Time           `json:"resolved_at,omitempty"`
}
