package dto

import (
	"time"

	"github.com/leaguedesk/roster-service/internal/domain"
)

// StaffResponse is a staff record as rendered on the roster dashboard.
type StaffResponse struct {
	ID             string                   `json:"id"`
	Name           string                   `json:"name"`
	Role           string                   `json:"role"`
	CurrentClub    string                   `json:"current_club"`
	Tags           []string                 `json:"tags"`
	ProfilePrivacy domain.ProfilePrivacy    `json:"profile_privacy"`
	History        []domain.EmploymentEntry `json:"history"`
	CreatedAt      time.Time                `json:"created_at"`
	UpdatedAt      time.Time                `json:"updated_at"`
}

// ProposeTagsRequest replaces a record's complete tag set.
type ProposeTagsRequest struct {
	Tags []string `json:"tags"`
}

// ProposeTagsResponse reports whether the change applied or was queued.
type ProposeTagsResponse struct {
	Outcome   string   `json:"outcome"`
	StaffID   string   `json:"staff_id"`
	Tags      []string `json:"tags"`
	RequestID string   `json:"request_id,omitempty"`
}

// BulkTagsRequest payload.
type BulkTagsRequest struct {
	StaffIDs []string `json:"staff_ids"`
	Action   string   `json:"action"`
	Tags     []string `json:"tags"`
}

// BulkTagsResponse response.
type BulkTagsResponse struct {
	AppliedCount   int      `json:"applied_count"`
	QueuedCount    int      `json:"queued_count"`
	SkippedCount   int      `json:"skipped_count"`
	SkippedIDs     []string `json:"skipped_ids"`
	TruncatedCount int      `json:"truncated_count"`
	RequestIDs     []string `json:"request_ids"`
}
