package events

import (
	"time"

	"github.com/leaguedesk/roster-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTagChangeQueued   EventType = "tag_change_queued"
	EventTagChangeApproved EventType = "tag_change_approved"
	EventTagChangeRejected EventType = "tag_change_rejected"
	EventTagsApplied       EventType = "tags_applied"
	EventTagRenamed        EventType = "tag_renamed"
	EventTagDeleted        EventType = "tag_deleted"
	EventTagCreated        EventType = "tag_created"
)

// AllEventTypes lists every type, for subscribers that forward everything.
var AllEventTypes = []EventType{
	EventTagChangeQueued,
	EventTagChangeApproved,
	EventTagChangeRejected,
	EventTagsApplied,
	EventTagRenamed,
	EventTagDeleted,
	EventTagCreated,
}

// Actor encapsulates actor metadata for an event.
type Actor struct {
	Role domain.ActorRole `json:"role"`
	Name string           `json:"name"`
}

// ActorFrom converts a domain actor.
func ActorFrom(a domain.Actor) Actor {
	return Actor{Role: a.Role, Name: a.Name}
}

// Event represents a governance event emitted by services. Subject is the
// staff id, request id or tag name the event is about.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Subject   string      `json:"subject"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TagChangeQueuedPayload payload.
type TagChangeQueuedPayload struct {
	RequestID string   `json:"request_id"`
	StaffID   string   `json:"staff_id"`
	OldTags   []string `json:"old_tags"`
	NewTags   []string `json:"new_tags"`
}

// TagsAppliedPayload payload.
type TagsAppliedPayload struct {
	StaffID string   `json:"staff_id"`
	OldTags []string `json:"old_tags"`
	NewTags []string `json:"new_tags"`
}

// TagChangeResolvedPayload is shared by approved and rejected events.
type TagChangeResolvedPayload struct {
	RequestID       string               `json:"request_id"`
	StaffID         string               `json:"staff_id"`
	RequestingActor string               `json:"requesting_actor"`
	Status          domain.RequestStatus `json:"status"`
	OldTags         []string             `json:"old_tags"`
	NewTags         []string             `json:"new_tags"`
	Note            string               `json:"note,omitempty"`
}

// TagRenamedPayload payload.
type TagRenamedPayload struct {
	OldName  string   `json:"old_name"`
	NewName  string   `json:"new_name"`
	StaffIDs []string `json:"staff_ids"`
}

// TagDeletedPayload payload.
type TagDeletedPayload struct {
	Name     string   `json:"name"`
	StaffIDs []string `json:"staff_ids"`
}

// TagCreatedPayload payload.
type TagCreatedPayload struct {
	Name string `json:"name"`
}
