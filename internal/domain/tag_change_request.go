package domain

import (
	"errors"
	"time"
)

// RequestStatus is the lifecycle state of a tag change request.
type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusApproved RequestStatus = "approved"
	RequestStatusRejected RequestStatus = "rejected"
)

// ErrRequestResolved is returned when resolving a request that already left pending.
var ErrRequestResolved = errors.New("tag change request already resolved")

// TagChangeRequest is a club-submitted proposal to replace a staff member's
// tags. One entity backs both the league approval queue and the club ledger.
type TagChangeRequest struct {
	ID              string
	StaffID         string
	RequestingActor string
	OldTags         []string
	NewTags         []string
	Status          RequestStatus
	ResponseNote    string
	ResolvedBy      string
	CreatedAt       time.Time
	ResolvedAt      *time.Time
}

// IsPending reports whether the request still awaits a decision.
func (r *TagChangeRequest) IsPending() bool {
	return r.Status == RequestStatusPending
}

// Resolve moves a pending request to approved or rejected. It succeeds once.
func (r *TagChangeRequest) Resolve(status RequestStatus, note, resolvedBy string, at time.Time) error {
	if status != RequestStatusApproved && status != RequestStatusRejected {
		return errors.New("resolution status must be approved or rejected")
	}
	if !r.IsPending() {
		return ErrRequestResolved
	}
	r.Status = status
	r.ResponseNote = note
	r.ResolvedBy = resolvedBy
	resolved := at
	r.ResolvedAt = &resolved
	return nil
}

// Clone returns a deep copy.
func (r *TagChangeRequest) Clone() *TagChangeRequest {
	if r == nil {
		return nil
	}
	cp := *r
	cp.OldTags = CloneTags(r.OldTags)
	cp.NewTags = CloneTags(r.NewTags)
	if r.ResolvedAt != nil {
		at := *r.ResolvedAt
		cp.ResolvedAt = &at
	}
	return &cp
}
