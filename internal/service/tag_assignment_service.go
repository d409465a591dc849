package service

import (
	"context"
	"errors"

	"github.com/leaguedesk/roster-service/internal/domain"
	"github.com/leaguedesk/roster-service/internal/events"
	"github.com/leaguedesk/roster-service/internal/repository"
	apperrors "github.com/leaguedesk/roster-service/pkg/util/errorutil"
)

// OutcomeKind tells the caller whether a tag change took effect or was queued.
type OutcomeKind string

const (
	OutcomeApplied OutcomeKind = "applied"
	OutcomeQueued  OutcomeKind = "queued"
)

// Outcome is the result of a single tag change proposal.
type Outcome struct {
	Kind      OutcomeKind
	StaffID   string
	Tags      []string
	RequestID string
	Request   *domain.TagChangeRequest
}

// BulkAction is the delta applied by a bulk tag operation.
type BulkAction string

const (
	BulkActionAdd    BulkAction = "add"
	BulkActionRemove BulkAction = "remove"
)

// BulkInput describes a bulk tag operation.
type BulkInput struct {
	StaffIDs []string
	Action   BulkAction
	Tags     []string
}

// BulkOutcome tallies what a bulk operation did. Records that could not be
// resolved (missing, or hidden from the actor) are skipped and listed.
type BulkOutcome struct {
	AppliedCount   int
	QueuedCount    int
	SkippedCount   int
	SkippedIDs     []string
	TruncatedCount int
	RequestIDs     []string
}

// TagAssignmentService is the authorization-aware entry point for changing
// the tags of staff records.
type TagAssignmentService struct {
	governanceBase
}

// NewTagAssignmentService constructs the service.
func NewTagAssignmentService(deps GovernanceDependencies) *TagAssignmentService {
	return &TagAssignmentService{governanceBase: newGovernanceBase(deps)}
}

// ProposeTagChange replaces a record's tags. League admins apply the change
// immediately; club actors create a pending request and leave the record untouched.
func (s *TagAssignmentService) ProposeTagChange(ctx context.Context, actor domain.Actor, staffID string, newTags []string) (*Outcome, error) {
	if err := requireValidActor(actor); err != nil {
		return nil, err
	}
	tags := domain.NormalizeTags(newTags)
	if err := s.validateTags(tags); err != nil {
		return nil, err
	}

	var (
		outcome *Outcome
		emitted events.Event
	)
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx repository.Store) error {
		record, err := s.loadVisible(ctx, tx, actor, staffID)
		if err != nil {
			return err
		}
		outcome, emitted, err = s.proposeInTx(ctx, tx, actor, record, tags)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.observe(actor, outcome)
	s.publish(ctx, emitted)
	if outcome.Kind == OutcomeQueued {
		s.refreshPendingGauge(ctx)
	}
	return outcome, nil
}

// BulkApplyTags adds or removes the same tags across a batch of records,
// running each record through the single-record rules. Adds beyond the tag
// cap are dropped rather than failing the record. The whole batch commits
// as one unit.
func (s *TagAssignmentService) BulkApplyTags(ctx context.Context, actor domain.Actor, input BulkInput) (*BulkOutcome, error) {
	if err := requireValidActor(actor); err != nil {
		return nil, err
	}
	if input.Action != BulkActionAdd && input.Action != BulkActionRemove {
		return nil, apperrors.NewInvalidArgument("action must be add or remove", map[string]any{"action": input.Action})
	}
	values := dedupe(domain.NormalizeTags(input.Tags))
	if len(values) == 0 {
		return nil, apperrors.NewInvalidArgument("at least one tag required", nil)
	}
	for _, tag := range values {
		if tag == "" {
			return nil, apperrors.NewInvalidArgument("tag names must not be empty", nil)
		}
	}

	var (
		result   BulkOutcome
		outcomes []*Outcome
		emitted  []events.Event
	)
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx repository.Store) error {
		result = BulkOutcome{SkippedIDs: []string{}, RequestIDs: []string{}}
		outcomes = nil
		emitted = nil

		for _, staffID := range dedupe(input.StaffIDs) {
			record, err := s.loadVisible(ctx, tx, actor, staffID)
			if errors.Is(err, apperrors.ErrNotFound) {
				result.SkippedCount++
				result.SkippedIDs = append(result.SkippedIDs, staffID)
				continue
			}
			if err != nil {
				return err
			}

			var candidate []string
			switch input.Action {
			case BulkActionAdd:
				var dropped int
				candidate, dropped = domain.UnionTags(record.Tags, values, s.maxTags)
				if dropped > 0 {
					result.TruncatedCount++
				}
			case BulkActionRemove:
				candidate = domain.SubtractTags(record.Tags, values)
			}
			if err := s.validateTags(candidate); err != nil {
				return err
			}

			outcome, event, err := s.proposeInTx(ctx, tx, actor, record, candidate)
			if err != nil {
				return err
			}
			outcomes = append(outcomes, outcome)
			emitted = append(emitted, event)
			switch outcome.Kind {
			case OutcomeApplied:
				result.AppliedCount++
			case OutcomeQueued:
				result.QueuedCount++
				result.RequestIDs = append(result.RequestIDs, outcome.RequestID)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, outcome := range outcomes {
		s.observe(actor, outcome)
	}
	s.publish(ctx, emitted...)
	if result.QueuedCount > 0 {
		s.refreshPendingGauge(ctx)
	}
	return &result, nil
}

// proposeInTx performs exactly one side effect: a tag-set write for league
// admins or a new pending request for clubs.
func (s *TagAssignmentService) proposeInTx(ctx context.Context, tx repository.Store, actor domain.Actor, record *domain.StaffRecord, tags []string) (*Outcome, events.Event, error) {
	oldTags := domain.CloneTags(record.Tags)

	if actor.IsLeagueAdmin() {
		if err := tx.Staff().UpdateTags(ctx, record.ID, tags); err != nil {
			return nil, events.Event{}, mapStoreError(err, "staff record", map[string]any{"staff_id": record.ID})
		}
		event := s.newEvent(events.EventTagsApplied, record.ID, actor, events.TagsAppliedPayload{
			StaffID: record.ID,
			OldTags: oldTags,
			NewTags: domain.CloneTags(tags),
		})
		return &Outcome{Kind: OutcomeApplied, StaffID: record.ID, Tags: domain.CloneTags(tags)}, event, nil
	}

	req := &domain.TagChangeRequest{
		ID:              s.newID(),
		StaffID:         record.ID,
		RequestingActor: actor.Name,
		OldTags:         oldTags,
		NewTags:         domain.CloneTags(tags),
		Status:          domain.RequestStatusPending,
		CreatedAt:       s.now(),
	}
	if err := tx.Requests().Create(ctx, req); err != nil {
		return nil, events.Event{}, mapStoreError(err, "tag change request", map[string]any{"request_id": req.ID})
	}
	event := s.newEvent(events.EventTagChangeQueued, record.ID, actor, events.TagChangeQueuedPayload{
		RequestID: req.ID,
		StaffID:   record.ID,
		OldTags:   domain.CloneTags(req.OldTags),
		NewTags:   domain.CloneTags(req.NewTags),
	})
	return &Outcome{Kind: OutcomeQueued, StaffID: record.ID, Tags: oldTags, RequestID: req.ID, Request: req.Clone()}, event, nil
}

// loadVisible fetches a record, hiding private records from club actors.
func (s *TagAssignmentService) loadVisible(ctx context.Context, tx repository.Store, actor domain.Actor, staffID string) (*domain.StaffRecord, error) {
	details := map[string]any{"staff_id": staffID}
	record, err := tx.Staff().GetByID(ctx, staffID)
	if err != nil {
		return nil, mapStoreError(err, "staff record", details)
	}
	if !CanView(record, actor.Role) {
		return nil, apperrors.NewNotFound("staff record", details)
	}
	return record, nil
}

func (s *TagAssignmentService) validateTags(tags []string) error {
	if err := domain.ValidateTagSet(tags, s.maxTags); err != nil {
		return apperrors.NewInvalidTagSet(err, map[string]any{
			"reason":   err.Error(),
			"max_tags": s.maxTags,
			"tags":     tags,
		})
	}
	return nil
}

func (s *TagAssignmentService) observe(actor domain.Actor, outcome *Outcome) {
	if s.metrics == nil || outcome == nil {
		return
	}
	s.metrics.ObserveProposal(actor.Role, string(outcome.Kind))
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
