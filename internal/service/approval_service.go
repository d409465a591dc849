package service

import (
	"context"

	"github.com/leaguedesk/roster-service/internal/domain"
	"github.com/leaguedesk/roster-service/internal/events"
	"github.com/leaguedesk/roster-service/internal/repository"
	apperrors "github.com/leaguedesk/roster-service/pkg/util/errorutil"
)

// ApprovalService resolves club tag change requests. The league queue and
// the club ledger are both projections over the same request store.
type ApprovalService struct {
	governanceBase
}

// NewApprovalService constructs the service.
func NewApprovalService(deps GovernanceDependencies) *ApprovalService {
	return &ApprovalService{governanceBase: newGovernanceBase(deps)}
}

// ListPending returns the league approval queue, oldest first.
func (s *ApprovalService) ListPending(ctx context.Context, actor domain.Actor) ([]domain.TagChangeRequest, error) {
	if err := requireLeagueAdmin(actor); err != nil {
		return nil, err
	}
	pending, err := s.store.Requests().ListPending(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return pending, nil
}

// ListForActor returns every request a club submitted, including resolved
// ones. Clubs may only read their own ledger.
func (s *ApprovalService) ListForActor(ctx context.Context, actor domain.Actor, requestingActor string) ([]domain.TagChangeRequest, error) {
	if err := requireValidActor(actor); err != nil {
		return nil, err
	}
	if !actor.IsLeagueAdmin() && actor.Name != requestingActor {
		return nil, apperrors.NewForbidden("clubs may only read their own submissions")
	}
	ledger, err := s.store.Requests().ListByActor(ctx, requestingActor)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return ledger, nil
}

// Approve applies the request's proposed tags to the staff record and
// closes the request. A request that is not pending yields NotFound.
func (s *ApprovalService) Approve(ctx context.Context, actor domain.Actor, requestID, note string) (*domain.TagChangeRequest, error) {
	return s.resolve(ctx, actor, requestID, note, domain.RequestStatusApproved)
}

// Reject closes the request without touching the staff record.
func (s *ApprovalService) Reject(ctx context.Context, actor domain.Actor, requestID, note string) (*domain.TagChangeRequest, error) {
	return s.resolve(ctx, actor, requestID, note, domain.RequestStatusRejected)
}

func (s *ApprovalService) resolve(ctx context.Context, actor domain.Actor, requestID, note string, status domain.RequestStatus) (*domain.TagChangeRequest, error) {
	if err := requireLeagueAdmin(actor); err != nil {
		return nil, err
	}
	details := map[string]any{"request_id": requestID}

	var resolved *domain.TagChangeRequest
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx repository.Store) error {
		req, err := tx.Requests().GetByID(ctx, requestID)
		if err != nil {
			return mapStoreError(err, "pending tag change request", details)
		}
		if !req.IsPending() {
			return apperrors.NewNotFound("pending tag change request", details)
		}

		if status == domain.RequestStatusApproved {
			if err := tx.Staff().UpdateTags(ctx, req.StaffID, req.NewTags); err != nil {
				return mapStoreError(err, "staff record", map[string]any{"staff_id": req.StaffID})
			}
		}

		resolved, err = tx.Requests().Resolve(ctx, requestID, repository.Resolution{
			Status:     status,
			Note:       note,
			ResolvedBy: actor.Name,
			ResolvedAt: s.now(),
		})
		return mapStoreError(err, "pending tag change request", details)
	})
	if err != nil {
		return nil, err
	}

	eventType := events.EventTagChangeApproved
	if status == domain.RequestStatusRejected {
		eventType = events.EventTagChangeRejected
	}
	s.publish(ctx, s.newEvent(eventType, resolved.StaffID, actor, events.TagChangeResolvedPayload{
		RequestID:       resolved.ID,
		StaffID:         resolved.StaffID,
		RequestingActor: resolved.RequestingActor,
		Status:          resolved.Status,
		OldTags:         domain.CloneTags(resolved.OldTags),
		NewTags:         domain.CloneTags(resolved.NewTags),
		Note:            resolved.ResponseNote,
	}))
	if s.metrics != nil {
		s.metrics.ObserveResolution(status)
	}
	s.refreshPendingGauge(ctx)
	return resolved, nil
}

// RefreshPendingGauge recounts the approval queue and reports it to metrics.
// Other processes sharing the database can change the queue, so the gauge
// is also refreshed on a timer.
func (s *ApprovalService) RefreshPendingGauge(ctx context.Context) (int, error) {
	count, err := s.store.Requests().CountPending(ctx)
	if err != nil {
		return 0, apperrors.NewInternalError(err)
	}
	if s.metrics != nil {
		s.metrics.SetPendingRequests(count)
	}
	return count, nil
}
