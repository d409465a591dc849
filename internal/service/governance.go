package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/leaguedesk/roster-service/internal/domain"
	"github.com/leaguedesk/roster-service/internal/events"
	"github.com/leaguedesk/roster-service/internal/repository"
	apperrors "github.com/leaguedesk/roster-service/pkg/util/errorutil"
)

// GovernanceMetrics receives counters from the governance services.
type GovernanceMetrics interface {
	ObserveProposal(role domain.ActorRole, outcome string)
	ObserveResolution(status domain.RequestStatus)
	SetPendingRequests(count int)
}

// GovernanceDependencies bundles what the tag governance services share.
type GovernanceDependencies struct {
	Store      repository.Store
	Dispatcher events.Dispatcher
	Metrics    GovernanceMetrics
	MaxTags    int
	Now        func() time.Time
	NewID      func() string
}

type governanceBase struct {
	store      repository.Store
	dispatcher events.Dispatcher
	metrics    GovernanceMetrics
	maxTags    int
	now        func() time.Time
	newID      func() string
}

func newGovernanceBase(deps GovernanceDependencies) governanceBase {
	base := governanceBase{
		store:      deps.Store,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		maxTags:    deps.MaxTags,
		now:        deps.Now,
		newID:      deps.NewID,
	}
	if base.maxTags <= 0 || base.maxTags > domain.MaxTags {
		base.maxTags = domain.MaxTags
	}
	if base.now == nil {
		base.now = func() time.Time { return time.Now().UTC() }
	}
	if base.newID == nil {
		base.newID = uuid.NewString
	}
	return base
}

func (b *governanceBase) newEvent(eventType events.EventType, subject string, actor domain.Actor, payload any) events.Event {
	return events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Subject:   subject,
		Actor:     events.ActorFrom(actor),
		Timestamp: b.now(),
		Payload:   payload,
	}
}

// publish runs after the transaction commits; subscriber failures never undo a mutation.
func (b *governanceBase) publish(ctx context.Context, evts ...events.Event) {
	if b.dispatcher == nil {
		return
	}
	for _, event := range evts {
		_ = b.dispatcher.Publish(ctx, event)
	}
}

func (b *governanceBase) refreshPendingGauge(ctx context.Context) {
	if b.metrics == nil {
		return
	}
	if count, err := b.store.Requests().CountPending(ctx); err == nil {
		b.metrics.SetPendingRequests(count)
	}
}

func requireValidActor(actor domain.Actor) error {
	if !actor.Role.Valid() {
		return apperrors.NewInvalidArgument("unknown actor role", map[string]any{"role": actor.Role})
	}
	if actor.Role == domain.ActorRoleClub && actor.Name == "" {
		return apperrors.NewInvalidArgument("club actor name required", nil)
	}
	return nil
}

func requireLeagueAdmin(actor domain.Actor) error {
	if err := requireValidActor(actor); err != nil {
		return err
	}
	if !actor.IsLeagueAdmin() {
		return apperrors.NewForbidden("league admin role required")
	}
	return nil
}

// mapStoreError translates repository sentinels into the service taxonomy.
func mapStoreError(err error, resource string, details map[string]any) error {
	if err == nil {
		return nil
	}
	var domainErr *apperrors.DomainError
	if errors.As(err, &domainErr) {
		return err
	}
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.NewNotFound(resource, details)
	case errors.Is(err, repository.ErrAlreadyExists):
		return apperrors.NewAlreadyExists(resource+" already exists", details)
	default:
		return apperrors.NewInternalError(err)
	}
}
