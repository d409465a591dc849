package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/leaguedesk/roster-service/internal/domain"
	"github.com/leaguedesk/roster-service/internal/events"
	"github.com/leaguedesk/roster-service/internal/repository"
	apperrors "github.com/leaguedesk/roster-service/pkg/util/errorutil"
)

var (
	league    = domain.Actor{Role: domain.ActorRoleLeagueAdmin, Name: "League Office"}
	riverside = domain.Actor{Role: domain.ActorRoleClub, Name: "Riverside FC"}
	northgate = domain.Actor{Role: domain.ActorRoleClub, Name: "Northgate Athletic"}
)

type fakeMetrics struct {
	mu          sync.Mutex
	proposals   map[string]int
	resolutions map[domain.RequestStatus]int
	pending     int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{proposals: map[string]int{}, resolutions: map[domain.RequestStatus]int{}}
}

func (m *fakeMetrics) ObserveProposal(role domain.ActorRole, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.proposals[string(role)+"/"+outcome]++
}

func (m *fakeMetrics) ObserveResolution(status domain.RequestStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resolutions[status]++
}

func (m *fakeMetrics) SetPendingRequests(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = count
}

type eventRecorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *eventRecorder) handle(_ context.Context, event events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *eventRecorder) types() []events.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type GovernanceSuite struct {
	suite.Suite
	ctx      context.Context
	store    *repository.MemoryStore
	metrics  *fakeMetrics
	recorder *eventRecorder

	assignments *TagAssignmentService
	approvals   *ApprovalService
	registry    *TagRegistryService
	staff       *StaffService
}

func TestGovernanceSuite(t *testing.T) {
	suite.Run(t, new(GovernanceSuite))
}

func (s *GovernanceSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = repository.NewMemoryStore()
	s.metrics = newFakeMetrics()
	s.recorder = &eventRecorder{}

	dispatcher := events.NewInMemoryDispatcher()
	events.SubscribeAll(dispatcher, s.recorder.handle)

	clock := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	var clockMu sync.Mutex
	seq := 0
	deps := GovernanceDependencies{
		Store:      s.store,
		Dispatcher: dispatcher,
		Metrics:    s.metrics,
		Now: func() time.Time {
			clockMu.Lock()
			defer clockMu.Unlock()
			clock = clock.Add(time.Second)
			return clock
		},
		NewID: func() string {
			clockMu.Lock()
			defer clockMu.Unlock()
			seq++
			return fmt.Sprintf("req-%d", seq)
		},
	}
	s.assignments = NewTagAssignmentService(deps)
	s.approvals = NewApprovalService(deps)
	s.registry = NewTagRegistryService(deps)
	s.staff = NewStaffService(StaffDependencies{StaffRepo: s.store.Staff()})

	s.seed(
		domain.StaffRecord{ID: "1", Name: "Dana Reyes", Tags: []string{"Proven"}, ProfilePrivacy: domain.ProfilePrivacyPublic},
		domain.StaffRecord{ID: "2", Name: "Marcus Bell", Tags: []string{"Proven", "Tactician"}, ProfilePrivacy: domain.ProfilePrivacyPublic},
		domain.StaffRecord{ID: "3", Name: "Priya Nair", Tags: []string{"Elite", "Proven"}, ProfilePrivacy: domain.ProfilePrivacyPrivate},
		domain.StaffRecord{ID: "4", Name: "Tomas Lindqvist", Tags: []string{"a", "b", "c", "d"}, ProfilePrivacy: domain.ProfilePrivacyPublic},
	)
}

func (s *GovernanceSuite) seed(records ...domain.StaffRecord) {
	n, err := s.staff.ImportStaff(s.ctx, records)
	s.Require().NoError(err)
	s.Require().Equal(len(records), n)
}

func (s *GovernanceSuite) tagsOf(id string) []string {
	rec, err := s.store.Staff().GetByID(s.ctx, id)
	s.Require().NoError(err)
	return rec.Tags
}

func (s *GovernanceSuite) TestLeagueProposalAppliesImmediately() {
	outcome, err := s.assignments.ProposeTagChange(s.ctx, league, "1", []string{"Proven", "Emerging"})
	s.Require().NoError(err)

	s.Equal(OutcomeApplied, outcome.Kind)
	s.Empty(outcome.RequestID)
	s.Equal([]string{"Proven", "Emerging"}, s.tagsOf("1"))

	pending, err := s.approvals.ListPending(s.ctx, league)
	s.Require().NoError(err)
	s.Empty(pending)
	s.Equal(1, s.metrics.proposals["LEAGUE_ADMIN/applied"])
	s.Equal([]events.EventType{events.EventTagsApplied}, s.recorder.types())
}

func (s *GovernanceSuite) TestClubProposalQueuesWithSnapshot() {
	outcome, err := s.assignments.ProposeTagChange(s.ctx, riverside, "1", []string{"Proven", "Emerging"})
	s.Require().NoError(err)

	s.Equal(OutcomeQueued, outcome.Kind)
	s.Equal([]string{"Proven"}, outcome.Tags)
	s.Equal([]string{"Proven"}, s.tagsOf("1"))

	pending, err := s.approvals.ListPending(s.ctx, league)
	s.Require().NoError(err)
	s.Require().Len(pending, 1)
	req := pending[0]
	s.Equal(outcome.RequestID, req.ID)
	s.Equal("1", req.StaffID)
	s.Equal("Riverside FC", req.RequestingActor)
	s.Equal([]string{"Proven"}, req.OldTags)
	s.Equal([]string{"Proven", "Emerging"}, req.NewTags)
	s.Equal(domain.RequestStatusPending, req.Status)

	ledger, err := s.approvals.ListForActor(s.ctx, riverside, riverside.Name)
	s.Require().NoError(err)
	s.Require().Len(ledger, 1)
	s.Equal(req.ID, ledger[0].ID)

	s.Equal(1, s.metrics.pending)
	s.Equal([]events.EventType{events.EventTagChangeQueued}, s.recorder.types())
}

func (s *GovernanceSuite) TestApproveAppliesProposedTags() {
	outcome, err := s.assignments.ProposeTagChange(s.ctx, riverside, "1", []string{"Proven", "Emerging"})
	s.Require().NoError(err)

	resolved, err := s.approvals.Approve(s.ctx, league, outcome.RequestID, "looks good")
	s.Require().NoError(err)
	s.Equal(domain.RequestStatusApproved, resolved.Status)
	s.Equal("League Office", resolved.ResolvedBy)
	s.NotNil(resolved.ResolvedAt)

	s.Equal([]string{"Proven", "Emerging"}, s.tagsOf("1"))

	pending, err := s.approvals.ListPending(s.ctx, league)
	s.Require().NoError(err)
	s.Empty(pending)

	ledger, err := s.approvals.ListForActor(s.ctx, riverside, riverside.Name)
	s.Require().NoError(err)
	s.Require().Len(ledger, 1)
	s.Equal(domain.RequestStatusApproved, ledger[0].Status)
	s.Equal("looks good", ledger[0].ResponseNote)

	s.Equal(0, s.metrics.pending)
	s.Equal(1, s.metrics.resolutions[domain.RequestStatusApproved])
	s.Equal([]events.EventType{events.EventTagChangeQueued, events.EventTagChangeApproved}, s.recorder.types())
}

func (s *GovernanceSuite) TestRejectLeavesRecordUntouched() {
	outcome, err := s.assignments.ProposeTagChange(s.ctx, riverside, "1", []string{"Emerging"})
	s.Require().NoError(err)

	resolved, err := s.approvals.Reject(s.ctx, league, outcome.RequestID, "not yet")
	s.Require().NoError(err)
	s.Equal(domain.RequestStatusRejected, resolved.Status)
	s.Equal([]string{"Proven"}, s.tagsOf("1"))

	ledger, err := s.approvals.ListForActor(s.ctx, riverside, riverside.Name)
	s.Require().NoError(err)
	s.Require().Len(ledger, 1)
	s.Equal(domain.RequestStatusRejected, ledger[0].Status)
	s.Equal("not yet", ledger[0].ResponseNote)
}

func (s *GovernanceSuite) TestSecondResolutionIsNotFound() {
	outcome, err := s.assignments.ProposeTagChange(s.ctx, riverside, "1", []string{"Emerging"})
	s.Require().NoError(err)

	_, err = s.approvals.Approve(s.ctx, league, outcome.RequestID, "")
	s.Require().NoError(err)

	_, err = s.approvals.Approve(s.ctx, league, outcome.RequestID, "")
	s.ErrorIs(err, apperrors.ErrNotFound)
	_, err = s.approvals.Reject(s.ctx, league, outcome.RequestID, "")
	s.ErrorIs(err, apperrors.ErrNotFound)

	_, err = s.approvals.Approve(s.ctx, league, "missing", "")
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *GovernanceSuite) TestStaleApprovalOverwritesWithProposedSet() {
	first, err := s.assignments.ProposeTagChange(s.ctx, riverside, "1", []string{"Proven", "Emerging"})
	s.Require().NoError(err)
	_, err = s.assignments.ProposeTagChange(s.ctx, league, "1", []string{"Veteran"})
	s.Require().NoError(err)

	_, err = s.approvals.Approve(s.ctx, league, first.RequestID, "")
	s.Require().NoError(err)
	s.Equal([]string{"Proven", "Emerging"}, s.tagsOf("1"))
}

func (s *GovernanceSuite) TestPendingQueueIsOldestFirst() {
	a, err := s.assignments.ProposeTagChange(s.ctx, riverside, "1", []string{"A"})
	s.Require().NoError(err)
	b, err := s.assignments.ProposeTagChange(s.ctx, northgate, "2", []string{"B"})
	s.Require().NoError(err)
	c, err := s.assignments.ProposeTagChange(s.ctx, riverside, "1", []string{"C"})
	s.Require().NoError(err)

	pending, err := s.approvals.ListPending(s.ctx, league)
	s.Require().NoError(err)
	s.Require().Len(pending, 3)
	s.Equal([]string{a.RequestID, b.RequestID, c.RequestID}, []string{pending[0].ID, pending[1].ID, pending[2].ID})

	ledger, err := s.approvals.ListForActor(s.ctx, riverside, riverside.Name)
	s.Require().NoError(err)
	s.Len(ledger, 2)
}

func (s *GovernanceSuite) TestInvalidTagSets() {
	_, err := s.assignments.ProposeTagChange(s.ctx, league, "1", []string{"a", "b", "c", "d", "e", "f"})
	s.ErrorIs(err, apperrors.ErrInvalidTagSet)
	s.ErrorIs(err, domain.ErrTooManyTags)

	_, err = s.assignments.ProposeTagChange(s.ctx, riverside, "1", []string{"Proven", " Proven"})
	s.ErrorIs(err, apperrors.ErrInvalidTagSet)
	s.ErrorIs(err, domain.ErrDuplicateTag)

	s.Equal([]string{"Proven"}, s.tagsOf("1"))
	pending, err := s.approvals.ListPending(s.ctx, league)
	s.Require().NoError(err)
	s.Empty(pending)
	s.Empty(s.recorder.types())
}

func (s *GovernanceSuite) TestEmptyTagSetIsValid() {
	outcome, err := s.assignments.ProposeTagChange(s.ctx, league, "2", nil)
	s.Require().NoError(err)
	s.Equal(OutcomeApplied, outcome.Kind)
	s.Empty(s.tagsOf("2"))
}

func (s *GovernanceSuite) TestUnknownRecordIsNotFound() {
	_, err := s.assignments.ProposeTagChange(s.ctx, league, "404", []string{"x"})
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *GovernanceSuite) TestClubCannotTargetPrivateRecord() {
	_, err := s.assignments.ProposeTagChange(s.ctx, riverside, "3", []string{"x"})
	s.ErrorIs(err, apperrors.ErrNotFound)

	_, err = s.staff.GetStaff(s.ctx, riverside, "3")
	s.ErrorIs(err, apperrors.ErrNotFound)

	rec, err := s.staff.GetStaff(s.ctx, league, "3")
	s.Require().NoError(err)
	s.Equal("Priya Nair", rec.Name)
}

func (s *GovernanceSuite) TestInvalidActor() {
	_, err := s.assignments.ProposeTagChange(s.ctx, domain.Actor{Role: "OWNER", Name: "x"}, "1", nil)
	s.ErrorIs(err, apperrors.ErrInvalidArgument)

	_, err = s.assignments.ProposeTagChange(s.ctx, domain.Actor{Role: domain.ActorRoleClub}, "1", nil)
	s.ErrorIs(err, apperrors.ErrInvalidArgument)
}

func (s *GovernanceSuite) TestLeagueOnlyOperationsAreForbiddenToClubs() {
	_, err := s.approvals.ListPending(s.ctx, riverside)
	s.ErrorIs(err, apperrors.ErrForbidden)

	outcome, err := s.assignments.ProposeTagChange(s.ctx, riverside, "1", []string{"Emerging"})
	s.Require().NoError(err)
	_, err = s.approvals.Approve(s.ctx, riverside, outcome.RequestID, "")
	s.ErrorIs(err, apperrors.ErrForbidden)
	_, err = s.approvals.Reject(s.ctx, riverside, outcome.RequestID, "")
	s.ErrorIs(err, apperrors.ErrForbidden)

	_, err = s.registry.RenameTag(s.ctx, riverside, "Proven", "Elite")
	s.ErrorIs(err, apperrors.ErrForbidden)
	_, err = s.registry.DeleteTag(s.ctx, riverside, "Proven")
	s.ErrorIs(err, apperrors.ErrForbidden)
	s.ErrorIs(s.registry.CreateTag(s.ctx, riverside, "Scout"), apperrors.ErrForbidden)

	_, err = s.approvals.ListForActor(s.ctx, riverside, northgate.Name)
	s.ErrorIs(err, apperrors.ErrForbidden)
	_, err = s.approvals.ListForActor(s.ctx, league, riverside.Name)
	s.NoError(err)
}

func (s *GovernanceSuite) TestVisibilityFilter() {
	clubView, err := s.staff.ListStaff(s.ctx, riverside)
	s.Require().NoError(err)
	ids := make([]string, 0, len(clubView))
	for _, rec := range clubView {
		ids = append(ids, rec.ID)
	}
	s.Equal([]string{"1", "2", "4"}, ids)

	leagueView, err := s.staff.ListStaff(s.ctx, league)
	s.Require().NoError(err)
	s.Len(leagueView, 4)

	s.Empty(VisibleRecords(leagueView, "OWNER"))
}

func (s *GovernanceSuite) TestBulkAddSkipsMissingRecords() {
	result, err := s.assignments.BulkApplyTags(s.ctx, league, BulkInput{
		StaffIDs: []string{"1", "2", "9"},
		Action:   BulkActionAdd,
		Tags:     []string{"Homegrown"},
	})
	s.Require().NoError(err)

	s.Equal(2, result.AppliedCount)
	s.Equal(0, result.QueuedCount)
	s.Equal(1, result.SkippedCount)
	s.Equal([]string{"9"}, result.SkippedIDs)
	s.Equal([]string{"Proven", "Homegrown"}, s.tagsOf("1"))
	s.Equal([]string{"Proven", "Tactician", "Homegrown"}, s.tagsOf("2"))
}

func (s *GovernanceSuite) TestBulkAddTruncatesAtCap() {
	result, err := s.assignments.BulkApplyTags(s.ctx, league, BulkInput{
		StaffIDs: []string{"4"},
		Action:   BulkActionAdd,
		Tags:     []string{"e", "f"},
	})
	s.Require().NoError(err)

	s.Equal(1, result.AppliedCount)
	s.Equal(1, result.TruncatedCount)
	s.Equal([]string{"a", "b", "c", "d", "e"}, s.tagsOf("4"))
}

func (s *GovernanceSuite) TestBulkRemove() {
	result, err := s.assignments.BulkApplyTags(s.ctx, league, BulkInput{
		StaffIDs: []string{"1", "2", "2"},
		Action:   BulkActionRemove,
		Tags:     []string{"Proven"},
	})
	s.Require().NoError(err)

	s.Equal(2, result.AppliedCount)
	s.Empty(s.tagsOf("1"))
	s.Equal([]string{"Tactician"}, s.tagsOf("2"))
}

func (s *GovernanceSuite) TestBulkByClubQueuesPerRecord() {
	result, err := s.assignments.BulkApplyTags(s.ctx, riverside, BulkInput{
		StaffIDs: []string{"1", "2", "3"},
		Action:   BulkActionAdd,
		Tags:     []string{"Homegrown"},
	})
	s.Require().NoError(err)

	s.Equal(0, result.AppliedCount)
	s.Equal(2, result.QueuedCount)
	s.Len(result.RequestIDs, 2)
	s.Equal([]string{"3"}, result.SkippedIDs)
	s.Equal([]string{"Proven"}, s.tagsOf("1"))

	pending, err := s.approvals.ListPending(s.ctx, league)
	s.Require().NoError(err)
	s.Require().Len(pending, 2)
	s.Equal([]string{"Proven", "Homegrown"}, pending[0].NewTags)
	s.Equal(2, s.metrics.pending)
}

func (s *GovernanceSuite) TestBulkRejectsBadInput() {
	_, err := s.assignments.BulkApplyTags(s.ctx, league, BulkInput{StaffIDs: []string{"1"}, Action: "replace", Tags: []string{"x"}})
	s.ErrorIs(err, apperrors.ErrInvalidArgument)

	_, err = s.assignments.BulkApplyTags(s.ctx, league, BulkInput{StaffIDs: []string{"1"}, Action: BulkActionAdd})
	s.ErrorIs(err, apperrors.ErrInvalidArgument)
}

func (s *GovernanceSuite) TestListTagsCountsUsage() {
	s.Require().NoError(s.registry.CreateTag(s.ctx, league, "Scout"))

	entries, err := s.registry.ListTags(s.ctx)
	s.Require().NoError(err)

	s.Equal(domain.TagRegistryEntry{Name: "Proven", UsageCount: 3}, entries[0])
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name)
	}
	s.Equal([]string{"Proven", "Tactician", "Elite", "a", "b", "c", "d", "Scout"}, names)
	s.Equal(0, entries[len(entries)-1].UsageCount)
}

func (s *GovernanceSuite) TestRenameTagMergesWithoutDuplicates() {
	updated, err := s.registry.RenameTag(s.ctx, league, "Proven", "Elite")
	s.Require().NoError(err)
	s.Equal(3, updated)

	s.Equal([]string{"Elite"}, s.tagsOf("1"))
	s.Equal([]string{"Elite", "Tactician"}, s.tagsOf("2"))
	s.Equal([]string{"Elite"}, s.tagsOf("3"))

	entries, err := s.registry.ListTags(s.ctx)
	s.Require().NoError(err)
	for _, e := range entries {
		s.NotEqual("Proven", e.Name)
		if e.Name == "Elite" {
			s.Equal(3, e.UsageCount)
		}
	}
	s.Equal([]events.EventType{events.EventTagRenamed}, s.recorder.types())
}

func (s *GovernanceSuite) TestRenameRejectsBlankOrSameName() {
	_, err := s.registry.RenameTag(s.ctx, league, "Proven", " ")
	s.ErrorIs(err, apperrors.ErrInvalidArgument)
	_, err = s.registry.RenameTag(s.ctx, league, "Proven", "Proven")
	s.ErrorIs(err, apperrors.ErrInvalidArgument)
}

func (s *GovernanceSuite) TestRenameUnusedTagIsNoop() {
	updated, err := s.registry.RenameTag(s.ctx, league, "Ghost", "Spirit")
	s.Require().NoError(err)
	s.Zero(updated)
	s.Empty(s.recorder.types())
}

func (s *GovernanceSuite) TestDeleteTagRemovesFromHolders() {
	updated, err := s.registry.DeleteTag(s.ctx, league, "Proven")
	s.Require().NoError(err)
	s.Equal(3, updated)

	s.Empty(s.tagsOf("1"))
	s.Equal([]string{"Tactician"}, s.tagsOf("2"))
	s.Equal([]string{"Elite"}, s.tagsOf("3"))
}

func (s *GovernanceSuite) TestCreateTagRejectsExistingNames() {
	s.ErrorIs(s.registry.CreateTag(s.ctx, league, "Proven"), apperrors.ErrAlreadyExists)

	s.Require().NoError(s.registry.CreateTag(s.ctx, league, "Scout"))
	s.ErrorIs(s.registry.CreateTag(s.ctx, league, "Scout"), apperrors.ErrAlreadyExists)
	s.ErrorIs(s.registry.CreateTag(s.ctx, league, ""), apperrors.ErrInvalidArgument)
}

func (s *GovernanceSuite) TestImportCatalogSkipsExisting() {
	added, err := s.registry.ImportCatalog(s.ctx, []string{"Scout", "Scout", " ", "Mentor"})
	s.Require().NoError(err)
	s.Equal(2, added)

	added, err = s.registry.ImportCatalog(s.ctx, []string{"Scout"})
	s.Require().NoError(err)
	s.Zero(added)
}

func (s *GovernanceSuite) TestImportStaffSkipsExistingAndValidates() {
	n, err := s.staff.ImportStaff(s.ctx, []domain.StaffRecord{{ID: "1", Name: "dup"}})
	s.Require().NoError(err)
	s.Zero(n)

	_, err = s.staff.ImportStaff(s.ctx, []domain.StaffRecord{{ID: "7", Tags: []string{"a", "a"}}})
	s.ErrorIs(err, apperrors.ErrInvalidTagSet)
}

func (s *GovernanceSuite) TestImportStaffRejectsUnknownPrivacy() {
	n, err := s.staff.ImportStaff(s.ctx, []domain.StaffRecord{{ID: "8", Name: "Hidden", ProfilePrivacy: "Hidden"}})
	s.ErrorIs(err, apperrors.ErrValidationFailed)
	s.Zero(n)

	_, err = s.staff.GetStaff(s.ctx, riverside, "8")
	s.ErrorIs(err, apperrors.ErrNotFound)
	_, err = s.staff.GetStaff(s.ctx, league, "8")
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *GovernanceSuite) TestConcurrentResolutionsSucceedOnce() {
	outcome, err := s.assignments.ProposeTagChange(s.ctx, riverside, "1", []string{"Emerging"})
	s.Require().NoError(err)

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			var err error
			if i%2 == 0 {
				_, err = s.approvals.Approve(s.ctx, league, outcome.RequestID, "")
			} else {
				_, err = s.approvals.Reject(s.ctx, league, outcome.RequestID, "")
			}
			if err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()
	s.Equal(1, successes)
}
