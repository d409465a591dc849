package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/leaguedesk/roster-service/internal/domain"
)

type MemoryStoreSuite struct {
	suite.Suite
	store *MemoryStore
	ctx   context.Context
}

func (s *MemoryStoreSuite) SetupTest() {
	s.store = NewMemoryStore()
	s.ctx = context.Background()
	for _, rec := range []domain.StaffRecord{
		{ID: "1", Name: "Ana Ortiz", Tags: []string{"Proven"}, ProfilePrivacy: domain.ProfilePrivacyPublic},
		{ID: "2", Name: "Ben Cole", Tags: []string{"Emerging", "Proven"}, ProfilePrivacy: domain.ProfilePrivacyPrivate},
		{ID: "3", Name: "Cai Wen", Tags: []string{}, ProfilePrivacy: domain.ProfilePrivacyPublic},
	} {
		rec := rec
		require.NoError(s.T(), s.store.Staff().Create(s.ctx, &rec))
	}
}

func (s *MemoryStoreSuite) TestCreateDuplicateStaff() {
	err := s.store.Staff().Create(s.ctx, &domain.StaffRecord{ID: "1"})
	assert.ErrorIs(s.T(), err, ErrAlreadyExists)
}

func (s *MemoryStoreSuite) TestListPreservesInsertionOrder() {
	list, err := s.store.Staff().List(s.ctx, StaffFilter{})
	require.NoError(s.T(), err)
	require.Len(s.T(), list, 3)
	assert.Equal(s.T(), []string{"1", "2", "3"}, []string{list[0].ID, list[1].ID, list[2].ID})
}

func (s *MemoryStoreSuite) TestListHoldingTag() {
	tag := "Proven"
	list, err := s.store.Staff().List(s.ctx, StaffFilter{HoldingTag: &tag})
	require.NoError(s.T(), err)
	require.Len(s.T(), list, 2)
	assert.Equal(s.T(), "1", list[0].ID)
	assert.Equal(s.T(), "2", list[1].ID)
}

func (s *MemoryStoreSuite) TestGetByIDReturnsCopy() {
	rec, err := s.store.Staff().GetByID(s.ctx, "1")
	require.NoError(s.T(), err)
	rec.Tags[0] = "Mutated"

	again, err := s.store.Staff().GetByID(s.ctx, "1")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), []string{"Proven"}, again.Tags)
}

func (s *MemoryStoreSuite) TestUpdateTagsMissing() {
	err := s.store.Staff().UpdateTags(s.ctx, "missing", []string{"X"})
	assert.ErrorIs(s.T(), err, ErrNotFound)
}

func (s *MemoryStoreSuite) TestRunInTxCommits() {
	err := s.store.RunInTx(s.ctx, func(ctx context.Context, tx Store) error {
		return tx.Staff().UpdateTags(ctx, "3", []string{"Homegrown"})
	})
	require.NoError(s.T(), err)

	rec, err := s.store.Staff().GetByID(s.ctx, "3")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), []string{"Homegrown"}, rec.Tags)
}

func (s *MemoryStoreSuite) TestRunInTxRollsBackOnError() {
	boom := errors.New("boom")
	err := s.store.RunInTx(s.ctx, func(ctx context.Context, tx Store) error {
		require.NoError(s.T(), tx.Staff().UpdateTags(ctx, "1", []string{"Elite"}))
		require.NoError(s.T(), tx.Catalog().Add(ctx, "Elite"))
		return boom
	})
	assert.ErrorIs(s.T(), err, boom)

	rec, err := s.store.Staff().GetByID(s.ctx, "1")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), []string{"Proven"}, rec.Tags)

	exists, err := s.store.Catalog().Exists(s.ctx, "Elite")
	require.NoError(s.T(), err)
	assert.False(s.T(), exists)
}

func (s *MemoryStoreSuite) TestUncommittedChangesInvisibleToReaders() {
	inside := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		done <- s.store.RunInTx(s.ctx, func(ctx context.Context, tx Store) error {
			if err := tx.Staff().UpdateTags(ctx, "1", []string{"Elite"}); err != nil {
				return err
			}
			close(inside)
			<-release
			return nil
		})
	}()

	<-inside
	rec, err := s.store.Staff().GetByID(s.ctx, "1")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), []string{"Proven"}, rec.Tags)

	close(release)
	require.NoError(s.T(), <-done)

	rec, err = s.store.Staff().GetByID(s.ctx, "1")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), []string{"Elite"}, rec.Tags)
}

func (s *MemoryStoreSuite) TestRequestsOrderingAndResolve() {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	reqs := []domain.TagChangeRequest{
		{ID: "r-late", StaffID: "1", RequestingActor: "Harbor FC", Status: domain.RequestStatusPending, CreatedAt: base.Add(time.Minute)},
		{ID: "r-early", StaffID: "3", RequestingActor: "Harbor FC", Status: domain.RequestStatusPending, CreatedAt: base},
		{ID: "r-other", StaffID: "1", RequestingActor: "Summit United", Status: domain.RequestStatusPending, CreatedAt: base.Add(2 * time.Minute)},
	}
	for i := range reqs {
		require.NoError(s.T(), s.store.Requests().Create(s.ctx, &reqs[i]))
	}

	pending, err := s.store.Requests().ListPending(s.ctx)
	require.NoError(s.T(), err)
	require.Len(s.T(), pending, 3)
	assert.Equal(s.T(), "r-early", pending[0].ID)
	assert.Equal(s.T(), "r-late", pending[1].ID)
	assert.Equal(s.T(), "r-other", pending[2].ID)

	resolved, err := s.store.Requests().Resolve(s.ctx, "r-early", Resolution{
		Status:     domain.RequestStatusApproved,
		Note:       "ok",
		ResolvedBy: "League Office",
		ResolvedAt: base.Add(time.Hour),
	})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), domain.RequestStatusApproved, resolved.Status)

	_, err = s.store.Requests().Resolve(s.ctx, "r-early", Resolution{Status: domain.RequestStatusRejected})
	assert.ErrorIs(s.T(), err, ErrNotFound)

	count, err := s.store.Requests().CountPending(s.ctx)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 2, count)

	ledger, err := s.store.Requests().ListByActor(s.ctx, "Harbor FC")
	require.NoError(s.T(), err)
	require.Len(s.T(), ledger, 2)
	assert.Equal(s.T(), domain.RequestStatusApproved, ledger[0].Status)
	assert.Equal(s.T(), "ok", ledger[0].ResponseNote)
	assert.Equal(s.T(), domain.RequestStatusPending, ledger[1].Status)
}

func (s *MemoryStoreSuite) TestCatalogRenameCollapses() {
	require.NoError(s.T(), s.store.Catalog().Add(s.ctx, "Proven"))
	require.NoError(s.T(), s.store.Catalog().Add(s.ctx, "Elite"))
	assert.ErrorIs(s.T(), s.store.Catalog().Add(s.ctx, "Elite"), ErrAlreadyExists)

	require.NoError(s.T(), s.store.Catalog().Rename(s.ctx, "Proven", "Elite"))
	names, err := s.store.Catalog().List(s.ctx)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), []string{"Elite"}, names)

	require.NoError(s.T(), s.store.Catalog().Remove(s.ctx, "Elite"))
	names, err = s.store.Catalog().List(s.ctx)
	require.NoError(s.T(), err)
	assert.Empty(s.T(), names)
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func TestMemoryStore_ConcurrentTransactions(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Staff().Create(ctx, &domain.StaffRecord{ID: "1", Tags: []string{}}))

	const writers = 50
	var wg sync.WaitGroup
	wg.Add(writers)
	for i := 0; i < writers; i++ {
		go func() {
			defer wg.Done()
			err := store.RunInTx(ctx, func(ctx context.Context, tx Store) error {
				return tx.Requests().Create(ctx, &domain.TagChangeRequest{
					ID:        uuid.NewString(),
					StaffID:   "1",
					Status:    domain.RequestStatusPending,
					CreatedAt: time.Now(),
				})
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	count, err := store.Requests().CountPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, writers, count, "serialized transactions must not lose writes")
}
