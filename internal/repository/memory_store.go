package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/leaguedesk/roster-service/internal/domain"
)

type memoryState struct {
	staff        map[string]*domain.StaffRecord
	staffOrder   []string
	requests     map[string]*domain.TagChangeRequest
	requestOrder []string
	catalog      []string
}

func newMemoryState() *memoryState {
	return &memoryState{
		staff:    make(map[string]*domain.StaffRecord),
		requests: make(map[string]*domain.TagChangeRequest),
	}
}

func (st *memoryState) clone() *memoryState {
	cp := &memoryState{
		staff:        make(map[string]*domain.StaffRecord, len(st.staff)),
		staffOrder:   append([]string(nil), st.staffOrder...),
		requests:     make(map[string]*domain.TagChangeRequest, len(st.requests)),
		requestOrder: append([]string(nil), st.requestOrder...),
		catalog:      append([]string(nil), st.catalog...),
	}
	for id, rec := range st.staff {
		cp.staff[id] = rec.Clone()
	}
	for id, req := range st.requests {
		cp.requests[id] = req.Clone()
	}
	return cp
}

// MemoryStore is the process-local session store. Transactions work on a
// private copy of the state that replaces the live state on success.
type MemoryStore struct {
	mu    sync.RWMutex
	txMu  sync.Mutex
	state *memoryState
}

// NewMemoryStore constructs an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: newMemoryState()}
}

func (s *MemoryStore) Staff() StaffRepository {
	return &memoryStaffRepository{access: s.liveAccess()}
}

func (s *MemoryStore) Requests() ChangeRequestRepository {
	return &memoryRequestRepository{access: s.liveAccess()}
}

func (s *MemoryStore) Catalog() TagCatalogRepository {
	return &memoryCatalogRepository{access: s.liveAccess()}
}

// RunInTx serializes writers and commits fn's changes atomically.
func (s *MemoryStore) RunInTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	working := s.state.clone()
	s.mu.RUnlock()

	if err := fn(ctx, &memoryTxStore{state: working}); err != nil {
		return err
	}

	s.mu.Lock()
	s.state = working
	s.mu.Unlock()
	return nil
}

// stateAccess runs a callback against either the live state (locked) or a
// transaction's private state (already exclusive to the caller).
type stateAccess func(write bool, fn func(st *memoryState) error) error

func (s *MemoryStore) liveAccess() stateAccess {
	return func(write bool, fn func(st *memoryState) error) error {
		if write {
			s.mu.Lock()
			defer s.mu.Unlock()
		} else {
			s.mu.RLock()
			defer s.mu.RUnlock()
		}
		return fn(s.state)
	}
}

type memoryTxStore struct {
	state *memoryState
}

func (t *memoryTxStore) access() stateAccess {
	return func(_ bool, fn func(st *memoryState) error) error {
		return fn(t.state)
	}
}

func (t *memoryTxStore) Staff() StaffRepository {
	return &memoryStaffRepository{access: t.access()}
}

func (t *memoryTxStore) Requests() ChangeRequestRepository {
	return &memoryRequestRepository{access: t.access()}
}

func (t *memoryTxStore) Catalog() TagCatalogRepository {
	return &memoryCatalogRepository{access: t.access()}
}

func (t *memoryTxStore) RunInTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error {
	return fn(ctx, t)
}

type memoryStaffRepository struct {
	access stateAccess
}

func (r *memoryStaffRepository) Create(_ context.Context, staff *domain.StaffRecord) error {
	return r.access(true, func(st *memoryState) error {
		if _, exists := st.staff[staff.ID]; exists {
			return ErrAlreadyExists
		}
		st.staff[staff.ID] = staff.Clone()
		st.staffOrder = append(st.staffOrder, staff.ID)
		return nil
	})
}

func (r *memoryStaffRepository) GetByID(_ context.Context, id string) (*domain.StaffRecord, error) {
	var out *domain.StaffRecord
	err := r.access(false, func(st *memoryState) error {
		rec, ok := st.staff[id]
		if !ok {
			return ErrNotFound
		}
		out = rec.Clone()
		return nil
	})
	return out, err
}

func (r *memoryStaffRepository) List(_ context.Context, filter StaffFilter) ([]domain.StaffRecord, error) {
	var out []domain.StaffRecord
	err := r.access(false, func(st *memoryState) error {
		out = make([]domain.StaffRecord, 0, len(st.staffOrder))
		for _, id := range st.staffOrder {
			rec := st.staff[id]
			if filter.HoldingTag != nil && !rec.HasTag(*filter.HoldingTag) {
				continue
			}
			out = append(out, *rec.Clone())
		}
		return nil
	})
	return out, err
}

func (r *memoryStaffRepository) UpdateTags(_ context.Context, id string, tags []string) error {
	return r.access(true, func(st *memoryState) error {
		rec, ok := st.staff[id]
		if !ok {
			return ErrNotFound
		}
		rec.Tags = domain.CloneTags(tags)
		return nil
	})
}

type memoryRequestRepository struct {
	access stateAccess
}

func (r *memoryRequestRepository) Create(_ context.Context, req *domain.TagChangeRequest) error {
	return r.access(true, func(st *memoryState) error {
		if _, exists := st.requests[req.ID]; exists {
			return ErrAlreadyExists
		}
		st.requests[req.ID] = req.Clone()
		st.requestOrder = append(st.requestOrder, req.ID)
		return nil
	})
}

func (r *memoryRequestRepository) GetByID(_ context.Context, id string) (*domain.TagChangeRequest, error) {
	var out *domain.TagChangeRequest
	err := r.access(false, func(st *memoryState) error {
		req, ok := st.requests[id]
		if !ok {
			return ErrNotFound
		}
		out = req.Clone()
		return nil
	})
	return out, err
}

func (r *memoryRequestRepository) ListPending(_ context.Context) ([]domain.TagChangeRequest, error) {
	return r.collect(func(req *domain.TagChangeRequest) bool { return req.IsPending() })
}

func (r *memoryRequestRepository) ListByActor(_ context.Context, actor string) ([]domain.TagChangeRequest, error) {
	return r.collect(func(req *domain.TagChangeRequest) bool { return req.RequestingActor == actor })
}

func (r *memoryRequestRepository) CountPending(_ context.Context) (int, error) {
	count := 0
	err := r.access(false, func(st *memoryState) error {
		for _, req := range st.requests {
			if req.IsPending() {
				count++
			}
		}
		return nil
	})
	return count, err
}

// collect returns matching requests oldest first; insertion order breaks timestamp ties.
func (r *memoryRequestRepository) collect(match func(*domain.TagChangeRequest) bool) ([]domain.TagChangeRequest, error) {
	var out []domain.TagChangeRequest
	err := r.access(false, func(st *memoryState) error {
		out = make([]domain.TagChangeRequest, 0)
		for _, id := range st.requestOrder {
			req := st.requests[id]
			if match(req) {
				out = append(out, *req.Clone())
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *memoryRequestRepository) Resolve(_ context.Context, id string, resolution Resolution) (*domain.TagChangeRequest, error) {
	var out *domain.TagChangeRequest
	err := r.access(true, func(st *memoryState) error {
		req, ok := st.requests[id]
		if !ok || !req.IsPending() {
			return ErrNotFound
		}
		if err := req.Resolve(resolution.Status, resolution.Note, resolution.ResolvedBy, resolution.ResolvedAt); err != nil {
			return err
		}
		out = req.Clone()
		return nil
	})
	return out, err
}

type memoryCatalogRepository struct {
	access stateAccess
}

func (r *memoryCatalogRepository) Add(_ context.Context, name string) error {
	return r.access(true, func(st *memoryState) error {
		for _, existing := range st.catalog {
			if existing == name {
				return ErrAlreadyExists
			}
		}
		st.catalog = append(st.catalog, name)
		return nil
	})
}

func (r *memoryCatalogRepository) Exists(_ context.Context, name string) (bool, error) {
	found := false
	err := r.access(false, func(st *memoryState) error {
		for _, existing := range st.catalog {
			if existing == name {
				found = true
				break
			}
		}
		return nil
	})
	return found, err
}

func (r *memoryCatalogRepository) List(_ context.Context) ([]string, error) {
	var out []string
	err := r.access(false, func(st *memoryState) error {
		out = append([]string{}, st.catalog...)
		return nil
	})
	return out, err
}

// Rename renames a catalog entry; if newName is already listed the old entry is dropped.
func (r *memoryCatalogRepository) Rename(_ context.Context, oldName, newName string) error {
	return r.access(true, func(st *memoryState) error {
		renamed, _ := domain.RenameInTags(st.catalog, oldName, newName)
		st.catalog = renamed
		return nil
	})
}

func (r *memoryCatalogRepository) Remove(_ context.Context, name string) error {
	return r.access(true, func(st *memoryState) error {
		st.catalog = domain.SubtractTags(st.catalog, []string{name})
		return nil
	})
}
