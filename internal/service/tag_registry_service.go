package service

import (
	"context"
	"errors"
	"sort"

	"github.com/leaguedesk/roster-service/internal/domain"
	"github.com/leaguedesk/roster-service/internal/events"
	"github.com/leaguedesk/roster-service/internal/repository"
	apperrors "github.com/leaguedesk/roster-service/pkg/util/errorutil"
)

// TagRegistryService enumerates tags in use and applies global renames and deletes.
type TagRegistryService struct {
	governanceBase
}

// NewTagRegistryService constructs the service.
func NewTagRegistryService(deps GovernanceDependencies) *TagRegistryService {
	return &TagRegistryService{governanceBase: newGovernanceBase(deps)}
}

// ListTags counts tag usage across all records, most used first with ties in
// first-seen order. Catalog names nobody holds follow with a zero count.
func (s *TagRegistryService) ListTags(ctx context.Context) ([]domain.TagRegistryEntry, error) {
	records, err := s.store.Staff().List(ctx, repository.StaffFilter{})
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	catalog, err := s.store.Catalog().List(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return buildRegistry(records, catalog), nil
}

func buildRegistry(records []domain.StaffRecord, catalog []string) []domain.TagRegistryEntry {
	index := map[string]int{}
	entries := []domain.TagRegistryEntry{}
	for _, rec := range records {
		for _, tag := range rec.Tags {
			if i, ok := index[tag]; ok {
				entries[i].UsageCount++
				continue
			}
			index[tag] = len(entries)
			entries = append(entries, domain.TagRegistryEntry{Name: tag, UsageCount: 1})
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].UsageCount > entries[j].UsageCount
	})
	for _, name := range catalog {
		if _, used := index[name]; used {
			continue
		}
		index[name] = len(entries)
		entries = append(entries, domain.TagRegistryEntry{Name: name, UsageCount: 0})
	}
	return entries
}

// RenameTag replaces oldName with newName on every holder, in place. A
// record that already held newName keeps a single copy and still counts as
// updated. Returns the number of records changed.
func (s *TagRegistryService) RenameTag(ctx context.Context, actor domain.Actor, oldName, newName string) (int, error) {
	if err := requireLeagueAdmin(actor); err != nil {
		return 0, err
	}
	oldName = domain.NormalizeTagName(oldName)
	newName = domain.NormalizeTagName(newName)
	if oldName == "" || newName == "" {
		return 0, apperrors.NewInvalidArgument("tag names must not be empty", nil)
	}
	if oldName == newName {
		return 0, apperrors.NewInvalidArgument("new tag name must differ from the old name", map[string]any{"name": oldName})
	}

	var (
		updated []string
		touched bool
	)
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx repository.Store) error {
		updated = []string{}
		holders, err := tx.Staff().List(ctx, repository.StaffFilter{HoldingTag: &oldName})
		if err != nil {
			return apperrors.NewInternalError(err)
		}
		for _, rec := range holders {
			renamed, changed := domain.RenameInTags(rec.Tags, oldName, newName)
			if !changed {
				continue
			}
			if err := tx.Staff().UpdateTags(ctx, rec.ID, renamed); err != nil {
				return mapStoreError(err, "staff record", map[string]any{"staff_id": rec.ID})
			}
			updated = append(updated, rec.ID)
		}

		inCatalog, err := tx.Catalog().Exists(ctx, oldName)
		if err != nil {
			return apperrors.NewInternalError(err)
		}
		if inCatalog {
			if err := tx.Catalog().Rename(ctx, oldName, newName); err != nil {
				return apperrors.NewInternalError(err)
			}
		}
		touched = inCatalog || len(updated) > 0
		return nil
	})
	if err != nil {
		return 0, err
	}

	if touched {
		s.publish(ctx, s.newEvent(events.EventTagRenamed, oldName, actor, events.TagRenamedPayload{
			OldName:  oldName,
			NewName:  newName,
			StaffIDs: updated,
		}))
	}
	return len(updated), nil
}

// DeleteTag removes the tag from every holder, keeping the order of the
// remaining tags. Returns the number of records changed.
func (s *TagRegistryService) DeleteTag(ctx context.Context, actor domain.Actor, name string) (int, error) {
	if err := requireLeagueAdmin(actor); err != nil {
		return 0, err
	}
	name = domain.NormalizeTagName(name)
	if name == "" {
		return 0, apperrors.NewInvalidArgument("tag name must not be empty", nil)
	}

	var (
		updated []string
		touched bool
	)
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx repository.Store) error {
		updated = []string{}
		holders, err := tx.Staff().List(ctx, repository.StaffFilter{HoldingTag: &name})
		if err != nil {
			return apperrors.NewInternalError(err)
		}
		for _, rec := range holders {
			remaining := domain.SubtractTags(rec.Tags, []string{name})
			if err := tx.Staff().UpdateTags(ctx, rec.ID, remaining); err != nil {
				return mapStoreError(err, "staff record", map[string]any{"staff_id": rec.ID})
			}
			updated = append(updated, rec.ID)
		}

		inCatalog, err := tx.Catalog().Exists(ctx, name)
		if err != nil {
			return apperrors.NewInternalError(err)
		}
		if inCatalog {
			if err := tx.Catalog().Remove(ctx, name); err != nil {
				return apperrors.NewInternalError(err)
			}
		}
		touched = inCatalog || len(updated) > 0
		return nil
	})
	if err != nil {
		return 0, err
	}

	if touched {
		s.publish(ctx, s.newEvent(events.EventTagDeleted, name, actor, events.TagDeletedPayload{
			Name:     name,
			StaffIDs: updated,
		}))
	}
	return len(updated), nil
}

// CreateTag adds a name to the catalog of assignable tags. Names already in
// the catalog or currently held by any record are rejected.
func (s *TagRegistryService) CreateTag(ctx context.Context, actor domain.Actor, name string) error {
	if err := requireLeagueAdmin(actor); err != nil {
		return err
	}
	name = domain.NormalizeTagName(name)
	if name == "" {
		return apperrors.NewInvalidArgument("tag name must not be empty", nil)
	}
	details := map[string]any{"name": name}

	err := s.store.RunInTx(ctx, func(ctx context.Context, tx repository.Store) error {
		holders, err := tx.Staff().List(ctx, repository.StaffFilter{HoldingTag: &name})
		if err != nil {
			return apperrors.NewInternalError(err)
		}
		if len(holders) > 0 {
			return apperrors.NewAlreadyExists("tag already exists", details)
		}
		return mapStoreError(tx.Catalog().Add(ctx, name), "tag", details)
	})
	if err != nil {
		return err
	}

	s.publish(ctx, s.newEvent(events.EventTagCreated, name, actor, events.TagCreatedPayload{Name: name}))
	return nil
}

// ImportCatalog seeds assignable tag names at boot. Names already listed
// are skipped. Returns how many were added.
func (s *TagRegistryService) ImportCatalog(ctx context.Context, names []string) (int, error) {
	added := 0
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx repository.Store) error {
		added = 0
		for _, name := range names {
			name = domain.NormalizeTagName(name)
			if name == "" {
				continue
			}
			err := tx.Catalog().Add(ctx, name)
			if errors.Is(err, repository.ErrAlreadyExists) {
				continue
			}
			if err != nil {
				return apperrors.NewInternalError(err)
			}
			added++
		}
		return nil
	})
	return added, err
}
