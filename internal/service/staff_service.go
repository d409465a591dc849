package service

import (
	"context"
	"errors"

	"github.com/leaguedesk/roster-service/internal/domain"
	"github.com/leaguedesk/roster-service/internal/repository"
	apperrors "github.com/leaguedesk/roster-service/pkg/util/errorutil"
)

// StaffService serves the roster read side and imports staff records.
type StaffService struct {
	staff   repository.StaffRepository
	maxTags int
}

// StaffDependencies encapsulates repositories required for roster reads.
type StaffDependencies struct {
	StaffRepo repository.StaffRepository
	MaxTags   int
}

// NewStaffService constructs the service.
func NewStaffService(deps StaffDependencies) *StaffService {
	maxTags := deps.MaxTags
	if maxTags <= 0 || maxTags > domain.MaxTags {
		maxTags = domain.MaxTags
	}
	return &StaffService{staff: deps.StaffRepo, maxTags: maxTags}
}

// ListStaff returns the records visible to the actor, in roster order.
func (s *StaffService) ListStaff(ctx context.Context, actor domain.Actor) ([]domain.StaffRecord, error) {
	if err := requireValidActor(actor); err != nil {
		return nil, err
	}
	records, err := s.staff.List(ctx, repository.StaffFilter{})
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return VisibleRecords(records, actor.Role), nil
}

// GetStaff fetches one record. Private records look missing to club actors.
func (s *StaffService) GetStaff(ctx context.Context, actor domain.Actor, id string) (*domain.StaffRecord, error) {
	if err := requireValidActor(actor); err != nil {
		return nil, err
	}
	details := map[string]any{"staff_id": id}
	record, err := s.staff.GetByID(ctx, id)
	if err != nil {
		return nil, mapStoreError(err, "staff record", details)
	}
	if !CanView(record, actor.Role) {
		return nil, apperrors.NewNotFound("staff record", details)
	}
	return record, nil
}

// ImportStaff loads externally supplied records. Records already present are
// left alone. An invalid tag set or privacy value stops the import at that record.
func (s *StaffService) ImportStaff(ctx context.Context, records []domain.StaffRecord) (int, error) {
	imported := 0
	for i := range records {
		rec := records[i].Clone()
		if rec.ID == "" {
			return imported, apperrors.NewValidationError("staff id required", map[string]any{"index": i})
		}
		rec.Tags = domain.NormalizeTags(rec.Tags)
		if err := domain.ValidateTagSet(rec.Tags, s.maxTags); err != nil {
			return imported, apperrors.NewInvalidTagSet(err, map[string]any{"staff_id": rec.ID})
		}
		if rec.ProfilePrivacy == "" {
			rec.ProfilePrivacy = domain.ProfilePrivacyPublic
		}
		if !rec.ProfilePrivacy.Valid() {
			return imported, apperrors.NewValidationError("unknown profile privacy", map[string]any{
				"staff_id":        rec.ID,
				"profile_privacy": rec.ProfilePrivacy,
			})
		}
		if err := s.staff.Create(ctx, rec); err != nil {
			if errors.Is(err, repository.ErrAlreadyExists) {
				continue
			}
			return imported, apperrors.NewInternalError(err)
		}
		imported++
	}
	return imported, nil
}
