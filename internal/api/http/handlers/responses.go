package handlers

import (
	"github.com/leaguedesk/roster-service/internal/api/dto"
	"github.com/leaguedesk/roster-service/internal/domain"
)

func staffResponse(rec *domain.StaffRecord) dto.StaffResponse {
	history := rec.History
	if history == nil {
		history = []domain.EmploymentEntry{}
	}
	return dto.StaffResponse{
		ID:             rec.ID,
		Name:           rec.Name,
		Role:           rec.Role,
		CurrentClub:    rec.CurrentClub,
		Tags:           domain.CloneTags(rec.Tags),
		ProfilePrivacy: rec.ProfilePrivacy,
		History:        history,
		CreatedAt:      rec.CreatedAt,
		UpdatedAt:      rec.UpdatedAt,
	}
}

func changeRequestResponse(req *domain.TagChangeRequest) dto.ChangeRequestResponse {
	return dto.ChangeRequestResponse{
		ID:              req.ID,
		StaffID:         req.StaffID,
		RequestingActor: req.RequestingActor,
		OldTags:         domain.CloneTags(req.OldTags),
		NewTags:         domain.CloneTags(req.NewTags),
		Status:          req.Status,
		ResponseNote:    req.ResponseNote,
		ResolvedBy:      req.ResolvedBy,
		CreatedAt:       req.CreatedAt,
		ResolvedAt:      req.ResolvedAt,
	}
}

func changeRequestList(reqs []domain.TagChangeRequest) []dto.ChangeRequestResponse {
	out := make([]dto.ChangeRequestResponse, 0, len(reqs))
	for i := range reqs {
		out = append(out, changeRequestResponse(&reqs[i]))
	}
	return out
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
