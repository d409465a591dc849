package persistence

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/leaguedesk/roster-service/internal/domain"
)

// StaffSeed is the roster snapshot loaded at boot.
type StaffSeed struct {
	Staff []domain.StaffRecord
	Tags  []string
}

type seedFile struct {
	Tags  []string     `yaml:"tags"`
	Staff []seedRecord `yaml:"staff"`
}

type seedRecord struct {
	ID             string                   `yaml:"id"`
	Name           string                   `yaml:"name"`
	Role           string                   `yaml:"role"`
	CurrentClub    string                   `yaml:"current_club"`
	Tags           []string                 `yaml:"tags"`
	ProfilePrivacy string                   `yaml:"profile_privacy"`
	History        []domain.EmploymentEntry `yaml:"history"`
}

// LoadStaffSeed reads a YAML roster file. A missing file surfaces as an
// error wrapping os.ErrNotExist.
func LoadStaffSeed(path string) (*StaffSeed, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed %s: %w", path, err)
	}
	return ParseStaffSeed(raw)
}

// ParseStaffSeed decodes a YAML roster document.
func ParseStaffSeed(raw []byte) (*StaffSeed, error) {
	var file seedFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}

	now := time.Now().UTC()
	seed := &StaffSeed{Staff: make([]domain.StaffRecord, 0, len(file.Staff)), Tags: file.Tags}
	for i, rec := range file.Staff {
		if rec.ID == "" {
			return nil, fmt.Errorf("seed staff entry %d: id required", i)
		}
		privacy := domain.ProfilePrivacy(rec.ProfilePrivacy)
		if privacy == "" {
			privacy = domain.ProfilePrivacyPublic
		}
		if !privacy.Valid() {
			return nil, fmt.Errorf("seed staff %s: unknown profile_privacy %q", rec.ID, rec.ProfilePrivacy)
		}
		seed.Staff = append(seed.Staff, domain.StaffRecord{
			ID:             rec.ID,
			Name:           rec.Name,
			Role:           rec.Role,
			CurrentClub:    rec.CurrentClub,
			Tags:           domain.CloneTags(rec.Tags),
			ProfilePrivacy: privacy,
			History:        rec.History,
			CreatedAt:      now,
			UpdatedAt:      now,
		})
	}
	return seed, nil
}
