package domain

import "time"

// ProfilePrivacy governs whether club actors can see a staff record.
type ProfilePrivacy string

const (
	ProfilePrivacyPublic  ProfilePrivacy = "Public"
	ProfilePrivacyPrivate ProfilePrivacy = "Private"
)

// Valid reports whether p is one of the known privacy settings.
func (p ProfilePrivacy) Valid() bool {
	return p == ProfilePrivacyPublic || p == ProfilePrivacyPrivate
}

// EmploymentEntry is one line of a staff member's employer history.
type EmploymentEntry struct {
	Club      string `yaml:"club" json:"club"`
	Title     string `yaml:"title" json:"title"`
	StartYear int    `yaml:"start_year" json:"start_year"`
	EndYear   *int   `yaml:"end_year,omitempty" json:"end_year,omitempty"`
}

// StaffRecord is a league staff profile. Only Tags is mutated by tag
// governance; the remaining attributes are descriptive payload.
type StaffRecord struct {
	ID             string
	Name           string
	Role           string
	CurrentClub    string
	Tags           []string
	ProfilePrivacy ProfilePrivacy
	History        []EmploymentEntry
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsPrivate reports whether the record is hidden from club actors.
func (r *StaffRecord) IsPrivate() bool {
	return r.ProfilePrivacy == ProfilePrivacyPrivate
}

// HasTag reports whether the record currently holds the tag.
func (r *StaffRecord) HasTag(name string) bool {
	for _, tag := range r.Tags {
		if tag == name {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so callers never alias store-owned slices.
func (r *StaffRecord) Clone() *StaffRecord {
	if r == nil {
		return nil
	}
	cp := *r
	cp.Tags = CloneTags(r.Tags)
	if r.History != nil {
		cp.History = make([]EmploymentEntry, len(r.History))
		for i, entry := range r.History {
			cp.History[i] = entry
			if entry.EndYear != nil {
				end := *entry.EndYear
				cp.History[i].EndYear = &end
			}
		}
	}
	return &cp
}
