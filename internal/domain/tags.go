package domain

import (
	"errors"
	"strings"
)

// MaxTags caps how many tags one staff record may hold.
const MaxTags = 5

var (
	ErrTooManyTags  = errors.New("too many tags")
	ErrDuplicateTag = errors.New("duplicate tag")
	ErrEmptyTag     = errors.New("empty tag name")
)

// TagRegistryEntry is a derived view of one tag name and how many records hold it.
type TagRegistryEntry struct {
	Name       string
	UsageCount int
}

// NormalizeTagName trims surrounding whitespace. Tag names are otherwise
// compared exactly.
func NormalizeTagName(name string) string {
	return strings.TrimSpace(name)
}

// NormalizeTags trims every name without reordering or deduplicating.
func NormalizeTags(tags []string) []string {
	out := make([]string, len(tags))
	for i, tag := range tags {
		out[i] = NormalizeTagName(tag)
	}
	return out
}

// ValidateTagSet enforces the cardinality and uniqueness rules for a
// record's complete tag set.
func ValidateTagSet(tags []string, maxTags int) error {
	if len(tags) > maxTags {
		return ErrTooManyTags
	}
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		if tag == "" {
			return ErrEmptyTag
		}
		if _, dup := seen[tag]; dup {
			return ErrDuplicateTag
		}
		seen[tag] = struct{}{}
	}
	return nil
}

// CloneTags copies a tag slice, keeping nil as an empty slice.
func CloneTags(tags []string) []string {
	out := make([]string, len(tags))
	copy(out, tags)
	return out
}

// UnionTags appends additions not already present, in order, and truncates
// the result to maxTags. It reports how many additions were dropped by the cap.
func UnionTags(current, additions []string, maxTags int) ([]string, int) {
	out := CloneTags(current)
	seen := make(map[string]struct{}, len(current)+len(additions))
	for _, tag := range current {
		seen[tag] = struct{}{}
	}
	dropped := 0
	for _, tag := range additions {
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		if len(out) >= maxTags {
			dropped++
			continue
		}
		out = append(out, tag)
	}
	return out, dropped
}

// SubtractTags removes every listed tag, preserving the order of the rest.
func SubtractTags(current, removals []string) []string {
	drop := make(map[string]struct{}, len(removals))
	for _, tag := range removals {
		drop[tag] = struct{}{}
	}
	out := make([]string, 0, len(current))
	for _, tag := range current {
		if _, ok := drop[tag]; ok {
			continue
		}
		out = append(out, tag)
	}
	return out
}

// RenameInTags replaces oldName with newName in place. If newName is already
// present the renamed slot is dropped so the result stays duplicate free.
// changed is false when oldName was not held.
func RenameInTags(tags []string, oldName, newName string) (out []string, changed bool) {
	idx := -1
	hasNew := false
	for i, tag := range tags {
		if tag == oldName && idx < 0 {
			idx = i
		}
		if tag == newName {
			hasNew = true
		}
	}
	if idx < 0 {
		return CloneTags(tags), false
	}
	out = make([]string, 0, len(tags))
	for i, tag := range tags {
		if tag != oldName {
			out = append(out, tag)
			continue
		}
		if i == idx && !hasNew {
			out = append(out, newName)
		}
	}
	return out, true
}

// EqualTags compares two tag sequences by order and content.
func EqualTags(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
