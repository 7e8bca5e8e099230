// Package tags filters a static account-analysis dataset by tag membership
// and follower thresholds. The dataset is JSONL, loaded once at startup into
// an immutable Snapshot; filters never mutate it.
package tags

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/samber/lo"
)

// TagField names a list-of-tags field of a dataset entry.
type TagField string

const (
	FieldEcosystemTags TagField = "ecosystem_tags"
	FieldLanguageTags  TagField = "language_tags"
	FieldUserTypeTags  TagField = "user_type_tags"
)

// CountField names a numeric field of a dataset entry.
type CountField string

const (
	FieldFollowersCount    CountField = "followersCount"
	FieldFriendsCount      CountField = "friendsCount"
	FieldKOLFollowersCount CountField = "kolFollowersCount"
)

// Entry is one dataset record. Only the filterable fields are decoded; the
// raw line is kept so results serialize exactly as they appeared in the
// dataset.
type Entry struct {
	EcosystemTags     []string
	LanguageTags      []string
	UserTypeTags      []string
	FollowersCount    int
	FriendsCount      int
	KOLFollowersCount int

	hasEcosystemTags     bool
	hasLanguageTags      bool
	hasUserTypeTags      bool
	hasFollowersCount    bool
	hasFriendsCount      bool
	hasKOLFollowersCount bool

	raw json.RawMessage
}

// UnmarshalJSON implements json.Unmarshaler, recording which fields were
// present. A field that is absent never satisfies a single-field filter.
func (e *Entry) UnmarshalJSON(b []byte) error {
	var aux struct {
		EcosystemTags     *[]string `json:"ecosystem_tags"`
		LanguageTags      *[]string `json:"language_tags"`
		UserTypeTags      *[]string `json:"user_type_tags"`
		FollowersCount    *int      `json:"followersCount"`
		FriendsCount      *int      `json:"friendsCount"`
		KOLFollowersCount *int      `json:"kolFollowersCount"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}

	*e = Entry{raw: append(json.RawMessage(nil), b...)}
	if aux.EcosystemTags != nil {
		e.EcosystemTags, e.hasEcosystemTags = *aux.EcosystemTags, true
	}
	if aux.LanguageTags != nil {
		e.LanguageTags, e.hasLanguageTags = *aux.LanguageTags, true
	}
	if aux.UserTypeTags != nil {
		e.UserTypeTags, e.hasUserTypeTags = *aux.UserTypeTags, true
	}
	if aux.FollowersCount != nil {
		e.FollowersCount, e.hasFollowersCount = *aux.FollowersCount, true
	}
	if aux.FriendsCount != nil {
		e.FriendsCount, e.hasFriendsCount = *aux.FriendsCount, true
	}
	if aux.KOLFollowersCount != nil {
		e.KOLFollowersCount, e.hasKOLFollowersCount = *aux.KOLFollowersCount, true
	}
	return nil
}

// MarshalJSON implements json.Marshaler, emitting the original dataset line.
func (e Entry) MarshalJSON() ([]byte, error) {
	if e.raw != nil {
		return e.raw, nil
	}
	return []byte("{}"), nil
}

func (e Entry) tagField(field TagField) ([]string, bool) {
	switch field {
	case FieldEcosystemTags:
		return e.EcosystemTags, e.hasEcosystemTags
	case FieldLanguageTags:
		return e.LanguageTags, e.hasLanguageTags
	case FieldUserTypeTags:
		return e.UserTypeTags, e.hasUserTypeTags
	default:
		return nil, false
	}
}

func (e Entry) countField(field CountField) (int, bool) {
	switch field {
	case FieldFollowersCount:
		return e.FollowersCount, e.hasFollowersCount
	case FieldFriendsCount:
		return e.FriendsCount, e.hasFriendsCount
	case FieldKOLFollowersCount:
		return e.KOLFollowersCount, e.hasKOLFollowersCount
	default:
		return 0, false
	}
}

// Snapshot is an immutable, in-memory view of the dataset.
type Snapshot struct {
	entries []Entry
}

// Load reads a JSONL dataset from path. Lines that fail to decode are
// skipped with a warning; a missing file is an error.
func Load(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening tags dataset: %w", err)
	}
	defer f.Close()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var e Entry
		if err := json.Unmarshal(line, &e); err != nil {
			slog.Warn("skipping invalid dataset line", "path", path, "line", lineNo, "error", err)
			continue
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading tags dataset: %w", err)
	}

	slog.Info("tags dataset loaded", "path", path, "entries", len(entries))
	return &Snapshot{entries: entries}, nil
}

// FromEntries builds a Snapshot from already-decoded entries.
func FromEntries(entries []Entry) *Snapshot {
	return &Snapshot{entries: entries}
}

// Len returns the number of entries in the snapshot.
func (s *Snapshot) Len() int { return len(s.entries) }

// FilterByTags returns the entries whose field matches the query tags. With
// matchAll every query tag must be present in the entry (subset); without it
// one shared tag suffices (intersection). An entry missing the field never
// matches.
func (s *Snapshot) FilterByTags(field TagField, query []string, matchAll bool) []Entry {
	return lo.Filter(s.entries, func(e Entry, _ int) bool {
		return matchTags(e, field, query, matchAll)
	})
}

// FilterByMinCount returns the entries whose field is present and strictly
// greater than min.
func (s *Snapshot) FilterByMinCount(field CountField, min int) []Entry {
	return lo.Filter(s.entries, func(e Entry, _ int) bool {
		v, ok := e.countField(field)
		return ok && v > min
	})
}

// Criteria combines several filters; nil members are ignored. Tag members
// use subset semantics, count members compare strictly greater with a
// missing field treated as zero.
type Criteria struct {
	EcosystemTags     []string `json:"ecosystem_tags,omitempty"`
	LanguageTags      []string `json:"language_tags,omitempty"`
	UserTypeTags      []string `json:"user_type_tags,omitempty"`
	FollowersCount    *int     `json:"followers_count,omitempty"`
	FriendsCount      *int     `json:"friends_count,omitempty"`
	KOLFollowersCount *int     `json:"kol_followers_count,omitempty"`
}

// FilterCombined returns the entries satisfying every set member of c in a
// single pass.
func (s *Snapshot) FilterCombined(c Criteria) []Entry {
	return lo.Filter(s.entries, func(e Entry, _ int) bool {
		if len(c.EcosystemTags) > 0 && !matchTags(e, FieldEcosystemTags, c.EcosystemTags, true) {
			return false
		}
		if len(c.LanguageTags) > 0 && !matchTags(e, FieldLanguageTags, c.LanguageTags, true) {
			return false
		}
		if len(c.UserTypeTags) > 0 && !matchTags(e, FieldUserTypeTags, c.UserTypeTags, true) {
			return false
		}
		if c.FollowersCount != nil && e.FollowersCount <= *c.FollowersCount {
			return false
		}
		if c.FriendsCount != nil && e.FriendsCount <= *c.FriendsCount {
			return false
		}
		if c.KOLFollowersCount != nil && e.KOLFollowersCount <= *c.KOLFollowersCount {
			return false
		}
		return true
	})
}

func matchTags(e Entry, field TagField, query []string, matchAll bool) bool {
	entryTags, ok := e.tagField(field)
	if !ok {
		return false
	}
	if matchAll {
		return lo.Every(entryTags, query)
	}
	return lo.Some(entryTags, query)
}
