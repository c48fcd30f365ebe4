package eventlog

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyQuery indica un query sin grupos.
	ErrEmptyQuery = errors.New("eventlog: query has no tag groups")

	// ErrEmptyTagGroup indica un grupo sin tags. Un AND vacío matchearía todo el
	// log, así que se trata como error de configuración; usar All() para eso.
	ErrEmptyTagGroup = errors.New("eventlog: empty tag group")

	// ErrInvalidTag indica un tag que no se pudo parsear.
	ErrInvalidTag = errors.New("eventlog: invalid tag")
)

// Tag is a key/value label attached to an event. Equality is exact on both fields.
type Tag struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// T builds a Tag.
func T(key, value string) Tag {
	return Tag{Key: key, Value: value}
}

func (t Tag) String() string {
	return t.Key + "=" + t.Value
}

// ParseTag parses the "key=value" form used by the CLI and query strings.
func ParseTag(s string) (Tag, error) {
	k, v, ok := strings.Cut(s, "=")
	k = strings.TrimSpace(k)
	if !ok || k == "" {
		return Tag{}, fmt.Errorf("%w: %q (want key=value)", ErrInvalidTag, s)
	}
	return Tag{Key: k, Value: strings.TrimSpace(v)}, nil
}

// TagGroup is a conjunction of tags. Duplicates are dropped on construction.
type TagGroup struct {
	tags []Tag
}

// NewTagGroup builds a group keeping the first occurrence of each tag.
func NewTagGroup(tags ...Tag) TagGroup {
	out := make([]Tag, 0, len(tags))
	seen := make(map[Tag]struct{}, len(tags))
	for _, t := range tags {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return TagGroup{tags: out}
}

// Tags returns a copy of the group's tags.
func (g TagGroup) Tags() []Tag {
	return append([]Tag(nil), g.tags...)
}

// Len returns the number of distinct tags in the group.
func (g TagGroup) Len() int { return len(g.tags) }

// Matches reports whether every tag of the group is present in eventTags.
func (g TagGroup) Matches(eventTags []Tag) bool {
	for _, want := range g.tags {
		if !containsTag(eventTags, want) {
			return false
		}
	}
	return true
}

func (g TagGroup) String() string {
	parts := make([]string, len(g.tags))
	for i, t := range g.tags {
		parts[i] = t.String()
	}
	return "(" + strings.Join(parts, " AND ") + ")"
}

// Query is a disjunction of tag groups.
type Query struct {
	groups []TagGroup
}

// NewQuery builds a query from groups.
func NewQuery(groups ...TagGroup) Query {
	return Query{groups: append([]TagGroup(nil), groups...)}
}

// Match is shorthand for a single-group query.
func Match(tags ...Tag) Query {
	return NewQuery(NewTagGroup(tags...))
}

// Or returns a new query with the extra groups appended.
func (q Query) Or(groups ...TagGroup) Query {
	out := make([]TagGroup, 0, len(q.groups)+len(groups))
	out = append(out, q.groups...)
	out = append(out, groups...)
	return Query{groups: out}
}

// Groups returns the query's groups.
func (q Query) Groups() []TagGroup {
	return append([]TagGroup(nil), q.groups...)
}

// Validate rejects queries without groups and groups without tags.
func (q Query) Validate() error {
	if len(q.groups) == 0 {
		return ErrEmptyQuery
	}
	for i, g := range q.groups {
		if g.Len() == 0 {
			return fmt.Errorf("%w (group %d)", ErrEmptyTagGroup, i)
		}
	}
	return nil
}

// Matches reports whether eventTags satisfy at least one group.
func (q Query) Matches(eventTags []Tag) bool {
	for _, g := range q.groups {
		if g.Matches(eventTags) {
			return true
		}
	}
	return false
}

func (q Query) String() string {
	parts := make([]string, len(q.groups))
	for i, g := range q.groups {
		parts[i] = g.String()
	}
	return strings.Join(parts, " OR ")
}

func containsTag(tags []Tag, want Tag) bool {
	for _, t := range tags {
		if t == want {
			return true
		}
	}
	return false
}
