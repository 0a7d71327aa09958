package inidoc

import "strconv"

// AppendMarker is the reserved key symbol for `+= value` entries. It is never
// stored verbatim: every Set under it allocates a fresh generated key.
const AppendMarker = "+"

// CommentID addresses a standalone comment inside a Section. It is a distinct
// type from entry keys, so comments can never collide with real data.
type CommentID int

// KeyGen allocates replacement keys for the append marker. taken reports
// whether a candidate key is already present in the section; Next must return
// a key for which taken is false.
type KeyGen interface {
	Next(taken func(string) bool) string
}

// counterKeys is the default KeyGen: a monotonic per-section counter yielding
// "+0", "+1", ... and skipping keys that already exist. Deterministic, so
// repeated parses of the same input produce identical documents.
type counterKeys struct {
	n int
}

func (g *counterKeys) Next(taken func(string) bool) string {
	for {
		k := AppendMarker + strconv.Itoa(g.n)
		g.n++
		if !taken(k) {
			return k
		}
	}
}

type entryKind uint8

const (
	kindPair entryKind = iota
	kindComment
)

// entry is one slot in a section's ordered body: either a key/value pair with
// an optional trailing comment, or a standalone comment line.
type entry struct {
	kind    entryKind
	key     string // kindPair only
	value   string
	comment string    // trailing text for pairs, body for kindComment
	id      CommentID // kindComment only
}

// Pair is a real key/value entry yielded by iteration accessors.
type Pair struct {
	Key   string
	Value string
}

// Section is an ordered key/value block. Insertion order is significant and
// survives round trips; standalone comments keep their position between
// pairs. The zero value is not usable, construct with NewSection.
type Section struct {
	// Summary is the trailing comment of the section declaration line, empty
	// when absent.
	Summary string

	entries []entry
	index   map[string]int // key -> position in entries
	keys    KeyGen
	nextID  CommentID
}

// NewSection returns an empty section with the default append-key generator.
func NewSection() *Section {
	return &Section{
		index: make(map[string]int),
		keys:  &counterKeys{},
	}
}

// SetKeyGen replaces the append-key generator. Intended for callers that need
// a different uniqueness scheme; the default counter is fine for round trips.
func (s *Section) SetKeyGen(g KeyGen) {
	if g != nil {
		s.keys = g
	}
}

// Get returns the value stored under key.
func (s *Section) Get(key string) (string, bool) {
	i, ok := s.index[key]
	if !ok {
		return "", false
	}
	return s.entries[i].value, true
}

// Set stores value under key and returns the key actually used. An existing
// key keeps its position; a new key is appended. Setting AppendMarker always
// allocates a fresh generated key and appends.
func (s *Section) Set(key, value string) string {
	if key == AppendMarker {
		key = s.keys.Next(func(k string) bool {
			_, clash := s.index[k]
			return clash
		})
	}
	if i, ok := s.index[key]; ok {
		s.entries[i].value = value
		return key
	}
	s.index[key] = len(s.entries)
	s.entries = append(s.entries, entry{kind: kindPair, key: key, value: value})
	return key
}

// Delete removes the entry under key. It reports false when no such key is
// stored, which callers are free to ignore.
func (s *Section) Delete(key string) bool {
	i, ok := s.index[key]
	if !ok {
		return false
	}
	s.entries = append(s.entries[:i], s.entries[i+1:]...)
	delete(s.index, key)
	for k, j := range s.index {
		if j > i {
			s.index[k] = j - 1
		}
	}
	return true
}

// Len counts real key/value entries, excluding comments.
func (s *Section) Len() int {
	return len(s.index)
}

// Keys returns the stored keys in insertion order.
func (s *Section) Keys() []string {
	out := make([]string, 0, len(s.index))
	for _, e := range s.entries {
		if e.kind == kindPair {
			out = append(out, e.key)
		}
	}
	return out
}

// Values returns the stored values in insertion order, duplicates included.
func (s *Section) Values() []string {
	out := make([]string, 0, len(s.index))
	for _, e := range s.entries {
		if e.kind == kindPair {
			out = append(out, e.value)
		}
	}
	return out
}

// Pairs returns the real entries in insertion order.
func (s *Section) Pairs() []Pair {
	out := make([]Pair, 0, len(s.index))
	for _, e := range s.entries {
		if e.kind == kindPair {
			out = append(out, Pair{Key: e.key, Value: e.value})
		}
	}
	return out
}

// TypeList returns the ordered, duplicate-eliminated value sequence, keeping
// the first occurrence and skipping empty values. Registry sections such as
// BuildingTypes enumerate their members this way.
func (s *Section) TypeList() []string {
	seen := make(map[string]struct{}, len(s.index))
	var out []string
	for _, e := range s.entries {
		if e.kind != kindPair || e.value == "" {
			continue
		}
		if _, dup := seen[e.value]; dup {
			continue
		}
		seen[e.value] = struct{}{}
		out = append(out, e.value)
	}
	return out
}

// AddComment appends a standalone comment line and returns its identifier.
func (s *Section) AddComment(text string) CommentID {
	id := s.nextID
	s.nextID++
	s.entries = append(s.entries, entry{kind: kindComment, comment: text, id: id})
	return id
}

// Comments returns the standalone comment bodies in stored order.
func (s *Section) Comments() []string {
	var out []string
	for _, e := range s.entries {
		if e.kind == kindComment {
			out = append(out, e.comment)
		}
	}
	return out
}

// SetTrailing attaches a trailing comment to the entry under key, reporting
// false when the key does not exist.
func (s *Section) SetTrailing(key, text string) bool {
	i, ok := s.index[key]
	if !ok {
		return false
	}
	s.entries[i].comment = text
	return true
}

// Trailing returns the trailing comment attached to key, if any.
func (s *Section) Trailing(key string) (string, bool) {
	i, ok := s.index[key]
	if !ok || s.entries[i].comment == "" {
		return "", false
	}
	return s.entries[i].comment, true
}

// Update applies other's entries onto s: keys present in both take other's
// value (and trailing comment) in place, new keys and standalone comments are
// appended. Entries of s that other does not mention are kept.
func (s *Section) Update(other *Section) {
	if other == nil {
		return
	}
	for _, e := range other.entries {
		switch e.kind {
		case kindPair:
			s.Set(e.key, e.value)
			if e.comment != "" {
				s.SetTrailing(e.key, e.comment)
			}
		case kindComment:
			s.AddComment(e.comment)
		}
	}
	if other.Summary != "" {
		s.Summary = other.Summary
	}
}

// Clone returns a deep copy with a fresh default key generator seeded past
// the copied entries.
func (s *Section) Clone() *Section {
	c := NewSection()
	c.Summary = s.Summary
	c.entries = append([]entry(nil), s.entries...)
	c.index = make(map[string]int, len(s.index))
	for k, v := range s.index {
		c.index[k] = v
	}
	c.nextID = s.nextID
	return c
}

// Clear drops all entries and comments, keeping the key generator state so
// later append allocations stay unique within the section's lifetime.
func (s *Section) Clear() {
	s.entries = s.entries[:0]
	s.index = make(map[string]int)
	s.Summary = ""
}
