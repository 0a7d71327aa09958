package inidoc

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSuchSection rejects an inheritance edge whose child is not a
	// section of the document.
	ErrNoSuchSection = errors.New("no such section")
	// ErrInheritanceCycle rejects an inheritance edge that would make the
	// relation cyclic.
	ErrInheritanceCycle = errors.New("inheritance cycle")
)

// LookupState classifies the outcome of a RecursiveFind walk.
type LookupState int

const (
	// LookupFound: the key was found, either directly or via inheritance.
	LookupFound LookupState = iota
	// LookupMissing: the inheritance chain was walked to its end without
	// finding the key.
	LookupMissing
	// LookupBroken: an ancestor named by the inheritance relation does not
	// exist in the document; the walk stopped at the last section that did.
	LookupBroken
)

// Document aggregates named sections, their single-parent inheritance
// relation, and a header section for content preceding the first section
// declaration. Section order is preserved and survives round trips.
type Document struct {
	header   *Section
	names    []string
	sections map[string]*Section
	parents  map[string]string // child section name -> parent section name
}

// NewDocument returns an empty document with an empty header.
func NewDocument() *Document {
	return &Document{
		header:   NewSection(),
		sections: make(map[string]*Section),
		parents:  make(map[string]string),
	}
}

// Header returns the anonymous section holding free-standing entries before
// the first declaration. It is always non-nil.
func (d *Document) Header() *Section {
	return d.header
}

// Len returns the number of named sections.
func (d *Document) Len() int {
	return len(d.names)
}

// Names returns the section names in document order.
func (d *Document) Names() []string {
	return append([]string(nil), d.names...)
}

// Has reports whether a section with the given name exists.
func (d *Document) Has(name string) bool {
	_, ok := d.sections[name]
	return ok
}

// Section returns the named section.
func (d *Document) Section(name string) (*Section, bool) {
	s, ok := d.sections[name]
	return s, ok
}

// Put inserts the section under name, replacing any existing one in place.
// A nil section is replaced by an empty one so lookups stay total.
func (d *Document) Put(name string, s *Section) {
	if s == nil {
		s = NewSection()
	}
	if _, ok := d.sections[name]; !ok {
		d.names = append(d.names, name)
	}
	d.sections[name] = s
}

// Ensure returns the named section, creating and appending an empty one when
// absent.
func (d *Document) Ensure(name string) *Section {
	if s, ok := d.sections[name]; ok {
		return s
	}
	s := NewSection()
	d.Put(name, s)
	return s
}

// Remove deletes the section and any inheritance edge naming it as child.
// Removing an absent section is a no-op.
func (d *Document) Remove(name string) {
	if _, ok := d.sections[name]; !ok {
		return
	}
	delete(d.sections, name)
	delete(d.parents, name)
	for i, n := range d.names {
		if n == name {
			d.names = append(d.names[:i], d.names[i+1:]...)
			break
		}
	}
}

// Rename moves the section under old to new, keeping its relative position
// and carrying along its inheritance edge. It reports false, mutating
// nothing, when old is absent or new already exists.
func (d *Document) Rename(old, new string) bool {
	if _, ok := d.sections[old]; !ok {
		return false
	}
	if _, clash := d.sections[new]; clash {
		return false
	}
	d.sections[new] = d.sections[old]
	delete(d.sections, old)
	if p, ok := d.parents[old]; ok {
		delete(d.parents, old)
		d.parents[new] = p
	}
	for i, n := range d.names {
		if n == old {
			d.names[i] = new
			break
		}
	}
	return true
}

// Parent returns the parent section name recorded for child.
func (d *Document) Parent(child string) (string, bool) {
	p, ok := d.parents[child]
	return p, ok
}

// SetParent records child's single inheritance edge, replacing any previous
// one. The child must exist as a section, and the resulting relation must
// stay acyclic; the parent may be absent (the chain is then reported broken
// by RecursiveFind).
func (d *Document) SetParent(child, parent string) error {
	if _, ok := d.sections[child]; !ok {
		return fmt.Errorf("set parent of [%s]: %w", child, ErrNoSuchSection)
	}
	// Merge can import a relation that is cyclic in combination with ours, so
	// the ancestor walk needs the same visited guard as RecursiveFind.
	visited := make(map[string]struct{})
	for anc, ok := parent, true; ok; anc, ok = d.parents[anc] {
		if anc == child {
			return fmt.Errorf("set parent of [%s] to [%s]: %w", child, parent, ErrInheritanceCycle)
		}
		if _, seen := visited[anc]; seen {
			return fmt.Errorf("set parent of [%s] to [%s]: ancestor chain: %w", child, parent, ErrInheritanceCycle)
		}
		visited[anc] = struct{}{}
	}
	d.parents[child] = parent
	return nil
}

// ClearParent removes child's inheritance edge, if any.
func (d *Document) ClearParent(child string) {
	delete(d.parents, child)
}

// RecursiveFind looks key up in the named section, then in its parent, then
// grandparent, until found or the chain ends. On LookupFound it returns the
// owning section's name and the value. On LookupBroken, name is the last
// section that could be resolved (empty when the start section itself is
// absent) and value is empty.
func (d *Document) RecursiveFind(section, key string) (name, value string, state LookupState) {
	last := ""
	visited := make(map[string]struct{})
	for cur := section; ; {
		s, ok := d.sections[cur]
		if !ok {
			return last, "", LookupBroken
		}
		if v, ok := s.Get(key); ok {
			return cur, v, LookupFound
		}
		last = cur
		visited[cur] = struct{}{}
		next, ok := d.parents[cur]
		if !ok {
			return "", "", LookupMissing
		}
		// A merged relation can be cyclic even though SetParent rejects
		// cycles; stop rather than loop.
		if _, loop := visited[next]; loop {
			return "", "", LookupMissing
		}
		cur = next
	}
}

// TypeList returns the named section's duplicate-eliminated value sequence,
// or an empty slice when the section does not exist.
func (d *Document) TypeList(name string) []string {
	s, ok := d.sections[name]
	if !ok {
		return nil
	}
	return s.TypeList()
}

// Merge applies other onto d: absent sections are inserted (with their
// inheritance edge), present ones are updated in place with key-overwrite
// semantics, keeping entries other does not mention. The header is merged the
// same way, and conflicting inheritance edges from other win.
func (d *Document) Merge(other *Document) {
	if other == nil {
		return
	}
	d.header.Update(other.header)
	for _, name := range other.names {
		src := other.sections[name]
		if dst, ok := d.sections[name]; ok {
			dst.Update(src)
		} else {
			d.Put(name, src.Clone())
		}
	}
	for child, parent := range other.parents {
		d.parents[child] = parent
	}
}

// Clear resets the document to its empty state: no sections, no inheritance,
// empty header.
func (d *Document) Clear() {
	d.header = NewSection()
	d.names = nil
	d.sections = make(map[string]*Section)
	d.parents = make(map[string]string)
}
