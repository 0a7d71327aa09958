package inidoc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSectionSetPreservesPositionAndAppends(t *testing.T) {
	s := NewSection()
	s.Set("a", "1")
	s.Set("b", "2")
	s.Set("c", "3")
	s.Set("b", "22")

	assert.Equal(t, []string{"a", "b", "c"}, s.Keys())
	v, ok := s.Get("b")
	require.True(t, ok)
	assert.Equal(t, "22", v)
}

func TestSectionAppendMarkerAllocatesUniqueKeys(t *testing.T) {
	s := NewSection()
	s.Set("+0", "taken") // explicit key squatting on the generator's range
	k1 := s.Set(AppendMarker, "E1")
	k2 := s.Set(AppendMarker, "E2")
	k3 := s.Set(AppendMarker, "E1")

	keys := map[string]bool{k1: true, k2: true, k3: true}
	assert.Len(t, keys, 3, "generated keys must be pairwise distinct")
	assert.False(t, keys["+0"], "generated keys must skip pre-existing explicit keys")
	for _, k := range []string{k1, k2, k3} {
		assert.NotEqual(t, AppendMarker, k, "marker must never be stored verbatim")
	}
	assert.Equal(t, []string{"taken", "E1", "E2", "E1"}, s.Values())
}

func TestSectionDeleteReportsMissingKey(t *testing.T) {
	s := NewSection()
	s.Set("a", "1")
	s.Set("b", "2")
	s.Set("c", "3")

	require.True(t, s.Delete("b"))
	assert.False(t, s.Delete("b"), "second delete signals no such key")
	assert.Equal(t, []string{"a", "c"}, s.Keys())

	// index must stay consistent after the shift
	v, ok := s.Get("c")
	require.True(t, ok)
	assert.Equal(t, "3", v)
}

func TestSectionIterationExcludesComments(t *testing.T) {
	s := NewSection()
	s.Set("a", "1")
	s.AddComment("between")
	s.Set("b", "2")

	assert.Equal(t, 2, s.Len())
	assert.Equal(t, []Pair{{"a", "1"}, {"b", "2"}}, s.Pairs())
	assert.Equal(t, []string{"between"}, s.Comments())
}

func TestSectionTypeListDeduplicatesKeepingFirst(t *testing.T) {
	s := NewSection()
	for _, v := range []string{"E1", "E2", "E1", "", "GHOST", "E2"} {
		s.Set(AppendMarker, v)
	}
	assert.Equal(t, []string{"E1", "E2", "GHOST"}, s.TypeList())
}

func TestSectionUpdateOverwritesAndAppends(t *testing.T) {
	dst := NewSection()
	dst.Set("keep", "old")
	dst.Set("both", "dst")

	src := NewSection()
	src.Set("both", "src")
	src.Set("new", "x")
	src.SetTrailing("new", "note")

	dst.Update(src)
	assert.Equal(t, []string{"keep", "both", "new"}, dst.Keys())
	v, _ := dst.Get("both")
	assert.Equal(t, "src", v)
	c, ok := dst.Trailing("new")
	require.True(t, ok)
	assert.Equal(t, "note", c)
}

func TestSectionCustomKeyGen(t *testing.T) {
	s := NewSection()
	n := 100
	s.SetKeyGen(keyGenFunc(func(taken func(string) bool) string {
		for {
			k := "+gen" + string(rune('a'+n%26))
			n++
			if !taken(k) {
				return k
			}
		}
	}))
	k := s.Set(AppendMarker, "v")
	assert.Equal(t, "+genw", k)
}

type keyGenFunc func(taken func(string) bool) string

func (f keyGenFunc) Next(taken func(string) bool) string { return f(taken) }
