package inidoc

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleRules = `; generated by rulekit tests
Game=YR

[InfantryTypes]  ; the registry
+=E1
+=E2  ; conscript
+=E1

[E1]:[Soldier]
Strength=125
Pip=white ; unused

[Soldier]
Strength=100
`

func TestParseSampleRules(t *testing.T) {
	d, err := Parse(strings.NewReader(sampleRules))
	require.NoError(t, err)

	v, ok := d.Header().Get("Game")
	require.True(t, ok)
	assert.Equal(t, "YR", v)
	assert.Equal(t, []string{"generated by rulekit tests"}, d.Header().Comments())

	reg, ok := d.Section("InfantryTypes")
	require.True(t, ok)
	assert.Equal(t, "the registry", reg.Summary)
	assert.Equal(t, []string{"E1", "E2", "E1"}, reg.Values())
	assert.Equal(t, []string{"E1", "E2"}, reg.TypeList())

	p, ok := d.Parent("E1")
	require.True(t, ok)
	assert.Equal(t, "Soldier", p)

	e1, ok := d.Section("E1")
	require.True(t, ok)
	c, ok := e1.Trailing("Pip")
	require.True(t, ok)
	assert.Equal(t, "unused", c)

	name, value, state := d.RecursiveFind("E1", "Pip")
	assert.Equal(t, LookupFound, state)
	assert.Equal(t, "E1", name)
	assert.Equal(t, "white", value)
}

func TestParseTrimsValuesAndSkipsBlankKeys(t *testing.T) {
	d, err := Parse(strings.NewReader("  key =  spaced out  \n=novalue\n"))
	require.NoError(t, err)
	v, ok := d.Header().Get("key")
	require.True(t, ok)
	assert.Equal(t, "spaced out", v)
	assert.Equal(t, 1, d.Header().Len())
}

func TestParseCRLFInput(t *testing.T) {
	d, err := Parse(strings.NewReader("[A]\r\nk=v\r\n"))
	require.NoError(t, err)
	v, ok := d.Ensure("A").Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", v)
}

func TestParseRedeclaredSectionAccumulates(t *testing.T) {
	d, err := Parse(strings.NewReader("[A]\nx=1\n[B]\n[A]\ny=2\n"))
	require.NoError(t, err)
	a, _ := d.Section("A")
	assert.Equal(t, []string{"x", "y"}, a.Keys())
	assert.Equal(t, []string{"A", "B"}, d.Names())
}

func TestParseStructuralErrors(t *testing.T) {
	cases := []struct {
		name  string
		input string
	}{
		{"unterminated section", "[Broken\nk=v\n"},
		{"bad parent syntax", "[A]:Parent\n"},
		{"junk after declaration", "[A] what\n"},
		{"inheritance cycle", "[A]:[B]\n[B]:[A]\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tc.input))
			require.Error(t, err)
			var perr *ParseError
			assert.ErrorAs(t, err, &perr)
		})
	}
}

func TestParseIntoAccumulatesAcrossStreams(t *testing.T) {
	d := NewDocument()
	require.NoError(t, ParseInto(d, strings.NewReader("[Reg]\n+=A\n")))
	require.NoError(t, ParseInto(d, strings.NewReader("[Reg]\n+=B\n")))
	reg, _ := d.Section("Reg")
	assert.Equal(t, []string{"A", "B"}, reg.TypeList(), "append keys stay unique across streams")
}

func TestParseIncludeSectionIsOrdinary(t *testing.T) {
	d, err := Parse(strings.NewReader("[#include]\n0=sub/a.ini\n1=b.ini\n"))
	require.NoError(t, err)
	inc, ok := d.Section("#include")
	require.True(t, ok)
	assert.Equal(t, []string{"sub/a.ini", "b.ini"}, inc.Values())
}
