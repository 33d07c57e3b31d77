package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileEmpty(t *testing.T) {
	q := Compile("")
	assert.True(t, q.Empty())

	q = Compile("   \t  ")
	assert.True(t, q.Empty())
}

func TestCompileModes(t *testing.T) {
	tests := []struct {
		raw     string
		mode    Mode
		term    string
		inverse bool
	}{
		{"foo", ModeFuzzy, "foo", false},
		{"'foo", ModeExact, "foo", false},
		{"'foo'", ModeExact, "foo", false},
		{"^foo", ModePrefix, "foo", false},
		{"foo$", ModeSuffix, "foo", false},
		{"^foo$", ModeEqual, "foo", false},
		{"!foo", ModeFuzzy, "foo", true},
		{"!'foo", ModeExact, "foo", true},
		{"!^foo", ModePrefix, "foo", true},
		{"!foo$", ModeSuffix, "foo", true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			q := Compile(tt.raw)
			require.Len(t, q.Clauses, 1)
			c := q.Clauses[0]
			assert.Equal(t, tt.mode, c.Mode)
			assert.Equal(t, tt.term, c.Term)
			assert.Equal(t, tt.inverse, c.Inverse)
		})
	}
}

func TestCompileConjunction(t *testing.T) {
	q := Compile("foo  'bar  !baz")
	require.Len(t, q.Clauses, 3)
	assert.Equal(t, ModeFuzzy, q.Clauses[0].Mode)
	assert.Equal(t, ModeExact, q.Clauses[1].Mode)
	assert.True(t, q.Clauses[2].Inverse)
}

func TestCompileDropsEmptyTerms(t *testing.T) {
	// A lone prefix has no term behind it; the compiler never fails,
	// it just drops the clause.
	for _, raw := range []string{"!", "'", "^", "! ' ^"} {
		q := Compile(raw)
		assert.True(t, q.Empty(), "raw=%q", raw)
	}
}

func TestCompileLoneDollarIsLiteral(t *testing.T) {
	q := Compile("$")
	require.Len(t, q.Clauses, 1)
	assert.Equal(t, ModeFuzzy, q.Clauses[0].Mode)
	assert.Equal(t, "$", q.Clauses[0].Term)
}

func TestCompileEscapedSpace(t *testing.T) {
	q := Compile(`foo\ bar baz`)
	require.Len(t, q.Clauses, 2)
	assert.Equal(t, "foo bar", q.Clauses[0].Term)
	assert.Equal(t, "baz", q.Clauses[1].Term)
}

func TestCompileSmartCase(t *testing.T) {
	q := Compile("foo Foo")
	require.Len(t, q.Clauses, 2)
	assert.False(t, q.Clauses[0].CaseSensitive)
	assert.True(t, q.Clauses[1].CaseSensitive)
}

func TestCompileUnmatchedQuoteIsLiteral(t *testing.T) {
	// A quote in the middle of a term stays literal text.
	q := Compile("don't")
	require.Len(t, q.Clauses, 1)
	assert.Equal(t, "don't", q.Clauses[0].Term)
	assert.Equal(t, ModeFuzzy, q.Clauses[0].Mode)
}

func TestClauseMatchDispatch(t *testing.T) {
	text := []rune("foo.md")

	_, ok := Compile("'foo").Clauses[0].Match(text)
	assert.True(t, ok)
	_, ok = Compile("md$").Clauses[0].Match(text)
	assert.True(t, ok)
	_, ok = Compile("^md").Clauses[0].Match(text)
	assert.False(t, ok)
	_, ok = Compile("^foo.md$").Clauses[0].Match(text)
	assert.True(t, ok)
}
