package symbol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bisongo/bisongo/diag"
	"github.com/bisongo/bisongo/intern"
	"github.com/bisongo/bisongo/loc"
)

func newTestStore(t *testing.T) (*Store, *TypeStore, *diag.Collector) {
	t.Helper()
	pool := intern.NewPool()
	col := diag.NewCollector()
	st := NewStore(pool, col)
	ts := NewTypeStore(pool, col)
	return st, ts, col
}

func TestStoreGetIsIdempotent(t *testing.T) {
	st, _, _ := newTestStore(t)

	s1, err := st.Get("IF", loc.Position{Row: 1})
	require.NoError(t, err)
	s2, err := st.Get("IF", loc.Position{Row: 2})
	require.NoError(t, err)

	assert.Same(t, s1, s2, "Get must return the identical record for equal keys")
	assert.Equal(t, loc.Position{Row: 1}, s1.Location(), "the location of the first mention is retained")
}

func TestStoreGetPosixDashWarning(t *testing.T) {
	tests := []struct {
		name     string
		wantWarn bool
	}{
		{name: "has-dash", wantWarn: true},
		{name: "\"has-dash\"", wantWarn: false},
		{name: "nodash", wantWarn: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, _, col := newTestStore(t)
			_, err := st.Get(tt.name, loc.Position{Row: 1})
			require.NoError(t, err)

			found := false
			for _, d := range col.Diagnostics {
				if d.Severity == diag.SeverityWyacc {
					found = true
				}
			}
			assert.Equal(t, tt.wantWarn, found)
		})
	}
}

func TestStoreGetAfterSortedIterationPanics(t *testing.T) {
	st, _, _ := newTestStore(t)
	_, err := st.Get("a", loc.Position{})
	require.NoError(t, err)
	st.Sorted()

	assert.Panics(t, func() {
		_, _ = st.Get("b", loc.Position{})
	})
}

func TestClassSetAssignsNumberOnce(t *testing.T) {
	st, _, _ := newTestStore(t)
	a, _ := st.Get("A", loc.Position{})
	b, _ := st.Get("B", loc.Position{})

	st.ClassSet(a, ClassToken, loc.Position{Row: 1}, true)
	st.ClassSet(b, ClassToken, loc.Position{Row: 2}, true)

	assert.Equal(t, 0, a.Number())
	assert.Equal(t, 1, b.Number())
	assert.Equal(t, 2, st.NTokens())

	// Re-asserting the same class is a no-op, not a second allocation.
	st.ClassSet(a, ClassToken, loc.Position{Row: 3}, false)
	assert.Equal(t, 0, a.Number())
	assert.Equal(t, 2, st.NTokens())
}

func TestClassSetRedefinitionComplains(t *testing.T) {
	st, _, col := newTestStore(t)
	a, _ := st.Get("A", loc.Position{})
	st.ClassSet(a, ClassToken, loc.Position{Row: 1}, true)
	st.ClassSet(a, ClassNTerm, loc.Position{Row: 2}, true)

	require.True(t, col.HasErrors())
	assert.Equal(t, ClassToken, a.Class(), "the original class wins on conflict")
}

func TestTypeSetRedeclaration(t *testing.T) {
	st, ts, col := newTestStore(t)
	a, _ := st.Get("A", loc.Position{})

	st.TypeSet(a, ts, "INT", loc.Position{Row: 1})
	st.TypeSet(a, ts, "STR", loc.Position{Row: 2})

	require.Len(t, col.Diagnostics, 2)
	assert.Equal(t, diag.SeverityComplaint, col.Diagnostics[0].Severity)
	assert.Equal(t, loc.Position{Row: 2}, col.Diagnostics[0].Location, "the primary complaint cites the later declaration")
	assert.Equal(t, loc.Position{Row: 1}, col.Diagnostics[1].Location, "the secondary note cites the earlier one")
	assert.Equal(t, 1, col.Diagnostics[1].Indent)
	assert.Equal(t, "INT", a.TypeName(st.pool), "the first declaration is retained")
}

func TestMakeAliasSharesNumberAndUserTokenNumber(t *testing.T) {
	st, _, _ := newTestStore(t)
	ifSym, _ := st.Get("IF", loc.Position{Row: 1})
	strSym, _ := st.Get("\"if\"", loc.Position{Row: 2})

	st.ClassSet(ifSym, ClassToken, loc.Position{Row: 1}, true)
	st.UserTokenNumberSet(ifSym, 300, loc.Position{Row: 1})
	st.MakeAlias(ifSym, strSym, loc.Position{Row: 3})

	assert.Equal(t, ifSym.Number(), strSym.Number())
	assert.Equal(t, 300, strSym.UserTokenNumber())
	assert.Equal(t, UserNumberHasStringAlias, ifSym.UserTokenNumber())
	assert.Equal(t, strSym.ID(), ifSym.Alias())
	assert.Equal(t, ifSym.ID(), strSym.Alias())
}

func TestUserTokenNumberZeroBecomesEndToken(t *testing.T) {
	st, _, _ := newTestStore(t)
	a, _ := st.Get("A", loc.Position{})
	st.ClassSet(a, ClassToken, loc.Position{Row: 1}, true)
	require.Equal(t, 1, st.NTokens())

	st.UserTokenNumberSet(a, 0, loc.Position{Row: 2})

	assert.Equal(t, 0, a.UserTokenNumber())
	assert.Equal(t, 0, a.Number())
	assert.Equal(t, 0, st.NTokens(), "the implicit end token is not counted")
}

func TestCodePropsGetFallsBackToDefaultType(t *testing.T) {
	st, ts, _ := newTestStore(t)
	star := ts.Get("*", loc.Position{})
	ts.CodePropsSet(star, PropDestructor, "free($$)", loc.Position{Row: 1})

	a, _ := st.Get("expr", loc.Position{})
	st.TypeSet(a, ts, "node", loc.Position{Row: 2})

	p, ok := st.CodePropsGet(a, ts, PropDestructor)
	require.True(t, ok)
	assert.Equal(t, "free($$)", p.Code)
	assert.True(t, star.props[PropDestructor].IsUsed)
}

func TestCodePropsGetSkipsDefaultForGeneratedSymbols(t *testing.T) {
	st, ts, _ := newTestStore(t)
	empty := ts.Get("", loc.Position{})
	ts.CodePropsSet(empty, PropDestructor, "noop()", loc.Position{Row: 1})

	dollar, _ := st.Get("$accept", loc.Position{})
	_, ok := st.CodePropsGet(dollar, ts, PropDestructor)
	assert.False(t, ok)
}
