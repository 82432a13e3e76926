package engine

import (
	"testing"
	"time"

	"github.com/chazu/partkit/pkg/assembly"
	"github.com/stretchr/testify/require"
)

func TestEvaluateEmptySource(t *testing.T) {
	eng := NewEngine()

	for _, src := range []string{"", "   \n\t  \n  "} {
		a, evalErrs, err := eng.Evaluate(src)
		require.NoError(t, err)
		require.Empty(t, evalErrs)
		require.NotNil(t, a)
		require.Zero(t, a.Len())
	}
}

func TestEvaluatePlainLisp(t *testing.T) {
	source := `
(def x 10)
(def y 20)
(+ x y)
`
	a, evalErrs, err := NewEngine().Evaluate(source)
	require.NoError(t, err)
	require.Empty(t, evalErrs)
	require.NotNil(t, a)
	require.Zero(t, a.Len())
}

func TestEvaluateSyntaxError(t *testing.T) {
	// Unmatched paren is a parse error.
	a, evalErrs, err := NewEngine().Evaluate("(+ 1 2)\n(+ 3")
	require.NoError(t, err)
	require.Nil(t, a)
	require.NotEmpty(t, evalErrs)
	require.NotEmpty(t, evalErrs[0].Message)
}

func TestEvaluateUndefinedSymbol(t *testing.T) {
	a, evalErrs, err := NewEngine().Evaluate("(+ 1 undefined-symbol)")
	require.NoError(t, err)
	require.Nil(t, a)
	require.NotEmpty(t, evalErrs)
}

func TestEvalErrorImplementsError(t *testing.T) {
	e := EvalError{Line: 5, Message: "something went wrong"}
	require.Equal(t, "line 5: something went wrong", e.Error())

	e2 := EvalError{Message: "no location"}
	require.Equal(t, "no location", e2.Error())
}

func TestEvaluateDeterministic(t *testing.T) {
	eng := NewEngine()
	src := `(part "a") (part "b") (node "a" "top" :at (vec3 0 1 0))`

	for i := 0; i < 5; i++ {
		a, evalErrs, err := eng.Evaluate(src)
		require.NoError(t, err, "iteration %d", i)
		require.Empty(t, evalErrs, "iteration %d", i)
		require.Equal(t, 2, a.Len(), "iteration %d", i)
	}
}

func TestCheck(t *testing.T) {
	eng := NewEngine()

	res := eng.Check(`
(part "body")
(node "body" "top" :at (vec3 0 1 0))
(part "loose")
`)
	require.Empty(t, res.Errors)
	require.NotNil(t, res.Assembly)
	require.Equal(t, 2, res.Assembly.Len())
	require.Len(t, res.Warnings, 1)
	require.Contains(t, res.Warnings[0].Message, "orphan")
	require.Equal(t, assembly.PartID(1), res.Warnings[0].Part)

	bad := eng.Check(`(part "a"`)
	require.NotEmpty(t, bad.Errors)
	require.Nil(t, bad.Assembly)
}

func TestAwaitBuildTimeout(t *testing.T) {
	// A channel that never sends stands in for a runaway program.
	ch := make(chan build)
	current := func() uint64 { return 1 }

	start := time.Now()
	a, diags, err := awaitBuild(ch, 20*time.Millisecond, 1, current)
	require.EqualError(t, err, "evaluation timed out after 20ms")
	require.Nil(t, a)
	require.Nil(t, diags)
	require.Less(t, time.Since(start), EvalTimeout)
}

func TestAwaitBuildDiscardsStale(t *testing.T) {
	ch := startBuild(func() (*assembly.Assembly, []EvalError, error) {
		return assembly.New("test"), nil, nil
	})

	a, _, err := awaitBuild(ch, EvalTimeout, 1, func() uint64 { return 2 })
	require.ErrorContains(t, err, "superseded")
	require.Nil(t, a)
}

func TestStartBuildResult(t *testing.T) {
	want := assembly.New("test")
	diags := []EvalError{{Line: 2, Message: "bad"}}
	ch := startBuild(func() (*assembly.Assembly, []EvalError, error) {
		return want, diags, nil
	})

	a, got, err := awaitBuild(ch, EvalTimeout, 7, func() uint64 { return 7 })
	require.NoError(t, err)
	require.Same(t, want, a)
	require.Equal(t, diags, got)
}

func TestStartBuildRecoversPanic(t *testing.T) {
	ch := startBuild(func() (*assembly.Assembly, []EvalError, error) {
		panic("boom")
	})

	a, diags, err := awaitBuild(ch, EvalTimeout, 1, func() uint64 { return 1 })
	require.EqualError(t, err, "panic during evaluation: boom")
	require.Nil(t, a)
	require.Nil(t, diags)
}

func TestParseZygomysError(t *testing.T) {
	tests := []struct {
		name     string
		msg      string
		wantLine int
		wantMsg  string
	}{
		{
			name:     "error on line format",
			msg:      "Error on line 5: unexpected token\n",
			wantLine: 5,
			wantMsg:  "unexpected token",
		},
		{
			name:     "no line info",
			msg:      "some generic error",
			wantLine: 0,
			wantMsg:  "some generic error",
		},
		{
			name:     "line format lowercase",
			msg:      "error on line 12: missing paren",
			wantLine: 12,
			wantMsg:  "missing paren",
		},
		{
			name:     "short line format",
			msg:      "line 3: bad node",
			wantLine: 3,
			wantMsg:  "bad node",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := parseZygomysError(errString(tt.msg))
			require.NotEmpty(t, errs)
			require.Equal(t, tt.wantLine, errs[0].Line)
			require.Contains(t, errs[0].Message, tt.wantMsg)
		})
	}
}

// errString is a simple error type for testing.
type errString string

func (e errString) Error() string { return string(e) }
