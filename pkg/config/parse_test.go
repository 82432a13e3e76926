package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

const wheelCfg = `
// rover wheel
PART
{
	name = roverWheel
	rescaleFactor = 1.25
	node_stack_top = 0, 0.5, 0, 0, 1, 0, 1
	MODULE
	{
		name = Controller
		wheelGroup = 3 // shared with the other rear wheels
	}
	MODULE { name = Motor }
	LOAD_CURVE
	{
		key = 0 0
		key = 1   2   0.5 0.5
	}
}
`

func TestParseDocument(t *testing.T) {
	root, err := ParseString(wheelCfg)
	require.NoError(t, err)
	require.Equal(t, RootName, root.Name)

	part := root.GetNode("PART")
	require.NotNil(t, part)

	name, ok := part.GetValue("name")
	require.True(t, ok)
	require.Equal(t, "roverWheel", name)

	modules := part.GetNodes("MODULE")
	require.Len(t, modules, 2)
	group, _ := modules[0].GetValue("wheelGroup")
	require.Equal(t, "3", group)
	motor, _ := modules[1].GetValue("name")
	require.Equal(t, "Motor", motor)

	keys := part.GetNode("LOAD_CURVE").GetValues("key")
	require.Equal(t, []string{"0 0", "1   2   0.5 0.5"}, keys)
}

func TestParseRoundTrip(t *testing.T) {
	root, err := ParseString(wheelCfg)
	require.NoError(t, err)

	again, err := ParseString(root.String())
	require.NoError(t, err)
	require.Equal(t, root.String(), again.String())
}

func TestParseEmptyValue(t *testing.T) {
	root, err := ParseString("title =\n")
	require.NoError(t, err)
	v, ok := root.GetValue("title")
	require.True(t, ok)
	require.Empty(t, v)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		line int
	}{
		{"unexpected close", "a = 1\n}\n", 2},
		{"unclosed node", "PART\n{\nname = x\n", 3},
		{"dangling token", "PART\nname = x\n", 1},
		{"nameless value", " = x\n", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseString(tt.src)
			var pe *ParseError
			require.True(t, errors.As(err, &pe), "want *ParseError, got %v", err)
			require.Equal(t, tt.line, pe.Line)
		})
	}
}

func TestNodeAccessors(t *testing.T) {
	n := NewNode("PART")
	n.AddValue("key", "a")
	n.AddValue("key", "b")
	n.SetValue("key", "c")
	n.SetValue("other", "d")

	require.Equal(t, []string{"c", "b"}, n.GetValues("key"))
	require.True(t, n.HasValue("other"))
	require.False(t, n.HasValue("missing"))
	require.NotNil(t, n.GetValues("missing"))
	require.Empty(t, n.GetValues("missing"))
	require.Nil(t, n.GetNode("missing"))
	require.False(t, n.HasNode("missing"))
	require.Empty(t, n.GetNodes("missing"))
}
