package scene

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// buildTree returns A{B{A, D}, C{D}}.
func buildTree() (root, b, nestedA, c *Node) {
	nestedA = NewNode("A")
	b = NewNode("B", nestedA, NewNode("D"))
	c = NewNode("C", NewNode("D"))
	root = NewNode("A", b, c)
	return root, b, nestedA, c
}

func TestFindFirstByNamePrefersSelf(t *testing.T) {
	root, _, nestedA, _ := buildTree()

	got, ok := FindFirstByName(root, "A")
	require.True(t, ok)
	require.Same(t, root, got)
	require.NotSame(t, nestedA, got)
}

func TestFindFirstByNameDirectChildBeforeDeeper(t *testing.T) {
	// B's subtree has an "X" two levels down, C itself is named "X".
	deep := NewNode("X")
	b := NewNode("B", NewNode("inner", deep))
	c := NewNode("X")
	root := NewNode("root", b, c)

	got, ok := FindFirstByName(root, "X")
	require.True(t, ok)
	require.Same(t, c, got)
}

func TestFindFirstByNameMissing(t *testing.T) {
	root, _, _, _ := buildTree()
	got, ok := FindFirstByName(root, "nope")
	require.False(t, ok)
	require.Nil(t, got)
}

func TestFindAllByName(t *testing.T) {
	root, b, nestedA, c := buildTree()

	all := FindAllByName(root, "A")
	require.Len(t, all, 2)
	require.Same(t, root, all[0])
	require.Same(t, nestedA, all[1])

	ds := FindAllByName(root, "D")
	require.Len(t, ds, 2)
	require.Same(t, b.Children()[1], ds[0])
	require.Same(t, c.Children()[0], ds[1])

	none := FindAllByName(root, "Z")
	require.NotNil(t, none)
	require.Empty(t, none)
}

func TestFindPath(t *testing.T) {
	wheel := NewNode("wheel")
	root := NewNode("model", NewNode("suspension", wheel), NewNode("wheel"))

	require.Same(t, wheel, Find(root, "suspension/wheel"))
	require.Same(t, root, Find(root, ""))
	require.Nil(t, Find(root, "suspension/missing"))
	require.Equal(t, "model/suspension/wheel", wheel.Path())
}

func TestAddChildReparents(t *testing.T) {
	a := NewNode("a")
	b := NewNode("b")
	c := NewNode("c")
	a.AddChild(c)
	b.AddChild(c)

	require.Empty(t, a.Children())
	require.Equal(t, []*Node{c}, b.Children())
	require.Same(t, b, c.Parent())
	require.False(t, a.RemoveChild(c))
}

func TestDump(t *testing.T) {
	root := NewNode("model", NewNode("wheel", NewNode("collider")))
	var sb strings.Builder
	require.NoError(t, Dump(&sb, root))
	require.Equal(t, "    model\n        wheel\n            collider\n", sb.String())
}
