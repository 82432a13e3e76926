// Package scene models the named transform hierarchy inside a part's model
// and provides name-based lookups over it (or over any tree that exposes
// names and children).
package scene

import (
	"fmt"
	"io"
	"strings"
)

// Node is a named element of a scene tree. The zero value is an unnamed
// root with no children.
type Node struct {
	Name     string
	parent   *Node
	children []*Node
}

// NewNode creates a detached node, optionally with children.
func NewNode(name string, children ...*Node) *Node {
	n := &Node{Name: name}
	for _, c := range children {
		n.AddChild(c)
	}
	return n
}

// AddChild appends c to n's children, detaching it from any previous parent.
// It returns c for chaining.
func (n *Node) AddChild(c *Node) *Node {
	if c.parent != nil {
		c.parent.RemoveChild(c)
	}
	c.parent = n
	n.children = append(n.children, c)
	return c
}

// RemoveChild detaches c from n. It reports whether c was a child of n.
func (n *Node) RemoveChild(c *Node) bool {
	for i, cur := range n.children {
		if cur == c {
			n.children = append(n.children[:i], n.children[i+1:]...)
			c.parent = nil
			return true
		}
	}
	return false
}

// Parent returns n's parent, or nil for a root.
func (n *Node) Parent() *Node {
	return n.parent
}

// Children returns n's children in insertion order. The slice is shared;
// callers must not modify it.
func (n *Node) Children() []*Node {
	return n.children
}

// NodeName implements Labeled.
func (n *Node) NodeName() string {
	if n == nil {
		return ""
	}
	return n.Name
}

// ChildNodes implements Labeled.
func (n *Node) ChildNodes() []*Node {
	if n == nil {
		return nil
	}
	return n.children
}

// Path returns the slash-separated names from the root down to n.
func (n *Node) Path() string {
	var parts []string
	for cur := n; cur != nil; cur = cur.parent {
		parts = append(parts, cur.Name)
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, "/")
}

// Find resolves a slash-separated path of direct-child names relative to
// root, e.g. "suspension/wheel". An empty path returns root. It returns nil
// when any segment is missing.
func Find(root *Node, path string) *Node {
	cur := root
	if path == "" {
		return cur
	}
	for _, seg := range strings.Split(path, "/") {
		var next *Node
		for _, c := range cur.ChildNodes() {
			if c.Name == seg {
				next = c
				break
			}
		}
		if next == nil {
			return nil
		}
		cur = next
	}
	return cur
}

// Dump writes an indented listing of the tree rooted at n.
func Dump(w io.Writer, n *Node) error {
	return dump(w, n, "")
}

func dump(w io.Writer, n *Node, prefix string) error {
	prefix += "    "
	if _, err := fmt.Fprintf(w, "%s%s\n", prefix, n.Name); err != nil {
		return err
	}
	for _, c := range n.children {
		if err := dump(w, c, prefix); err != nil {
			return err
		}
	}
	return nil
}
