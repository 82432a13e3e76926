package config

import (
	"fmt"
	"strings"
)

// Value is a single name = value pair.
type Value struct {
	Name  string
	Value string
}

// Node is one level of a configuration document.
type Node struct {
	Name   string
	values []Value
	nodes  []*Node
}

// NewNode creates an empty node.
func NewNode(name string) *Node {
	return &Node{Name: name}
}

// AddValue appends a value, keeping any existing values with the same name.
func (n *Node) AddValue(name, value string) {
	n.values = append(n.values, Value{Name: name, Value: value})
}

// SetValue replaces the first value called name, or appends one.
func (n *Node) SetValue(name, value string) {
	for i := range n.values {
		if n.values[i].Name == name {
			n.values[i].Value = value
			return
		}
	}
	n.AddValue(name, value)
}

// AddNode appends child and returns it.
func (n *Node) AddNode(child *Node) *Node {
	n.nodes = append(n.nodes, child)
	return child
}

// GetValue returns the first value called name.
func (n *Node) GetValue(name string) (string, bool) {
	for _, v := range n.values {
		if v.Name == name {
			return v.Value, true
		}
	}
	return "", false
}

// GetValues returns every value called name in document order. The result
// is empty, never nil, when there are none.
func (n *Node) GetValues(name string) []string {
	out := []string{}
	for _, v := range n.values {
		if v.Name == name {
			out = append(out, v.Value)
		}
	}
	return out
}

// HasValue reports whether a value called name exists.
func (n *Node) HasValue(name string) bool {
	_, ok := n.GetValue(name)
	return ok
}

// GetNode returns the first child node called name, or nil.
func (n *Node) GetNode(name string) *Node {
	for _, c := range n.nodes {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// GetNodes returns every child node called name in document order.
func (n *Node) GetNodes(name string) []*Node {
	out := []*Node{}
	for _, c := range n.nodes {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// HasNode reports whether a child node called name exists.
func (n *Node) HasNode(name string) bool {
	return n.GetNode(name) != nil
}

// Values returns all values in document order. The slice is shared.
func (n *Node) Values() []Value {
	return n.values
}

// Nodes returns all child nodes in document order. The slice is shared.
func (n *Node) Nodes() []*Node {
	return n.nodes
}

// String renders the node's contents in the text format accepted by Parse.
// The node's own name is not written, so a parsed document round-trips.
func (n *Node) String() string {
	var sb strings.Builder
	n.write(&sb, "")
	return sb.String()
}

func (n *Node) write(sb *strings.Builder, indent string) {
	for _, v := range n.values {
		fmt.Fprintf(sb, "%s%s = %s\n", indent, v.Name, v.Value)
	}
	for _, c := range n.nodes {
		fmt.Fprintf(sb, "%s%s\n%s{\n", indent, c.Name, indent)
		c.write(sb, indent+"\t")
		fmt.Fprintf(sb, "%s}\n", indent)
	}
}
