package assembly

import (
	"errors"
	"fmt"

	"github.com/chazu/partkit/pkg/geom"
	"github.com/samber/lo"
)

var (
	// ErrNoPart is returned when a PartID does not name a part.
	ErrNoPart = errors.New("assembly: no such part")
	// ErrNoNode is returned when an attach node ID is not on the part.
	ErrNoNode = errors.New("assembly: no such attach node")
	// ErrNodeInUse is returned when attaching to an occupied node.
	ErrNodeInUse = errors.New("assembly: attach node already in use")
	// ErrCycle is returned when a parent link would create a loop.
	ErrCycle = errors.New("assembly: parent link would create a cycle")
)

// Assembly is an arena of parts. The zero value is not usable; call New.
type Assembly struct {
	Name  string
	parts []*Part
	root  PartID
}

// New creates an empty assembly.
func New(name string) *Assembly {
	return &Assembly{Name: name, root: NoPart}
}

// AddPart creates a part with no parent. The first part added becomes the
// root unless SetRoot says otherwise.
func (a *Assembly) AddPart(name string, t geom.Transform) *Part {
	p := &Part{
		ID:        PartID(len(a.parts)),
		Name:      name,
		Parent:    NoPart,
		Transform: t,
		Scale:     1,
	}
	a.parts = append(a.parts, p)
	if a.root == NoPart {
		a.root = p.ID
	}
	return p
}

// Part returns the part with the given ID, or nil.
func (a *Assembly) Part(id PartID) *Part {
	if id < 0 || int(id) >= len(a.parts) {
		return nil
	}
	return a.parts[id]
}

// Lookup returns the first part with the given name, or nil.
func (a *Assembly) Lookup(name string) *Part {
	for _, p := range a.parts {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// Parts returns every part in insertion order. The slice is shared.
func (a *Assembly) Parts() []*Part {
	return a.parts
}

// Len returns the number of parts.
func (a *Assembly) Len() int {
	return len(a.parts)
}

// Root returns the designated root part, or NoPart for an empty assembly.
func (a *Assembly) Root() PartID {
	return a.root
}

// SetRoot designates id as the assembly root.
func (a *Assembly) SetRoot(id PartID) error {
	if a.Part(id) == nil {
		return fmt.Errorf("set root %d: %w", id, ErrNoPart)
	}
	a.root = id
	return nil
}

// Attach makes child a child of parent. childNode names the child's stack
// node to join through; empty means the child's surface node. parentNode
// names the parent's stack node the child occupies; empty means the child
// sits on the parent's surface and occupies no parent node.
func (a *Assembly) Attach(child, parent PartID, childNode, parentNode string) error {
	c, p := a.Part(child), a.Part(parent)
	if c == nil {
		return fmt.Errorf("attach child %d: %w", child, ErrNoPart)
	}
	if p == nil {
		return fmt.Errorf("attach to parent %d: %w", parent, ErrNoPart)
	}
	cur := parent
	for steps := 0; cur != NoPart && steps <= len(a.parts); steps++ {
		if cur == child {
			return fmt.Errorf("attach %q to %q: %w", c.Name, p.Name, ErrCycle)
		}
		q := a.Part(cur)
		if q == nil {
			break
		}
		cur = q.Parent
	}

	var cn *AttachNode
	if childNode == "" {
		cn = c.SurfaceNode
		if cn == nil {
			return fmt.Errorf("attach %q: surface node: %w", c.Name, ErrNoNode)
		}
	} else if cn = c.FindNode(childNode); cn == nil {
		return fmt.Errorf("attach %q: node %q: %w", c.Name, childNode, ErrNoNode)
	}
	// The child's node may only point at the new parent or at the old one,
	// which Detach releases below.
	if held := cn.AttachedPart; held != NoPart && held != parent && held != c.Parent {
		return fmt.Errorf("attach %q: node %q holds part %d: %w", c.Name, cn.ID, held, ErrNodeInUse)
	}

	var pn *AttachNode
	if parentNode != "" {
		if pn = p.FindNode(parentNode); pn == nil {
			return fmt.Errorf("attach to %q: node %q: %w", p.Name, parentNode, ErrNoNode)
		}
		if pn.AttachedPart != NoPart && pn.AttachedPart != child {
			return fmt.Errorf("attach to %q: node %q: %w", p.Name, parentNode, ErrNodeInUse)
		}
	}

	if c.Parent != NoPart {
		a.Detach(child)
	}
	c.Parent = parent
	cn.AttachedPart = parent
	if pn != nil {
		pn.AttachedPart = child
	}
	return nil
}

// Detach clears child's parent link and every node link between the two.
func (a *Assembly) Detach(child PartID) error {
	c := a.Part(child)
	if c == nil {
		return fmt.Errorf("detach %d: %w", child, ErrNoPart)
	}
	if p := a.Part(c.Parent); p != nil {
		for _, n := range p.AttachNodes() {
			if n.AttachedPart == child {
				n.AttachedPart = NoPart
			}
		}
		for _, n := range c.AttachNodes() {
			if n.AttachedPart == p.ID {
				n.AttachedPart = NoPart
			}
		}
	}
	c.Parent = NoPart
	return nil
}

// Children returns the IDs of id's children in insertion order.
func (a *Assembly) Children(id PartID) []PartID {
	return lo.FilterMap(a.parts, func(p *Part, _ int) (PartID, bool) {
		return p.ID, id != NoPart && p.Parent == id
	})
}

// Subtree returns id followed by all of its descendants, depth first in
// insertion order. Looping parent links are visited once. It returns nil for
// an unknown id.
func (a *Assembly) Subtree(id PartID) []PartID {
	if a.Part(id) == nil {
		return nil
	}
	seen := make(map[PartID]bool)
	var out []PartID
	var walk func(PartID)
	walk = func(cur PartID) {
		if seen[cur] {
			return
		}
		seen[cur] = true
		out = append(out, cur)
		for _, c := range a.Children(cur) {
			walk(c)
		}
	}
	walk(id)
	return out
}

// TranslateTree moves id and everything below it by d in world space. Parts
// keep their own world positions, so a rigid move has to visit each one.
func (a *Assembly) TranslateTree(id PartID, d geom.Vec3) {
	for _, pid := range a.Subtree(id) {
		a.parts[pid].Transform.Translate(d)
	}
}

// IsChildOf reports whether child's parent link names parent.
func (a *Assembly) IsChildOf(child, parent PartID) bool {
	c := a.Part(child)
	return c != nil && parent != NoPart && c.Parent == parent
}

// LocalRoot returns the topmost ancestor of id, following parent links. A
// part with no parent is its own local root. Dangling or looping links stop
// the walk at the last part reached. It returns NoPart for an unknown id.
func (a *Assembly) LocalRoot(id PartID) PartID {
	if a.Part(id) == nil {
		return NoPart
	}
	seen := map[PartID]bool{id: true}
	cur := id
	for {
		next := a.parts[cur].Parent
		if a.Part(next) == nil || seen[next] {
			return cur
		}
		seen[next] = true
		cur = next
	}
}
