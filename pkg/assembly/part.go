package assembly

import (
	"github.com/chazu/partkit/pkg/geom"
	"github.com/chazu/partkit/pkg/scene"
)

// PartID addresses a part within its Assembly.
type PartID int

// NoPart is the PartID of an absent part.
const NoPart PartID = -1

// NodeKind distinguishes stack nodes from the surface attach node.
type NodeKind int

const (
	NodeStack   NodeKind = iota // regular, named attach point
	NodeSurface                 // the part's single surface attach point
)

func (k NodeKind) String() string {
	switch k {
	case NodeStack:
		return "stack"
	case NodeSurface:
		return "surface"
	default:
		return "unknown"
	}
}

// AttachNode is a location on a part where a neighbor can be joined.
// Position is in the owning part's local frame and changes with its scale;
// OriginalPosition is the baseline the next rescale starts from.
type AttachNode struct {
	ID               string    `json:"id"`
	Kind             NodeKind  `json:"kind"`
	Position         geom.Vec3 `json:"position"`
	OriginalPosition geom.Vec3 `json:"original_position"`
	Orientation      geom.Vec3 `json:"orientation"`
	Size             int       `json:"size"`
	AttachedPart     PartID    `json:"attached_part"` // non-owning, NoPart when free
}

// NewAttachNode returns a free node whose baseline equals its position.
func NewAttachNode(id string, kind NodeKind, pos, orientation geom.Vec3, size int) *AttachNode {
	return &AttachNode{
		ID:               id,
		Kind:             kind,
		Position:         pos,
		OriginalPosition: pos,
		Orientation:      orientation,
		Size:             size,
		AttachedPart:     NoPart,
	}
}

// Part is one structural unit of an assembly.
type Part struct {
	ID        PartID         `json:"id"`
	Name      string         `json:"name"`
	Parent    PartID         `json:"parent"`
	Transform geom.Transform `json:"transform"`

	// Scale is the uniform rescale factor the node positions currently
	// reflect; 1 for a part as authored.
	Scale float64 `json:"scale"`

	// AttPos0 is the part's base offset from its parent, kept alongside the
	// world transform and shifted by the same local deltas.
	AttPos0 geom.Vec3 `json:"att_pos0"`

	SurfaceNode *AttachNode   `json:"surface_node,omitempty"`
	Nodes       []*AttachNode `json:"nodes,omitempty"`
	Modules     []Module      `json:"-"`
	Model       *scene.Node   `json:"-"`
}

// AttachNodes returns the surface node, if any, followed by the stack nodes
// in stored order.
func (p *Part) AttachNodes() []*AttachNode {
	out := make([]*AttachNode, 0, len(p.Nodes)+1)
	if p.SurfaceNode != nil {
		out = append(out, p.SurfaceNode)
	}
	return append(out, p.Nodes...)
}

// FindNode returns the stack node with the given ID, or nil.
func (p *Part) FindNode(id string) *AttachNode {
	for _, n := range p.Nodes {
		if n.ID == id {
			return n
		}
	}
	return nil
}

// AddNode appends a stack node and returns it.
func (p *Part) AddNode(n *AttachNode) *AttachNode {
	n.Kind = NodeStack
	p.Nodes = append(p.Nodes, n)
	return n
}

// SetSurfaceNode installs n as the surface attach node.
func (p *Part) SetSurfaceNode(n *AttachNode) {
	n.Kind = NodeSurface
	p.SurfaceNode = n
}

// AddModule attaches a component to the part.
func (p *Part) AddModule(m Module) {
	p.Modules = append(p.Modules, m)
}
