// Package tessellate builds a proxy solid for every part of an assembly and
// turns the proxies into triangle meshes with a geometry kernel. A proxy is
// a box spanning the part origin and its attach nodes, with a sphere marking
// each node, so it grows and shrinks with rescaling.
package tessellate

import (
	"fmt"

	"github.com/chazu/partkit/pkg/assembly"
	"github.com/chazu/partkit/pkg/geom"
	"github.com/chazu/partkit/pkg/kernel"
)

const (
	// MinExtent is the smallest side of a proxy box.
	MinExtent = 0.1
	// NodeRadius is the marker radius added per node size step.
	NodeRadius = 0.05
)

// Proxy is the world-space solid standing in for one part.
type Proxy struct {
	Part  assembly.PartID
	Name  string
	Solid kernel.Solid
}

// Proxies builds one proxy per part. Parts reachable from the root come
// first, depth first, then any unattached parts in id order. The assembly is
// not modified.
func Proxies(a *assembly.Assembly, k kernel.Kernel) ([]Proxy, error) {
	var out []Proxy
	for _, id := range walkOrder(a) {
		p := a.Part(id)
		s, err := partSolid(k, p)
		if err != nil {
			return nil, fmt.Errorf("tessellate: part %q: %w", p.Name, err)
		}
		out = append(out, Proxy{Part: id, Name: p.Name, Solid: s})
	}
	return out, nil
}

// Tessellate returns one mesh per part, in Proxies order.
func Tessellate(a *assembly.Assembly, k kernel.Kernel) ([]*kernel.Mesh, error) {
	proxies, err := Proxies(a, k)
	if err != nil {
		return nil, err
	}
	meshes := make([]*kernel.Mesh, 0, len(proxies))
	for _, px := range proxies {
		mesh, err := k.ToMesh(px.Solid)
		if err != nil {
			return nil, fmt.Errorf("tessellate: ToMesh failed for part %q: %w", px.Name, err)
		}
		mesh.PartName = px.Name
		meshes = append(meshes, mesh)
	}
	return meshes, nil
}

func walkOrder(a *assembly.Assembly) []assembly.PartID {
	seen := make(map[assembly.PartID]bool, a.Len())
	order := make([]assembly.PartID, 0, a.Len())

	var walk func(id assembly.PartID)
	walk = func(id assembly.PartID) {
		if seen[id] {
			return
		}
		seen[id] = true
		order = append(order, id)
		for _, c := range a.Children(id) {
			walk(c)
		}
	}
	if a.Part(a.Root()) != nil {
		walk(a.Root())
	}
	for _, p := range a.Parts() {
		if !seen[p.ID] {
			walk(p.ID)
		}
	}
	return order
}

// partSolid builds the proxy in the part's frame, then rotates and places
// it.
func partSolid(k kernel.Kernel, p *assembly.Part) (kernel.Solid, error) {
	s := p.Transform.Scale
	if s == 0 {
		s = 1
	}

	lo, hi := geom.Zero, geom.Zero
	nodes := p.AttachNodes()
	for _, n := range nodes {
		pos := n.Position.Scale(s)
		lo, hi = lo.Min(pos), hi.Max(pos)
	}
	size := hi.Sub(lo).Max(geom.Vec3{X: MinExtent, Y: MinExtent, Z: MinExtent})
	center := lo.Add(hi).Scale(0.5)

	body, err := k.Box(size.X, size.Y, size.Z)
	if err != nil {
		return nil, err
	}
	if !center.IsZero() {
		body = k.Translate(body, center.X, center.Y, center.Z)
	}

	for _, n := range nodes {
		marker, err := k.Sphere(NodeRadius * float64(n.Size+1) * s)
		if err != nil {
			return nil, fmt.Errorf("%s node %q: %w", n.Kind, n.ID, err)
		}
		pos := n.Position.Scale(s)
		body = k.Union(body, k.Translate(marker, pos.X, pos.Y, pos.Z))
	}

	if rot := p.Transform.Rotation; !rot.IsZero() {
		body = k.Rotate(body, rot.X, rot.Y, rot.Z)
	}
	if pos := p.Transform.Position; !pos.IsZero() {
		body = k.Translate(body, pos.X, pos.Y, pos.Z)
	}
	return body, nil
}
