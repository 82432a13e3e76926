package assembly

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/chazu/partkit/pkg/config"
	"github.com/chazu/partkit/pkg/geom"
	"github.com/chazu/partkit/pkg/scene"
)

// Config names read by the loaders.
const (
	AssemblyNodeName  = "ASSEMBLY"
	PartNodeName      = "PART"
	ModuleNodeName    = "MODULE"
	TransformNodeName = "TRANSFORM"

	stackPrefix = "node_stack_"
	surfaceKey  = "node_attach"

	// SurfaceRef names the surface node in an attach value.
	SurfaceRef = "srf"
)

// NodesFromConfig reads the attach nodes declared on a part config:
//
//	node_stack_<id> = x, y, z, dx, dy, dz[, size]
//	node_attach = x, y, z, dx, dy, dz[, size]
//
// Stack nodes keep their declaration order. Entries with fewer than six
// numbers are reported through r and skipped.
func NodesFromConfig(r *config.Reader) (surface *AttachNode, stack []*AttachNode) {
	for _, v := range r.Node().Values() {
		var id string
		kind := NodeStack
		switch {
		case v.Name == surfaceKey:
			kind = NodeSurface
		case strings.HasPrefix(v.Name, stackPrefix) && len(v.Name) > len(stackPrefix):
			id = strings.TrimPrefix(v.Name, stackPrefix)
		default:
			continue
		}
		nums := r.Float64sCSV(v.Name)
		if nums == nil {
			continue
		}
		if len(nums) < 6 {
			r.Malformed(v.Name, v.Value, fmt.Errorf("found %d values, need at least 6 for an attach node", len(nums)))
			continue
		}
		size := 1
		if len(nums) > 6 {
			size = int(nums[6])
		}
		n := NewAttachNode(id, kind,
			geom.Vec3{X: nums[0], Y: nums[1], Z: nums[2]},
			geom.Vec3{X: nums[3], Y: nums[4], Z: nums[5]},
			size)
		if kind == NodeSurface {
			surface = n
		} else {
			stack = append(stack, n)
		}
	}
	return surface, stack
}

// FromConfig builds an assembly from a document. The document is either an
// ASSEMBLY node or a node holding one. Each PART child becomes a part, in
// order; "parent" names an earlier or later part by index or name, and
// "attach = childNode, parentNode" picks the nodes that join them, where
// "srf" or an empty childNode means the surface node.
//
// Malformed values are returned as diagnostics with defaults substituted.
// A structural problem, such as an unknown parent or node, is an error.
func FromConfig(doc *config.Node, logger *slog.Logger) (*Assembly, []config.Diagnostic, error) {
	if doc == nil {
		return nil, nil, fmt.Errorf("assembly config: nil document")
	}
	if doc.Name != AssemblyNodeName {
		if an := doc.GetNode(AssemblyNodeName); an != nil {
			doc = an
		}
	}
	r := config.NewReader(doc, logger)
	a := New(r.String("name", "assembly"))

	type link struct {
		parent string
		attach string
	}
	var links []link

	for i, pr := range r.Children(PartNodeName) {
		name := pr.String("name", fmt.Sprintf("part%d", i))
		t := geom.Transform{
			Position: pr.Vector3("pos", geom.Zero),
			Rotation: pr.Vector3("rot", geom.Zero),
		}
		p := a.AddPart(name, t)
		p.Scale = pr.Float64("scale", 1)
		p.AttPos0 = pr.Vector3("attPos0", geom.Zero)

		surface, stack := NodesFromConfig(pr)
		if surface != nil {
			p.SetSurfaceNode(surface)
		}
		for _, n := range stack {
			p.AddNode(n)
		}
		for _, mr := range pr.Children(ModuleNodeName) {
			p.AddModule(moduleFromConfig(mr))
		}
		if pr.Node().HasNode(TransformNodeName) {
			p.Model = scene.NewNode(name)
			for _, tn := range pr.Node().GetNodes(TransformNodeName) {
				p.Model.AddChild(modelFromConfig(tn))
			}
		}

		links = append(links, link{parent: pr.String("parent", ""), attach: pr.String("attach", "")})
	}

	for i, l := range links {
		if l.parent == "" {
			continue
		}
		child := a.Part(PartID(i))
		parent := resolvePart(a, l.parent)
		if parent == nil {
			return nil, r.Diagnostics(), fmt.Errorf("part %q: parent %q: %w", child.Name, l.parent, ErrNoPart)
		}
		childNode, parentNode := splitAttach(l.attach)
		if err := a.Attach(child.ID, parent.ID, childNode, parentNode); err != nil {
			return nil, r.Diagnostics(), err
		}
	}

	if doc.HasValue("root") {
		root := resolvePart(a, r.String("root", ""))
		if root == nil {
			return nil, r.Diagnostics(), fmt.Errorf("root %q: %w", r.String("root", ""), ErrNoPart)
		}
		a.SetRoot(root.ID)
	}
	return a, r.Diagnostics(), nil
}

func moduleFromConfig(r *config.Reader) Module {
	name := r.String("name", "")
	if name == ControllerModuleName {
		return &Controller{WheelGroup: r.String("wheelGroup", "")}
	}
	g := &Generic{Name: name, Fields: make(map[string]string)}
	for _, v := range r.Node().Values() {
		if v.Name == "name" {
			continue
		}
		if _, dup := g.Fields[v.Name]; !dup {
			g.Fields[v.Name] = v.Value
		}
	}
	return g
}

func modelFromConfig(n *config.Node) *scene.Node {
	name, _ := n.GetValue("name")
	sn := scene.NewNode(name)
	for _, c := range n.GetNodes(TransformNodeName) {
		sn.AddChild(modelFromConfig(c))
	}
	return sn
}

// resolvePart finds a part by index or, failing that, by name.
func resolvePart(a *Assembly, ref string) *Part {
	ref = strings.TrimSpace(ref)
	if i, err := strconv.Atoi(ref); err == nil {
		return a.Part(PartID(i))
	}
	return a.Lookup(ref)
}

func splitAttach(v string) (childNode, parentNode string) {
	before, after, _ := strings.Cut(v, ",")
	childNode = strings.TrimSpace(before)
	parentNode = strings.TrimSpace(after)
	if childNode == SurfaceRef {
		childNode = ""
	}
	return childNode, parentNode
}
