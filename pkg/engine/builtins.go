package engine

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/chazu/partkit/pkg/assembly"
	"github.com/chazu/partkit/pkg/geom"
	"github.com/chazu/partkit/pkg/rescale"
	"github.com/chazu/partkit/pkg/scene"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

type sexpVec3 struct {
	vec geom.Vec3
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// sexpPart is returned by `part` so later builtins can take the part itself
// instead of its name.
type sexpPart struct {
	id   assembly.PartID
	name string
}

func (p *sexpPart) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(part %q)", p.name)
}
func (p *sexpPart) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// isKW reports whether s is a preprocessed keyword and returns its name.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok || !strings.HasPrefix(str.S, kwPrefix) {
		return "", false
	}
	return str.S[len(kwPrefix):], true
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	order      []string // keyword names as written
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments. A trailing
// keyword with no value maps to SexpNull.
func parseArgs(args []zygo.Sexp) kwArgs {
	res := kwArgs{kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		name, ok := isKW(args[i])
		if !ok {
			res.positional = append(res.positional, args[i])
			continue
		}
		if _, seen := res.kw[name]; !seen {
			res.order = append(res.order, name)
		}
		if i+1 < len(args) {
			res.kw[name] = args[i+1]
			i++
		} else {
			res.kw[name] = zygo.SexpNull
		}
	}
	return res
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

func toInt(s zygo.Sexp) (int, error) {
	if v, ok := s.(*zygo.SexpInt); ok {
		return int(v.Val), nil
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

func toBool(s zygo.Sexp) (bool, error) {
	if b, ok := s.(*zygo.SexpBool); ok {
		return b.Val, nil
	}
	return false, fmt.Errorf("expected true or false, got %T (%s)", s, s.SexpString(nil))
}

func toVec3(s zygo.Sexp) (geom.Vec3, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return geom.Vec3{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// toText renders a scalar as config text: strings as-is, numbers and
// booleans in their literal form.
func toText(s zygo.Sexp) (string, error) {
	switch v := s.(type) {
	case *zygo.SexpStr:
		return v.S, nil
	case *zygo.SexpInt:
		return strconv.FormatInt(v.Val, 10), nil
	case *zygo.SexpFloat:
		return strconv.FormatFloat(v.Val, 'g', -1, 64), nil
	case *zygo.SexpBool:
		return strconv.FormatBool(v.Val), nil
	}
	return "", fmt.Errorf("expected string or number, got %T (%s)", s, s.SexpString(nil))
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// builder is the assembly under construction plus the lookups builtins share.
type builder struct {
	a *assembly.Assembly
}

// part resolves a part reference: the value `part` returned, or a name.
func (b *builder) part(s zygo.Sexp) (*assembly.Part, error) {
	switch v := s.(type) {
	case *sexpPart:
		if p := b.a.Part(v.id); p != nil {
			return p, nil
		}
		return nil, fmt.Errorf("part %q: %w", v.name, assembly.ErrNoPart)
	case *zygo.SexpStr:
		if p := b.a.Lookup(v.S); p != nil {
			return p, nil
		}
		return nil, fmt.Errorf("no part named %q", v.S)
	}
	return nil, fmt.Errorf("expected part or part name, got %T (%s)", s, s.SexpString(nil))
}

// nodeArgs reads the :at, :dir and :size keywords shared by node builtins.
func nodeArgs(fn string, pa kwArgs) (pos, dir geom.Vec3, size int, err error) {
	size = 1
	if v, ok := pa.kw["at"]; ok {
		if pos, err = toVec3(v); err != nil {
			return pos, dir, size, fmt.Errorf("%s: at: %w", fn, err)
		}
	}
	if v, ok := pa.kw["dir"]; ok {
		if dir, err = toVec3(v); err != nil {
			return pos, dir, size, fmt.Errorf("%s: dir: %w", fn, err)
		}
	}
	if v, ok := pa.kw["size"]; ok {
		if size, err = toInt(v); err != nil {
			return pos, dir, size, fmt.Errorf("%s: size: %w", fn, err)
		}
	}
	return pos, dir, size, nil
}

// registerBuiltins installs the partkit DSL into a zygomys environment. The
// builtins populate a as the program runs.
//
// Source must go through preprocessSource first so that :keyword tokens
// reach the builtins as recognizable strings.
func registerBuiltins(env *zygo.Zlisp, a *assembly.Assembly) {
	b := &builder{a: a}

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}
		var xyz [3]float64
		for i, axis := range []string{"x", "y", "z"} {
			f, err := toFloat64(args[i])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("vec3: %s: %w", axis, err)
			}
			xyz[i] = f
		}
		return &sexpVec3{vec: geom.Vec3{X: xyz[0], Y: xyz[1], Z: xyz[2]}}, nil
	})

	// -----------------------------------------------------------------------
	// (part "chassis" :at (vec3 0 1 0) :rot (vec3 0 90 0) :scale 1.5)
	// -----------------------------------------------------------------------
	env.AddFunction("part", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("part requires a name argument")
		}
		partName, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("part: name: %w", err)
		}
		if a.Lookup(partName) != nil {
			return zygo.SexpNull, fmt.Errorf("part: %q already defined", partName)
		}

		t := geom.Identity()
		if v, ok := pa.kw["at"]; ok {
			if t.Position, err = toVec3(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("part: at: %w", err)
			}
		}
		if v, ok := pa.kw["rot"]; ok {
			if t.Rotation, err = toVec3(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("part: rot: %w", err)
			}
		}
		scale := 1.0
		if v, ok := pa.kw["scale"]; ok {
			if scale, err = toFloat64(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("part: scale: %w", err)
			}
		}

		p := a.AddPart(partName, t)
		p.Scale = scale
		return &sexpPart{id: p.ID, name: p.Name}, nil
	})

	// -----------------------------------------------------------------------
	// (node "chassis" "front" :at (vec3 0 0 1) :dir (vec3 0 0 1) :size 2)
	// -----------------------------------------------------------------------
	env.AddFunction("node", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 2 {
			return zygo.SexpNull, fmt.Errorf("node requires a part and a node id")
		}
		p, err := b.part(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("node: %w", err)
		}
		id, err := toString(pa.positional[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("node: id: %w", err)
		}
		if id == "" || p.FindNode(id) != nil {
			return zygo.SexpNull, fmt.Errorf("node: %q on %q: empty or duplicate id", id, p.Name)
		}
		pos, dir, size, err := nodeArgs("node", pa)
		if err != nil {
			return zygo.SexpNull, err
		}
		p.AddNode(assembly.NewAttachNode(id, assembly.NodeStack, pos, dir, size))
		return &sexpPart{id: p.ID, name: p.Name}, nil
	})

	// -----------------------------------------------------------------------
	// (surface-node "wheel" :at (vec3 0.25 0 0) :dir (vec3 1 0 0))
	// -----------------------------------------------------------------------
	env.AddFunction("surface_node", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("surface-node requires a part")
		}
		p, err := b.part(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("surface-node: %w", err)
		}
		pos, dir, size, err := nodeArgs("surface-node", pa)
		if err != nil {
			return zygo.SexpNull, err
		}
		p.SetSurfaceNode(assembly.NewAttachNode("", assembly.NodeSurface, pos, dir, size))
		return &sexpPart{id: p.ID, name: p.Name}, nil
	})

	// -----------------------------------------------------------------------
	// (attach "tank" "chassis" :via "top" :to "front")
	// -----------------------------------------------------------------------
	env.AddFunction("attach", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 2 {
			return zygo.SexpNull, fmt.Errorf("attach requires a child and a parent")
		}
		child, err := b.part(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("attach: child: %w", err)
		}
		parent, err := b.part(pa.positional[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("attach: parent: %w", err)
		}
		var via, to string
		if v, ok := pa.kw["via"]; ok {
			if via, err = toString(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("attach: via: %w", err)
			}
		}
		if v, ok := pa.kw["to"]; ok {
			if to, err = toString(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("attach: to: %w", err)
			}
		}
		if err := a.Attach(child.ID, parent.ID, via, to); err != nil {
			return zygo.SexpNull, fmt.Errorf("attach: %w", err)
		}
		return &sexpPart{id: child.ID, name: child.Name}, nil
	})

	// -----------------------------------------------------------------------
	// (root "chassis")
	// -----------------------------------------------------------------------
	env.AddFunction("root", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("root requires exactly 1 argument, got %d", len(args))
		}
		p, err := b.part(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("root: %w", err)
		}
		if err := a.SetRoot(p.ID); err != nil {
			return zygo.SexpNull, fmt.Errorf("root: %w", err)
		}
		return &sexpPart{id: p.ID, name: p.Name}, nil
	})

	// -----------------------------------------------------------------------
	// (controller "wheelL" :group 3)
	// -----------------------------------------------------------------------
	env.AddFunction("controller", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("controller requires a part")
		}
		p, err := b.part(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("controller: %w", err)
		}
		tag := "0"
		if v, ok := pa.kw["group"]; ok {
			if tag, err = toText(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("controller: group: %w", err)
			}
		}
		p.AddModule(&assembly.Controller{WheelGroup: tag})
		return &sexpPart{id: p.ID, name: p.Name}, nil
	})

	// -----------------------------------------------------------------------
	// (module "wheelL" "WheelMotor" :maxTorque 20)
	// -----------------------------------------------------------------------
	env.AddFunction("module", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 2 {
			return zygo.SexpNull, fmt.Errorf("module requires a part and a module name")
		}
		p, err := b.part(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("module: %w", err)
		}
		modName, err := toString(pa.positional[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("module: name: %w", err)
		}
		g := &assembly.Generic{Name: modName, Fields: make(map[string]string, len(pa.order))}
		for _, k := range pa.order {
			text, err := toText(pa.kw[k])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("module: %s: %w", k, err)
			}
			g.Fields[k] = text
		}
		p.AddModule(g)
		return &sexpPart{id: p.ID, name: p.Name}, nil
	})

	// -----------------------------------------------------------------------
	// (transform "chassis" "lights" :under "body")
	// -----------------------------------------------------------------------
	env.AddFunction("transform", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 2 {
			return zygo.SexpNull, fmt.Errorf("transform requires a part and a name")
		}
		p, err := b.part(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("transform: %w", err)
		}
		tname, err := toString(pa.positional[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("transform: name: %w", err)
		}
		if p.Model == nil {
			p.Model = scene.NewNode(p.Name)
		}
		under := p.Model
		if v, ok := pa.kw["under"]; ok {
			uname, err := toString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("transform: under: %w", err)
			}
			found, ok := scene.FindFirstByName(p.Model, uname)
			if !ok {
				return zygo.SexpNull, fmt.Errorf("transform: no transform %q on %q", uname, p.Name)
			}
			under = found
		}
		under.AddChild(scene.NewNode(tname))
		return &sexpPart{id: p.ID, name: p.Name}, nil
	})

	// -----------------------------------------------------------------------
	// (rescale "chassis" 1 2 :user true)  => number of parts shifted
	// -----------------------------------------------------------------------
	env.AddFunction("rescale", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 3 {
			return zygo.SexpNull, fmt.Errorf("rescale requires a part, a previous and a new scale")
		}
		p, err := b.part(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rescale: %w", err)
		}
		prev, err := toFloat64(pa.positional[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rescale: previous scale: %w", err)
		}
		next, err := toFloat64(pa.positional[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rescale: new scale: %w", err)
		}
		if prev <= 0 {
			return zygo.SexpNull, fmt.Errorf("rescale: previous scale must be positive, got %g", prev)
		}
		user := true
		if v, ok := pa.kw["user"]; ok {
			if user, err = toBool(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("rescale: user: %w", err)
			}
		}
		res, err := rescale.Attachments(a, p.ID, prev, next, user)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rescale: %w", err)
		}
		p.Scale = next
		return &zygo.SexpInt{Val: int64(len(res.Shifts))}, nil
	})
}
