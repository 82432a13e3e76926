package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/chazu/partkit/pkg/assembly"
	"github.com/chazu/partkit/pkg/config"
	"github.com/chazu/partkit/pkg/dispatch"
	"github.com/chazu/partkit/pkg/engine"
	"github.com/chazu/partkit/pkg/geom"
	"github.com/chazu/partkit/pkg/kernel/sdfx"
	"github.com/chazu/partkit/pkg/rescale"
	"github.com/chazu/partkit/pkg/scene"
	"github.com/chazu/partkit/pkg/tessellate"
)

// App runs partkit commands and writes their reports to out.
type App struct {
	out    io.Writer
	logger *slog.Logger
	engine *engine.Engine
}

// NewApp creates an App. A nil logger means slog.Default().
func NewApp(out io.Writer, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	return &App{out: out, logger: logger, engine: engine.NewEngine()}
}

// Run loads cfg.Path and executes cfg.Command.
func (a *App) Run(cfg *Config) error {
	src, err := os.ReadFile(cfg.Path)
	if err != nil {
		return fmt.Errorf("read %s: %w", cfg.Path, err)
	}
	asm, err := a.Load(cfg.Path, src)
	if err != nil {
		return err
	}

	switch cfg.Command {
	case "show":
		return a.Show(asm)
	case "validate":
		return a.Validate(asm)
	case "rescale":
		return a.Rescale(asm, cfg.Part, cfg.From, cfg.To, !cfg.Passive)
	case "group":
		return a.Group(asm, cfg.Group, cfg.Editing)
	case "probe":
		return a.Probe(asm, cfg.Origin, cfg.Dir)
	case "mesh":
		return a.Mesh(asm, cfg.Cells, cfg.Out)
	}
	return &ExitError{Code: 2, Message: fmt.Sprintf("unknown command %q", cfg.Command)}
}

// Load builds an assembly from src, choosing the reader by file extension:
// .pk is a Lisp program, .hcl an HCL part config, anything else the brace
// config format.
func (a *App) Load(name string, src []byte) (*assembly.Assembly, error) {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == ".pk" {
		res := a.engine.Check(string(src))
		for _, w := range res.Warnings {
			a.logger.Warn("Assembly warning.", "file", name, "message", w.Message)
		}
		if res.Assembly == nil {
			return nil, evalFailure(name, res.Errors)
		}
		return res.Assembly, nil
	}

	var doc *config.Node
	var err error
	if ext == ".hcl" {
		doc, err = config.LoadHCL(src, name)
	} else {
		doc, err = config.Parse(bytes.NewReader(src))
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	asm, diags, err := assembly.FromConfig(doc, a.logger)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	a.logger.Debug("Assembly loaded.", "file", name, "parts", asm.Len(), "diagnostics", len(diags))
	return asm, nil
}

func evalFailure(name string, errs []engine.EvalError) error {
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = fmt.Sprintf("%s: %s", name, e.Error())
	}
	return &ExitError{Code: 1, Message: strings.Join(msgs, "\n")}
}

// Show prints every part with its placement, attach nodes, modules and
// model tree.
func (a *App) Show(asm *assembly.Assembly) error {
	rootName := "none"
	if r := asm.Part(asm.Root()); r != nil {
		rootName = r.Name
	}
	fmt.Fprintf(a.out, "assembly %s: %d parts, root %s\n", asm.Name, asm.Len(), rootName)

	for _, p := range asm.Parts() {
		parent := "-"
		if pp := asm.Part(p.Parent); pp != nil {
			parent = pp.Name
		}
		fmt.Fprintf(a.out, "[%d] %s parent=%s pos=%s scale=%g\n", p.ID, p.Name, parent, p.Transform.Position, p.Scale)
		for _, n := range p.AttachNodes() {
			fmt.Fprintf(a.out, "    %s %s -> %s\n", nodeName(n), n.Position, neighborName(asm, n))
		}
		for _, m := range p.Modules {
			if g, ok := m.(dispatch.Grouper); ok {
				fmt.Fprintf(a.out, "    module %s group=%s\n", m.ModuleName(), g.GroupTag())
				continue
			}
			fmt.Fprintf(a.out, "    module %s\n", m.ModuleName())
		}
		if p.Model != nil {
			var buf bytes.Buffer
			if err := scene.Dump(&buf, p.Model); err != nil {
				return err
			}
			for _, line := range strings.Split(strings.TrimRight(buf.String(), "\n"), "\n") {
				fmt.Fprintf(a.out, "    | %s\n", line)
			}
		}
	}
	return nil
}

// Validate prints validation findings and fails when any is an error.
func (a *App) Validate(asm *assembly.Assembly) error {
	findings := assembly.Validate(asm)
	for _, f := range findings {
		fmt.Fprintln(a.out, f.Error())
	}
	if assembly.HasErrors(findings) {
		return &ExitError{Code: 1, Message: fmt.Sprintf("assembly %s is not valid", asm.Name)}
	}
	fmt.Fprintf(a.out, "assembly %s: ok (%d findings)\n", asm.Name, len(findings))
	return nil
}

// Rescale rescales the named part and reports what moved. A zero from uses
// the part's recorded scale.
func (a *App) Rescale(asm *assembly.Assembly, partName string, from, to float64, userInput bool) error {
	p := asm.Lookup(partName)
	if p == nil {
		return &ExitError{Code: 1, Message: fmt.Sprintf("no part named %q", partName)}
	}

	var res rescale.Result
	var err error
	if from > 0 {
		if res, err = rescale.Attachments(asm, p.ID, from, to, userInput); err == nil {
			p.Scale = to
		}
	} else {
		from = p.Scale
		res, err = rescale.To(asm, p.ID, to, userInput)
	}
	if err != nil {
		return err
	}
	a.logger.Info("Rescaled part.", "part", p.Name, "from", from, "to", to, "nodes", res.Nodes, "shifts", len(res.Shifts))

	fmt.Fprintf(a.out, "rescaled %s from %g to %g: %d nodes\n", p.Name, from, to, res.Nodes)
	for _, s := range res.Shifts {
		fmt.Fprintf(a.out, "  %-8s %s by %s via %s\n", s.Kind, asm.Part(s.Part).Name, s.World, nodeName(s.Node))
	}
	for _, q := range asm.Parts() {
		fmt.Fprintf(a.out, "  %s at %s\n", q.Name, q.Transform.Position)
	}
	return nil
}

// Group runs a grouped action over every generic module of the parts tagged
// with group and reports which modules it reached.
func (a *App) Group(asm *assembly.Assembly, group int, editing bool) error {
	if group <= 0 {
		return &ExitError{Code: 2, Message: "group: -group must be positive"}
	}
	ctx := dispatch.Simulating(asm)
	if editing {
		ctx = dispatch.Editing(asm)
	}

	d := dispatch.New(
		dispatch.WithLogger(a.logger),
		dispatch.WithRefresher(dispatch.RefreshFunc(func(p *assembly.Part) {
			a.logger.Debug("Refreshing controls.", "part", p.Name)
		})),
	)
	var self *assembly.Generic
	owner := ownerIndex(asm)
	res := dispatch.UpdateBase(d, ctx, self, group, func(m *assembly.Generic) error {
		fmt.Fprintf(a.out, "group %d: %s on %s\n", group, m.Name, owner[m])
		return nil
	})

	fmt.Fprintf(a.out, "%s: applied %d, failed %d\n", ctx.Mode(), res.Applied, res.Failed)
	for _, diag := range res.Diagnostics {
		fmt.Fprintf(a.out, "  %s\n", diag.Error())
	}
	return nil
}

func ownerIndex(asm *assembly.Assembly) map[*assembly.Generic]string {
	owner := make(map[*assembly.Generic]string)
	for _, p := range asm.Parts() {
		for _, m := range p.Modules {
			if g, ok := m.(*assembly.Generic); ok {
				owner[g] = p.Name
			}
		}
	}
	return owner
}

// Probe casts a ray against the plane of every attach node, each plane
// passing through the node's world position and facing along its
// orientation, and prints the hits in front of the origin.
func (a *App) Probe(asm *assembly.Assembly, originText, dirText string) error {
	args := config.NewNode("probe")
	args.AddValue("origin", originText)
	args.AddValue("dir", dirText)
	r := config.NewReader(args, a.logger)
	origin := r.RequiredVector3("origin")
	dir := r.RequiredVector3("dir")
	if diags := r.Diagnostics(); len(diags) > 0 {
		return &ExitError{Code: 2, Message: diags[0].Error()}
	}

	hits := 0
	for _, p := range asm.Parts() {
		for _, n := range p.AttachNodes() {
			point := p.Transform.TransformPoint(n.Position)
			normal := p.Transform.TransformVector(n.Orientation)
			if normal.IsZero() {
				continue
			}
			if hit, ok := geom.IntersectRayPlaneForward(origin, dir, point, normal); ok {
				hits++
				fmt.Fprintf(a.out, "%s %s: hit %s (node at %s)\n", p.Name, nodeName(n), hit, point)
			}
		}
	}
	fmt.Fprintf(a.out, "%d hits\n", hits)
	return nil
}

// Mesh tessellates a proxy for every part and prints its size. A non-empty
// out also receives the meshes as JSON.
func (a *App) Mesh(asm *assembly.Assembly, cells int, out string) error {
	k := sdfx.New(cells)
	meshes, err := tessellate.Tessellate(asm, k)
	if err != nil {
		return err
	}
	for _, m := range meshes {
		lo, hi := m.Bounds()
		fmt.Fprintf(a.out, "%s: %d triangles, bounds %s..%s\n", m.PartName, m.TriangleCount(), vec32(lo), vec32(hi))
	}
	a.logger.Debug("Tessellated assembly.", "parts", len(meshes), "cells", k.Cells())

	if out != "" {
		data, err := json.Marshal(meshes)
		if err != nil {
			return fmt.Errorf("encode meshes: %w", err)
		}
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", out, err)
		}
	}
	fmt.Fprintf(a.out, "%d meshes\n", len(meshes))
	return nil
}

func vec32(v [3]float32) geom.Vec3 {
	return geom.Vec3{X: float64(v[0]), Y: float64(v[1]), Z: float64(v[2])}
}

func nodeName(n *assembly.AttachNode) string {
	if n.Kind == assembly.NodeSurface {
		return "surface"
	}
	return "node " + n.ID
}

func neighborName(asm *assembly.Assembly, n *assembly.AttachNode) string {
	if n.AttachedPart == assembly.NoPart {
		return "free"
	}
	if p := asm.Part(n.AttachedPart); p != nil {
		return p.Name
	}
	return fmt.Sprintf("missing part %d", n.AttachedPart)
}
