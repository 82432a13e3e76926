// Package dispatch applies an action to every module of a type that shares
// a group id across an assembly.
//
// Group membership is not stored. Each call scans the assembly given by its
// Context, so edits between calls are always seen. Failures while reading
// tags, running the action, or refreshing controls are collected in the
// Result and logged; a dispatch never stops early.
package dispatch

import (
	"fmt"
	"log/slog"

	"github.com/chazu/partkit/pkg/assembly"
)

// Refresher is told when a part's interactive controls should re-read model
// state.
type Refresher interface {
	RefreshControls(p *assembly.Part)
}

// RefreshFunc adapts a function to Refresher.
type RefreshFunc func(p *assembly.Part)

// RefreshControls implements Refresher.
func (f RefreshFunc) RefreshControls(p *assembly.Part) { f(p) }

// Dispatcher holds the collaborators shared by dispatch calls.
type Dispatcher struct {
	logger    *slog.Logger
	refresher Refresher
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithRefresher sets the refresh hook used by UpdateBase.
func WithRefresher(r Refresher) Option {
	return func(d *Dispatcher) { d.refresher = r }
}

// New returns a Dispatcher.
func New(opts ...Option) *Dispatcher {
	d := &Dispatcher{logger: slog.Default()}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Result summarizes a dispatch.
type Result struct {
	Applied     int // invocations that returned without error
	Failed      int // invocations that returned an error or panicked
	Diagnostics []Diagnostic
}

// UpdateSubmodules applies op to self alone when group <= 0. Otherwise it
// applies op to every T on the parts tagged with group in a simulating
// context. Editing and inactive contexts find no members.
func UpdateSubmodules[T any](d *Dispatcher, ctx Context, self T, group int, op func(T) error) Result {
	if group <= 0 {
		return applySelf(d, self, op)
	}
	if ctx.Mode() != ModeSimulating {
		d.logger.Debug("Grouped update skipped.", "mode", ctx.Mode(), "group", group)
		return Result{}
	}
	return run(d, ctx, group, op, false)
}

// UpdateBase is UpdateSubmodules for simulating and editing contexts, and
// it asks the Refresher to refresh each member's part after op runs on it.
// Refresh problems are reported and never fail the member.
func UpdateBase[T any](d *Dispatcher, ctx Context, self T, group int, op func(T) error) Result {
	if group <= 0 {
		return applySelf(d, self, op)
	}
	if ctx.Mode() == ModeInactive {
		d.logger.Debug("Grouped update skipped.", "mode", ctx.Mode(), "group", group)
		return Result{}
	}
	return run(d, ctx, group, op, true)
}

func applySelf[T any](d *Dispatcher, self T, op func(T) error) Result {
	if err := invoke(op, self); err != nil {
		d.logger.Warn("Action failed.", "error", err)
		return Result{Failed: 1, Diagnostics: []Diagnostic{{Part: assembly.NoPart, Module: moduleName(self), Err: err}}}
	}
	return Result{Applied: 1}
}

func run[T any](d *Dispatcher, ctx Context, group int, op func(T) error, refresh bool) Result {
	members, diags := Members[T](ctx.parts(), group)
	res := Result{Diagnostics: diags}
	for _, diag := range diags {
		d.logger.Warn("Ignoring part with unreadable group tag.", "part", diag.Part, "error", diag.Err)
	}

	for _, m := range members {
		if err := invoke(op, m.Module); err != nil {
			res.Failed++
			diag := Diagnostic{Part: m.Part.ID, Module: moduleName(m.Module), Err: err}
			res.Diagnostics = append(res.Diagnostics, diag)
			d.logger.Warn("Grouped action failed.", "part", m.Part.Name, "group", group, "error", err)
		} else {
			res.Applied++
		}
		if refresh && d.refresher != nil {
			if err := d.refresh(m.Part); err != nil {
				res.Diagnostics = append(res.Diagnostics, Diagnostic{Part: m.Part.ID, Err: err})
				d.logger.Warn("Control refresh failed.", "part", m.Part.Name, "error", err)
			}
		}
	}
	d.logger.Debug("Grouped update done.", "mode", ctx.Mode(), "group", group,
		"members", len(members), "applied", res.Applied, "failed", res.Failed)
	return res
}

// invoke runs op and turns a panic into an error.
func invoke[T any](op func(T) error, m T) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return op(m)
}

func (d *Dispatcher) refresh(p *assembly.Part) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("refresh panic: %v", r)
		}
	}()
	d.refresher.RefreshControls(p)
	return nil
}

func moduleName(m any) string {
	if mod, ok := m.(assembly.Module); ok {
		return mod.ModuleName()
	}
	return ""
}
