package dispatch

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/chazu/partkit/pkg/assembly"
	"github.com/samber/lo"
)

// Grouper is a module that tags its part with a group id stored as text.
// assembly.Controller is the usual one.
type Grouper interface {
	GroupTag() string
}

// Member is one module found by group discovery.
type Member[T any] struct {
	Part   *assembly.Part
	Module T
}

// Diagnostic records a problem met while discovering or applying a grouped
// action. None of them stop the dispatch.
type Diagnostic struct {
	Part   assembly.PartID
	Module string // module name, when known
	Err    error
}

func (d Diagnostic) Error() string {
	if d.Module == "" {
		return fmt.Sprintf("part %d: %v", d.Part, d.Err)
	}
	return fmt.Sprintf("part %d: %s: %v", d.Part, d.Module, d.Err)
}

func (d Diagnostic) Unwrap() error { return d.Err }

// ParseGroup reads a group tag. Surrounding space is ignored.
func ParseGroup(tag string) (int, error) {
	g, err := strconv.Atoi(strings.TrimSpace(tag))
	if err != nil {
		return 0, fmt.Errorf("group tag %q: %w", tag, err)
	}
	return g, nil
}

// Members scans parts in order for those whose first Grouper module carries
// group, and returns every module of type T on each such part. Parts without
// a Grouper are skipped. A tag that does not parse excludes its part and is
// reported. Members reads the parts and nothing else, so results reflect the
// assembly as it is when called.
func Members[T any](parts []*assembly.Part, group int) ([]Member[T], []Diagnostic) {
	var out []Member[T]
	var diags []Diagnostic
	for _, p := range parts {
		m, ok := lo.Find(p.Modules, func(m assembly.Module) bool {
			_, is := m.(Grouper)
			return is
		})
		if !ok {
			continue
		}
		g, err := ParseGroup(m.(Grouper).GroupTag())
		if err != nil {
			diags = append(diags, Diagnostic{Part: p.ID, Module: m.ModuleName(), Err: err})
			continue
		}
		if g != group {
			continue
		}
		mods := lo.FilterMap(p.Modules, func(m assembly.Module, _ int) (T, bool) {
			t, is := m.(T)
			return t, is
		})
		for _, t := range mods {
			out = append(out, Member[T]{Part: p, Module: t})
		}
	}
	return out, diags
}
