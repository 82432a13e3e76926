package dispatch

import (
	"fmt"

	"github.com/chazu/partkit/pkg/assembly"
)

// Mode is the host's runtime state.
type Mode int

const (
	ModeInactive Mode = iota
	ModeSimulating
	ModeEditing
)

func (m Mode) String() string {
	switch m {
	case ModeInactive:
		return "inactive"
	case ModeSimulating:
		return "simulating"
	case ModeEditing:
		return "editing"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Context tells a dispatch which assembly, if any, to search. Build one
// with Simulating, Editing or Inactive.
type Context struct {
	mode Mode
	asm  *assembly.Assembly
}

// Simulating is the context of a running vessel.
func Simulating(vessel *assembly.Assembly) Context {
	return Context{mode: ModeSimulating, asm: vessel}
}

// Editing is the context of a construct being built.
func Editing(construct *assembly.Assembly) Context {
	return Context{mode: ModeEditing, asm: construct}
}

// Inactive is the context with nothing to search.
func Inactive() Context {
	return Context{}
}

// Mode returns the context's mode.
func (c Context) Mode() Mode { return c.mode }

// Assembly returns the vessel or construct, or nil when inactive.
func (c Context) Assembly() *assembly.Assembly { return c.asm }

func (c Context) parts() []*assembly.Part {
	if c.asm == nil {
		return nil
	}
	return c.asm.Parts()
}
