package engine

import (
	"fmt"
	"time"

	"github.com/chazu/partkit/pkg/assembly"
)

// EvalTimeout bounds how long one program may spend building its assembly.
const EvalTimeout = 5 * time.Second

// build is the outcome of one sandboxed run of a partkit program.
type build struct {
	asm   *assembly.Assembly
	diags []EvalError
	err   error
}

// startBuild runs fn on its own goroutine and reports through a buffered
// channel, so a build nobody waits for still finishes. A panic in the
// interpreter becomes a fatal build error.
func startBuild(fn func() (*assembly.Assembly, []EvalError, error)) <-chan build {
	ch := make(chan build, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- build{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()
		a, diags, err := fn()
		ch <- build{asm: a, diags: diags, err: err}
	}()
	return ch
}

// awaitBuild returns the assembly built on ch. It fails when limit passes
// first, or when current reports that a newer Evaluate call than gen has
// started; the newer call owns the result then.
func awaitBuild(ch <-chan build, limit time.Duration, gen uint64, current func() uint64) (*assembly.Assembly, []EvalError, error) {
	timer := time.NewTimer(limit)
	defer timer.Stop()

	select {
	case b := <-ch:
		if gen != current() {
			return nil, nil, fmt.Errorf("evaluation superseded by newer request")
		}
		return b.asm, b.diags, b.err
	case <-timer.C:
		return nil, nil, fmt.Errorf("evaluation timed out after %s", limit)
	}
}
