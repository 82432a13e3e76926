// Package rescale moves attach nodes when a part's uniform scale changes and
// shifts parts so attached neighbors stay where they were.
package rescale

import (
	"errors"
	"fmt"

	"github.com/chazu/partkit/pkg/assembly"
	"github.com/chazu/partkit/pkg/geom"
)

// ErrBadScale is returned by To when the part's current scale is not
// positive.
var ErrBadScale = errors.New("rescale: scale must be positive")

// ShiftKind says which part a Shift moved and why.
type ShiftKind int

const (
	MovedNeighbor ShiftKind = iota // child neighbor followed the node
	MovedSelf                      // part moved away from its parent neighbor
	MovedRoot                      // local root cancelled a MovedSelf drift
)

func (k ShiftKind) String() string {
	switch k {
	case MovedNeighbor:
		return "neighbor"
	case MovedSelf:
		return "self"
	case MovedRoot:
		return "root"
	default:
		return fmt.Sprintf("ShiftKind(%d)", int(k))
	}
}

// Shift records one translation applied to a part.
type Shift struct {
	Kind  ShiftKind
	Node  *assembly.AttachNode // node whose move caused the shift
	Part  assembly.PartID      // part that was translated, with its subtree
	Local geom.Vec3            // change to the part's AttPos0
	World geom.Vec3            // change to the part's world position
}

// Result describes what a rescale changed.
type Result struct {
	Nodes  int     // attach nodes updated
	Shifts []Shift // in application order
}

// Attachments rescales every attach node of part id from prevScale to
// newScale, surface node first, then stack nodes in stored order. Each node
// ends with Position and OriginalPosition both set to the new position.
//
// When userInput is set, nodes with a neighbor also shift parts, each
// together with everything attached below it. A neighbor whose parent is
// this part moves with the node. Any other neighbor, including a stale
// handle, stays put; this part moves the other way and its local root, when
// that is a different part, moves the whole tree back by the world delta.
//
// prevScale must be non-zero. Equal scales leave every node bit-for-bit
// unchanged.
func Attachments(a *assembly.Assembly, id assembly.PartID, prevScale, newScale float64, userInput bool) (Result, error) {
	p := a.Part(id)
	if p == nil {
		return Result{}, fmt.Errorf("rescale part %d: %w", id, assembly.ErrNoPart)
	}

	var res Result
	for _, n := range p.AttachNodes() {
		np := n.Position
		if prevScale != newScale {
			np = n.Position.Div(prevScale).Scale(newScale)
		}
		delta := np.Sub(n.Position)
		n.Position = np
		n.OriginalPosition = np
		res.Nodes++

		if !userInput || n.AttachedPart == assembly.NoPart || delta.IsZero() {
			continue
		}
		worldDelta := p.Transform.TransformVector(delta)

		if nb := a.Part(n.AttachedPart); nb != nil && nb.Parent == p.ID {
			nb.AttPos0 = nb.AttPos0.Add(delta)
			a.TranslateTree(nb.ID, worldDelta)
			res.Shifts = append(res.Shifts, Shift{Kind: MovedNeighbor, Node: n, Part: nb.ID, Local: delta, World: worldDelta})
			continue
		}

		p.AttPos0 = p.AttPos0.Sub(delta)
		a.TranslateTree(p.ID, worldDelta.Neg())
		res.Shifts = append(res.Shifts, Shift{Kind: MovedSelf, Node: n, Part: p.ID, Local: delta.Neg(), World: worldDelta.Neg()})

		if root := a.LocalRoot(p.ID); root != assembly.NoPart && root != p.ID {
			a.TranslateTree(root, worldDelta)
			res.Shifts = append(res.Shifts, Shift{Kind: MovedRoot, Node: n, Part: root, World: worldDelta})
		}
	}
	return res, nil
}

// To rescales part id from its recorded Scale to newScale and records
// newScale on the part.
func To(a *assembly.Assembly, id assembly.PartID, newScale float64, userInput bool) (Result, error) {
	p := a.Part(id)
	if p == nil {
		return Result{}, fmt.Errorf("rescale part %d: %w", id, assembly.ErrNoPart)
	}
	if p.Scale <= 0 || newScale <= 0 {
		return Result{}, fmt.Errorf("rescale %q from %g to %g: %w", p.Name, p.Scale, newScale, ErrBadScale)
	}
	res, err := Attachments(a, id, p.Scale, newScale, userInput)
	if err != nil {
		return res, err
	}
	p.Scale = newScale
	return res, nil
}
