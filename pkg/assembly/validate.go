package assembly

import "fmt"

// ValidationSeverity indicates whether a finding makes the assembly unusable
// or is merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // assembly is inconsistent
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	Part     PartID             // which part has the problem (NoPart if assembly-level)
	Message  string             // human-readable description
	Severity ValidationSeverity // error or warning
}

func (e ValidationError) Error() string {
	if e.Part == NoPart {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] part %d: %s", e.Severity, e.Part, e.Message)
}

// HasErrors reports whether any finding has SeverityError.
func HasErrors(findings []ValidationError) bool {
	for _, f := range findings {
		if f.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Validate runs every structural check on the assembly and returns the
// findings. An empty slice means the assembly is consistent. Validate never
// mutates the assembly.
func Validate(a *Assembly) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateRoot(a)...)
	errs = append(errs, validateParents(a)...)
	errs = append(errs, validateCycles(a)...)
	errs = append(errs, validateNodes(a)...)
	return errs
}

func validateRoot(a *Assembly) []ValidationError {
	if a.Len() == 0 {
		return nil
	}
	root := a.Part(a.Root())
	if root == nil {
		return []ValidationError{{
			Part:     NoPart,
			Message:  fmt.Sprintf("root reference %d does not exist", a.Root()),
			Severity: SeverityError,
		}}
	}
	if root.Parent != NoPart {
		return []ValidationError{{
			Part:     root.ID,
			Message:  fmt.Sprintf("root part %q has a parent", root.Name),
			Severity: SeverityError,
		}}
	}
	return nil
}

// validateParents checks parent handles and warns about parts that are not
// connected to the root.
func validateParents(a *Assembly) []ValidationError {
	var errs []ValidationError
	for _, p := range a.Parts() {
		if p.Parent == NoPart {
			if p.ID != a.Root() {
				errs = append(errs, ValidationError{
					Part:     p.ID,
					Message:  fmt.Sprintf("part %q is not attached to the root (orphan)", p.Name),
					Severity: SeverityWarning,
				})
			}
			continue
		}
		if a.Part(p.Parent) == nil {
			errs = append(errs, ValidationError{
				Part:     p.ID,
				Message:  fmt.Sprintf("parent reference %d does not exist", p.Parent),
				Severity: SeverityError,
			})
		}
		if p.Parent == p.ID {
			errs = append(errs, ValidationError{
				Part:     p.ID,
				Message:  "part is its own parent",
				Severity: SeverityError,
			})
			continue
		}
		if parent := a.Part(p.Parent); parent != nil && !linksTo(p, p.Parent) {
			errs = append(errs, ValidationError{
				Part:     p.ID,
				Message:  fmt.Sprintf("no attach node links to parent %q", parent.Name),
				Severity: SeverityWarning,
			})
		}
	}
	return errs
}

func linksTo(p *Part, id PartID) bool {
	for _, n := range p.AttachNodes() {
		if n.AttachedPart == id {
			return true
		}
	}
	return false
}

// validateCycles walks parent links with 3-color marking. Each part has at
// most one parent so the walk is a chain; reaching a gray part means the
// chain loops.
func validateCycles(a *Assembly) []ValidationError {
	const (
		white = iota
		gray
		black
	)

	color := make([]int, a.Len())
	var errs []ValidationError

	for _, start := range a.Parts() {
		if color[start.ID] != white {
			continue
		}
		var path []PartID
		cur := start.ID
		for a.Part(cur) != nil && color[cur] == white {
			color[cur] = gray
			path = append(path, cur)
			cur = a.Part(cur).Parent
		}
		if a.Part(cur) != nil && color[cur] == gray && cur != a.Part(cur).Parent {
			errs = append(errs, ValidationError{
				Part:     cur,
				Message:  fmt.Sprintf("cycle detected: part %q is its own ancestor", a.Part(cur).Name),
				Severity: SeverityError,
			})
		}
		for _, id := range path {
			color[id] = black
		}
	}
	return errs
}

// validateNodes checks node IDs, neighbor handles and the parent/neighbor
// reciprocity of every attach node.
func validateNodes(a *Assembly) []ValidationError {
	var errs []ValidationError
	for _, p := range a.Parts() {
		seen := make(map[string]bool, len(p.Nodes))
		for _, n := range p.Nodes {
			if n.ID == "" {
				errs = append(errs, ValidationError{
					Part:     p.ID,
					Message:  "stack node with empty id",
					Severity: SeverityError,
				})
			} else if seen[n.ID] {
				errs = append(errs, ValidationError{
					Part:     p.ID,
					Message:  fmt.Sprintf("duplicate node id %q", n.ID),
					Severity: SeverityError,
				})
			}
			seen[n.ID] = true
		}

		for _, n := range p.AttachNodes() {
			label := nodeLabel(n)
			if n.Position != n.OriginalPosition {
				errs = append(errs, ValidationError{
					Part:     p.ID,
					Message:  fmt.Sprintf("node %s position %s differs from baseline %s", label, n.Position, n.OriginalPosition),
					Severity: SeverityWarning,
				})
			}
			if n.AttachedPart == NoPart {
				continue
			}
			nb := a.Part(n.AttachedPart)
			if nb == nil {
				errs = append(errs, ValidationError{
					Part:     p.ID,
					Message:  fmt.Sprintf("node %s neighbor reference %d does not exist", label, n.AttachedPart),
					Severity: SeverityError,
				})
				continue
			}
			if nb.Parent != p.ID && p.Parent != nb.ID {
				errs = append(errs, ValidationError{
					Part:     p.ID,
					Message:  fmt.Sprintf("node %s neighbor %q is neither parent nor child", label, nb.Name),
					Severity: SeverityWarning,
				})
			}
		}
	}
	return errs
}

func nodeLabel(n *AttachNode) string {
	if n.Kind == NodeSurface {
		return "surface"
	}
	return fmt.Sprintf("%q", n.ID)
}
