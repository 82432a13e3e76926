package config

import "fmt"

// Severity grades a Diagnostic.
type Severity int

const (
	SeverityError   Severity = iota // malformed input, default substituted
	SeverityWarning                 // missing input where a value was expected
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// Diagnostic records one problem found while reading a document.
type Diagnostic struct {
	Node     string // name of the node that was read
	Key      string
	Value    string // offending text, empty when the key was missing
	Severity Severity
	Message  string
}

func (d Diagnostic) Error() string {
	if d.Value == "" {
		return fmt.Sprintf("[%s] %s.%s: %s", d.Severity, d.Node, d.Key, d.Message)
	}
	return fmt.Sprintf("[%s] %s.%s = %q: %s", d.Severity, d.Node, d.Key, d.Value, d.Message)
}
