// Package config holds the hierarchical key/value documents that describe
// parts and craft, and the typed accessors that read them.
//
// A Node is an ordered list of name = value pairs plus ordered child nodes.
// Names may repeat: GetValue returns the first occurrence, GetValues all of
// them. Documents come from the brace-delimited text format (Parse) or from
// HCL (LoadHCL).
//
// Reader wraps a Node with get-with-default accessors. Malformed input never
// fails a lookup: the default is substituted, the problem is logged, and a
// Diagnostic is recorded for the caller to inspect.
package config
