package config

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/chazu/partkit/pkg/curve"
	"github.com/chazu/partkit/pkg/geom"
)

// Reader reads typed values out of a Node. It is not safe for concurrent
// use.
type Reader struct {
	node   *Node
	logger *slog.Logger
	diags  *[]Diagnostic // shared with child readers
}

// NewReader wraps n. A nil logger means slog.Default().
func NewReader(n *Node, logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{node: n, logger: logger, diags: new([]Diagnostic)}
}

// Node returns the wrapped node.
func (r *Reader) Node() *Node {
	return r.node
}

// Diagnostics returns everything recorded by this reader and any reader
// obtained from it through Child.
func (r *Reader) Diagnostics() []Diagnostic {
	return *r.diags
}

// Child returns a reader over the first child node called name. The child
// shares this reader's diagnostics.
func (r *Reader) Child(name string) (*Reader, bool) {
	c := r.node.GetNode(name)
	if c == nil {
		return nil, false
	}
	return &Reader{node: c, logger: r.logger, diags: r.diags}, true
}

// Children returns a reader over every child node called name, in order.
// The children share this reader's diagnostics.
func (r *Reader) Children(name string) []*Reader {
	nodes := r.node.GetNodes(name)
	out := make([]*Reader, len(nodes))
	for i, c := range nodes {
		out[i] = &Reader{node: c, logger: r.logger, diags: r.diags}
	}
	return out
}

// Malformed records a diagnostic for a value that could not be parsed and
// logs it. Callers then fall back to their default.
func (r *Reader) Malformed(key, value string, err error) {
	d := Diagnostic{Node: r.node.Name, Key: key, Value: value, Severity: SeverityError, Message: err.Error()}
	*r.diags = append(*r.diags, d)
	r.logger.Warn("Malformed config value, using default.", "node", d.Node, "key", key, "value", value, "error", err)
}

func (r *Reader) missing(key, msg string) {
	d := Diagnostic{Node: r.node.Name, Key: key, Severity: SeverityWarning, Message: msg}
	*r.diags = append(*r.diags, d)
	r.logger.Info("Missing config value.", "node", d.Node, "key", key, "message", msg)
}

// String returns the first value called name, or def.
func (r *Reader) String(name, def string) string {
	if v, ok := r.node.GetValue(name); ok {
		return v
	}
	return def
}

// Strings returns every value called name; empty when there are none.
func (r *Reader) Strings(name string) []string {
	return r.node.GetValues(name)
}

// Bool parses name as "true" or "false" (any case), or returns def.
func (r *Reader) Bool(name string, def bool) bool {
	v, ok := r.node.GetValue(name)
	if !ok {
		return def
	}
	b, err := parseBool(v)
	if err != nil {
		r.Malformed(name, v, err)
		return def
	}
	return b
}

// Bools parses every value called name. Malformed entries read as false.
func (r *Reader) Bools(name string) []bool {
	values := r.node.GetValues(name)
	out := make([]bool, len(values))
	for i, v := range values {
		b, err := parseBool(v)
		if err != nil {
			r.Malformed(name, v, err)
			continue
		}
		out[i] = b
	}
	return out
}

// Int parses name as a base 10 integer, or returns def.
func (r *Reader) Int(name string, def int) int {
	v, ok := r.node.GetValue(name)
	if !ok {
		return def
	}
	i, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		r.Malformed(name, v, err)
		return def
	}
	return i
}

// Float32 parses name as a single precision float, or returns def.
func (r *Reader) Float32(name string, def float32) float32 {
	v, ok := r.node.GetValue(name)
	if !ok {
		return def
	}
	f, err := parseFloat32(v)
	if err != nil {
		r.Malformed(name, v, err)
		return def
	}
	return f
}

// Float64 parses name as a double precision float, or returns def.
func (r *Reader) Float64(name string, def float64) float64 {
	v, ok := r.node.GetValue(name)
	if !ok {
		return def
	}
	f, err := parseFloat64(v)
	if err != nil {
		r.Malformed(name, v, err)
		return def
	}
	return f
}

// Floats parses a comma-separated list. A missing or empty value returns
// def, as does a list with any malformed element.
func (r *Reader) Floats(name string, def []float32) []float32 {
	v, _ := r.node.GetValue(name)
	if v == "" {
		return def
	}
	out, err := parseFloatList(v)
	if err != nil {
		r.Malformed(name, v, err)
		return def
	}
	return out
}

// FloatsCSV is Floats keyed on presence: only a missing value returns def,
// which defaults to an empty list when nil.
func (r *Reader) FloatsCSV(name string, def []float32) []float32 {
	if def == nil {
		def = []float32{}
	}
	v, ok := r.node.GetValue(name)
	if !ok {
		return def
	}
	out, err := parseFloatList(v)
	if err != nil {
		r.Malformed(name, v, err)
		return def
	}
	return out
}

// Float64sCSV parses a comma-separated list at full precision. It returns
// nil when the value is missing or malformed.
func (r *Reader) Float64sCSV(name string) []float64 {
	v, ok := r.node.GetValue(name)
	if !ok {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]float64, len(parts))
	for i, p := range parts {
		f, err := parseFloat64(p)
		if err != nil {
			r.Malformed(name, v, err)
			return nil
		}
		out[i] = f
	}
	return out
}

// Vector3 parses "x, y, z". A missing value returns def silently; fewer than
// three components or an unparsable component returns def with a diagnostic.
func (r *Reader) Vector3(name string, def geom.Vec3) geom.Vec3 {
	v, ok := r.node.GetValue(name)
	if !ok {
		return def
	}
	vec, err := parseVector3(v)
	if err != nil {
		r.Malformed(name, v, err)
		return def
	}
	return vec
}

// RequiredVector3 is Vector3 for values that should be present. A missing
// value is reported and the zero vector returned.
func (r *Reader) RequiredVector3(name string) geom.Vec3 {
	if !r.node.HasValue(name) {
		r.missing(name, fmt.Sprintf("no value for %q found in node %q", name, r.node.Name))
		return geom.Zero
	}
	return r.Vector3(name, geom.Zero)
}

var spaceRun = regexp.MustCompile(`\s+`)

// Curve reads the child node called name, whose repeated "key" values are
// "time value" or "time value inTangent outTangent"; tokens past the fourth
// are ignored. Without that node the result is a key-by-key copy of def, or
// curve.Linear() when def is nil. Malformed keys are skipped.
func (r *Reader) Curve(name string, def *curve.Curve) *curve.Curve {
	cn := r.node.GetNode(name)
	if cn == nil {
		if def != nil {
			return def.Clone()
		}
		return curve.Linear()
	}

	child := &Reader{node: cn, logger: r.logger, diags: r.diags}
	c := curve.New()
	for _, raw := range cn.GetValues("key") {
		fields := strings.Split(spaceRun.ReplaceAllString(strings.TrimSpace(raw), " "), " ")
		if len(fields) > 4 {
			fields = fields[:4]
		}
		nums := make([]float64, len(fields))
		var err error
		for i, f := range fields {
			if nums[i], err = parseFloat64(f); err != nil {
				break
			}
		}
		switch {
		case err != nil:
			child.Malformed("key", raw, err)
		case len(nums) == 2:
			c.Add(nums[0], nums[1])
		case len(nums) == 4:
			c.AddKey(nums[0], nums[1], nums[2], nums[3])
		default:
			child.Malformed("key", raw, fmt.Errorf("expected 2 or at least 4 numbers, found %d", len(nums)))
		}
	}
	return c
}

func parseBool(s string) (bool, error) {
	switch {
	case strings.EqualFold(strings.TrimSpace(s), "true"):
		return true, nil
	case strings.EqualFold(strings.TrimSpace(s), "false"):
		return false, nil
	}
	return false, fmt.Errorf("%q is not a valid boolean", s)
}

func parseFloat32(s string) (float32, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 32)
	if err != nil {
		return 0, err
	}
	return float32(f), nil
}

func parseFloat64(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

func parseFloatList(s string) ([]float32, error) {
	parts := strings.Split(s, ",")
	out := make([]float32, len(parts))
	for i, p := range parts {
		f, err := parseFloat32(p)
		if err != nil {
			return nil, err
		}
		out[i] = f
	}
	return out, nil
}

func parseVector3(s string) (geom.Vec3, error) {
	parts := strings.Split(s, ",")
	if len(parts) < 3 {
		return geom.Zero, fmt.Errorf("found %d values, need 3 for a vector", len(parts))
	}
	var xyz [3]float64
	for i := range xyz {
		f, err := parseFloat64(parts[i])
		if err != nil {
			return geom.Zero, err
		}
		xyz[i] = f
	}
	return geom.Vec3{X: xyz[0], Y: xyz[1], Z: xyz[2]}, nil
}
