// Package curve implements keyframed float curves of the kind part configs
// use for load, torque and friction response tables.
package curve

import (
	"fmt"
	"sort"
	"strings"
)

// Keyframe is one control point of a Curve.
type Keyframe struct {
	Time       float64 `json:"time"`
	Value      float64 `json:"value"`
	InTangent  float64 `json:"in_tangent"`
	OutTangent float64 `json:"out_tangent"`
}

// Curve is a piecewise cubic Hermite curve over keys sorted by time. The zero
// value is an empty curve that evaluates to 0 everywhere.
type Curve struct {
	keys []Keyframe
	auto []bool // auto[i] marks keys whose tangents follow their neighbors
}

// New returns an empty curve.
func New() *Curve {
	return &Curve{}
}

// Linear returns the default curve running linearly from (0,0) to (1,1).
func Linear() *Curve {
	c := New()
	c.Add(0, 0)
	c.Add(1, 1)
	return c
}

// Add inserts a key whose tangents are derived from the neighboring keys.
func (c *Curve) Add(time, value float64) {
	c.insert(Keyframe{Time: time, Value: value}, true)
	c.smooth()
}

// AddKey inserts a key with explicit tangents.
func (c *Curve) AddKey(time, value, inTangent, outTangent float64) {
	c.insert(Keyframe{Time: time, Value: value, InTangent: inTangent, OutTangent: outTangent}, false)
	c.smooth()
}

// insert places k after any existing key with the same time.
func (c *Curve) insert(k Keyframe, auto bool) {
	i := sort.Search(len(c.keys), func(i int) bool { return c.keys[i].Time > k.Time })
	c.keys = append(c.keys, Keyframe{})
	copy(c.keys[i+1:], c.keys[i:])
	c.keys[i] = k
	c.auto = append(c.auto, false)
	copy(c.auto[i+1:], c.auto[i:])
	c.auto[i] = auto
}

// smooth recomputes the tangents of every auto key from its neighbors.
func (c *Curve) smooth() {
	n := len(c.keys)
	for i := range c.keys {
		if !c.auto[i] {
			continue
		}
		var slope float64
		switch {
		case n == 1:
			slope = 0
		case i == 0:
			slope = secant(c.keys[0], c.keys[1])
		case i == n-1:
			slope = secant(c.keys[n-2], c.keys[n-1])
		default:
			slope = secant(c.keys[i-1], c.keys[i+1])
		}
		c.keys[i].InTangent = slope
		c.keys[i].OutTangent = slope
	}
}

func secant(a, b Keyframe) float64 {
	dt := b.Time - a.Time
	if dt == 0 {
		return 0
	}
	return (b.Value - a.Value) / dt
}

// Keys returns a copy of the keyframes in time order.
func (c *Curve) Keys() []Keyframe {
	out := make([]Keyframe, len(c.keys))
	copy(out, c.keys)
	return out
}

// Len returns the number of keys.
func (c *Curve) Len() int {
	return len(c.keys)
}

// Clone returns a copy of c built key by key with explicit tangents.
func (c *Curve) Clone() *Curve {
	out := New()
	for _, k := range c.keys {
		out.AddKey(k.Time, k.Value, k.InTangent, k.OutTangent)
	}
	return out
}

// Evaluate returns the curve value at t. Outside the key range the nearest
// end value is returned.
func (c *Curve) Evaluate(t float64) float64 {
	n := len(c.keys)
	switch {
	case n == 0:
		return 0
	case t <= c.keys[0].Time:
		return c.keys[0].Value
	case t >= c.keys[n-1].Time:
		return c.keys[n-1].Value
	}

	i := sort.Search(n, func(i int) bool { return c.keys[i].Time > t })
	k0, k1 := c.keys[i-1], c.keys[i]
	dt := k1.Time - k0.Time
	s := (t - k0.Time) / dt
	s2 := s * s
	s3 := s2 * s

	h00 := 2*s3 - 3*s2 + 1
	h10 := s3 - 2*s2 + s
	h01 := -2*s3 + 3*s2
	h11 := s3 - s2

	return h00*k0.Value + h10*dt*k0.OutTangent + h01*k1.Value + h11*dt*k1.InTangent
}

func (c *Curve) String() string {
	var sb strings.Builder
	sb.WriteString("curve[")
	for i, k := range c.keys {
		if i > 0 {
			sb.WriteString(" ")
		}
		fmt.Fprintf(&sb, "(%g %g %g %g)", k.Time, k.Value, k.InTangent, k.OutTangent)
	}
	sb.WriteString("]")
	return sb.String()
}
