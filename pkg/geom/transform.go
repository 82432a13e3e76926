package geom

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Transform places a part in world space. Points are scaled uniformly,
// rotated by the Euler angles (degrees, X then Y then Z) and then translated
// by Position. A zero Scale is treated as 1 so the zero Transform is the
// identity.
type Transform struct {
	Position Vec3    `json:"position"`
	Rotation Vec3    `json:"rotation"`
	Scale    float64 `json:"scale"`
}

// Identity returns the identity transform.
func Identity() Transform {
	return Transform{Scale: 1}
}

// At returns an unrotated, unscaled transform positioned at p.
func At(p Vec3) Transform {
	return Transform{Position: p, Scale: 1}
}

func (t Transform) scale() float64 {
	if t.Scale == 0 {
		return 1
	}
	return t.Scale
}

func (t Transform) rotation() sdf.M44 {
	xRad := t.Rotation.X * math.Pi / 180.0
	yRad := t.Rotation.Y * math.Pi / 180.0
	zRad := t.Rotation.Z * math.Pi / 180.0
	return sdf.RotateZ(zRad).Mul(sdf.RotateY(yRad)).Mul(sdf.RotateX(xRad))
}

// Matrix returns the local-to-world matrix.
func (t Transform) Matrix() sdf.M44 {
	s := t.scale()
	return sdf.Translate3d(t.Position.v3()).
		Mul(t.rotation()).
		Mul(sdf.Scale3d(v3.Vec{X: s, Y: s, Z: s}))
}

// TransformPoint maps a local-space point to world space.
func (t Transform) TransformPoint(p Vec3) Vec3 {
	return fromV3(t.Matrix().MulPosition(p.v3()))
}

// InverseTransformPoint maps a world-space point to local space.
func (t Transform) InverseTransformPoint(p Vec3) Vec3 {
	return fromV3(t.Matrix().Inverse().MulPosition(p.v3()))
}

// TransformVector maps a local-space offset to a world-space offset. It
// equals TransformPoint(v) - Position: rotation and scale apply, the
// translation does not.
func (t Transform) TransformVector(v Vec3) Vec3 {
	return t.TransformPoint(v).Sub(t.Position)
}

// Translate moves the transform by d in world space.
func (t *Transform) Translate(d Vec3) {
	t.Position = t.Position.Add(d)
}
