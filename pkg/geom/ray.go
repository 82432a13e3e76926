package geom

// RayPlaneDistance returns the signed ray parameter t at which the ray
// origin + t*dir meets the plane through planePoint with the given normal.
// ok is false when the ray is parallel to the plane; in that case t is 0.
func RayPlaneDistance(origin, dir, planePoint, normal Vec3) (t float64, ok bool) {
	lnDot := dir.Dot(normal)
	if lnDot == 0 {
		return 0, false
	}
	return planePoint.Sub(origin).Dot(normal) / lnDot, true
}

// IntersectRayPlane intersects a ray with a plane.
//
// A ray parallel to the plane hits only when its origin lies on the plane,
// and then the reported hit is planePoint itself. Otherwise the hit is
// reported even when it lies behind the ray origin (negative t); use
// IntersectRayPlaneForward to reject those.
func IntersectRayPlane(origin, dir, planePoint, normal Vec3) (Vec3, bool) {
	t, ok := RayPlaneDistance(origin, dir, planePoint, normal)
	if !ok {
		if planePoint.Sub(origin).Dot(normal) == 0 {
			return planePoint, true
		}
		return Zero, false
	}
	return origin.Add(dir.Scale(t)), true
}

// IntersectRayPlaneForward is IntersectRayPlane restricted to hits at or in
// front of the ray origin.
func IntersectRayPlaneForward(origin, dir, planePoint, normal Vec3) (Vec3, bool) {
	t, ok := RayPlaneDistance(origin, dir, planePoint, normal)
	if ok && t < 0 {
		return Zero, false
	}
	return IntersectRayPlane(origin, dir, planePoint, normal)
}
