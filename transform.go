package bml

import "math"

// mat34 is a 3D affine matrix stored row-major as three rows of
// [m00 m01 m02 t]. The implicit fourth row is [0 0 0 1].
type mat34 [12]float64

var identityMat34 = mat34{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 1, 0,
}

// computeLocalTransform computes the node's local matrix.
//
// Composition order:
//
//	Scale -> Roll(Z) -> Pitch(X) -> Yaw(Y) -> Translate(Position)
func computeLocalTransform(n *Node) mat34 {
	sx, cx := math.Sincos(n.Rotation.X)
	sy, cy := math.Sincos(n.Rotation.Y)
	sz, cz := math.Sincos(n.Rotation.Z)

	// R = Ry * Rx * Rz
	r00 := cy*cz + sy*sx*sz
	r01 := -cy*sz + sy*sx*cz
	r02 := sy * cx
	r10 := cx * sz
	r11 := cx * cz
	r12 := -sx
	r20 := -sy*cz + cy*sx*sz
	r21 := sy*sz + cy*sx*cz
	r22 := cy * cx

	s := n.Scale
	p := n.Position
	return mat34{
		r00 * s.X, r01 * s.Y, r02 * s.Z, p.X,
		r10 * s.X, r11 * s.Y, r12 * s.Z, p.Y,
		r20 * s.X, r21 * s.Y, r22 * s.Z, p.Z,
	}
}

// multiplyMat34 returns p * c.
func multiplyMat34(p, c mat34) mat34 {
	var out mat34
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out[i*4+j] = p[i*4]*c[j] + p[i*4+1]*c[4+j] + p[i*4+2]*c[8+j]
		}
		out[i*4+3] = p[i*4]*c[3] + p[i*4+1]*c[7] + p[i*4+2]*c[11] + p[i*4+3]
	}
	return out
}

// invertMat34 inverts an affine matrix. Returns the identity if the linear
// part is singular.
func invertMat34(m mat34) mat34 {
	a, b, c := m[0], m[1], m[2]
	d, e, f := m[4], m[5], m[6]
	g, h, i := m[8], m[9], m[10]

	c00 := e*i - f*h
	c01 := f*g - d*i
	c02 := d*h - e*g
	det := a*c00 + b*c01 + c*c02
	if det > -1e-12 && det < 1e-12 {
		return identityMat34
	}
	inv := 1 / det
	out := mat34{
		c00 * inv, (c*h - b*i) * inv, (b*f - c*e) * inv, 0,
		c01 * inv, (a*i - c*g) * inv, (c*d - a*f) * inv, 0,
		c02 * inv, (b*g - a*h) * inv, (a*e - b*d) * inv, 0,
	}
	t := Vec3{m[3], m[7], m[11]}
	for r := 0; r < 3; r++ {
		out[r*4+3] = -(out[r*4]*t.X + out[r*4+1]*t.Y + out[r*4+2]*t.Z)
	}
	return out
}

// transformPoint applies m to v.
func (m mat34) transformPoint(v Vec3) Vec3 {
	return Vec3{
		m[0]*v.X + m[1]*v.Y + m[2]*v.Z + m[3],
		m[4]*v.X + m[5]*v.Y + m[6]*v.Z + m[7],
		m[8]*v.X + m[9]*v.Y + m[10]*v.Z + m[11],
	}
}

func (m mat34) translation() Vec3 {
	return Vec3{m[3], m[7], m[11]}
}

// maxScale returns the length of the longest basis vector, used to size
// projected primitives.
func (m mat34) maxScale() float64 {
	sx := math.Sqrt(m[0]*m[0] + m[4]*m[4] + m[8]*m[8])
	sy := math.Sqrt(m[1]*m[1] + m[5]*m[5] + m[9]*m[9])
	sz := math.Sqrt(m[2]*m[2] + m[6]*m[6] + m[10]*m[10])
	return math.Max(sx, math.Max(sy, sz))
}

// updateWorldTransform recomputes a node's world matrix.
// parentRecomputed indicates whether the parent was recomputed this frame,
// which forces recomputation of this node even if it's not dirty.
func updateWorldTransform(n *Node, parent mat34, parentRecomputed bool) {
	recompute := n.transformDirty || parentRecomputed
	if recompute {
		n.world = multiplyMat34(parent, computeLocalTransform(n))
		n.transformDirty = false
	}
	for _, child := range n.children {
		updateWorldTransform(child, n.world, recompute)
	}
}

// degToRad converts a vector of degrees to radians.
func degToRad(v Vec3) Vec3 {
	return v.Scale(math.Pi / 180)
}
