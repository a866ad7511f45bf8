package rigid

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// RotoTrans is a rigid transform: a 3x3 rotation and a translation.
type RotoTrans struct {
	rot *mat.Dense
	tr  r3.Vec
}

func NewRotoTrans(rot *mat.Dense, tr r3.Vec) RotoTrans {
	return RotoTrans{rot: rot, tr: tr}
}

func Identity() RotoTrans {
	return RotoTrans{rot: eye3(), tr: r3.Vec{}}
}

// RotZ is a pure rotation of theta radians about the world Z axis.
func RotZ(theta float64) RotoTrans {
	c, s := math.Cos(theta), math.Sin(theta)
	return RotoTrans{
		rot: mat.NewDense(3, 3, []float64{
			c, -s, 0,
			s, c, 0,
			0, 0, 1,
		}),
		tr: r3.Vec{},
	}
}

// Translation is a pure translation.
func Translation(tr r3.Vec) RotoTrans {
	return RotoTrans{rot: eye3(), tr: tr}
}

// Mul composes two transforms: (a.Mul(b)).Apply(p) == a.Apply(b.Apply(p)).
func (rt RotoTrans) Mul(o RotoTrans) RotoTrans {
	r := mat.NewDense(3, 3, nil)
	r.Mul(rt.rot, o.rot)
	return RotoTrans{rot: r, tr: r3.Add(rt.rotate(o.tr), rt.tr)}
}

// Apply maps a point from the local frame to the world frame.
func (rt RotoTrans) Apply(p r3.Vec) r3.Vec {
	return r3.Add(rt.rotate(p), rt.tr)
}

func (rt RotoTrans) Trans() r3.Vec { return rt.tr }

func (rt RotoTrans) Rot() mat.Matrix { return rt.rot }

func (rt RotoTrans) Clone() RotoTrans {
	r := mat.NewDense(3, 3, nil)
	r.Copy(rt.rot)
	return RotoTrans{rot: r, tr: rt.tr}
}

func (rt RotoTrans) rotate(p r3.Vec) r3.Vec {
	return r3.Vec{
		X: rt.rot.At(0, 0)*p.X + rt.rot.At(0, 1)*p.Y + rt.rot.At(0, 2)*p.Z,
		Y: rt.rot.At(1, 0)*p.X + rt.rot.At(1, 1)*p.Y + rt.rot.At(1, 2)*p.Z,
		Z: rt.rot.At(2, 0)*p.X + rt.rot.At(2, 1)*p.Y + rt.rot.At(2, 2)*p.Z,
	}
}

func eye3() *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	})
}
