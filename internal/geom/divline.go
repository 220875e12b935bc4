package geom

// Divline is a directed infinite line through (X,Y) with direction (Dx,Dy).
type Divline struct {
	X, Y   Fixed
	Dx, Dy Fixed
}

// PointOnDivlineSide returns 0 when (x,y) is on the front (right) side of
// the line and 1 when it is on the back side. Axis-aligned lines are
// decided without multiplication; the general case compares products of
// values pre-shifted by 8 bits so long lines do not overflow.
func PointOnDivlineSide(x, y Fixed, line *Divline) int {
	if line.Dx == 0 {
		if x <= line.X {
			return boolInt(line.Dy > 0)
		}
		return boolInt(line.Dy < 0)
	}
	if line.Dy == 0 {
		if y <= line.Y {
			return boolInt(line.Dx < 0)
		}
		return boolInt(line.Dx > 0)
	}

	x -= line.X
	y -= line.Y

	// Opposite signs decide the side without a multiply.
	if (line.Dy ^ line.Dx ^ x ^ y) < 0 {
		return boolInt((line.Dy ^ x) < 0)
	}
	return boolInt(Mul(y>>8, line.Dx>>8) >= Mul(line.Dy>>8, x>>8))
}

// InterceptVector returns the fractional distance along v2 at which it
// crosses v1. Parallel lines have no crossing and yield 0; callers filter
// with a side test first so the zero is never mistaken for a hit.
func InterceptVector(v2, v1 *Divline) Fixed {
	den := (int64(v1.Dy)*int64(v2.Dx) - int64(v1.Dx)*int64(v2.Dy)) >> FracBits
	if den == 0 {
		return 0
	}
	num := int64(v1.X-v2.X)*int64(v1.Dy) + int64(v2.Y-v1.Y)*int64(v1.Dx)
	return Fixed(num / den)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
