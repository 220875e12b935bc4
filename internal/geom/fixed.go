package geom

import "math"

// Fixed is a 16.16 fixed-point number. All world coordinates, radii and
// intercept fractions use it so traversal results are bit-for-bit repeatable.
type Fixed int32

const (
	FracBits       = 16
	FracUnit Fixed = 1 << FracBits

	MaxFixed Fixed = math.MaxInt32
	MinFixed Fixed = math.MinInt32
)

// Whole map units that FromInt represents exactly.
const (
	MinUnits = math.MinInt16
	MaxUnits = math.MaxInt16
)

// FromInt converts whole map units to Fixed. Values outside
// MinUnits..MaxUnits wrap; check them with InRange first.
func FromInt(v int) Fixed { return Fixed(v << FracBits) }

// InRange reports whether v whole map units fit a Fixed.
func InRange(v int) bool { return v >= MinUnits && v <= MaxUnits }

// Saturate narrows a 64-bit fixed-point value, clamping to MinFixed/MaxFixed.
func Saturate(v int64) Fixed {
	if v > math.MaxInt32 {
		return MaxFixed
	}
	if v < math.MinInt32 {
		return MinFixed
	}
	return Fixed(v)
}

// FromFloat converts map units to Fixed, truncating toward zero.
func FromFloat(v float64) Fixed { return Fixed(v * float64(FracUnit)) }

// Int returns the whole part, rounding toward negative infinity.
func (f Fixed) Int() int { return int(f >> FracBits) }

func (f Fixed) Float() float64 { return float64(f) / float64(FracUnit) }

func (f Fixed) Abs() Fixed {
	if f < 0 {
		return -f
	}
	return f
}

// Mul multiplies two fixed values with a 64-bit intermediate.
func Mul(a, b Fixed) Fixed {
	return Fixed((int64(a) * int64(b)) >> FracBits)
}

// Div divides a by b. Results that do not fit saturate to MinFixed/MaxFixed
// with the sign of the true quotient.
func Div(a, b Fixed) Fixed {
	if (a.Abs() >> 14) >= b.Abs() {
		if (a ^ b) < 0 {
			return MinFixed
		}
		return MaxFixed
	}
	return Fixed((int64(a) << FracBits) / int64(b))
}

// AproxDistance is the octagonal distance estimate used by AI heuristics.
func AproxDistance(dx, dy Fixed) Fixed {
	dx = dx.Abs()
	dy = dy.Abs()
	if dx < dy {
		return dx + dy - (dx >> 1)
	}
	return dx + dy - (dy >> 1)
}
