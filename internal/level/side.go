package level

import "github.com/blocklink/worldindex/internal/geom"

// PointOnLineSide returns 0 for the front side of the line, 1 for the back.
// Points exactly on the line count as front.
func PointOnLineSide(x, y geom.Fixed, l *Line) int {
	cross := int64(y-l.V1.Y)*int64(l.Dx) + int64(l.V1.X-x)*int64(l.Dy)
	if cross>>32 > 0 {
		return 1
	}
	return 0
}

// BoxOnLineSide returns 0 or 1 when the whole box lies on one side of the
// line and -1 when the line passes through it.
func BoxOnLineSide(b geom.Box, l *Line) int {
	var p, q int
	switch {
	case l.Dy == 0:
		p = b2i(b.Top > l.V1.Y)
		q = b2i(b.Bottom > l.V1.Y)
		if l.Dx < 0 {
			p ^= 1
			q ^= 1
		}
	case l.Dx == 0:
		p = b2i(b.Right < l.V1.X)
		q = b2i(b.Left < l.V1.X)
		if l.Dy < 0 {
			p ^= 1
			q ^= 1
		}
	case (l.Dy ^ l.Dx) > 0:
		p = PointOnLineSide(b.Left, b.Top, l)
		q = PointOnLineSide(b.Right, b.Bottom, l)
	default:
		p = PointOnLineSide(b.Right, b.Top, l)
		q = PointOnLineSide(b.Left, b.Bottom, l)
	}
	if p == q {
		return p
	}
	return -1
}

// PointOnNodeSide is the exact partition test used for point location.
func PointOnNodeSide(x, y geom.Fixed, n *Node) int {
	cross := int64(y-n.Y)*int64(n.Dx) + int64(n.X-x)*int64(n.Dy)
	if cross>>32 > 0 {
		return 1
	}
	return 0
}

// PointOnNodeSideLegacy reproduces the integer-truncating side test that
// early map tools were tuned against. A point lying on the partition can
// land on the back side depending on the line's orientation, and a few
// shipped maps place things on ledges that only resolve correctly this way.
// Use it for spawning map things only.
func PointOnNodeSideLegacy(x, y geom.Fixed, n *Node) int {
	if n.Dx == 0 {
		if x <= n.X {
			return b2i(n.Dy > 0)
		}
		return b2i(n.Dy < 0)
	}
	if n.Dy == 0 {
		if y <= n.Y {
			return b2i(n.Dx < 0)
		}
		return b2i(n.Dx > 0)
	}

	dx := x - n.X
	dy := y - n.Y

	if (n.Dy^n.Dx^dx^dy)&geom.MinFixed != 0 {
		if (n.Dy^dx)&geom.MinFixed != 0 {
			return 1
		}
		return 0
	}

	left := geom.Mul(n.Dy>>geom.FracBits, dx)
	right := geom.Mul(dy, n.Dx>>geom.FracBits)
	if right < left {
		return 0
	}
	return 1
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}
