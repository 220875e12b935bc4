package geom

// Box is an axis-aligned bounding box in map space.
type Box struct {
	Left, Right Fixed
	Bottom, Top Fixed
}

// BoxAround returns the square of half-size radius centred on (x,y).
func BoxAround(x, y, radius Fixed) Box {
	return Box{
		Left:   x - radius,
		Right:  x + radius,
		Bottom: y - radius,
		Top:    y + radius,
	}
}

// EmptyBox returns a box that any AddPoint call will replace.
func EmptyBox() Box {
	return Box{Left: MaxFixed, Right: MinFixed, Bottom: MaxFixed, Top: MinFixed}
}

func (b *Box) AddPoint(x, y Fixed) {
	if x < b.Left {
		b.Left = x
	}
	if x > b.Right {
		b.Right = x
	}
	if y < b.Bottom {
		b.Bottom = y
	}
	if y > b.Top {
		b.Top = y
	}
}

// Overlaps reports whether the open interiors of b and o intersect.
func (b Box) Overlaps(o Box) bool {
	return !(b.Right <= o.Left || b.Left >= o.Right ||
		b.Top <= o.Bottom || b.Bottom >= o.Top)
}

func (b Box) Contains(x, y Fixed) bool {
	return x >= b.Left && x <= b.Right && y >= b.Bottom && y <= b.Top
}
