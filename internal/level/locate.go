package level

import "github.com/blocklink/worldindex/internal/geom"

// PointInSector returns the sector containing (x,y). Levels with BSP nodes
// walk the tree; levels without fall back to a crossing-number test over
// each sector's boundary lines. A point outside every sector resolves to
// sector 0, mirroring a BSP walk that always ends in some leaf.
func (l *Level) PointInSector(x, y geom.Fixed) *Sector {
	if len(l.Nodes) > 0 {
		return l.walkNodes(x, y, PointOnNodeSide)
	}
	for _, s := range l.Sectors {
		if s.contains(x, y) {
			return s
		}
	}
	return l.Sectors[0]
}

// PointInSectorLegacy walks the BSP with the legacy side test. Levels
// without nodes behave exactly like PointInSector.
func (l *Level) PointInSectorLegacy(x, y geom.Fixed) *Sector {
	if len(l.Nodes) == 0 {
		return l.PointInSector(x, y)
	}
	return l.walkNodes(x, y, PointOnNodeSideLegacy)
}

func (l *Level) walkNodes(x, y geom.Fixed, side func(x, y geom.Fixed, n *Node) int) *Sector {
	n := &l.Nodes[len(l.Nodes)-1]
	for {
		child := n.Children[side(x, y, n)]
		if child.IsSubsector() {
			return l.Subsectors[child.Subsector()].Sector
		}
		n = &l.Nodes[child]
	}
}

func (s *Sector) contains(x, y geom.Fixed) bool {
	px, py := x.Float(), y.Float()
	inside := false
	for _, ln := range s.lines {
		x1, y1 := ln.V1.X.Float(), ln.V1.Y.Float()
		x2, y2 := ln.V2.X.Float(), ln.V2.Y.Float()
		if (y1 > py) == (y2 > py) {
			continue
		}
		if px < x1+(py-y1)*(x2-x1)/(y2-y1) {
			inside = !inside
		}
	}
	return inside
}
