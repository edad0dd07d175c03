package geom2d

// Fillet is the result of a corner fillet construction: the arc centre and
// the tangent points on the two legs.
type Fillet struct {
	Center Point
	T1, T2 Point
}

// FilletPoints finds the centre and tangent points of a fillet of radius r
// in the corner formed by the rays corner→end1 and corner→end2.
//
// Each leg is offset by r on both sides. The offset kept for a leg is the
// one nearer the other leg's endpoint, which puts the arc on the inside of
// the corner; on a tie the first offset wins. The two kept offsets meet at
// the centre, and projecting the centre back onto each leg gives the
// tangent points. ok is false for degenerate or collinear legs.
func FilletPoints(r float64, corner, end1, end2 Point) (Fillet, bool) {
	if r <= 0 {
		return Fillet{}, false
	}
	leg1 := LineThrough(corner, end1)
	leg2 := LineThrough(corner, end2)
	if leg1.IsDegenerate() || leg2.IsDegenerate() {
		return Fillet{}, false
	}

	off1 := insideOffset(leg1, r, end2)
	off2 := insideOffset(leg2, r, end1)
	ctr, ok := IntersectLines(off1, off2)
	if !ok {
		return Fillet{}, false
	}
	return Fillet{
		Center: ctr,
		T1:     Project(leg1, ctr),
		T2:     Project(leg2, ctr),
	}, true
}

func insideOffset(l Line, r float64, toward Point) Line {
	a, b := OffsetLines(l, r)
	da := Distance(Project(a, toward), toward)
	db := Distance(Project(b, toward), toward)
	if da <= db {
		return a
	}
	return b
}
