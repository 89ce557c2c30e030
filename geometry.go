package libvisio

import "math"

// geometryState carries the running path cursor (in unscaled page
// coordinates) across the sequence of MoveTo/LineTo/ArcTo/Elliptical
// ArcTo chunks within one GeomList. ArcTo's radius and Elliptical
// ArcTo's centre recovery both need the previous point, not just the
// one being read.
type geometryState struct {
	X, Y float64
}

func readPointField(r *byteReader, xf XForm, pageHeight float64) (float64, float64, error) {
	if err := r.skipByte(); err != nil {
		return 0, 0, err
	}
	px, err := r.readDouble()
	if err != nil {
		return 0, 0, err
	}
	if err := r.skipByte(); err != nil {
		return 0, 0, err
	}
	py, err := r.readDouble()
	if err != nil {
		return 0, 0, err
	}
	x := px + xf.X
	y := (xf.Height - py) + xf.Y
	rotatePoint(&x, &y, xf, pageHeight)
	flipPoint(&x, &y, xf)
	return x, y, nil
}

// parseMoveTo reads chunk 0x8a.
func parseMoveTo(r *byteReader, xf XForm, pageHeight, scale float64, st *geometryState) (PathElement, error) {
	x, y, err := readPointField(r, xf, pageHeight)
	if err != nil {
		return PathElement{}, err
	}
	st.X, st.Y = x, y
	return PathElement{Action: ActionMoveTo, X: scale * x, Y: scale * y}, nil
}

// parseLineTo reads chunk 0x8b.
func parseLineTo(r *byteReader, xf XForm, pageHeight, scale float64, st *geometryState) (PathElement, error) {
	x, y, err := readPointField(r, xf, pageHeight)
	if err != nil {
		return PathElement{}, err
	}
	st.X, st.Y = x, y
	return PathElement{Action: ActionLineTo, X: scale * x, Y: scale * y}, nil
}

// parseArcTo reads chunk 0x8c: an endpoint plus a signed "bow" offset
// from the chord midpoint. A zero bow degenerates to a straight line;
// otherwise the bow and chord length determine the circle radius, and
// the bow's sign picks the sweep direction.
func parseArcTo(r *byteReader, xf XForm, pageHeight, scale float64, st *geometryState) (PathElement, error) {
	x2, y2, err := readPointField(r, xf, pageHeight)
	if err != nil {
		return PathElement{}, err
	}
	if err := r.skipByte(); err != nil {
		return PathElement{}, err
	}
	bow, err := r.readDouble()
	if err != nil {
		return PathElement{}, err
	}

	if bow == 0 {
		st.X, st.Y = x2, y2
		return PathElement{Action: ActionLineTo, X: scale * x2, Y: scale * y2}, nil
	}

	chord := math.Hypot(y2-st.Y, x2-st.X)
	radius := (4*bow*bow + chord*chord) / (8 * math.Abs(bow))
	largeArc := math.Abs(bow) > radius
	sweep := bow < 0

	el := PathElement{
		Action:   ActionArcTo,
		X:        scale * x2,
		Y:        scale * y2,
		Rx:       scale * radius,
		Ry:       scale * radius,
		Rotate:   xf.Angle * radToDeg,
		LargeArc: largeArc,
		Sweep:    sweep,
	}
	st.X, st.Y = x2, y2
	return el, nil
}

// parseEllipse reads chunk 0x8f's six-double conic form and converts
// it to a centre/radius ellipse rotated by the XForm's angle. It never
// touches the path cursor; it is drawn as its own primitive (see
// dispatchGeomChunk in page.go).
func parseEllipse(r *byteReader, xf XForm, scale float64) (EllipseProperties, error) {
	vals := make([]float64, 4)
	for i := range vals {
		if err := r.skipByte(); err != nil {
			return EllipseProperties{}, err
		}
		v, err := r.readDouble()
		if err != nil {
			return EllipseProperties{}, err
		}
		vals[i] = v
	}
	cx, cy, aa := vals[0], vals[1], vals[2]
	// bb, cc are skipped below: only the major-axis endpoint (aa) and
	// minor-axis endpoint (dd) are needed to recover Rx/Ry.
	if err := r.skipByte(); err != nil {
		return EllipseProperties{}, err
	}
	if _, err := r.readDouble(); err != nil { // bb
		return EllipseProperties{}, err
	}
	if err := r.skipByte(); err != nil {
		return EllipseProperties{}, err
	}
	if _, err := r.readDouble(); err != nil { // cc
		return EllipseProperties{}, err
	}
	if err := r.skipByte(); err != nil {
		return EllipseProperties{}, err
	}
	dd, err := r.readDouble()
	if err != nil {
		return EllipseProperties{}, err
	}

	return EllipseProperties{
		Rx:     scale * (aa - cx),
		Ry:     scale * (dd - cy),
		Cx:     scale * (xf.X + cx),
		Cy:     scale * (xf.Y + cy),
		Rotate: xf.Angle * radToDeg,
	}, nil
}

// parseEllipticalArcTo reads chunk 0x90: an endpoint, a control point,
// a rotation angle, and an eccentricity. The ellipse centre is
// recovered in closed form from the three points (previous cursor,
// control, endpoint) plus the eccentricity constraint.
func parseEllipticalArcTo(r *byteReader, xf XForm, pageHeight, scale float64, st *geometryState) (PathElement, error) {
	x3, y3, err := readPointField(r, xf, pageHeight) // end point
	if err != nil {
		return PathElement{}, err
	}
	x2, y2, err := readPointField(r, xf, pageHeight) // control point
	if err != nil {
		return PathElement{}, err
	}
	if err := r.skipByte(); err != nil {
		return PathElement{}, err
	}
	angle, err := r.readDouble()
	if err != nil {
		return PathElement{}, err
	}
	if err := r.skipByte(); err != nil {
		return PathElement{}, err
	}
	ecc, err := r.readDouble()
	if err != nil {
		return PathElement{}, err
	}

	x1, y1 := st.X, st.Y

	x0 := ((x1-x2)*(x1+x2)*(y2-y3) - (x2-x3)*(x2+x3)*(y1-y2) +
		ecc*ecc*(y1-y2)*(y2-y3)*(y1-y3)) /
		(2 * ((x1-x2)*(y2-y3) - (x2-x3)*(y1-y2)))
	y0 := ((x1-x2)*(x2-x3)*(x1-x3) + ecc*ecc*(x2-x3)*(y1-y2)*(y1+y2) -
		ecc*ecc*(x1-x2)*(y2-y3)*(y2+y3)) /
		(2 * ecc * ecc * ((x2-x3)*(y1-y2) - (x1-x2)*(y2-y3)))

	rx := math.Sqrt(math.Pow(x1-x0, 2) + ecc*ecc*math.Pow(y1-y0, 2))
	ry := rx / ecc

	largeArc := false
	sweep := true

	centreSide := (x3-x1)*(y0-y1) - (y3-y1)*(x0-x1)
	midSide := (x3-x1)*(y2-y1) - (y3-y1)*(x2-x1)
	if (centreSide > 0 && midSide > 0) || (centreSide < 0 && midSide < 0) {
		largeArc = true
	}
	if midSide > 0 {
		sweep = false
	}

	el := PathElement{
		Action:   ActionArcTo,
		X:        scale * x3,
		Y:        scale * y3,
		Rx:       scale * rx,
		Ry:       scale * ry,
		Rotate:   -(angle*radToDeg + xf.Angle*radToDeg),
		LargeArc: largeArc,
		Sweep:    sweep,
	}
	st.X, st.Y = x3, y3
	return el, nil
}
