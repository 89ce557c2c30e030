package libvisio

import "math"

// XForm is a shape's position/size/rotation/flip block (chunk 0x9b).
// X/Y are derived top-left offsets kept alongside the raw pin fields so
// downstream geometry handlers never have to recompute them.
type XForm struct {
	PinX, PinY       float64
	Width, Height    float64
	PinLocX, PinLocY float64
	Angle            float64
	FlipX, FlipY     bool

	// X, Y: top-left corner in page coordinates, derived from the pin
	// fields above relative to pageHeight.
	X, Y float64
}

func deriveXFormOffset(x *XForm, pageHeight float64) {
	x.X = x.PinX - x.PinLocX
	x.Y = pageHeight - x.PinY + x.PinLocY - x.Height
}

// parseXForm reads chunk 0x9b's body: seven byte-prefixed doubles
// followed by two flip flags. Every field in the wire format is
// preceded by a one-byte tag this reader always discards; it encodes
// whether the value is a formula result, which never affects the
// value actually stored in the chunk.
func parseXForm(r *byteReader, pageHeight float64) (XForm, error) {
	var x XForm
	fields := []*float64{&x.PinX, &x.PinY, &x.Width, &x.Height, &x.PinLocX, &x.PinLocY, &x.Angle}
	for _, f := range fields {
		if err := r.skipByte(); err != nil {
			return x, err
		}
		v, err := r.readDouble()
		if err != nil {
			return x, err
		}
		*f = v
	}
	flipX, err := r.readU8()
	if err != nil {
		return x, err
	}
	flipY, err := r.readU8()
	if err != nil {
		return x, err
	}
	x.FlipX = flipX != 0
	x.FlipY = flipY != 0

	deriveXFormOffset(&x, pageHeight)
	return x, nil
}

// transformXForm folds a shape's own XForm into the XForm of whatever
// group it belongs to (tracked per-shape-ID in groupXForms, populated
// by the group-level ShapeID chunk 0x83), then rederives X/Y. A shape
// with no recorded group entry is returned unchanged.
func transformXForm(x XForm, groupXForms map[uint32]XForm, currentShapeID uint32, pageHeight float64) XForm {
	if g, ok := groupXForms[currentShapeID]; ok {
		x.PinX += g.PinX
		x.PinY += g.PinY
		x.PinLocX += g.PinLocX
		x.PinLocY += g.PinLocY
	}
	deriveXFormOffset(&x, pageHeight)
	return x
}

// rotatePoint rotates (x,y) about the XForm's pin, measuring angle
// counter-clockwise from the page's bottom-left origin the way the
// drawing canvas does, not screen-space top-left.
func rotatePoint(x, y *float64, xf XForm, pageHeight float64) {
	if xf.Angle == 0 {
		return
	}
	tmpX := *x - xf.PinX
	tmpY := (pageHeight - *y) - xf.PinY

	nx := (tmpX * math.Cos(xf.Angle)) - (tmpY * math.Sin(xf.Angle)) + xf.PinX
	ny := (tmpX * math.Sin(xf.Angle)) + (tmpY * math.Cos(xf.Angle)) + xf.PinY
	*x = nx
	*y = pageHeight - ny
}

// flipPoint mirrors (x,y) within the shape's own bounding box per the
// FlipX/FlipY flags. A no-op when neither flag is set.
func flipPoint(x, y *float64, xf XForm) {
	if !xf.FlipX && !xf.FlipY {
		return
	}
	tmpX := *x - xf.X
	tmpY := *y - xf.Y
	if xf.FlipX {
		tmpX = xf.Width - tmpX
	}
	if xf.FlipY {
		tmpY = xf.Height - tmpY
	}
	*x = tmpX + xf.X
	*y = tmpY + xf.Y
}

const radToDeg = 180 / math.Pi
