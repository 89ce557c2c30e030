package libvisio

import (
	"bytes"
	"math"
	"testing"
)

func TestParseXForm(t *testing.T) {
	var buf bytes.Buffer
	writeField(&buf, 5)   // PinX
	writeField(&buf, 3)   // PinY
	writeField(&buf, 2)   // Width
	writeField(&buf, 4)   // Height
	writeField(&buf, 1)   // PinLocX
	writeField(&buf, 1)   // PinLocY
	writeField(&buf, 0)   // Angle
	buf.WriteByte(0)      // FlipX
	buf.WriteByte(1)      // FlipY

	in := NewReaderInput(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	r := newByteReader(in)

	const pageHeight = 11.0
	x, err := parseXForm(r, pageHeight)
	if err != nil {
		t.Fatalf("parseXForm: %v", err)
	}
	if x.PinX != 5 || x.PinY != 3 || x.Width != 2 || x.Height != 4 {
		t.Errorf("unexpected XForm fields: %+v", x)
	}
	if x.FlipX || !x.FlipY {
		t.Errorf("flip flags: FlipX=%v FlipY=%v, want false/true", x.FlipX, x.FlipY)
	}

	wantX := x.PinX - x.PinLocX
	wantY := pageHeight - x.PinY + x.PinLocY - x.Height
	if x.X != wantX || x.Y != wantY {
		t.Errorf("derived offset = (%g,%g), want (%g,%g)", x.X, x.Y, wantX, wantY)
	}
}

func TestTransformXFormFoldsGroup(t *testing.T) {
	shapeXForm := XForm{PinX: 1, PinY: 1, PinLocX: 0, PinLocY: 0}
	groupXForm := XForm{PinX: 10, PinY: 20, PinLocX: 2, PinLocY: 2}
	groups := map[uint32]XForm{5: groupXForm}

	got := transformXForm(shapeXForm, groups, 5, 11)
	if got.PinX != 11 || got.PinY != 21 {
		t.Errorf("folded PinX/PinY = (%g,%g), want (11,21)", got.PinX, got.PinY)
	}

	// No group entry for this shape ID: unchanged but still re-derived.
	unchanged := transformXForm(shapeXForm, groups, 999, 11)
	if unchanged.PinX != shapeXForm.PinX || unchanged.PinY != shapeXForm.PinY {
		t.Errorf("ungrouped shape mutated: %+v", unchanged)
	}
}

func TestRotatePointNoOpWhenAngleZero(t *testing.T) {
	x, y := 3.0, 4.0
	xf := XForm{Angle: 0, PinX: 1, PinY: 1}
	rotatePoint(&x, &y, xf, 10)
	if x != 3 || y != 4 {
		t.Errorf("rotatePoint with zero angle mutated point to (%g,%g)", x, y)
	}
}

func TestRotatePointQuarterTurn(t *testing.T) {
	// Point directly below the pin (in drawing-space, bottom-left
	// origin), rotated 90 degrees CCW, should land to the pin's right.
	pageHeight := 10.0
	xf := XForm{Angle: math.Pi / 2, PinX: 5, PinY: 5}
	x, y := 5.0, 7.0 // drawing-space y = 10-7 = 3: two units "below" the pin
	rotatePoint(&x, &y, xf, pageHeight)
	if math.Abs(x-7) > 1e-9 || math.Abs(y-5) > 1e-9 {
		t.Errorf("rotatePoint quarter turn = (%g,%g), want (7,5)", x, y)
	}
}

func TestFlipPointMirrorsWithinBoundingBox(t *testing.T) {
	xf := XForm{X: 0, Y: 0, Width: 10, Height: 10, FlipX: true, FlipY: false}
	x, y := 2.0, 3.0
	flipPoint(&x, &y, xf)
	if x != 8 || y != 3 {
		t.Errorf("flipPoint(FlipX) = (%g,%g), want (8,3)", x, y)
	}
}

func TestFlipPointNoOp(t *testing.T) {
	xf := XForm{X: 0, Y: 0, Width: 10, Height: 10}
	x, y := 2.0, 3.0
	flipPoint(&x, &y, xf)
	if x != 2 || y != 3 {
		t.Errorf("flipPoint with no flags set mutated point to (%g,%g)", x, y)
	}
}
