package libvisio

import (
	"bytes"
	"math"
	"testing"
)

func identityXForm() XForm {
	return XForm{Width: 10, Height: 10}
}

func TestParseMoveTo(t *testing.T) {
	var buf bytes.Buffer
	writeField(&buf, 2) // x
	writeField(&buf, 3) // y
	in := NewReaderInput(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	r := newByteReader(in)

	xf := identityXForm()
	st := &geometryState{}
	el, err := parseMoveTo(r, xf, 0, 1, st)
	if err != nil {
		t.Fatalf("parseMoveTo: %v", err)
	}
	if el.Action != ActionMoveTo {
		t.Errorf("Action = %v, want ActionMoveTo", el.Action)
	}
	// y is flipped within the shape's own height: (Height - py) + xf.Y
	wantY := xf.Height - 3
	if el.X != 2 || el.Y != wantY {
		t.Errorf("MoveTo = (%g,%g), want (2,%g)", el.X, el.Y, wantY)
	}
	if st.X != el.X || st.Y != el.Y {
		t.Errorf("cursor not updated: st=(%g,%g), el=(%g,%g)", st.X, st.Y, el.X, el.Y)
	}
}

func TestParseArcToZeroBowIsLine(t *testing.T) {
	var buf bytes.Buffer
	writeField(&buf, 5) // x2
	writeField(&buf, 5) // y2
	writeField(&buf, 0) // bow
	in := NewReaderInput(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	r := newByteReader(in)

	xf := identityXForm()
	st := &geometryState{X: 0, Y: 0}
	el, err := parseArcTo(r, xf, 0, 1, st)
	if err != nil {
		t.Fatalf("parseArcTo: %v", err)
	}
	if el.Action != ActionLineTo {
		t.Errorf("Action = %v, want ActionLineTo for zero bow", el.Action)
	}
}

func TestParseArcToWithBowComputesRadius(t *testing.T) {
	var buf bytes.Buffer
	writeField(&buf, 10) // x2
	writeField(&buf, 0)  // y2 (flipped to xf.Height-0=10)
	writeField(&buf, 5)  // bow (positive => sweep=false)
	in := NewReaderInput(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	r := newByteReader(in)

	xf := identityXForm()
	// Previous cursor at the shape's flipped origin (0, xf.Height).
	st := &geometryState{X: 0, Y: xf.Height}
	el, err := parseArcTo(r, xf, 0, 1, st)
	if err != nil {
		t.Fatalf("parseArcTo: %v", err)
	}
	if el.Action != ActionArcTo {
		t.Fatalf("Action = %v, want ActionArcTo", el.Action)
	}
	if el.Sweep {
		t.Errorf("Sweep = true, want false for a positive bow")
	}

	chord := math.Hypot(10-0, 10-10)
	wantRadius := (4*5*5 + chord*chord) / (8 * 5)
	if math.Abs(el.Rx-wantRadius) > 1e-9 {
		t.Errorf("Rx = %g, want %g", el.Rx, wantRadius)
	}
}

func TestParseEllipse(t *testing.T) {
	var buf bytes.Buffer
	writeField(&buf, 5)  // cx
	writeField(&buf, 5)  // cy
	writeField(&buf, 8)  // aa (major axis endpoint)
	writeField(&buf, 0)  // bb (unused)
	writeField(&buf, 0)  // cc (unused)
	writeField(&buf, 9)  // dd (minor axis endpoint)
	in := NewReaderInput(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	r := newByteReader(in)

	xf := identityXForm()
	props, err := parseEllipse(r, xf, 1)
	if err != nil {
		t.Fatalf("parseEllipse: %v", err)
	}
	if props.Rx != 3 || props.Ry != 4 {
		t.Errorf("Rx,Ry = %g,%g, want 3,4", props.Rx, props.Ry)
	}
	if props.Cx != xf.X+5 || props.Cy != xf.Y+5 {
		t.Errorf("Cx,Cy = %g,%g, want %g,%g", props.Cx, props.Cy, xf.X+5, xf.Y+5)
	}
}
