package libvisio

import (
	"bytes"
	"strings"
	"testing"
)

// padTo appends zero bytes until buf.Len() == target.
func padTo(buf *bytes.Buffer, target int) {
	if n := target - buf.Len(); n > 0 {
		buf.Write(make([]byte, n))
	}
}

// writeChunkHeader writes a 19-byte ChunkHeader record and returns the
// trailer byte count chunkTrailerBytes derives for it, so callers can
// size their own trailer padding consistently with getChunkHeader.
func writeChunkHeader(buf *bytes.Buffer, typ, id, list, dataLength uint32, level uint16, unknown byte) uint32 {
	writeU32(buf, typ)
	writeU32(buf, id)
	writeU32(buf, list)
	writeU32(buf, dataLength)
	writeU16(buf, level)
	buf.WriteByte(unknown)
	return chunkTrailerBytes(typ, list, level, unknown)
}

// buildRectanglePageStream builds one Page stream: a Page Properties
// chunk (10x10 page) followed by a single Shape containing an XForm, a
// GeomList ordering four line segments into a closed rectangle path.
func buildRectanglePageStream() []byte {
	var buf bytes.Buffer

	// Page Properties (0x92): unit byte, width double, spacer byte,
	// height double.
	{
		var body bytes.Buffer
		body.WriteByte(0)
		writeDouble(&body, 10)
		body.WriteByte(0)
		writeDouble(&body, 10)
		trailer := writeChunkHeader(&buf, chunkPageProp, 1, 0, uint32(body.Len()), 1, 0)
		buf.Write(body.Bytes())
		buf.Write(make([]byte, trailer))
	}

	// Shape (0x48): own body is empty, its children follow immediately.
	{
		trailer := writeChunkHeader(&buf, chunkShape, 10, 0, 0, 1, 0)
		buf.Write(make([]byte, trailer))
	}

	// XForm (0x9b), nested at level 2: identity placement, no rotation.
	{
		var body bytes.Buffer
		fields := []float64{0, 0, 10, 10, 0, 0, 0} // PinX,PinY,W,H,PinLocX,PinLocY,Angle
		for _, f := range fields {
			writeField(&body, f)
		}
		body.WriteByte(0) // FlipX
		body.WriteByte(0) // FlipY
		trailer := writeChunkHeader(&buf, chunkXForm, 11, 0, uint32(body.Len()), 2, 0)
		buf.Write(body.Bytes())
		buf.Write(make([]byte, trailer))
	}

	// GeomList (0x6c): orders the 5 geometry chunk IDs that follow.
	{
		ids := []uint32{20, 21, 22, 23, 24}
		var body bytes.Buffer
		writeU32(&body, 0)                         // subHeaderLength
		writeU32(&body, uint32(len(ids))*4)        // childrenListLength
		for _, id := range ids {
			writeU32(&body, id)
		}
		trailer := writeChunkHeader(&buf, chunkGeomList, 12, 0, uint32(body.Len()), 2, 0)
		buf.Write(body.Bytes())
		buf.Write(make([]byte, trailer))
	}

	// MoveTo/LineTo chunks tracing (0,0)->(10,0)->(10,10)->(0,10)->(0,0)
	// in page coordinates. With this XForm, x=px and y=10-py.
	points := []struct {
		id       uint32
		typ      uint32
		px, py   float64
	}{
		{20, chunkMoveTo, 0, 10},
		{21, chunkLineTo, 10, 10},
		{22, chunkLineTo, 10, 0},
		{23, chunkLineTo, 0, 0},
		{24, chunkLineTo, 0, 10},
	}
	for _, pt := range points {
		var body bytes.Buffer
		writeField(&body, pt.px)
		writeField(&body, pt.py)
		trailer := writeChunkHeader(&buf, pt.typ, pt.id, 0, uint32(body.Len()), 2, 0)
		buf.Write(body.Bytes())
		buf.Write(make([]byte, trailer))
	}

	return buf.Bytes()
}

// buildContainer assembles a minimal root stream: the trailer-pointer
// header at 0x24, a trailer stream with one Pages pointer, a Pages
// stream with one Page pointer, and the Page stream itself.
func buildContainer(t *testing.T, pageStream []byte) []byte {
	t.Helper()

	const (
		trailerOffset = 0x40
		pagesOffset   = trailerOffset + 38
	)
	pageOffset := pagesOffset + 34

	var buf bytes.Buffer
	padTo(&buf, 0x24)
	buf.Write(make([]byte, 8)) // skipped word before offset/length/format
	writeU32(&buf, trailerOffset)
	writeU32(&buf, 38) // trailer stream length
	writeU16(&buf, 0)  // format: uncompressed

	padTo(&buf, trailerOffset)
	// Trailer stream: byte 4 holds indirOffset; table starts at
	// indirOffset+4.
	writeU32(&buf, 0)      // bytes[0:4], unused
	writeU32(&buf, 8)      // indirOffset
	writeU32(&buf, 0)      // bytes[8:12], skipped by the +4 seek below
	writeU32(&buf, 1)      // pointer count
	writeU32(&buf, 0)      // skipped word
	writeU32(&buf, streamTypePages)
	writeU32(&buf, 0) // skipped word
	writeU32(&buf, uint32(pagesOffset))
	writeU32(&buf, 34) // Pages stream length
	writeU16(&buf, 0)  // format

	if buf.Len() != pagesOffset {
		t.Fatalf("trailer stream layout drifted: buf.Len()=%d, want %d", buf.Len(), pagesOffset)
	}

	// Pages stream: offset to its own pointer table, then the table.
	writeU32(&buf, 8) // offset to pointer table, relative to this stream
	writeU32(&buf, 0) // unused
	writeU32(&buf, 1) // pointer count
	writeU32(&buf, 0) // skipped word
	writeU32(&buf, streamTypePage)
	writeU32(&buf, 0) // skipped word
	writeU32(&buf, uint32(pageOffset))
	writeU32(&buf, uint32(len(pageStream)))
	writeU16(&buf, 0) // format

	if buf.Len() != pageOffset {
		t.Fatalf("pages stream layout drifted: buf.Len()=%d, want %d", buf.Len(), pageOffset)
	}

	buf.Write(pageStream)
	return buf.Bytes()
}

func TestParseEndToEndRendersClosedRectangle(t *testing.T) {
	pageStream := buildRectanglePageStream()
	container := buildContainer(t, pageStream)

	in := NewReaderInput(bytes.NewReader(container), int64(len(container)))
	p := New()

	svg, err := GenerateSVG(p, in)
	if err != nil {
		t.Fatalf("GenerateSVG: %v", err)
	}
	if !strings.Contains(svg, "<svg") {
		t.Fatalf("output does not look like SVG: %s", svg)
	}
	if !strings.Contains(svg, "<path") {
		t.Fatalf("expected a <path> element, got: %s", svg)
	}
	if !strings.Contains(svg, "Z") {
		t.Errorf("expected the rectangle path to be closed, got: %s", svg)
	}
	if !strings.Contains(svg, `width="10in"`) {
		t.Errorf("expected a 10x10 page, got: %s", svg)
	}
}

func TestIsSupportedRejectsEmptyInput(t *testing.T) {
	p := New()
	in := NewReaderInput(bytes.NewReader(nil), 0)
	if p.IsSupported(in) {
		t.Errorf("IsSupported on an empty stream should be false")
	}
}

func TestIsSupportedAcceptsPlausibleTrailerPointer(t *testing.T) {
	var buf bytes.Buffer
	padTo(&buf, 0x24)
	buf.Write(make([]byte, 8))
	writeU32(&buf, 0x40)
	writeU32(&buf, 38)
	writeU16(&buf, 0)

	p := New()
	in := NewReaderInput(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if !p.IsSupported(in) {
		t.Errorf("IsSupported should accept a readable, non-zero-length trailer pointer")
	}
}
