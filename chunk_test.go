package libvisio

import (
	"bytes"
	"testing"
)

func TestChunkTrailerBytes(t *testing.T) {
	cases := []struct {
		name       string
		chunkType  uint32
		list       uint32
		level      uint16
		unknown    byte
		wantTrailer uint32
	}{
		{"plain shape chunk no trailer", chunkShape, 0, 2, 0, 0},
		{"non-zero list always carries 8+4", chunkMoveTo, 1, 2, 0, 12},
		{"level2/unknown0x55 adds word separator", chunkLineTo, 0, 2, 0x55, 4},
		{"level3 unusual unknown adds word separator", chunkArcTo, 0, 3, 0x10, 4},
		{"level3 unknown 0x50 does not add separator", chunkArcTo, 0, 3, 0x50, 0},
		{"page properties chunk always adds word separator", chunkPageProp, 0, 2, 0, 4},
		{"OLE data chunk is always trailer-free", chunkOLEData, 1, 2, 0x55, 0},
		{"NameID chunk is always trailer-free", chunkNameID, 1, 3, 0x10, 0},
		{"type 0x71 carries 8+4 trailer on its own", 0x71, 0, 2, 0, 12},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := chunkTrailerBytes(c.chunkType, c.list, c.level, c.unknown)
			if got != c.wantTrailer {
				t.Errorf("chunkTrailerBytes(%#x, list=%d, level=%d, unknown=%#x) = %d, want %d",
					c.chunkType, c.list, c.level, c.unknown, got, c.wantTrailer)
			}
		})
	}
}

func TestGetChunkHeaderSkipsZeroPadding(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0, 0, 0}) // padding
	writeU32(&buf, chunkShape)
	writeU32(&buf, 7)  // ID
	writeU32(&buf, 0)  // List
	writeU32(&buf, 42) // DataLength
	writeU16(&buf, 2)  // Level
	buf.WriteByte(0)   // Unknown

	in := NewReaderInput(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	r := newByteReader(in)

	h, ok, err := getChunkHeader(r)
	if err != nil || !ok {
		t.Fatalf("getChunkHeader() = %v, %v, %v", h, ok, err)
	}
	if h.Type != chunkShape || h.ID != 7 || h.DataLength != 42 || h.Level != 2 {
		t.Errorf("unexpected header: %+v", h)
	}
	if h.Trailer != 0 {
		t.Errorf("Trailer = %d, want 0 for a plain shape chunk", h.Trailer)
	}
}

func TestGetChunkHeaderAtEnd(t *testing.T) {
	in := NewReaderInput(bytes.NewReader(nil), 0)
	r := newByteReader(in)
	_, ok, err := getChunkHeader(r)
	if err != nil || ok {
		t.Fatalf("getChunkHeader() on empty stream = %v, %v, want ok=false, err=nil", ok, err)
	}
}
