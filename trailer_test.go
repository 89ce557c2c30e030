package libvisio

import (
	"bytes"
	"testing"
)

func TestReadPointerTable(t *testing.T) {
	var buf bytes.Buffer
	writeU32(&buf, 2) // count
	writeU32(&buf, 0) // skipped word

	writeU32(&buf, streamTypePages)
	writeU32(&buf, 0) // skipped word
	writeU32(&buf, 100) // offset
	writeU32(&buf, 50)  // length
	writeU16(&buf, 0)   // format

	writeU32(&buf, streamTypeColours)
	writeU32(&buf, 0)
	writeU32(&buf, 200)
	writeU32(&buf, 20)
	writeU16(&buf, 2) // compressed

	in := NewReaderInput(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	r := newByteReader(in)

	ptrs, err := readPointerTable(r)
	if err != nil {
		t.Fatalf("readPointerTable: %v", err)
	}
	if len(ptrs) != 2 {
		t.Fatalf("len(ptrs) = %d, want 2", len(ptrs))
	}
	if ptrs[0].Type != streamTypePages || ptrs[0].Offset != 100 || ptrs[0].Length != 50 {
		t.Errorf("ptrs[0] = %+v", ptrs[0])
	}
	if ptrs[1].Type != streamTypeColours || !ptrs[1].compressed() {
		t.Errorf("ptrs[1] = %+v, want compressed", ptrs[1])
	}
}

func TestParseColours(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(make([]byte, 6)) // preamble
	buf.WriteByte(2)           // count
	buf.WriteByte(0)           // separator
	buf.Write([]byte{0xff, 0x00, 0x00, 0xff})
	buf.Write([]byte{0x00, 0xff, 0x00, 0x80})

	in := NewReaderInput(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	sub, err := newSubstream(in, uint32(buf.Len()), false, nil)
	if err != nil {
		t.Fatalf("newSubstream: %v", err)
	}

	colours, err := parseColours(sub)
	if err != nil {
		t.Fatalf("parseColours: %v", err)
	}
	if len(colours) != 2 {
		t.Fatalf("len(colours) = %d, want 2", len(colours))
	}
	if colours[0] != (Colour{0xff, 0, 0, 0xff}) {
		t.Errorf("colours[0] = %+v", colours[0])
	}
	if colours[1] != (Colour{0, 0xff, 0, 0x80}) {
		t.Errorf("colours[1] = %+v", colours[1])
	}
}

func TestNamedStreamTypesExcludes0x14(t *testing.T) {
	if _, ok := namedStreamTypes[0x14]; ok {
		t.Errorf("namedStreamTypes should not carry an entry for 0x14")
	}
	if _, ok := namedStreamTypes[streamTypePage]; ok {
		t.Errorf("namedStreamTypes should not duplicate a type with its own dispatch case")
	}
	for _, want := range []uint32{0x0a, 0x0b, 0x1a, 0x1d, 0xd7} {
		if _, ok := namedStreamTypes[want]; !ok {
			t.Errorf("namedStreamTypes missing entry for %#x", want)
		}
	}
}

func TestOpenPointerStreamSeeksToDeclaredOffset(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(make([]byte, 10))
	buf.Write([]byte("hello"))

	in := NewReaderInput(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	p := streamPointer{Offset: 10, Length: 5}
	sub, err := openPointerStream(in, p, nil)
	if err != nil {
		t.Fatalf("openPointerStream: %v", err)
	}
	got := make([]byte, 5)
	if _, err := sub.Read(got); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != "hello" {
		t.Errorf("got %q, want hello", got)
	}
}
