package libvisio

import "io"

// Stream pointer types dispatched out of the trailer and Pages tables.
const (
	streamTypePage    uint32 = 0x15
	streamTypeColours uint32 = 0x16
	streamTypePages   uint32 = 0x27
)

// namedStreamTypes carries the names of trailer pointer types this
// reader recognizes but does not walk into, so the debug log can tell
// "recognized, nothing to do here" apart from "never seen this type
// before". It does not attempt to cover every type a VSD11 trailer can
// point at, only the ones with a well-known name.
//
// Type 0x14 ("Trailer") is deliberately absent: real-world VSD11
// writers emit a degenerate entry for it with no length or format
// fields at all, just the type code and name, so there is nothing a
// pointer-table reader could dereference even if it wanted to.
var namedStreamTypes = map[uint32]string{
	0x0a: "Name",
	0x0b: "Name Idx",
	0x18: "FontFaces",
	0x1a: "Styles",
	0x1d: "Stencils",
	0x1e: "Stencil Page",
	0x23: "Icon",
	0x31: "Document",
	0x32: "NameList",
	0x33: "Name",
	0xd7: "FontFace",
	0xd8: "FontFaces",
}

// streamPointer is one 18-byte entry of a pointer table: either the
// trailer's own table (pointing at top-level streams like Pages and
// Colours) or a Pages stream's table (pointing at individual Page
// streams).
type streamPointer struct {
	Type    uint32
	Offset  uint32
	Length  uint32
	Format  uint16
}

func (p streamPointer) compressed() bool {
	return p.Format&2 == 2
}

// readPointerTable reads a pointer-count-prefixed table of
// streamPointer entries at the reader's current position.
func readPointerTable(r *byteReader) ([]streamPointer, error) {
	count, err := r.readU32()
	if err != nil {
		return nil, err
	}
	if err := r.skip(4); err != nil {
		return nil, err
	}

	ptrs := make([]streamPointer, 0, count)
	for i := uint32(0); i < count; i++ {
		var p streamPointer
		if p.Type, err = r.readU32(); err != nil {
			return ptrs, err
		}
		if err := r.skip(4); err != nil {
			return ptrs, err
		}
		if p.Offset, err = r.readU32(); err != nil {
			return ptrs, err
		}
		if p.Length, err = r.readU32(); err != nil {
			return ptrs, err
		}
		if p.Format, err = r.readU16(); err != nil {
			return ptrs, err
		}
		ptrs = append(ptrs, p)
	}
	return ptrs, nil
}

// openPointerStream seeks the container to a streamPointer's declared
// offset and wraps it as a fresh substream of its declared length.
func openPointerStream(in Input, p streamPointer, dec Decompressor) (*substream, error) {
	if _, err := in.Seek(int64(p.Offset), io.SeekStart); err != nil {
		return nil, err
	}
	return newSubstream(in, p.Length, p.compressed(), dec)
}

// parseColours reads the Colours stream (trailer pointer type 0x16):
// a fixed 6-byte preamble, a one-byte palette size,
// a one-byte separator, then that many 4-byte RGBA entries.
func parseColours(sub *substream) ([]Colour, error) {
	r := newByteReader(sub)
	if _, err := r.seek(6, io.SeekStart); err != nil {
		return nil, err
	}
	count, err := r.readU8()
	if err != nil {
		return nil, err
	}
	if err := r.skipByte(); err != nil {
		return nil, err
	}

	colours := make([]Colour, 0, count)
	for i := 0; i < int(count); i++ {
		var c Colour
		if c.R, err = r.readU8(); err != nil {
			return colours, err
		}
		if c.G, err = r.readU8(); err != nil {
			return colours, err
		}
		if c.B, err = r.readU8(); err != nil {
			return colours, err
		}
		if c.A, err = r.readU8(); err != nil {
			return colours, err
		}
		colours = append(colours, c)
	}
	return colours, nil
}
