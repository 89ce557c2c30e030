package libvisio

// Chunk type constants used across page/group/shape/foreign dispatch.
const (
	chunkGroup    uint32 = 0x47
	chunkShape    uint32 = 0x48
	chunkForeign  uint32 = 0x4e
	chunkPageProp uint32 = 0x92

	chunkXForm       uint32 = 0x9b
	chunkShapeID     uint32 = 0x83
	chunkLineProps   uint32 = 0x85
	chunkFillProps   uint32 = 0x86
	chunkGeomList    uint32 = 0x6c
	chunkMoveTo      uint32 = 0x8a
	chunkLineTo      uint32 = 0x8b
	chunkArcTo       uint32 = 0x8c
	chunkEllipse     uint32 = 0x8f
	chunkEllipArcTo  uint32 = 0x90
	chunkForeignData uint32 = 0x98
	chunkForeignBlob uint32 = 0x0c
	chunkOLEData     uint32 = 0x1f
	chunkNameID      uint32 = 0xc9
)

// ChunkHeader is the 19-byte record preceding every chunk body:
// type, id, list, data length, nesting level, and an unknown tag byte,
// plus the trailer byte count this package derives from them.
type ChunkHeader struct {
	Type       uint32
	ID         uint32
	List       uint32
	DataLength uint32
	Level      uint16
	Unknown    byte
	Trailer    uint32
}

// chunkTrailerBytes is the pure function driving C4's "derive the
// trailer byte count from type/list/level/unknown" rule. Split out of
// getChunkHeader so it can be unit tested against the exact byte
// counts the format encodes, independent of stream reads.
func chunkTrailerBytes(chunkType uint32, list uint32, level uint16, unknown byte) uint32 {
	var trailer uint32

	// Certain chunk types always carry an 8-byte trailer.
	switch {
	case list != 0,
		chunkType == 0x71, chunkType == 0x70, chunkType == 0x6b,
		chunkType == 0x6a, chunkType == 0x69, chunkType == 0x66,
		chunkType == 0x65, chunkType == 0x2c:
		trailer += 8
	}

	// A further 4-byte word separator under a handful of observed
	// conditions; the v11 format has no documented rule here beyond
	// what real documents were empirically observed to require.
	switch {
	case list != 0,
		level == 2 && unknown == 0x55,
		level == 2 && unknown == 0x54 && chunkType == 0xaa,
		level == 3 && unknown != 0x50 && unknown != 0x54,
		chunkType == 0x69, chunkType == 0x6a, chunkType == 0x6b,
		chunkType == 0x71, chunkType == 0xb6, chunkType == 0xb9,
		chunkType == 0xa9, chunkType == chunkPageProp:
		trailer += 4
	}

	// OLE data and Name ID chunks never have a trailer, regardless of
	// the rules above.
	if chunkType == chunkOLEData || chunkType == chunkNameID {
		trailer = 0
	}

	return trailer
}

// getChunkHeader reads one ChunkHeader at the stream's current
// position. Chunk records are preceded by a run of zero padding bytes
// of unspecified length; the reader consumes that padding before the
// real header.
func getChunkHeader(r *byteReader) (ChunkHeader, bool, error) {
	var b byte
	for {
		if r.atEnd() {
			return ChunkHeader{}, false, nil
		}
		v, err := r.readU8()
		if err != nil {
			return ChunkHeader{}, false, err
		}
		b = v
		if b != 0 {
			break
		}
	}
	if err := r.skip(-1); err != nil {
		return ChunkHeader{}, false, err
	}

	var h ChunkHeader
	var err error
	if h.Type, err = r.readU32(); err != nil {
		return h, false, err
	}
	if h.ID, err = r.readU32(); err != nil {
		return h, false, err
	}
	if h.List, err = r.readU32(); err != nil {
		return h, false, err
	}
	if h.DataLength, err = r.readU32(); err != nil {
		return h, false, err
	}
	if h.Level, err = r.readU16(); err != nil {
		return h, false, err
	}
	if h.Unknown, err = r.readU8(); err != nil {
		return h, false, err
	}
	h.Trailer = chunkTrailerBytes(h.Type, h.List, h.Level, h.Unknown)
	return h, true, nil
}
