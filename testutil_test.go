package libvisio

import (
	"bytes"
	"encoding/binary"
	"math"
)

// Little-endian primitive writers shared by the test files, mirroring
// the reads in reader.go so test fixtures can be built byte-for-byte.

func writeU16(buf *bytes.Buffer, v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	buf.Write(b[:])
}

func writeU32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func writeDouble(buf *bytes.Buffer, v float64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], math.Float64bits(v))
	buf.Write(b[:])
}

// writeField writes the one-byte tag + double pair used throughout
// XForm/geometry chunk bodies.
func writeField(buf *bytes.Buffer, v float64) {
	buf.WriteByte(0)
	writeDouble(buf, v)
}
