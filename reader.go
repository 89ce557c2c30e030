package libvisio

import (
	"encoding/binary"
	"io"
	"math"
)

// Input is the random-access byte stream the reader walks. The caller is
// expected to have already opened the underlying OLE/compound-document
// container down to the raw VSD11 trailer stream; libvisio never parses
// a compound-document directory itself.
type Input interface {
	io.ReadSeeker
	// AtEnd reports whether the stream has been read to completion.
	AtEnd() bool
}

// byteReader wraps an Input with the little-endian primitive reads the
// rest of this package needs. All seeks are whence-relative the way
// Input.Seek is.
type byteReader struct {
	in Input
}

func newByteReader(in Input) *byteReader {
	return &byteReader{in: in}
}

func (r *byteReader) tell() int64 {
	off, _ := r.in.Seek(0, io.SeekCurrent)
	return off
}

func (r *byteReader) seek(offset int64, whence int) (int64, error) {
	return r.in.Seek(offset, whence)
}

func (r *byteReader) atEnd() bool {
	return r.in.AtEnd()
}

func (r *byteReader) read(n int) ([]byte, error) {
	buf := make([]byte, n)
	read, err := io.ReadFull(r.in, buf)
	if read < n {
		return buf[:read], errTruncated
	}
	return buf, err
}

func (r *byteReader) readU8() (byte, error) {
	var buf [1]byte
	if _, err := io.ReadFull(r.in, buf[:]); err != nil {
		return 0, errTruncated
	}
	return buf[0], nil
}

func (r *byteReader) readU16() (uint16, error) {
	var buf [2]byte
	if _, err := io.ReadFull(r.in, buf[:]); err != nil {
		return 0, errTruncated
	}
	return binary.LittleEndian.Uint16(buf[:]), nil
}

func (r *byteReader) readU32() (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r.in, buf[:]); err != nil {
		return 0, errTruncated
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

func (r *byteReader) readDouble() (float64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r.in, buf[:]); err != nil {
		return 0, errTruncated
	}
	bits := binary.LittleEndian.Uint64(buf[:])
	return math.Float64frombits(bits), nil
}

// skipByte advances the cursor by one byte, the "skip a separator before
// each XForm/geometry field" idiom used throughout C5/C6.
func (r *byteReader) skipByte() error {
	_, err := r.in.Seek(1, io.SeekCurrent)
	return err
}

func (r *byteReader) skip(n int64) error {
	_, err := r.in.Seek(n, io.SeekCurrent)
	return err
}
