package libvisio

import (
	"bytes"
	"io"

	"github.com/hhrutter/lzw"
)

// Decompressor turns a compressed substream's raw bytes into its
// materialized form. It is pluggable because this package does not
// implement VSD11's own compression scheme; hhrutter/lzw (MSB-first
// LZW) is the default implementation.
type Decompressor interface {
	Decompress(r io.Reader) ([]byte, error)
}

// lzwDecompressor decodes with the MSB-first, 8-bit-literal-width
// convention hhrutter/lzw shares with the stdlib compress/lzw it forks.
type lzwDecompressor struct{}

func (lzwDecompressor) Decompress(r io.Reader) ([]byte, error) {
	rc := lzw.NewReader(r, lzw.MSB, 8)
	defer rc.Close()
	return io.ReadAll(rc)
}

// DefaultDecompressor is used whenever a Parser is not given one
// explicitly.
var DefaultDecompressor Decompressor = lzwDecompressor{}

// substream is a length-bounded, optionally-decompressed,
// random-access view over a region of the container. If compressed, the
// whole region is materialized up front; every subsequent seek/read
// operates on that in-memory buffer.
type substream struct {
	buf []byte
	pos int64
}

// newSubstream reads length bytes at the Input's current position (the
// caller has already seeked to the substream's start) and, if
// compressed, decompresses it via dec. A short underlying read
// truncates to what was actually available rather than erroring,
// consistent with this reader's overall leniency policy.
func newSubstream(in Input, length uint32, compressed bool, dec Decompressor) (*substream, error) {
	raw := make([]byte, length)
	n, err := io.ReadFull(in, raw)
	raw = raw[:n]
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, newParseError(TruncatedSubstream, "reading raw substream", err)
	}

	if !compressed {
		return &substream{buf: raw}, nil
	}

	if dec == nil {
		dec = DefaultDecompressor
	}
	decoded, derr := dec.Decompress(bytes.NewReader(raw))
	if derr != nil {
		warnf("substream decompression failed", "error", derr)
		return nil, newParseError(DecompressionFailure, "decompressing substream", derr)
	}
	if uint32(len(decoded)) < length {
		debugf("decompressed substream shorter than declared length", "declared", length, "got", len(decoded))
	}
	return &substream{buf: decoded}, nil
}

func (s *substream) Read(p []byte) (int, error) {
	if s.pos >= int64(len(s.buf)) {
		return 0, io.EOF
	}
	n := copy(p, s.buf[s.pos:])
	s.pos += int64(n)
	return n, nil
}

func (s *substream) Seek(offset int64, whence int) (int64, error) {
	var base int64
	switch whence {
	case io.SeekStart:
		base = 0
	case io.SeekCurrent:
		base = s.pos
	case io.SeekEnd:
		base = int64(len(s.buf))
	}
	s.pos = base + offset
	if s.pos < 0 {
		s.pos = 0
	}
	return s.pos, nil
}

func (s *substream) AtEnd() bool {
	return s.pos >= int64(len(s.buf))
}

func (s *substream) Len() int64 {
	return int64(len(s.buf))
}
