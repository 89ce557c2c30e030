package libvisio

import "io"

// readerInput adapts any io.ReadSeeker with a known size into an
// Input, the minimal concrete implementation most callers need: a
// whole VSD11 container opened from disk or held in memory.
type readerInput struct {
	io.ReadSeeker
	size int64
}

// NewReaderInput wraps rs as an Input. size is the total stream length,
// used only to answer AtEnd.
func NewReaderInput(rs io.ReadSeeker, size int64) Input {
	return &readerInput{ReadSeeker: rs, size: size}
}

func (r *readerInput) AtEnd() bool {
	pos, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return true
	}
	return pos >= r.size
}
