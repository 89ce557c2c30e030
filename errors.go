package libvisio

import "errors"

// Kind classifies a parse-time error. Parse itself is lenient: every
// Kind below is recoverable at the substream or chunk level and is
// only ever surfaced to a caller via the debug channel (see log.go),
// never as a hard Parse failure.
type Kind int

const (
	// MalformedHeader: missing/short magic or trailer directory.
	MalformedHeader Kind = iota
	// TruncatedSubstream: a read past the declared length of a
	// decompressed substream.
	TruncatedSubstream
	// UnknownStreamType: a trailer pointer type with no dispatch entry.
	UnknownStreamType
	// UnknownChunkType: a chunk type not recognized by the current
	// handler; skipped using its declared dataLength+trailer.
	UnknownChunkType
	// DecompressionFailure: fatal for the substream it applies to; other
	// substreams continue.
	DecompressionFailure
	// ShortChunkBody: a handler would have to seek past dataLength; the
	// remainder is discarded.
	ShortChunkBody
)

func (k Kind) String() string {
	switch k {
	case MalformedHeader:
		return "malformed header"
	case TruncatedSubstream:
		return "truncated substream"
	case UnknownStreamType:
		return "unknown stream type"
	case UnknownChunkType:
		return "unknown chunk type"
	case DecompressionFailure:
		return "decompression failure"
	case ShortChunkBody:
		return "short chunk body"
	default:
		return "unknown"
	}
}

// ParseError wraps a Kind with the context in which it was detected.
// errors.As recovers it (and so its Kind) from a wrapped error, and
// Unwrap exposes the underlying cause to errors.Is.
type ParseError struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return e.Kind.String() + ": " + e.Msg + ": " + e.Err.Error()
	}
	return e.Kind.String() + ": " + e.Msg
}

func (e *ParseError) Unwrap() error { return e.Err }

func newParseError(kind Kind, msg string, err error) *ParseError {
	return &ParseError{Kind: kind, Msg: msg, Err: err}
}

// errTruncated is returned internally by byteReader on short reads. It
// is never returned from Parse; each caller decides locally whether a
// short read ends the current chunk, table or stream.
var errTruncated = errors.New("read past end of substream")
