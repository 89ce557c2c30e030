package libvisio

import "io"

// trailerPointerFieldOffset is where the VSD11 stream header records
// the trailer stream's own offset/length/format.
const trailerPointerFieldOffset = 0x24

// Parser walks a VSD11 substream trailer table and replays its drawing
// operations into a Painter. The zero value is ready to use;
// Scale defaults to 1.0 drawing unit per inch if left unset via New.
type Parser struct {
	// Decompressor handles format-bit-1 compressed substreams. Defaults
	// to DefaultDecompressor when nil.
	Decompressor Decompressor
	// Scale converts the document's native drawing units to the units
	// emitted to the Painter (inches).
	Scale float64
}

// New returns a Parser configured with the default decompressor and a
// 1:1 scale.
func New() *Parser {
	return &Parser{Decompressor: DefaultDecompressor, Scale: 1.0}
}

func (p *Parser) dec() Decompressor {
	if p.Decompressor == nil {
		return DefaultDecompressor
	}
	return p.Decompressor
}

func (p *Parser) scale() float64 {
	if p.Scale == 0 {
		return 1.0
	}
	return p.Scale
}

// IsSupported does a cheap structural probe of the container's trailer
// pointer without materializing any substream: does the fixed header
// offset hold a readable, non-zero-length stream pointer. The pointer's
// offset is not checked against the input's size. It never returns an
// error; an unsupported or malformed input just yields false.
func (p *Parser) IsSupported(in Input) bool {
	if _, err := in.Seek(trailerPointerFieldOffset, io.SeekStart); err != nil {
		return false
	}
	r := newByteReader(in)
	if err := r.skip(8); err != nil {
		return false
	}
	offset, err := r.readU32()
	if err != nil {
		return false
	}
	length, err := r.readU32()
	if err != nil {
		return false
	}
	if _, err := r.readU16(); err != nil {
		return false
	}
	return length > 0 && int64(offset) >= 0
}

// Parse walks the container's trailer table, decodes every Page stream
// it finds (directly or via a Pages collection), and replays their
// drawing operations into painter. The only fatal condition is failing
// to open the trailer stream itself; every other malformed or
// unrecognized chunk is skipped and logged via the debug channel (see
// log.go). The return value is false only when the trailer itself
// could not be opened.
func (p *Parser) Parse(in Input, painter Painter) bool {
	if _, err := in.Seek(trailerPointerFieldOffset, io.SeekStart); err != nil {
		warnf("seeking to trailer pointer field", "error", err)
		return false
	}
	header := newByteReader(in)
	if err := header.skip(8); err != nil {
		warnf("reading trailer header", "error", err)
		return false
	}
	offset, err := header.readU32()
	if err != nil {
		warnf("reading trailer offset", "error", err)
		return false
	}
	length, err := header.readU32()
	if err != nil {
		warnf("reading trailer length", "error", err)
		return false
	}
	format, err := header.readU16()
	if err != nil {
		warnf("reading trailer format", "error", err)
		return false
	}

	if _, err := in.Seek(int64(offset), io.SeekStart); err != nil {
		warnf("seeking to trailer stream", "error", err)
		return false
	}
	trailerSub, err := newSubstream(in, length, format&2 == 2, p.dec())
	if err != nil {
		warnf("opening trailer stream", "error", err)
		return false
	}

	r := newByteReader(trailerSub)
	const shift = 4
	if _, err := r.seek(shift, io.SeekStart); err != nil {
		warnf("seeking trailer indirection field", "error", err)
		return false
	}
	indirOffset, err := r.readU32()
	if err != nil {
		warnf("reading trailer indirection offset", "error", err)
		return false
	}
	if _, err := r.seek(int64(indirOffset)+shift, io.SeekStart); err != nil {
		warnf("seeking trailer pointer table", "error", err)
		return false
	}

	ptrs, err := readPointerTable(r)
	if err != nil {
		debugf("trailer pointer table truncated", "error", err)
	}

	ps := newParseState(painter, p.scale())

	for _, ptr := range ptrs {
		switch ptr.Type {
		case streamTypeColours:
			sub, err := openPointerStream(in, ptr, p.dec())
			if err != nil {
				debugf("opening colours stream", "error", err)
				continue
			}
			colours, err := parseColours(sub)
			if err != nil {
				debugf("parsing colours", "error", err)
			}
			ps.colours = colours
		case streamTypePages:
			sub, err := openPointerStream(in, ptr, p.dec())
			if err != nil {
				debugf("opening pages stream", "error", err)
				continue
			}
			parsePages(in, sub, p.dec(), ps)
		case streamTypePage:
			sub, err := openPointerStream(in, ptr, p.dec())
			if err != nil {
				debugf("opening page stream", "error", err)
				continue
			}
			handlePage(newByteReader(sub), ps)
		default:
			if name, ok := namedStreamTypes[ptr.Type]; ok {
				debugf("skipping recognized but unimplemented stream type", "type", ptr.Type, "name", name)
			} else {
				err := newParseError(UnknownStreamType, "unhandled trailer stream type", nil)
				debugf(err.Error(), "type", ptr.Type)
			}
		}
	}

	if ps.isPageStarted {
		painter.EndPage()
	}
	return true
}

// parsePages walks a Pages collection stream's pointer table, opening
// and handling each Page stream it names. Every pointer in this table
// is resolved against the root container (in), not the Pages substream
// itself: the offsets it records are absolute.
func parsePages(in Input, sub *substream, dec Decompressor, ps *parseState) {
	r := newByteReader(sub)
	offset, err := r.readU32()
	if err != nil {
		debugf("reading pages table offset", "error", err)
		return
	}
	if _, err := r.seek(int64(offset), io.SeekStart); err != nil {
		debugf("seeking pages table", "error", err)
		return
	}
	ptrs, err := readPointerTable(r)
	if err != nil {
		debugf("pages pointer table truncated", "error", err)
	}

	for _, ptr := range ptrs {
		if ptr.Type != streamTypePage {
			continue
		}
		pageSub, err := openPointerStream(in, ptr, dec)
		if err != nil {
			debugf("opening page stream", "error", err)
			continue
		}
		handlePage(newByteReader(pageSub), ps)
	}
}
