package libvisio

import "io"

// parseState is the mutable context threaded through one document's
// page/group/shape/foreign dispatch. A single pointer passed down the
// call chain keeps the palette, group transform table, and current
// path state reachable from every handler without a receiver type.
type parseState struct {
	painter Painter

	colours     []Colour
	groupXForms map[uint32]XForm

	currentShapeID uint32
	pageWidth      float64
	pageHeight     float64
	scale          float64
	isPageStarted  bool
}

func newParseState(painter Painter, scale float64) *parseState {
	return &parseState{
		painter:     painter,
		groupXForms: make(map[uint32]XForm),
		scale:       scale,
	}
}

// breakIfUnnested reports whether header belongs to an ancestor rather
// than the container currently being walked (level < 2), rewinding the
// stream back to the header's start so the caller's own dispatch loop
// re-reads it. 19 is exactly a ChunkHeader's wire size (4+4+4+4+2+1).
func breakIfUnnested(r *byteReader, h ChunkHeader) bool {
	if h.Level < 2 {
		r.skip(-19)
		return true
	}
	return false
}

// seekToChunkEnd advances the stream to exactly header.DataLength+
// header.Trailer bytes past bodyStart, regardless of how many of those
// bytes the specific-case handler above already consumed. Every chunk
// body handler below relies on this to stay resynchronized with the
// chunk stream.
func seekToChunkEnd(r *byteReader, h ChunkHeader, bodyStart int64) {
	want := bodyStart + int64(h.DataLength) + int64(h.Trailer)
	r.seek(want, io.SeekStart)
}

// handlePage walks one Page stream's top-level chunks, starting
// pages via StartPage/EndPage on the Page Properties chunk (0x92) and
// dispatching Group/Shape/Foreign chunks to their handlers.
func handlePage(r *byteReader, ps *parseState) {
	ps.groupXForms = make(map[uint32]XForm)

	for !r.atEnd() {
		h, ok, err := getChunkHeader(r)
		if !ok || err != nil {
			return
		}
		bodyStart := r.tell()

		switch h.Type {
		case chunkGroup, chunkShape, chunkForeign:
			seekToChunkEnd(r, h, bodyStart)
			ps.currentShapeID = h.ID
			switch h.Type {
			case chunkGroup:
				handleGroup(r, ps)
			case chunkShape:
				handleShape(r, ps)
			case chunkForeign:
				handleForeign(r, ps)
			}
			continue
		case chunkPageProp:
			handlePageProperties(r, ps, h, bodyStart)
		default:
			seekToChunkEnd(r, h, bodyStart)
		}
	}
}

// handlePageProperties reads chunk 0x92: a unit-to-display byte (value
// is always inches and carries no meaning here), page width, another
// spacer byte, page height, 19 bytes unused, and a display scale.
func handlePageProperties(r *byteReader, ps *parseState, h ChunkHeader, bodyStart int64) {
	if err := r.skipByte(); err != nil {
		seekToChunkEnd(r, h, bodyStart)
		return
	}
	width, err := r.readDouble()
	if err != nil {
		seekToChunkEnd(r, h, bodyStart)
		return
	}
	if err := r.skipByte(); err != nil {
		seekToChunkEnd(r, h, bodyStart)
		return
	}
	height, err := r.readDouble()
	if err != nil {
		seekToChunkEnd(r, h, bodyStart)
		return
	}

	ps.pageWidth = width
	ps.pageHeight = height

	if ps.isPageStarted {
		ps.painter.EndPage()
	}
	ps.painter.StartPage(PageProperties{Width: ps.scale * width, Height: ps.scale * height})
	ps.isPageStarted = true

	seekToChunkEnd(r, h, bodyStart)
}

// geomChunkState is shared by handleGroup and handleShape: both replay
// the same set of nested geometry/style chunks, differing only in how
// fill properties and the group's own ShapeID table are handled.
type geomChunkState struct {
	style    StyleProperties
	gradient []GradientStop
	xform    XForm
	flusher  *pathFlusher
	geom     geometryState
}

// dispatchGeomChunk applies one nested chunk inside a Group or Shape to
// shared style/geometry state. isGroup selects the group-flavoured fill
// properties parser and ShapeID bookkeeping; everything else is common
// between the two container kinds.
func dispatchGeomChunk(r *byteReader, ps *parseState, h ChunkHeader, st *geomChunkState, isGroup bool) {
	switch h.Type {
	case chunkXForm:
		xf, err := parseXForm(r, ps.pageHeight)
		if err == nil {
			st.xform = transformXForm(xf, ps.groupXForms, ps.currentShapeID, ps.pageHeight)
		}
	case chunkShapeID:
		if isGroup {
			id, err := r.readU32()
			if err == nil {
				ps.groupXForms[id] = st.xform
			}
		}
	case chunkLineProps:
		parseLineProps(r, ps.scale, &st.style)
	case chunkFillProps:
		if isGroup {
			parseGroupFillProps(r, ps.colours, &st.style)
		} else {
			if grad, err := parseShapeFillProps(r, ps.colours, &st.style); err == nil {
				st.gradient = grad
			}
		}
	case chunkGeomList:
		st.flusher.flush(ps.painter)
		ps.painter.SetStyle(st.style, st.gradient)
		subHeaderLength, err := r.readU32()
		if err != nil {
			return
		}
		childrenListLength, err := r.readU32()
		if err != nil {
			return
		}
		r.skip(int64(subHeaderLength))
		order := make([]uint32, 0, childrenListLength/4)
		for i := uint32(0); i < childrenListLength/4; i++ {
			id, err := r.readU32()
			if err != nil {
				break
			}
			order = append(order, id)
		}
		st.flusher.setOrder(order)
	case chunkMoveTo:
		if el, err := parseMoveTo(r, st.xform, ps.pageHeight, ps.scale, &st.geom); err == nil {
			st.flusher.add(h.ID, el)
		}
	case chunkLineTo:
		if el, err := parseLineTo(r, st.xform, ps.pageHeight, ps.scale, &st.geom); err == nil {
			st.flusher.add(h.ID, el)
		}
	case chunkArcTo:
		if el, err := parseArcTo(r, st.xform, ps.pageHeight, ps.scale, &st.geom); err == nil {
			st.flusher.add(h.ID, el)
		}
	case chunkEllipse:
		if el, err := parseEllipse(r, st.xform, ps.scale); err == nil {
			ps.painter.DrawEllipse(el)
		}
	case chunkEllipArcTo:
		if el, err := parseEllipticalArcTo(r, st.xform, ps.pageHeight, ps.scale, &st.geom); err == nil {
			st.flusher.add(h.ID, el)
		}
	}
}

// handleGroup walks a Group chunk's nested chunks. Groups track
// a per-child-shape XForm table (populated from ShapeID chunks) so
// member shapes can fold the group's placement into their own.
func handleGroup(r *byteReader, ps *parseState) {
	st := &geomChunkState{style: defaultStyle(ps.scale), flusher: newPathFlusher()}

	geomCount := -1
	done := false

	for !done && !r.atEnd() {
		h, ok, err := getChunkHeader(r)
		if !ok || err != nil {
			return
		}
		if breakIfUnnested(r, h) {
			break
		}
		bodyStart := r.tell()

		if h.Type == chunkGeomList {
			dispatchGeomChunk(r, ps, h, st, true)
			geomCount = int(h.List)
			seekToChunkEnd(r, h, bodyStart)
			continue
		}

		dispatchGeomChunk(r, ps, h, st, true)

		if geomCount > 0 {
			geomCount--
		}
		if geomCount == 0 {
			done = true
		}

		seekToChunkEnd(r, h, bodyStart)
	}
	st.flusher.flush(ps.painter)
}

// handleShape walks a Shape chunk's nested chunks. Unlike groups,
// a shape has no geomCount cutoff: it runs until a chunk outside its
// own nesting level is found.
func handleShape(r *byteReader, ps *parseState) {
	st := &geomChunkState{style: defaultStyle(ps.scale), flusher: newPathFlusher()}

	for !r.atEnd() {
		h, ok, err := getChunkHeader(r)
		if !ok || err != nil {
			return
		}
		if breakIfUnnested(r, h) {
			break
		}
		bodyStart := r.tell()

		dispatchGeomChunk(r, ps, h, st, false)

		seekToChunkEnd(r, h, bodyStart)
	}
	st.flusher.flush(ps.painter)
}

// handleForeign walks a Foreign chunk's nested chunks: its own
// XForm, a header chunk (0x98) recording the embedded object's type and
// format, and a data chunk (0x0c) carrying the raw bytes.
func handleForeign(r *byteReader, ps *parseState) {
	var xf XForm
	var hdr foreignHeader

	for !r.atEnd() {
		h, ok, err := getChunkHeader(r)
		if !ok || err != nil {
			return
		}
		if breakIfUnnested(r, h) {
			break
		}
		bodyStart := r.tell()

		switch h.Type {
		case chunkXForm:
			parsed, err := parseXForm(r, ps.pageHeight)
			if err == nil {
				xf = transformXForm(parsed, ps.groupXForms, ps.currentShapeID, ps.pageHeight)
			}
		case chunkForeignData:
			parsed, err := parseForeignHeader(r)
			if err == nil {
				hdr = parsed
			}
		case chunkForeignBlob:
			raw, rerr := r.read(int(h.DataLength))
			if rerr == nil {
				if data, mime, ok := decodeForeignBlob(hdr, raw); ok {
					props := foreignObjectProps(xf, ps.pageHeight, ps.scale, mime)
					ps.painter.DrawGraphicObject(props, data)
				}
			}
		}

		seekToChunkEnd(r, h, bodyStart)
	}
}
