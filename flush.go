package libvisio

import "sort"

// pathFlusher accumulates one shape's geometry chunks keyed by their
// chunk ID, then replays them into a single path. When a GeomList
// (chunk 0x6c) supplied an explicit child order, stitching is
// attempted and the path closed if the last point lands back on the
// first; with no GeomList, elements are replayed in ascending chunk-ID
// order with no stitching.
type pathFlusher struct {
	elements map[uint32]PathElement
	complex  map[uint32][]PathElement
	order    []uint32
}

func newPathFlusher() *pathFlusher {
	return &pathFlusher{
		elements: make(map[uint32]PathElement),
		complex:  make(map[uint32][]PathElement),
	}
}

func (f *pathFlusher) add(id uint32, el PathElement) {
	f.elements[id] = el
}

func (f *pathFlusher) addComplex(id uint32, els []PathElement) {
	f.complex[id] = els
}

func (f *pathFlusher) setOrder(order []uint32) {
	f.order = order
}

func (f *pathFlusher) sortedIDs() []uint32 {
	ids := make([]uint32, 0, len(f.elements)+len(f.complex))
	for id := range f.elements {
		ids = append(ids, id)
	}
	for id := range f.complex {
		if _, dup := f.elements[id]; !dup {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// flush replays the accumulated geometry, hands it to painter.DrawPath
// if non-empty, and clears all accumulated state for the next shape.
func (f *pathFlusher) flush(painter Painter) {
	var path []PathElement

	if len(f.order) > 0 {
		var startX, startY, x, y float64
		firstPoint := true
		broken := false

		for _, id := range f.order {
			if el, ok := f.elements[id]; ok {
				x, y = el.X, el.Y
				if firstPoint {
					startX, startY = x, y
					firstPoint = false
				} else if !broken && el.Action == ActionMoveTo {
					broken = true
				}
				path = append(path, el)
				continue
			}
			if els, ok := f.complex[id]; ok {
				for _, el := range els {
					path = append(path, el)
					x, y = el.X, el.Y
				}
			}
		}

		if !broken && !(startX == x && startY == y) {
			broken = true
		}
		if !broken && len(path) > 0 {
			path = append(path, PathElement{Action: ActionClose})
		}
	} else {
		for _, id := range f.sortedIDs() {
			if el, ok := f.elements[id]; ok {
				path = append(path, el)
				continue
			}
			path = append(path, f.complex[id]...)
		}
	}

	if len(path) > 0 {
		painter.DrawPath(path)
	}

	f.elements = make(map[uint32]PathElement)
	f.complex = make(map[uint32][]PathElement)
	f.order = nil
}
