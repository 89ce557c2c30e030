package libvisio

import (
	"bufio"
	"bytes"
	"compress/zlib"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"math"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"golang.org/x/image/tiff"
)

// Pooled zlib writers: amortize the internal hash table allocation
// across every image XObject and content stream a document emits.
var pdfZlibPool = sync.Pool{
	New: func() any {
		w, _ := zlib.NewWriterLevel(&bytes.Buffer{}, zlib.BestSpeed)
		return w
	},
}

func pdfCompress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(len(data) / 4)
	w := pdfZlibPool.Get().(*zlib.Writer)
	w.Reset(&buf)
	if _, err := w.Write(data); err != nil {
		pdfZlibPool.Put(w)
		return nil, err
	}
	if err := w.Close(); err != nil {
		pdfZlibPool.Put(w)
		return nil, err
	}
	pdfZlibPool.Put(w)
	return buf.Bytes(), nil
}

// pdfWriter wraps a buffered writer with offset tracking so object
// positions can be recorded for the xref table as they're written,
// targeting any io.Writer rather than just an *os.File.
type pdfWriter struct {
	w      *bufio.Writer
	offset uint64
}

func newPDFWriter(w io.Writer) *pdfWriter {
	return &pdfWriter{w: bufio.NewWriter(w)}
}

func (pw *pdfWriter) write(data []byte) {
	pw.w.Write(data)
	pw.offset += uint64(len(data))
}

func (pw *pdfWriter) writeStr(s string) {
	pw.w.WriteString(s)
	pw.offset += uint64(len(s))
}

func (pw *pdfWriter) writeHeader() {
	pw.write([]byte("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n"))
}

func (pw *pdfWriter) writeXrefTrailer(xrefOffsets []uint64, totalObjects int) {
	xrefStart := pw.offset
	pw.writeStr("xref\n")
	pw.writeStr(fmt.Sprintf("0 %d\n", totalObjects+1))
	pw.writeStr("0000000000 65535 f \n")
	for _, off := range xrefOffsets {
		fmt.Fprintf(pw.w, "%010d 00000 n \n", off)
		pw.offset += 20
	}
	pw.writeStr("trailer\n")
	pw.writeStr(fmt.Sprintf("<< /Size %d /Root 1 0 R >>\n", totalObjects+1))
	pw.writeStr("startxref\n")
	pw.writeStr(fmt.Sprintf("%d\n", xrefStart))
	pw.writeStr("%%EOF\n")
}

// pdfPage accumulates one page's content stream and any image XObjects
// it references, before object IDs are assigned.
type pdfPage struct {
	width, height float64
	content       bytes.Buffer
	images        []pdfImageXObject
	style         StyleProperties
}

type pdfImageXObject struct {
	name          string
	x, y          float64
	width, height float64
	pixels        []byte
	pxWidth       int
	pxHeight      int
}

// PDFPainter is a Painter that collects drawing calls into a
// hand-rolled PDF object graph: a Catalog, a Pages tree, and one
// Page/Contents/Image object set per page. Geometry is converted from
// SVG-style arcs to PDF content-stream Bezier curves since PDF has no
// native arc operator.
type PDFPainter struct {
	pages []*pdfPage
	cur   *pdfPage
}

func NewPDFPainter() *PDFPainter {
	return &PDFPainter{}
}

const ptsPerInch = 72.0

func (p *PDFPainter) StartPage(props PageProperties) {
	p.cur = &pdfPage{width: props.Width * ptsPerInch, height: props.Height * ptsPerInch}
	p.cur.style = StyleProperties{StrokeColor: "black", StrokeWidth: 1, Fill: "none"}
}

func (p *PDFPainter) EndPage() {
	if p.cur != nil {
		p.pages = append(p.pages, p.cur)
		p.cur = nil
	}
}

func (p *PDFPainter) SetStyle(style StyleProperties, gradient []GradientStop) {
	if p.cur == nil {
		return
	}
	p.cur.style = style
}

func hexToRGBComponents(hex string) (r, g, b float64) {
	var ri, gi, bi int
	if len(hex) == 7 && hex[0] == '#' {
		fmt.Sscanf(hex, "#%02x%02x%02x", &ri, &gi, &bi)
	}
	return float64(ri) / 255, float64(gi) / 255, float64(bi) / 255
}

func namedOrHexRGB(s string) (r, g, b float64) {
	if s == "black" || s == "" {
		return 0, 0, 0
	}
	return hexToRGBComponents(s)
}

// toPDFY flips an SVG-convention (top-down) Y coordinate, in points,
// into PDF's bottom-up page space.
func (pg *pdfPage) toPDFY(y float64) float64 {
	return pg.height - y
}

func (p *PDFPainter) DrawPath(path []PathElement) {
	if p.cur == nil || len(path) == 0 {
		return
	}
	pg := p.cur
	var cx, cy float64
	for _, el := range path {
		x := el.X * ptsPerInch
		y := pg.toPDFY(el.Y * ptsPerInch)
		switch el.Action {
		case ActionMoveTo:
			fmt.Fprintf(&pg.content, "%.2f %.2f m\n", x, y)
			cx, cy = x, y
		case ActionLineTo:
			fmt.Fprintf(&pg.content, "%.2f %.2f l\n", x, y)
			cx, cy = x, y
		case ActionArcTo:
			// cx,cy and x,y are already in PDF (bottom-up) space, so the
			// returned control points need no further flipping. Mirroring
			// the Y axis reverses the arc's direction and rotation, so the
			// SVG-space sweep flag and rotation are inverted here.
			for _, b := range arcToBeziers(cx, cy, el.Rx*ptsPerInch, el.Ry*ptsPerInch, -el.Rotate, el.LargeArc, !el.Sweep, x, y) {
				fmt.Fprintf(&pg.content, "%.2f %.2f %.2f %.2f %.2f %.2f c\n", b.x1, b.y1, b.x2, b.y2, b.x3, b.y3)
			}
			cx, cy = x, y
		case ActionClose:
			pg.content.WriteString("h\n")
		}
	}

	r, g, b := namedOrHexRGB(pg.style.StrokeColor)
	fmt.Fprintf(&pg.content, "%.4f %.4f %.4f RG\n%.2f w\n", r, g, b, pg.style.StrokeWidth*ptsPerInch)

	switch pg.style.Fill {
	case "solid":
		fr, fg, fb := namedOrHexRGB(pg.style.FillColor)
		fmt.Fprintf(&pg.content, "%.4f %.4f %.4f rg\nB\n", fr, fg, fb)
	default:
		pg.content.WriteString("S\n")
	}
}

func (p *PDFPainter) DrawEllipse(props EllipseProperties) {
	if p.cur == nil {
		return
	}
	pg := p.cur
	cx := props.Cx * ptsPerInch
	cy := pg.toPDFY(props.Cy * ptsPerInch)
	rx := props.Rx * ptsPerInch
	ry := props.Ry * ptsPerInch

	// Standard 4-curve Bezier circle/ellipse approximation, magic
	// constant 0.5523 per the usual kappa = 4/3*(sqrt(2)-1).
	const k = 0.5523
	fmt.Fprintf(&pg.content, "%.2f %.2f m\n", cx+rx, cy)
	fmt.Fprintf(&pg.content, "%.2f %.2f %.2f %.2f %.2f %.2f c\n", cx+rx, cy+ry*k, cx+rx*k, cy+ry, cx, cy+ry)
	fmt.Fprintf(&pg.content, "%.2f %.2f %.2f %.2f %.2f %.2f c\n", cx-rx*k, cy+ry, cx-rx, cy+ry*k, cx-rx, cy)
	fmt.Fprintf(&pg.content, "%.2f %.2f %.2f %.2f %.2f %.2f c\n", cx-rx, cy-ry*k, cx-rx*k, cy-ry, cx, cy-ry)
	fmt.Fprintf(&pg.content, "%.2f %.2f %.2f %.2f %.2f %.2f c\nh\n", cx+rx*k, cy-ry, cx+rx, cy-ry*k, cx+rx, cy)

	r, g, b := namedOrHexRGB(pg.style.StrokeColor)
	fmt.Fprintf(&pg.content, "%.4f %.4f %.4f RG\n%.2f w\n", r, g, b, pg.style.StrokeWidth*ptsPerInch)
	if pg.style.Fill == "solid" {
		fr, fg, fb := namedOrHexRGB(pg.style.FillColor)
		fmt.Fprintf(&pg.content, "%.4f %.4f %.4f rg\nB\n", fr, fg, fb)
	} else {
		pg.content.WriteString("S\n")
	}
}

// DrawGraphicObject decodes data into an RGB pixel buffer and queues
// it as an image XObject. Unsupported/undecodable MIME types are
// silently skipped, consistent with this reader's overall leniency
// policy.
func (p *PDFPainter) DrawGraphicObject(props GraphicObjectProperties, data []byte) {
	if p.cur == nil {
		return
	}
	img, err := decodeForeignImage(props.MimeType, data)
	if err != nil || img == nil {
		debugf("skipping undecodable graphic object", "mime", props.MimeType, "error", err)
		return
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		return
	}
	rgb := make([]byte, w*h*3)
	compositeImageToRGB(img, rgb, w, h)

	idx := len(p.cur.images)
	p.cur.images = append(p.cur.images, pdfImageXObject{
		name: fmt.Sprintf("Im%d", idx),
		x:    props.X * ptsPerInch, y: p.cur.toPDFY((props.Y + props.Height) * ptsPerInch),
		width: props.Width * ptsPerInch, height: props.Height * ptsPerInch,
		pixels: rgb, pxWidth: w, pxHeight: h,
	})
	fmt.Fprintf(&p.cur.content, "q %.2f 0 0 %.2f %.2f %.2f cm /%s Do Q\n",
		props.Width*ptsPerInch, props.Height*ptsPerInch,
		props.X*ptsPerInch, p.cur.toPDFY((props.Y+props.Height)*ptsPerInch), p.cur.images[idx].name)
}

func decodeForeignImage(mime string, data []byte) (image.Image, error) {
	r := bytes.NewReader(data)
	switch mime {
	case "image/png":
		return png.Decode(r)
	case "image/jpeg":
		return jpeg.Decode(r)
	case "image/gif":
		return gif.Decode(r)
	case "image/tiff":
		return tiff.Decode(r)
	case "image/bmp":
		return decodeUncompressedBMP(data)
	default:
		return nil, fmt.Errorf("unsupported foreign image MIME type %q", mime)
	}
}

// compositeImageToRGB flattens img onto a pre-zeroed (black) RGB
// buffer via straight alpha blending, generalized to any image.Image.
func compositeImageToRGB(img image.Image, rgb []byte, width, height int) {
	bounds := img.Bounds()
	maxY := min(bounds.Max.Y, bounds.Min.Y+height)
	maxX := min(bounds.Max.X, bounds.Min.X+width)
	for y := bounds.Min.Y; y < maxY; y++ {
		for x := bounds.Min.X; x < maxX; x++ {
			r, g, b, a := img.At(x, y).RGBA()
			if a == 0 {
				continue
			}
			dOff := ((y-bounds.Min.Y)*width + (x - bounds.Min.X)) * 3
			if a == 0xffff {
				rgb[dOff] = byte(r >> 8)
				rgb[dOff+1] = byte(g >> 8)
				rgb[dOff+2] = byte(b >> 8)
				continue
			}
			sa := a >> 8
			da := 255 - sa
			rgb[dOff] = byte((r>>8)*sa/255 + uint32(rgb[dOff])*da/255)
			rgb[dOff+1] = byte((g>>8)*sa/255 + uint32(rgb[dOff+1])*da/255)
			rgb[dOff+2] = byte((b>>8)*sa/255 + uint32(rgb[dOff+2])*da/255)
		}
	}
}

// Write serializes every page collected so far as a complete PDF
// document: object 1 is the Catalog, object 2 is the Pages tree, and
// every page after that contributes a Page object, a Contents stream,
// and zero or more Image XObjects, followed by a classic (non-cross-
// reference-stream) xref table and trailer.
func (p *PDFPainter) Write(w io.Writer) error {
	pw := newPDFWriter(w)
	pw.writeHeader()

	type deferredObj struct {
		id   int
		body func() []byte
	}

	nextID := 3
	var pageObjIDs []int
	var deferred []deferredObj

	for _, pg := range p.pages {
		pageID := nextID
		nextID++
		contentID := nextID
		nextID++

		imageIDs := make([]int, len(pg.images))
		for i := range pg.images {
			imageIDs[i] = nextID
			nextID++
		}

		var resources bytes.Buffer
		if len(pg.images) > 0 {
			resources.WriteString("/XObject << ")
			for i, im := range pg.images {
				fmt.Fprintf(&resources, "/%s %d 0 R ", im.name, imageIDs[i])
			}
			resources.WriteString(">>")
		}

		pageObjIDs = append(pageObjIDs, pageID)
		pg := pg
		resBytes := resources.Bytes()
		deferred = append(deferred, deferredObj{pageID, func() []byte {
			return []byte(fmt.Sprintf("%d 0 obj\n<< /Type /Page\n   /Parent 2 0 R\n   /MediaBox [0 0 %.2f %.2f]\n   /Contents %d 0 R\n   /Resources << %s >>\n>>\nendobj\n",
				pageID, pg.width, pg.height, contentID, string(resBytes)))
		}})
		deferred = append(deferred, deferredObj{contentID, func() []byte {
			content := pg.content.Bytes()
			return []byte(fmt.Sprintf("%d 0 obj\n<< /Length %d >>\nstream\n%sendstream\nendobj\n",
				contentID, len(content), string(content)))
		}})
		for i, im := range pg.images {
			im := im
			imageIDs := imageIDs
			i := i
			deferred = append(deferred, deferredObj{imageIDs[i], func() []byte {
				compressed, err := pdfCompress(im.pixels)
				if err != nil {
					compressed = im.pixels
				}
				var obj bytes.Buffer
				fmt.Fprintf(&obj, "%d 0 obj\n<< /Type /XObject\n   /Subtype /Image\n   /Width %d\n   /Height %d\n   /ColorSpace /DeviceRGB\n   /BitsPerComponent 8\n   /Filter /FlateDecode\n   /Length %d >>\nstream\n",
					imageIDs[i], im.pxWidth, im.pxHeight, len(compressed))
				obj.Write(compressed)
				obj.WriteString("\nendstream\nendobj\n")
				return obj.Bytes()
			}})
		}
	}

	totalObjects := nextID - 1
	xrefOffsets := make([]uint64, totalObjects)

	xrefOffsets[0] = pw.offset
	pw.write([]byte("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n"))

	xrefOffsets[1] = pw.offset
	var kids bytes.Buffer
	for _, id := range pageObjIDs {
		fmt.Fprintf(&kids, "%d 0 R ", id)
	}
	pw.writeStr(fmt.Sprintf("2 0 obj\n<< /Type /Pages /Kids [ %s] /Count %d >>\nendobj\n", kids.String(), len(pageObjIDs)))

	for _, d := range deferred {
		xrefOffsets[d.id-1] = pw.offset
		pw.write(d.body())
	}

	pw.writeXrefTrailer(xrefOffsets, totalObjects)
	return pw.w.Flush()
}

// ValidatePDF checks a written PDF file for structural conformance.
// Callers that write to disk (see cmd/vsd2svg) run this after Write to
// catch a malformed xref/trailer before shipping the file.
func ValidatePDF(path string) error {
	if err := api.ValidateFile(path, nil); err != nil {
		return fmt.Errorf("validating %s: %w", path, err)
	}
	return nil
}

type bezier struct{ x1, y1, x2, y2, x3, y3 float64 }

// arcToBeziers converts an SVG-style elliptical arc (endpoint
// parameterization, matching PathElement's fields directly) into one
// or more cubic Bezier segments, following the standard SVG 1.1
// appendix F endpoint-to-center conversion.
func arcToBeziers(x0, y0, rx, ry, rotationDeg float64, largeArc, sweep bool, x, y float64) []bezier {
	if rx == 0 || ry == 0 {
		return []bezier{{x0, y0, x, y, x, y}}
	}
	phi := rotationDeg * math.Pi / 180
	cosPhi, sinPhi := math.Cos(phi), math.Sin(phi)

	dx2 := (x0 - x) / 2
	dy2 := (y0 - y) / 2
	x1p := cosPhi*dx2 + sinPhi*dy2
	y1p := -sinPhi*dx2 + cosPhi*dy2

	rx, ry = math.Abs(rx), math.Abs(ry)
	lambda := (x1p*x1p)/(rx*rx) + (y1p*y1p)/(ry*ry)
	if lambda > 1 {
		s := math.Sqrt(lambda)
		rx *= s
		ry *= s
	}

	sign := 1.0
	if largeArc == sweep {
		sign = -1
	}
	num := rx*rx*ry*ry - rx*rx*y1p*y1p - ry*ry*x1p*x1p
	den := rx*rx*y1p*y1p + ry*ry*x1p*x1p
	co := 0.0
	if den != 0 && num > 0 {
		co = sign * math.Sqrt(num/den)
	}
	cxp := co * (rx * y1p / ry)
	cyp := co * -(ry * x1p / rx)

	cx := cosPhi*cxp - sinPhi*cyp + (x0+x)/2
	cy := sinPhi*cxp + cosPhi*cyp + (y0+y)/2

	angle := func(ux, uy, vx, vy float64) float64 {
		dot := ux*vx + uy*vy
		lenProd := math.Hypot(ux, uy) * math.Hypot(vx, vy)
		a := math.Acos(clamp(dot/lenProd, -1, 1))
		if ux*vy-uy*vx < 0 {
			a = -a
		}
		return a
	}

	theta1 := angle(1, 0, (x1p-cxp)/rx, (y1p-cyp)/ry)
	dTheta := angle((x1p-cxp)/rx, (y1p-cyp)/ry, (-x1p-cxp)/rx, (-y1p-cyp)/ry)
	if !sweep && dTheta > 0 {
		dTheta -= 2 * math.Pi
	}
	if sweep && dTheta < 0 {
		dTheta += 2 * math.Pi
	}

	segments := int(math.Ceil(math.Abs(dTheta) / (math.Pi / 2)))
	if segments < 1 {
		segments = 1
	}
	delta := dTheta / float64(segments)
	t := 4.0 / 3.0 * math.Tan(delta/4)

	out := make([]bezier, 0, segments)
	theta := theta1
	px, py := x0, y0
	for i := 0; i < segments; i++ {
		thetaNext := theta + delta
		c1x := px - t*rx*(math.Cos(phi)*math.Sin(theta)+math.Sin(phi)*math.Cos(theta))
		c1y := py + t*ry*(math.Cos(phi)*math.Cos(theta)-math.Sin(phi)*math.Sin(theta))

		ex := cx + rx*math.Cos(phi)*math.Cos(thetaNext) - ry*math.Sin(phi)*math.Sin(thetaNext)
		ey := cy + rx*math.Sin(phi)*math.Cos(thetaNext) + ry*math.Cos(phi)*math.Sin(thetaNext)

		c2x := ex + t*rx*(math.Cos(phi)*math.Sin(thetaNext)+math.Sin(phi)*math.Cos(thetaNext))
		c2y := ey - t*ry*(math.Cos(phi)*math.Cos(thetaNext)-math.Sin(phi)*math.Sin(thetaNext))

		out = append(out, bezier{c1x, c1y, c2x, c2y, ex, ey})
		px, py = ex, ey
		theta = thetaNext
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
