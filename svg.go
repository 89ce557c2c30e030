package libvisio

import (
	"encoding/base64"
	"fmt"
	"image"
	"strings"
)

// SVGPainter is the default Painter (C_SVG): it renders each page as a
// standalone SVG document, one path element per flushed GeomList, one
// ellipse element per standalone Ellipse chunk, and one image element
// per decoded foreign object.
type SVGPainter struct {
	pages []string

	body          strings.Builder
	width, height float64
	style         StyleProperties
	gradient      []GradientStop
	gradientSeq   int

	// Vectorize, when set, re-traces decodable raster foreign objects
	// into an outlined <path> instead of embedding them as a base64
	// <image>. Undecodable or unrecognized MIME types still fall back
	// to the embedded raster.
	Vectorize bool
}

// NewSVGPainter returns an empty SVGPainter ready to receive Parser
// callbacks.
func NewSVGPainter() *SVGPainter {
	return &SVGPainter{}
}

// Pages returns one complete <svg>...</svg> document per page started,
// in the order StartPage was called.
func (p *SVGPainter) Pages() []string {
	return p.pages
}

func (p *SVGPainter) StartPage(props PageProperties) {
	p.body.Reset()
	p.width, p.height = props.Width, props.Height
	p.style = StyleProperties{}
	p.gradient = nil
}

func (p *SVGPainter) EndPage() {
	var doc strings.Builder
	fmt.Fprintf(&doc, "<svg xmlns=\"http://www.w3.org/2000/svg\" width=\"%gin\" height=\"%gin\" viewBox=\"0 0 %g %g\">\n",
		p.width, p.height, p.width, p.height)
	doc.WriteString(p.body.String())
	doc.WriteString("</svg>\n")
	p.pages = append(p.pages, doc.String())
}

func (p *SVGPainter) SetStyle(style StyleProperties, gradient []GradientStop) {
	p.style = style
	p.gradient = gradient
}

func (p *SVGPainter) DrawPath(path []PathElement) {
	var d strings.Builder
	for _, el := range path {
		switch el.Action {
		case ActionMoveTo:
			fmt.Fprintf(&d, "M%g,%g ", el.X, el.Y)
		case ActionLineTo:
			fmt.Fprintf(&d, "L%g,%g ", el.X, el.Y)
		case ActionArcTo:
			fmt.Fprintf(&d, "A%g,%g %g %d,%d %g,%g ",
				el.Rx, el.Ry, el.Rotate, boolToArcFlag(el.LargeArc), boolToArcFlag(el.Sweep), el.X, el.Y)
		case ActionClose:
			d.WriteString("Z ")
		}
	}

	fillAttr := p.fillAttr()
	fmt.Fprintf(&p.body, "<path d=\"%s\" fill=\"%s\" stroke=\"%s\" stroke-width=\"%g\"",
		strings.TrimSpace(d.String()), fillAttr, p.style.StrokeColor, p.style.StrokeWidth)
	if p.style.StrokeDashes != "" && p.style.StrokeDashes != "solid" {
		fmt.Fprintf(&p.body, " stroke-dasharray=\"%s\"", p.style.StrokeDashes)
	}
	p.body.WriteString("/>\n")
}

func (p *SVGPainter) fillAttr() string {
	switch p.style.Fill {
	case "solid":
		return p.style.FillColor
	case "gradient":
		return fmt.Sprintf("url(#%s)", p.writeGradientDef())
	default:
		return "none"
	}
}

func (p *SVGPainter) writeGradientDef() string {
	p.gradientSeq++
	id := fmt.Sprintf("grad%d", p.gradientSeq)
	fmt.Fprintf(&p.body, "<linearGradient id=\"%s\" gradientTransform=\"rotate(%g)\">\n", id, p.style.GradientAngle)
	for _, stop := range p.gradient {
		fmt.Fprintf(&p.body, "<stop offset=\"%g\" stop-color=\"%s\" stop-opacity=\"%g\"/>\n",
			stop.Offset, stop.Color, stop.Opacity)
	}
	p.body.WriteString("</linearGradient>\n")
	return id
}

func (p *SVGPainter) DrawEllipse(props EllipseProperties) {
	fmt.Fprintf(&p.body, "<ellipse cx=\"%g\" cy=\"%g\" rx=\"%g\" ry=\"%g\" fill=\"%s\" stroke=\"%s\" stroke-width=\"%g\"",
		props.Cx, props.Cy, props.Rx, props.Ry, p.fillAttr(), p.style.StrokeColor, p.style.StrokeWidth)
	if props.Rotate != 0 {
		fmt.Fprintf(&p.body, " transform=\"rotate(%g %g %g)\"", props.Rotate, props.Cx, props.Cy)
	}
	p.body.WriteString("/>\n")
}

func (p *SVGPainter) DrawGraphicObject(props GraphicObjectProperties, data []byte) {
	if p.Vectorize {
		if img, err := decodeForeignImage(props.MimeType, data); err == nil {
			if traced, err := TraceForeignObject(img, 1); err == nil && traced != "" {
				p.writeTracedGraphicObject(props, img, traced)
				return
			}
		}
	}

	encoded := base64.StdEncoding.EncodeToString(data)
	fmt.Fprintf(&p.body, "<image x=\"%g\" y=\"%g\" width=\"%g\" height=\"%g\" href=\"data:%s;base64,%s\"/>\n",
		props.X, props.Y, props.Width, props.Height, props.MimeType, encoded)
}

// writeTracedGraphicObject emits a traced path scaled and translated to
// fill the same box the embedded-raster path would have occupied,
// since gotrace's output is in the source raster's pixel space.
func (p *SVGPainter) writeTracedGraphicObject(props GraphicObjectProperties, img image.Image, traced string) {
	bounds := img.Bounds()
	w, h := float64(bounds.Dx()), float64(bounds.Dy())
	if w == 0 || h == 0 {
		return
	}
	sx, sy := props.Width/w, props.Height/h
	fmt.Fprintf(&p.body, "<g transform=\"translate(%g,%g) scale(%g,%g)\" fill=\"black\" stroke=\"none\">\n",
		props.X, props.Y, sx, sy)
	fmt.Fprintf(&p.body, "<path d=\"%s\"/>\n", strings.TrimSpace(traced))
	p.body.WriteString("</g>\n")
}

func boolToArcFlag(b bool) int {
	if b {
		return 1
	}
	return 0
}

// GenerateSVG parses in with p and returns the first page rendered as
// an SVG document. Callers that need every page should construct a
// SVGPainter directly and call Pages after Parse.
func GenerateSVG(p *Parser, in Input) (string, error) {
	painter := NewSVGPainter()
	if !p.Parse(in, painter) {
		return "", newParseError(MalformedHeader, "parsing VSD11 trailer", nil)
	}
	pages := painter.Pages()
	if len(pages) == 0 {
		return "", nil
	}
	return pages[0], nil
}
