package libvisio

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/dennwc/gotrace"
)

// TraceForeignObject is a domain-stack addition: it re-vectorizes a
// decoded raster foreign object (see foreign.go/pdfpainter.go's
// decodeForeignImage) into an SVG path, for callers that would rather
// ship scalable outlines than an embedded raster. Grounded on the
// teacher's gotrace.NewBitmapFromImage/gotrace.Trace usage in
// vector.go and mark.go; path emission follows appendPDFSubpathTree's
// recursive child-walk shape, adapted to SVG "d" syntax instead of PDF
// content-stream operators.
func TraceForeignObject(img image.Image, scale float64) (string, error) {
	params := gotrace.Defaults
	params.TurdSize = 2

	bm := gotrace.NewBitmapFromImage(img, func(x, y int, c color.Color) bool {
		v, _, _, _ := c.RGBA()
		return v < 0x8000
	})
	paths, err := gotrace.Trace(bm, &params)
	if err != nil {
		return "", fmt.Errorf("tracing foreign object: %w", err)
	}

	var d strings.Builder
	for _, p := range paths {
		appendTracedSubpathTree(&d, p, scale)
	}
	return d.String(), nil
}

func appendTracedSubpathTree(d *strings.Builder, p gotrace.Path, scale float64) {
	appendTracedSubpath(d, p, scale)
	for _, child := range p.Childs {
		appendTracedSubpathTree(d, child, scale)
	}
}

func appendTracedSubpath(d *strings.Builder, p gotrace.Path, scale float64) {
	c := p.Curve
	if len(c) == 0 {
		return
	}

	last := c[len(c)-1]
	fmt.Fprintf(d, "M%g,%g ", scale*last.Pnt[2].X, scale*last.Pnt[2].Y)

	for _, seg := range c {
		switch seg.Type {
		case gotrace.TypeBezier:
			fmt.Fprintf(d, "C%g,%g %g,%g %g,%g ",
				scale*seg.Pnt[0].X, scale*seg.Pnt[0].Y,
				scale*seg.Pnt[1].X, scale*seg.Pnt[1].Y,
				scale*seg.Pnt[2].X, scale*seg.Pnt[2].Y)
		case gotrace.TypeCorner:
			fmt.Fprintf(d, "L%g,%g L%g,%g ",
				scale*seg.Pnt[1].X, scale*seg.Pnt[1].Y,
				scale*seg.Pnt[2].X, scale*seg.Pnt[2].Y)
		}
	}
	d.WriteString("Z ")
}
