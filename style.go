package libvisio

import "fmt"

// Colour is a single palette entry from the Colours stream (trailer
// pointer type 0x16); alpha is carried but never used by the SVG/PDF
// painters.
type Colour struct {
	R, G, B, A byte
}

func formatColour(c Colour) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// dashPatterns maps a line-pattern index (chunk 0x85, byte offset 14)
// to an SVG stroke-dasharray. Index 0 and 1 both mean solid; indices
// beyond the table fall back to solid too.
var dashPatterns = []string{
	0:  "solid",
	1:  "solid",
	2:  "6, 3",
	3:  "1, 3",
	4:  "6, 3, 1, 3",
	5:  "6, 3, 1, 3, 1, 3",
	6:  "6, 3, 6, 3, 1, 3",
	7:  "14, 2, 6, 2",
	8:  "14, 2, 6, 2, 6, 2",
	9:  "3, 1",
	10: "1, 1",
	11: "3, 1, 1, 1",
	12: "3, 1, 1, 1, 1, 1",
	13: "3, 1, 3, 1, 1, 1",
	14: "7, 1, 3, 1",
	15: "7, 1, 3, 1, 3, 1",
	16: "11, 5",
	17: "1, 5",
	18: "11, 5, 1, 5",
	19: "11, 5, 1, 5, 1, 5",
	20: "11, 5, 11, 5, 1, 5",
	21: "27, 5, 11, 5",
	22: "27, 5, 11, 5, 11, 5",
	23: "2, 1",
}

func dashArrayFor(linePattern byte) string {
	if int(linePattern) > 1 && int(linePattern) < len(dashPatterns) {
		return dashPatterns[linePattern]
	}
	return "solid"
}

// gradientAngles maps a gradient fillPattern index (25-34) to the
// gradient rotation angle, in degrees, that VSD11's fixed fill-pattern
// table assigns to each index.
var gradientAngles = map[byte]float64{
	25: -90,
	26: -90,
	27: 90,
	28: 0,
	29: 0,
	30: 180,
	31: -45,
	32: 45,
	33: 225,
	34: 135,
}

// patternHasExtraStop reports whether fillPattern prepends a mirrored
// stop before the usual start/end pair (patterns 26 and 29 reverse
// direction partway through the gradient).
func patternHasExtraStop(fillPattern byte) bool {
	return fillPattern == 26 || fillPattern == 29
}

// defaultStyle is the style every group/shape chunk starts from before
// any 0x85/0x86 chunk is seen, scaled by the document's unit scale.
func defaultStyle(scale float64) StyleProperties {
	return StyleProperties{
		StrokeWidth:  scale * 0.0138889,
		StrokeColor:  "black",
		StrokeDashes: "solid",
		Fill:         "none",
	}
}

// parseLineProps reads chunk 0x85's body (a byte-prefixed width
// double, a byte-prefixed RGBA colour, then a dash-pattern index) and
// folds it into style.
func parseLineProps(r *byteReader, scale float64, style *StyleProperties) error {
	if err := r.skipByte(); err != nil {
		return err
	}
	width, err := r.readDouble()
	if err != nil {
		return err
	}
	style.StrokeWidth = scale * width
	if err := r.skipByte(); err != nil {
		return err
	}
	var c Colour
	if c.R, err = r.readU8(); err != nil {
		return err
	}
	if c.G, err = r.readU8(); err != nil {
		return err
	}
	if c.B, err = r.readU8(); err != nil {
		return err
	}
	if c.A, err = r.readU8(); err != nil {
		return err
	}
	style.StrokeColor = formatColour(c)
	pattern, err := r.readU8()
	if err != nil {
		return err
	}
	style.StrokeDashes = dashArrayFor(pattern)
	return nil
}

// parseGroupFillProps reads chunk 0x86 the way groupChunk does: a
// single foreground colour index and, for fillPattern 1, a solid fill.
// Groups never carry gradients.
func parseGroupFillProps(r *byteReader, colours []Colour, style *StyleProperties) error {
	fg, err := r.readU8()
	if err != nil {
		return err
	}
	if err := r.skip(9); err != nil {
		return err
	}
	fillPattern, err := r.readU8()
	if err != nil {
		return err
	}
	if fillPattern == 1 {
		style.Fill = "solid"
		if int(fg) < len(colours) {
			style.FillColor = formatColour(colours[fg])
		}
	}
	return nil
}

// parseShapeFillProps reads chunk 0x86 the way shapeChunk does: a
// foreground and background colour index, then a fill pattern that may
// select a plain solid fill or one of ten gradient directions.
func parseShapeFillProps(r *byteReader, colours []Colour, style *StyleProperties) ([]GradientStop, error) {
	fg, err := r.readU8()
	if err != nil {
		return nil, err
	}
	if err := r.skip(4); err != nil {
		return nil, err
	}
	bg, err := r.readU8()
	if err != nil {
		return nil, err
	}
	if err := r.skip(4); err != nil {
		return nil, err
	}
	fillPattern, err := r.readU8()
	if err != nil {
		return nil, err
	}

	var gradient []GradientStop
	switch {
	case fillPattern == 1:
		style.Fill = "solid"
		if int(fg) < len(colours) {
			style.FillColor = formatColour(colours[fg])
		}
	case fillPattern >= 25 && fillPattern <= 34:
		style.Fill = "gradient"
		style.GradientAngle = gradientAngles[fillPattern]

		var fgColour, bgColour string
		if int(fg) < len(colours) {
			fgColour = formatColour(colours[fg])
		}
		if int(bg) < len(colours) {
			bgColour = formatColour(colours[bg])
		}
		start := GradientStop{Color: fgColour, Offset: 0, Opacity: 1}
		end := GradientStop{Color: bgColour, Offset: 1, Opacity: 1}

		if patternHasExtraStop(fillPattern) {
			gradient = append(gradient, GradientStop{Color: bgColour, Offset: 0, Opacity: 1})
			start.Offset = 0.5
		}
		gradient = append(gradient, start, end)
	}
	return gradient, nil
}
