package libvisio

// Painter is the abstract drawing sink every parsed page is replayed
// into. libvisio ships two implementations, svg.go and pdfpainter.go,
// but callers may supply their own.
type Painter interface {
	StartPage(props PageProperties)
	EndPage()
	SetStyle(style StyleProperties, gradient []GradientStop)
	DrawPath(path []PathElement)
	DrawEllipse(props EllipseProperties)
	DrawGraphicObject(props GraphicObjectProperties, data []byte)
}

// PageProperties carries the page's drawable area in already-scaled
// drawing units (inches, per Parser.Scale).
type PageProperties struct {
	Width  float64
	Height float64
}

// StyleProperties accumulates the stroke/fill state a shape's Line
// Properties and Fill Properties chunks build up before its GeomList
// is flushed.
type StyleProperties struct {
	StrokeWidth   float64
	StrokeColor   string
	StrokeDashes  string // SVG-style "6, 3" dash list, or "solid"
	Fill          string // "none", "solid", or "gradient"
	FillColor     string
	GradientAngle float64
}

// GradientStop is one stop of a fill gradient (fillPattern 25-34).
type GradientStop struct {
	Color   string
	Offset  float64
	Opacity float64
}

// PathAction is a single path-element opcode.
type PathAction byte

const (
	ActionMoveTo PathAction = 'M'
	ActionLineTo PathAction = 'L'
	ActionArcTo  PathAction = 'A'
	ActionClose  PathAction = 'Z'
)

// PathElement is one segment of a flushed path. Rx/Ry/Rotate/LargeArc/
// Sweep are only meaningful when Action == ActionArcTo.
type PathElement struct {
	Action   PathAction
	X, Y     float64
	Rx, Ry   float64
	Rotate   float64
	LargeArc bool
	Sweep    bool
}

// EllipseProperties is a standalone ellipse primitive (chunk 0x8f),
// drawn directly rather than folded into the current path.
type EllipseProperties struct {
	Cx, Cy float64
	Rx, Ry float64
	Rotate float64
}

// GraphicObjectProperties positions a decoded foreign object (raster
// image or metafile) on the page.
type GraphicObjectProperties struct {
	X, Y          float64
	Width, Height float64
	MimeType      string
}
