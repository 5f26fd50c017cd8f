package core

import (
	"errors"
	"fmt"
)

// MinElementSize is the smallest width or height an element may have.
const MinElementSize = 10.0

var (
	// ErrInvalidElement is returned when an element input cannot be built.
	ErrInvalidElement = errors.New("invalid element")
	// ErrKindMismatch is returned when a payload does not match the element kind.
	ErrKindMismatch = errors.New("payload does not match element kind")
)

type (
	// Kind discriminates the payload carried by an Element.
	Kind string

	// ShapeType is the geometric primitive drawn by a shape element.
	ShapeType string

	// Point is a coordinate relative to the owning element's origin.
	Point struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	}

	// Rect is an axis-aligned box in canvas coordinates.
	Rect struct {
		X      float64 `json:"x"`
		Y      float64 `json:"y"`
		Width  float64 `json:"width"`
		Height float64 `json:"height"`
	}

	TextProps struct {
		Content    string  `json:"content"`
		FontFamily string  `json:"fontFamily"`
		FontSize   float64 `json:"fontSize"`
		Color      string  `json:"color"`
		Bold       bool    `json:"bold"`
		Italic     bool    `json:"italic"`
		Underline  bool    `json:"underline"`
		Align      string  `json:"textAlign"`
	}

	ShapeProps struct {
		ShapeType    ShapeType `json:"shapeType"`
		Fill         string    `json:"fill"`
		Stroke       string    `json:"stroke"`
		StrokeWidth  float64   `json:"strokeWidth"`
		BorderRadius float64   `json:"borderRadius"`
		Opacity      float64   `json:"opacity"`
		// Path holds freehand points for pencil drawings, relative to the element origin.
		Path []Point `json:"path,omitempty"`
	}

	ImageProps struct {
		Source  string  `json:"source"`
		Opacity float64 `json:"opacity"`
	}

	// Element is one placed visual object. Exactly one payload is set and it
	// always matches Kind.
	Element struct {
		ID       string      `json:"id"`
		Kind     Kind        `json:"type"`
		X        float64     `json:"x"`
		Y        float64     `json:"y"`
		Width    float64     `json:"width"`
		Height   float64     `json:"height"`
		Rotation float64     `json:"rotation"`
		ZIndex   int         `json:"zIndex"`
		Text     *TextProps  `json:"text,omitempty"`
		Shape    *ShapeProps `json:"shape,omitempty"`
		Image    *ImageProps `json:"image,omitempty"`
	}

	// ElementInput describes an element to add. A nil payload for the
	// element's kind is filled with defaults. ZIndex is optional; when nil the
	// element is placed on top.
	ElementInput struct {
		Kind     Kind        `json:"type"`
		X        float64     `json:"x"`
		Y        float64     `json:"y"`
		Width    float64     `json:"width"`
		Height   float64     `json:"height"`
		Rotation float64     `json:"rotation"`
		ZIndex   *int        `json:"zIndex,omitempty"`
		Text     *TextProps  `json:"text,omitempty"`
		Shape    *ShapeProps `json:"shape,omitempty"`
		Image    *ImageProps `json:"image,omitempty"`
	}

	TextPatch struct {
		Content    *string  `json:"content,omitempty"`
		FontFamily *string  `json:"fontFamily,omitempty"`
		FontSize   *float64 `json:"fontSize,omitempty"`
		Color      *string  `json:"color,omitempty"`
		Bold       *bool    `json:"bold,omitempty"`
		Italic     *bool    `json:"italic,omitempty"`
		Underline  *bool    `json:"underline,omitempty"`
		Align      *string  `json:"textAlign,omitempty"`
	}

	ShapePatch struct {
		ShapeType    *ShapeType `json:"shapeType,omitempty"`
		Fill         *string    `json:"fill,omitempty"`
		Stroke       *string    `json:"stroke,omitempty"`
		StrokeWidth  *float64   `json:"strokeWidth,omitempty"`
		BorderRadius *float64   `json:"borderRadius,omitempty"`
		Opacity      *float64   `json:"opacity,omitempty"`
		Path         []Point    `json:"path,omitempty"`
	}

	ImagePatch struct {
		Source  *string  `json:"source,omitempty"`
		Opacity *float64 `json:"opacity,omitempty"`
	}

	// Patch is a partial element update. Top-level fields replace the current
	// value; payload patches are merged field by field.
	Patch struct {
		X        *float64    `json:"x,omitempty"`
		Y        *float64    `json:"y,omitempty"`
		Width    *float64    `json:"width,omitempty"`
		Height   *float64    `json:"height,omitempty"`
		Rotation *float64    `json:"rotation,omitempty"`
		ZIndex   *int        `json:"zIndex,omitempty"`
		Text     *TextPatch  `json:"text,omitempty"`
		Shape    *ShapePatch `json:"shape,omitempty"`
		Image    *ImagePatch `json:"image,omitempty"`
	}
)

const (
	KindText  Kind = "text"
	KindShape Kind = "shape"
	KindImage Kind = "image"
)

const (
	ShapeRectangle ShapeType = "rectangle"
	ShapeCircle    ShapeType = "circle"
	ShapeEllipse   ShapeType = "ellipse"
	ShapeTriangle  ShapeType = "triangle"
	ShapeLine      ShapeType = "line"
	ShapeStar      ShapeType = "star"
)

func (k Kind) Valid() bool {
	switch k {
	case KindText, KindShape, KindImage:
		return true
	}
	return false
}

func (t ShapeType) Valid() bool {
	switch t {
	case ShapeRectangle, ShapeCircle, ShapeEllipse, ShapeTriangle, ShapeLine, ShapeStar:
		return true
	}
	return false
}

// ClampSize raises v to MinElementSize.
func ClampSize(v float64) float64 {
	if v < MinElementSize {
		return MinElementSize
	}
	return v
}

func DefaultTextProps() TextProps {
	return TextProps{
		Content:    "Double tap to edit",
		FontFamily: "Arial",
		FontSize:   16,
		Color:      "#000000",
		Align:      "left",
	}
}

func DefaultShapeProps() ShapeProps {
	return ShapeProps{
		ShapeType:   ShapeRectangle,
		Fill:        "#000000",
		Stroke:      "#000000",
		StrokeWidth: 1,
		Opacity:     1,
	}
}

// Build validates the input and turns it into an element with the given id.
// Sizes below MinElementSize are raised to it.
func (in ElementInput) Build(id string) (Element, error) {
	if !in.Kind.Valid() {
		return Element{}, fmt.Errorf("%w: unknown kind %q", ErrInvalidElement, in.Kind)
	}
	el := Element{
		ID:       id,
		Kind:     in.Kind,
		X:        in.X,
		Y:        in.Y,
		Width:    ClampSize(in.Width),
		Height:   ClampSize(in.Height),
		Rotation: in.Rotation,
	}
	if in.ZIndex != nil {
		el.ZIndex = *in.ZIndex
	}

	switch in.Kind {
	case KindText:
		if in.Shape != nil || in.Image != nil {
			return Element{}, fmt.Errorf("%w: text element with %s payload", ErrKindMismatch, foreignPayload(in.Shape != nil))
		}
		props := DefaultTextProps()
		if in.Text != nil {
			props = *in.Text
		}
		el.Text = &props
	case KindShape:
		if in.Text != nil || in.Image != nil {
			return Element{}, fmt.Errorf("%w: shape element with foreign payload", ErrKindMismatch)
		}
		props := DefaultShapeProps()
		if in.Shape != nil {
			props = *in.Shape
			props.Path = clonePoints(in.Shape.Path)
		}
		if !props.ShapeType.Valid() {
			return Element{}, fmt.Errorf("%w: unknown shape type %q", ErrInvalidElement, props.ShapeType)
		}
		el.Shape = &props
	case KindImage:
		if in.Text != nil || in.Shape != nil {
			return Element{}, fmt.Errorf("%w: image element with foreign payload", ErrKindMismatch)
		}
		if in.Image == nil || in.Image.Source == "" {
			return Element{}, fmt.Errorf("%w: image element requires a source", ErrInvalidElement)
		}
		props := *in.Image
		el.Image = &props
	}
	return el, nil
}

func foreignPayload(shape bool) string {
	if shape {
		return "shape"
	}
	return "image"
}

// Validate checks that the payload matches the kind. It is used on data read
// back from storage.
func (e Element) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidElement)
	}
	var ok bool
	switch e.Kind {
	case KindText:
		ok = e.Text != nil && e.Shape == nil && e.Image == nil
	case KindShape:
		ok = e.Shape != nil && e.Text == nil && e.Image == nil && e.Shape.ShapeType.Valid()
	case KindImage:
		ok = e.Image != nil && e.Text == nil && e.Shape == nil
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidElement, e.Kind)
	}
	if !ok {
		return fmt.Errorf("%w: element %s", ErrKindMismatch, e.ID)
	}
	return nil
}

// Bounds returns the element's axis-aligned box, ignoring rotation.
func (e Element) Bounds() Rect {
	return Rect{X: e.X, Y: e.Y, Width: e.Width, Height: e.Height}
}

// Clone returns a deep copy of the element.
func (e Element) Clone() Element {
	c := e
	if e.Text != nil {
		t := *e.Text
		c.Text = &t
	}
	if e.Shape != nil {
		s := *e.Shape
		s.Path = clonePoints(e.Shape.Path)
		c.Shape = &s
	}
	if e.Image != nil {
		i := *e.Image
		c.Image = &i
	}
	return c
}

// CloneElements deep-copies a list. The result is never nil.
func CloneElements(in []Element) []Element {
	out := make([]Element, len(in))
	for i, el := range in {
		out[i] = el.Clone()
	}
	return out
}

func clonePoints(in []Point) []Point {
	if in == nil {
		return nil
	}
	out := make([]Point, len(in))
	copy(out, in)
	return out
}

// CheckKind reports whether the patch only touches the payload of kind k.
func (p Patch) CheckKind(k Kind) error {
	switch {
	case p.Text != nil && k != KindText,
		p.Shape != nil && k != KindShape,
		p.Image != nil && k != KindImage:
		return fmt.Errorf("%w: patch for %s element", ErrKindMismatch, k)
	}
	if p.Shape != nil && p.Shape.ShapeType != nil && !p.Shape.ShapeType.Valid() {
		return fmt.Errorf("%w: unknown shape type %q", ErrInvalidElement, *p.Shape.ShapeType)
	}
	return nil
}

// Apply merges the patch into the element. The caller must have checked the
// patch with CheckKind.
func (e *Element) Apply(p Patch) {
	if p.X != nil {
		e.X = *p.X
	}
	if p.Y != nil {
		e.Y = *p.Y
	}
	if p.Width != nil {
		e.Width = ClampSize(*p.Width)
	}
	if p.Height != nil {
		e.Height = ClampSize(*p.Height)
	}
	if p.Rotation != nil {
		e.Rotation = *p.Rotation
	}
	if p.ZIndex != nil {
		e.ZIndex = *p.ZIndex
	}
	if p.Text != nil && e.Text != nil {
		p.Text.mergeInto(e.Text)
	}
	if p.Shape != nil && e.Shape != nil {
		p.Shape.mergeInto(e.Shape)
	}
	if p.Image != nil && e.Image != nil {
		p.Image.mergeInto(e.Image)
	}
}

func (p TextPatch) mergeInto(t *TextProps) {
	if p.Content != nil {
		t.Content = *p.Content
	}
	if p.FontFamily != nil {
		t.FontFamily = *p.FontFamily
	}
	if p.FontSize != nil {
		t.FontSize = *p.FontSize
	}
	if p.Color != nil {
		t.Color = *p.Color
	}
	if p.Bold != nil {
		t.Bold = *p.Bold
	}
	if p.Italic != nil {
		t.Italic = *p.Italic
	}
	if p.Underline != nil {
		t.Underline = *p.Underline
	}
	if p.Align != nil {
		t.Align = *p.Align
	}
}

func (p ShapePatch) mergeInto(s *ShapeProps) {
	if p.ShapeType != nil {
		s.ShapeType = *p.ShapeType
	}
	if p.Fill != nil {
		s.Fill = *p.Fill
	}
	if p.Stroke != nil {
		s.Stroke = *p.Stroke
	}
	if p.StrokeWidth != nil {
		s.StrokeWidth = *p.StrokeWidth
	}
	if p.BorderRadius != nil {
		s.BorderRadius = *p.BorderRadius
	}
	if p.Opacity != nil {
		s.Opacity = *p.Opacity
	}
	if p.Path != nil {
		s.Path = clonePoints(p.Path)
	}
}

func (p ImagePatch) mergeInto(i *ImageProps) {
	if p.Source != nil {
		i.Source = *p.Source
	}
	if p.Opacity != nil {
		i.Opacity = *p.Opacity
	}
}

// Contains reports whether (x, y) lies inside the rectangle, edges included.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width && y >= r.Y && y <= r.Y+r.Height
}

// Intersects reports whether two rectangles overlap or touch.
func (r Rect) Intersects(o Rect) bool {
	return !(r.X > o.X+o.Width || r.X+r.Width < o.X || r.Y > o.Y+o.Height || r.Y+r.Height < o.Y)
}
