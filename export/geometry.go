package export

import (
	"math"
	"sort"

	"canva-clone/core"
)

const ellipseSegments = 48

// renderOrder returns the elements sorted back to front. Elements with the
// same z keep their list order.
func renderOrder(elements []core.Element) []core.Element {
	out := core.CloneElements(elements)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ZIndex < out[j].ZIndex })
	return out
}

// outline returns the closed polygon of a filled shape in canvas
// coordinates, rotation applied. Lines and freehand paths have no outline.
func outline(el core.Element) []core.Point {
	x, y, w, h := el.X, el.Y, el.Width, el.Height
	var pts []core.Point

	shape := core.ShapeRectangle
	if el.Shape != nil {
		shape = el.Shape.ShapeType
	}
	switch shape {
	case core.ShapeCircle, core.ShapeEllipse:
		cx, cy := x+w/2, y+h/2
		for i := 0; i < ellipseSegments; i++ {
			a := 2 * math.Pi * float64(i) / ellipseSegments
			pts = append(pts, core.Point{X: cx + w/2*math.Cos(a), Y: cy + h/2*math.Sin(a)})
		}
	case core.ShapeTriangle:
		pts = []core.Point{{X: x + w/2, Y: y}, {X: x + w, Y: y + h}, {X: x, Y: y + h}}
	case core.ShapeStar:
		cx, cy := x+w/2, y+h/2
		for i := 0; i < 10; i++ {
			r := 1.0
			if i%2 == 1 {
				r = 0.4
			}
			a := -math.Pi/2 + math.Pi*float64(i)/5
			pts = append(pts, core.Point{X: cx + r*w/2*math.Cos(a), Y: cy + r*h/2*math.Sin(a)})
		}
	case core.ShapeLine:
		return nil
	default:
		pts = []core.Point{{X: x, Y: y}, {X: x + w, Y: y}, {X: x + w, Y: y + h}, {X: x, Y: y + h}}
	}
	return rotate(pts, el)
}

// polyline returns the stroked points of a line or freehand path in canvas
// coordinates, rotation applied.
func polyline(el core.Element) []core.Point {
	if el.Shape == nil {
		return nil
	}
	if len(el.Shape.Path) > 0 {
		pts := make([]core.Point, len(el.Shape.Path))
		for i, p := range el.Shape.Path {
			pts[i] = core.Point{X: el.X + p.X, Y: el.Y + p.Y}
		}
		return rotate(pts, el)
	}
	if el.Shape.ShapeType == core.ShapeLine {
		mid := el.Y + el.Height/2
		return rotate([]core.Point{{X: el.X, Y: mid}, {X: el.X + el.Width, Y: mid}}, el)
	}
	return nil
}

// rotate turns pts clockwise by the element's rotation around its centre.
func rotate(pts []core.Point, el core.Element) []core.Point {
	if el.Rotation == 0 {
		return pts
	}
	cx, cy := el.X+el.Width/2, el.Y+el.Height/2
	sin, cos := math.Sincos(el.Rotation * math.Pi / 180)
	for i, p := range pts {
		dx, dy := p.X-cx, p.Y-cy
		pts[i] = core.Point{X: cx + dx*cos - dy*sin, Y: cy + dx*sin + dy*cos}
	}
	return pts
}

// segmentQuad returns the four corners of a segment stroked with width w.
func segmentQuad(a, b core.Point, w float64) []core.Point {
	dx, dy := b.X-a.X, b.Y-a.Y
	n := math.Hypot(dx, dy)
	if n == 0 {
		return nil
	}
	ox, oy := -dy/n*w/2, dx/n*w/2
	return []core.Point{
		{X: a.X + ox, Y: a.Y + oy},
		{X: b.X + ox, Y: b.Y + oy},
		{X: b.X - ox, Y: b.Y - oy},
		{X: a.X - ox, Y: a.Y - oy},
	}
}
