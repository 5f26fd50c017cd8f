package export

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	"canva-clone/core"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

const (
	DefaultThumbWidth  = 320
	DefaultThumbHeight = 240

	// MaxRenderSide bounds either side of a rendered image.
	MaxRenderSide = 4096
)

// Render rasterizes the design scaled to fit within maxW x maxH pixels,
// keeping its aspect ratio. Bounds above MaxRenderSide are lowered to it.
// Text is drawn with a fixed bitmap face and
// image elements as placeholders.
func Render(snap core.Snapshot, maxW, maxH int) *image.NRGBA {
	d := snap.Design
	if maxW <= 0 {
		maxW = DefaultThumbWidth
	}
	if maxH <= 0 {
		maxH = DefaultThumbHeight
	}
	maxW = min(maxW, MaxRenderSide)
	maxH = min(maxH, MaxRenderSide)
	scale := math.Min(float64(maxW)/d.Width, float64(maxH)/d.Height)
	w := max(1, int(math.Round(d.Width*scale)))
	h := max(1, int(math.Round(d.Height*scale)))

	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(parseColor(d.Background, white)), image.Point{}, draw.Src)

	r := &raster{dst: dst, z: vector.NewRasterizer(w, h), scale: scale}
	for _, el := range renderOrder(snap.Elements) {
		switch el.Kind {
		case core.KindShape:
			r.shape(el)
		case core.KindText:
			r.text(el)
		case core.KindImage:
			r.fill(rotate([]core.Point{
				{X: el.X, Y: el.Y}, {X: el.X + el.Width, Y: el.Y},
				{X: el.X + el.Width, Y: el.Y + el.Height}, {X: el.X, Y: el.Y + el.Height},
			}, el), withOpacity(imageFill, el.Image.Opacity))
		}
	}
	return dst
}

// Thumbnail writes Render's result as PNG.
func Thumbnail(snap core.Snapshot, maxW, maxH int, w io.Writer) error {
	return png.Encode(w, Render(snap, maxW, maxH))
}

type raster struct {
	dst   *image.NRGBA
	z     *vector.Rasterizer
	scale float64
}

func (r *raster) shape(el core.Element) {
	s := el.Shape
	if line := polyline(el); len(line) > 1 {
		c := parseColor(s.Stroke, black)
		if len(s.Path) == 0 {
			c = parseColor(s.Fill, black)
		}
		c = withOpacity(c, s.Opacity)
		width := math.Max(s.StrokeWidth, 1)
		for i := 1; i < len(line); i++ {
			r.fill(segmentQuad(line[i-1], line[i], width), c)
		}
		return
	}
	r.fill(outline(el), withOpacity(parseColor(s.Fill, black), s.Opacity))
}

func (r *raster) text(el core.Element) {
	t := el.Text
	face := basicfont.Face7x13
	drawer := &font.Drawer{
		Dst:  r.dst,
		Src:  image.NewUniform(parseColor(t.Color, black)),
		Face: face,
		Dot:  fixed.P(int(el.X*r.scale), int(el.Y*r.scale)+face.Ascent),
	}
	drawer.DrawString(t.Content)
}

// fill paints the closed polygon pts, given in canvas units.
func (r *raster) fill(pts []core.Point, c color.NRGBA) {
	if len(pts) < 3 || c.A == 0 {
		return
	}
	b := r.dst.Bounds()
	r.z.Reset(b.Dx(), b.Dy())
	r.z.DrawOp = draw.Over
	r.z.MoveTo(float32(pts[0].X*r.scale), float32(pts[0].Y*r.scale))
	for _, p := range pts[1:] {
		r.z.LineTo(float32(p.X*r.scale), float32(p.Y*r.scale))
	}
	r.z.ClosePath()
	r.z.Draw(r.dst, b, image.NewUniform(c), image.Point{})
}
