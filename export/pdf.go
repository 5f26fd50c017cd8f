package export

import (
	"fmt"
	"image/color"
	"io"
	"strings"

	"canva-clone/core"

	"github.com/jung-kurt/gofpdf"
)

var (
	black = color.NRGBA{0, 0, 0, 255}
	white = color.NRGBA{255, 255, 255, 255}
	// placeholder fill for image elements, whose sources are not fetched
	imageFill = color.NRGBA{220, 220, 220, 255}
)

// PDF writes the design as a single-page PDF whose page matches the canvas,
// one point per canvas unit.
func PDF(snap core.Snapshot, w io.Writer) error {
	d := snap.Design
	// portrait keeps Size as given; landscape would swap it
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: d.Width, Ht: d.Height},
	})
	pdf.SetTitle(d.Name, true)
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	bg := parseColor(d.Background, white)
	setFill(pdf, bg)
	pdf.Rect(0, 0, d.Width, d.Height, "F")

	for _, el := range renderOrder(snap.Elements) {
		switch el.Kind {
		case core.KindShape:
			drawPDFShape(pdf, el)
		case core.KindText:
			drawPDFText(pdf, el, tr)
		case core.KindImage:
			pdf.SetAlpha(clampOpacity(el.Image.Opacity), "Normal")
			setFill(pdf, imageFill)
			pdfPolygon(pdf, rotate([]core.Point{
				{X: el.X, Y: el.Y}, {X: el.X + el.Width, Y: el.Y},
				{X: el.X + el.Width, Y: el.Y + el.Height}, {X: el.X, Y: el.Y + el.Height},
			}, el), "F")
			pdf.SetAlpha(1, "Normal")
		}
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}

func drawPDFShape(pdf *gofpdf.Fpdf, el core.Element) {
	s := el.Shape
	pdf.SetAlpha(clampOpacity(s.Opacity), "Normal")
	defer pdf.SetAlpha(1, "Normal")

	stroke := parseColor(s.Stroke, black)
	pdf.SetDrawColor(int(stroke.R), int(stroke.G), int(stroke.B))
	pdf.SetLineWidth(max(s.StrokeWidth, 0.1))

	if line := polyline(el); len(line) > 1 {
		if len(s.Path) == 0 {
			// a plain line is drawn in its fill colour, like on the canvas
			fill := parseColor(s.Fill, black)
			pdf.SetDrawColor(int(fill.R), int(fill.G), int(fill.B))
		}
		pdf.SetLineCapStyle("round")
		for i := 1; i < len(line); i++ {
			pdf.Line(line[i-1].X, line[i-1].Y, line[i].X, line[i].Y)
		}
		return
	}

	setFill(pdf, parseColor(s.Fill, black))
	style := "F"
	if s.StrokeWidth > 0 {
		style = "FD"
	}
	pdfPolygon(pdf, outline(el), style)
}

func drawPDFText(pdf *gofpdf.Fpdf, el core.Element, tr func(string) string) {
	t := el.Text
	c := parseColor(t.Color, black)
	pdf.SetTextColor(int(c.R), int(c.G), int(c.B))

	style := ""
	if t.Bold {
		style += "B"
	}
	if t.Italic {
		style += "I"
	}
	if t.Underline {
		style += "U"
	}
	size := t.FontSize
	if size <= 0 {
		size = 16
	}
	pdf.SetFont(pdfFontFamily(t.FontFamily), style, size)

	if el.Rotation != 0 {
		pdf.TransformBegin()
		// gofpdf rotates counter-clockwise
		pdf.TransformRotate(-el.Rotation, el.X+el.Width/2, el.Y+el.Height/2)
		defer pdf.TransformEnd()
	}

	align := "L"
	switch t.Align {
	case "center":
		align = "C"
	case "right":
		align = "R"
	}
	pdf.SetXY(el.X, el.Y)
	pdf.MultiCell(el.Width, size*1.2, tr(t.Content), "", align, false)
}

// pdfFontFamily maps a font family onto one of the PDF core fonts.
func pdfFontFamily(family string) string {
	f := strings.ToLower(family)
	switch {
	case strings.Contains(f, "times") || strings.Contains(f, "serif") && !strings.Contains(f, "sans"):
		return "Times"
	case strings.Contains(f, "courier") || strings.Contains(f, "mono"):
		return "Courier"
	}
	return "Helvetica"
}

func pdfPolygon(pdf *gofpdf.Fpdf, pts []core.Point, style string) {
	if len(pts) < 3 {
		return
	}
	poly := make([]gofpdf.PointType, len(pts))
	for i, p := range pts {
		poly[i] = gofpdf.PointType{X: p.X, Y: p.Y}
	}
	pdf.Polygon(poly, style)
}

func setFill(pdf *gofpdf.Fpdf, c color.NRGBA) {
	pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
}

func clampOpacity(o float64) float64 {
	if o <= 0 || o > 1 {
		return 1
	}
	return o
}
