package report

import (
	"math"

	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

var (
	cos30 = vg.Length(math.Cos(math.Pi / 6))
	sin30 = vg.Length(math.Sin(math.Pi / 6))
)

// DownTriangleGlyph is a filled triangle pointing down.
type DownTriangleGlyph struct{}

// DrawGlyph implements the draw.GlyphDrawer interface.
func (DownTriangleGlyph) DrawGlyph(c *draw.Canvas, sty draw.GlyphStyle, pt vg.Point) {
	c.SetColor(sty.Color)

	r := sty.Radius

	var p vg.Path
	p.Move(vg.Point{X: pt.X, Y: pt.Y - r})
	p.Line(vg.Point{X: pt.X - r*cos30, Y: pt.Y + r*sin30})
	p.Line(vg.Point{X: pt.X + r*cos30, Y: pt.Y + r*sin30})
	p.Close()
	c.Fill(p)
}
