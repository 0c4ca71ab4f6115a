package render

import (
	"bytes"
	"fmt"
	"image/color"
	"io"
	"math"
	"strconv"
	"strings"

	"git.sr.ht/~sbinet/gg"
	"github.com/ajstarks/svgo"
	"golang.org/x/image/font/basicfont"

	"aivaceo/domain/chart"
	apperrors "aivaceo/internal/errors"
)

// Output formats
const (
	FormatSVG = "svg"
	FormatPNG = "png"
)

// Options sizes the canvas
type Options struct {
	Width  int
	Height int
}

// DefaultOptions returns an 800x500 canvas
func DefaultOptions() Options {
	return Options{Width: 800, Height: 500}
}

// ContentType returns the MIME type for a format
func ContentType(format string) string {
	switch strings.ToLower(format) {
	case FormatSVG:
		return "image/svg+xml"
	case FormatPNG:
		return "image/png"
	}
	return "application/octet-stream"
}

// Render draws c in the requested format
func Render(w io.Writer, c *chart.Chart, format string, opts Options) error {
	format = strings.ToLower(strings.TrimPrefix(format, "."))
	if format != FormatSVG && format != FormatPNG {
		return apperrors.InvalidInput(fmt.Sprintf("unsupported format %q (want svg or png)", format))
	}
	if opts.Width == 0 && opts.Height == 0 {
		opts = DefaultOptions()
	}

	scene, err := Layout(c, opts.Width, opts.Height)
	if err != nil {
		return err
	}
	if format == FormatPNG {
		return RenderPNG(w, scene)
	}
	return RenderSVG(w, scene)
}

// Bytes renders c into memory
func Bytes(c *chart.Chart, format string, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	if err := Render(&buf, c, format, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RenderSVG writes the scene as SVG
func RenderSVG(w io.Writer, scene *Scene) error {
	canvas := svg.New(w)
	canvas.Start(scene.Width, scene.Height)
	canvas.Rect(0, 0, scene.Width, scene.Height, "fill:"+scene.Background)

	for _, s := range scene.Shapes {
		switch s.Kind {
		case ShapeRect:
			canvas.Rect(px(s.X), px(s.Y), px(s.W), px(s.H), style(s))
		case ShapeLine:
			canvas.Line(px(s.X), px(s.Y), px(s.X2), px(s.Y2), style(s))
		case ShapeCircle:
			canvas.Circle(px(s.X), px(s.Y), px(s.R), style(s))
		case ShapePolygon:
			xs, ys := coords(s.Points)
			canvas.Polygon(xs, ys, style(s))
		case ShapePolyline:
			xs, ys := coords(s.Points)
			canvas.Polyline(xs, ys, style(s))
		case ShapeText:
			canvas.Text(px(s.X), px(s.Y), s.Text, textStyle(s))
		}
	}

	canvas.End()
	return nil
}

func style(s Shape) string {
	parts := []string{"fill:" + orNone(s.Fill)}
	if s.Stroke != "" {
		parts = append(parts, "stroke:"+s.Stroke, "stroke-width:"+strconv.FormatFloat(s.StrokeWidth, 'g', 3, 64))
		if s.Dash {
			parts = append(parts, "stroke-dasharray:6,4")
		}
	}
	return strings.Join(parts, ";")
}

func textStyle(s Shape) string {
	anchor := "start"
	switch s.Anchor {
	case AnchorMiddle:
		anchor = "middle"
	case AnchorEnd:
		anchor = "end"
	}
	st := fmt.Sprintf("fill:%s;font-size:%gpx;font-family:sans-serif;text-anchor:%s", orNone(s.Fill), s.Size, anchor)
	if s.Bold {
		st += ";font-weight:bold"
	}
	return st
}

func orNone(c string) string {
	if c == "" {
		return "none"
	}
	return c
}

func px(v float64) int { return int(math.Round(v)) }

func coords(points []Point) ([]int, []int) {
	xs := make([]int, len(points))
	ys := make([]int, len(points))
	for i, p := range points {
		xs[i], ys[i] = px(p.X), px(p.Y)
	}
	return xs, ys
}

// RenderPNG rasterizes the scene with the fixed 7x13 bitmap font
func RenderPNG(w io.Writer, scene *Scene) error {
	dc := gg.NewContext(scene.Width, scene.Height)
	dc.SetColor(parseHex(scene.Background))
	dc.Clear()
	dc.SetFontFace(basicfont.Face7x13)

	for _, s := range scene.Shapes {
		switch s.Kind {
		case ShapeRect:
			dc.DrawRectangle(s.X, s.Y, s.W, s.H)
			paint(dc, s)
		case ShapeLine:
			dc.DrawLine(s.X, s.Y, s.X2, s.Y2)
			paint(dc, s)
		case ShapeCircle:
			dc.DrawCircle(s.X, s.Y, s.R)
			paint(dc, s)
		case ShapePolygon, ShapePolyline:
			if len(s.Points) == 0 {
				continue
			}
			dc.NewSubPath()
			dc.MoveTo(s.Points[0].X, s.Points[0].Y)
			for _, p := range s.Points[1:] {
				dc.LineTo(p.X, p.Y)
			}
			if s.Kind == ShapePolygon {
				dc.ClosePath()
			}
			paint(dc, s)
		case ShapeText:
			dc.SetColor(parseHex(s.Fill))
			ax := 0.0
			switch s.Anchor {
			case AnchorMiddle:
				ax = 0.5
			case AnchorEnd:
				ax = 1
			}
			dc.DrawStringAnchored(s.Text, s.X, s.Y, ax, 0)
		}
	}

	return dc.EncodePNG(w)
}

// paint fills and then strokes the current path
func paint(dc *gg.Context, s Shape) {
	if s.Fill != "" {
		dc.SetColor(parseHex(s.Fill))
		if s.Stroke != "" {
			dc.FillPreserve()
		} else {
			dc.Fill()
		}
	}
	if s.Stroke != "" {
		dc.SetColor(parseHex(s.Stroke))
		dc.SetLineWidth(s.StrokeWidth)
		if s.Dash {
			dc.SetDash(6, 4)
		}
		dc.Stroke()
		dc.SetDash()
	}
	dc.ClearPath()
}

// parseHex reads #rrggbb; anything else is black
func parseHex(s string) color.RGBA {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return color.RGBA{A: 255}
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{A: 255}
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}
}
