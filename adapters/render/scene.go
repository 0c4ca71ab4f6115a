package render

import (
	"fmt"
	"math"
	"strings"

	"aivaceo/domain/chart"
	apperrors "aivaceo/internal/errors"
)

// ShapeKind selects the primitive a backend draws
type ShapeKind int

const (
	ShapeRect ShapeKind = iota
	ShapeLine
	ShapeCircle
	ShapePolygon
	ShapePolyline
	ShapeText
)

// Anchor aligns text horizontally around its point
type Anchor int

const (
	AnchorStart Anchor = iota
	AnchorMiddle
	AnchorEnd
)

// Point is a position in pixels, origin top left
type Point struct{ X, Y float64 }

// Shape is one drawing primitive. Rect uses X, Y, W, H; Line uses X, Y, X2, Y2;
// Circle uses X, Y, R; Polygon and Polyline use Points; Text uses X, Y, Text, Size, Anchor.
type Shape struct {
	Kind        ShapeKind
	X, Y        float64
	X2, Y2      float64
	W, H        float64
	R           float64
	Points      []Point
	Text        string
	Size        float64
	Anchor      Anchor
	Bold        bool
	Fill        string
	Stroke      string
	StrokeWidth float64
	Dash        bool
}

// Scene is a laid out chart ready for a backend
type Scene struct {
	Width      int
	Height     int
	Background string
	Shapes     []Shape
}

const (
	colorBackground = "#ffffff"
	colorAxis       = "#444444"
	colorGrid       = "#e5e5e5"
	colorText       = "#222222"
	colorSubtle     = "#666666"
	colorUndefined  = "#d0d0d0"

	marginLeft   = 70.0
	marginRight  = 30.0
	marginTop    = 50.0
	marginBottom = 60.0
	tickCount    = 5
	labelChars   = 12
)

// plot is the drawing area inside the margins
type plot struct {
	x0, y0, x1, y1 float64
}

func (p plot) width() float64  { return p.x1 - p.x0 }
func (p plot) height() float64 { return p.y1 - p.y0 }

type builder struct {
	scene *Scene
	area  plot
}

func (b *builder) add(s Shape) {
	if s.Kind == ShapeRect {
		if s.W < 0 {
			s.X, s.W = s.X+s.W, -s.W
		}
		if s.H < 0 {
			s.Y, s.H = s.Y+s.H, -s.H
		}
	}
	b.scene.Shapes = append(b.scene.Shapes, s)
}

func (b *builder) text(x, y float64, s string, size float64, anchor Anchor, color string) {
	b.add(Shape{Kind: ShapeText, X: x, Y: y, Text: s, Size: size, Anchor: anchor, Fill: color})
}

func (b *builder) line(x1, y1, x2, y2 float64, color string, width float64, dash bool) {
	b.add(Shape{Kind: ShapeLine, X: x1, Y: y1, X2: x2, Y2: y2, Stroke: color, StrokeWidth: width, Dash: dash})
}

func (b *builder) rect(x, y, w, h float64, fill string) {
	b.add(Shape{Kind: ShapeRect, X: x, Y: y, W: w, H: h, Fill: fill})
}

// Layout positions every element of c on a width×height canvas
func Layout(c *chart.Chart, width, height int) (*Scene, error) {
	if c == nil {
		return nil, apperrors.InvalidInput("no chart to render")
	}
	if width < 200 || height < 150 {
		return nil, apperrors.InvalidInput(fmt.Sprintf("canvas %dx%d is too small", width, height))
	}

	b := &builder{
		scene: &Scene{Width: width, Height: height, Background: colorBackground},
		area: plot{
			x0: marginLeft,
			y0: marginTop,
			x1: float64(width) - marginRight,
			y1: float64(height) - marginBottom,
		},
	}
	b.text(float64(width)/2, 28, c.Title, 16, AnchorMiddle, colorText)
	b.scene.Shapes[len(b.scene.Shapes)-1].Bold = true

	switch c.Kind {
	case chart.KindBar:
		b.bars(c)
	case chart.KindHistogram:
		b.histogram(c)
	case chart.KindPie:
		b.pie(c)
	case chart.KindBox:
		b.boxes(c)
	case chart.KindScatter, chart.KindLine:
		b.series(c)
	case chart.KindHeatmap:
		b.heatmap(c)
	default:
		return nil, apperrors.InvalidInput(fmt.Sprintf("unsupported chart kind: %s", c.Kind))
	}

	if c.XTitle != "" {
		b.text((b.area.x0+b.area.x1)/2, float64(height)-14, c.XTitle, 12, AnchorMiddle, colorSubtle)
	}
	if c.YTitle != "" {
		b.text(14, marginTop-14, c.YTitle, 12, AnchorStart, colorSubtle)
	}
	return b.scene, nil
}

// scale maps a data interval onto a pixel interval
type scale struct {
	d0, d1 float64
	p0, p1 float64
}

func newScale(d0, d1, p0, p1 float64) scale {
	if !(d1 > d0) {
		d0, d1 = d0-1, d0+1
	}
	return scale{d0: d0, d1: d1, p0: p0, p1: p1}
}

func (s scale) at(v float64) float64 {
	return s.p0 + (v-s.d0)/(s.d1-s.d0)*(s.p1-s.p0)
}

func (s scale) ticks() []float64 {
	out := make([]float64, tickCount+1)
	for i := range out {
		out[i] = s.d0 + (s.d1-s.d0)*float64(i)/tickCount
	}
	return out
}

// valueAxis draws grid lines and labels for a vertical or horizontal value scale
func (b *builder) valueAxis(s scale, vertical bool) {
	for _, v := range s.ticks() {
		p := s.at(v)
		if vertical {
			b.line(b.area.x0, p, b.area.x1, p, colorGrid, 1, false)
			b.text(b.area.x0-8, p+4, formatTick(v), 11, AnchorEnd, colorSubtle)
		} else {
			b.line(p, b.area.y0, p, b.area.y1, colorGrid, 1, false)
			b.text(p, b.area.y1+16, formatTick(v), 11, AnchorMiddle, colorSubtle)
		}
	}
	b.line(b.area.x0, b.area.y1, b.area.x1, b.area.y1, colorAxis, 1, false)
	b.line(b.area.x0, b.area.y0, b.area.x0, b.area.y1, colorAxis, 1, false)
}

func (b *builder) bars(c *chart.Chart) {
	n := len(c.Values)
	if n == 0 {
		return
	}
	lo, hi := 0.0, maxOf(c.Values)
	if c.YRange != nil {
		lo, hi = c.YRange.Min, c.YRange.Max
	}

	if c.Horizontal {
		s := newScale(lo, hi, b.area.x0, b.area.x1)
		b.valueAxis(s, false)
		band := b.area.height() / float64(n)
		for i, v := range c.Values {
			y := b.area.y0 + band*float64(i) + band*0.15
			b.rect(s.at(lo), y, s.at(v)-s.at(lo), band*0.7, colorAt(c.Colors, i))
			b.text(b.area.x0-8, y+band*0.35+4, truncate(labelAt(c.Labels, i), labelChars), 11, AnchorEnd, colorText)
			if i < len(c.Annotations) {
				b.text(s.at(v)+4, y+band*0.35+4, c.Annotations[i], 10, AnchorStart, colorSubtle)
			}
		}
		return
	}

	s := newScale(lo, hi, b.area.y1, b.area.y0)
	b.valueAxis(s, true)
	band := b.area.width() / float64(n)
	for i, v := range c.Values {
		x := b.area.x0 + band*float64(i) + band*0.15
		top := s.at(v)
		b.rect(x, top, band*0.7, s.at(lo)-top, colorAt(c.Colors, i))
		b.text(x+band*0.35, b.area.y1+16, truncate(labelAt(c.Labels, i), labelChars), 11, AnchorMiddle, colorText)
		if i < len(c.Annotations) {
			b.text(x+band*0.35, top-6, c.Annotations[i], 10, AnchorMiddle, colorSubtle)
		}
	}
	for _, t := range c.Thresholds {
		y := s.at(t.Value)
		b.line(b.area.x0, y, b.area.x1, y, t.Color, 1.5, t.Dash)
		b.text(b.area.x1, y-4, t.Label, 10, AnchorEnd, t.Color)
	}
}

func (b *builder) histogram(c *chart.Chart) {
	if len(c.Bins) == 0 {
		return
	}
	maxCount := 0.0
	for _, bin := range c.Bins {
		maxCount = math.Max(maxCount, float64(bin.Count))
	}
	xs := newScale(c.Bins[0].Lower, c.Bins[len(c.Bins)-1].Upper, b.area.x0, b.area.x1)
	ys := newScale(0, maxCount, b.area.y1, b.area.y0)
	b.valueAxis(ys, true)

	fill := colorAt(c.Colors, 0)
	for _, bin := range c.Bins {
		x0, x1 := xs.at(bin.Lower), xs.at(bin.Upper)
		if x1-x0 < 1 {
			x0, x1 = b.area.x0, b.area.x1
		}
		top := ys.at(float64(bin.Count))
		b.add(Shape{Kind: ShapeRect, X: x0, Y: top, W: x1 - x0, H: b.area.y1 - top,
			Fill: fill, Stroke: colorBackground, StrokeWidth: 1})
	}
	b.text(b.area.x0, b.area.y1+16, formatTick(c.Bins[0].Lower), 11, AnchorStart, colorSubtle)
	b.text(b.area.x1, b.area.y1+16, formatTick(c.Bins[len(c.Bins)-1].Upper), 11, AnchorEnd, colorSubtle)
}

func (b *builder) pie(c *chart.Chart) {
	total := 0.0
	for _, v := range c.Values {
		if v > 0 {
			total += v
		}
	}
	if total == 0 {
		return
	}

	legendW := 160.0
	cx := b.area.x0 + (b.area.width()-legendW)/2
	cy := (b.area.y0 + b.area.y1) / 2
	r := math.Min(b.area.width()-legendW, b.area.height()) / 2

	angle := -math.Pi / 2
	for i, v := range c.Values {
		if v <= 0 {
			continue
		}
		sweep := v / total * 2 * math.Pi
		b.add(Shape{Kind: ShapePolygon, Points: wedge(cx, cy, r, angle, angle+sweep),
			Fill: colorAt(c.Colors, i), Stroke: colorBackground, StrokeWidth: 1})
		angle += sweep

		ly := b.area.y0 + 18*float64(i)
		b.rect(b.area.x1-legendW+10, ly, 12, 12, colorAt(c.Colors, i))
		b.text(b.area.x1-legendW+28, ly+10,
			fmt.Sprintf("%s (%.1f%%)", truncate(labelAt(c.Labels, i), labelChars), v/total*100), 11, AnchorStart, colorText)
	}
	if c.Hole > 0 {
		b.add(Shape{Kind: ShapeCircle, X: cx, Y: cy, R: r * c.Hole, Fill: colorBackground})
	}
}

// wedge approximates a pie slice with a polygon
func wedge(cx, cy, r, from, to float64) []Point {
	steps := int(math.Ceil((to-from)/(math.Pi/90))) + 1
	points := make([]Point, 0, steps+2)
	points = append(points, Point{cx, cy})
	for i := 0; i <= steps; i++ {
		a := from + (to-from)*float64(i)/float64(steps)
		points = append(points, Point{cx + r*math.Cos(a), cy + r*math.Sin(a)})
	}
	return points
}

func (b *builder) boxes(c *chart.Chart) {
	if len(c.Boxes) == 0 {
		return
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, box := range c.Boxes {
		lo = math.Min(lo, box.LowerWhisker)
		hi = math.Max(hi, box.UpperWhisker)
		for _, o := range box.Outliers {
			lo = math.Min(lo, o)
			hi = math.Max(hi, o)
		}
	}
	s := newScale(lo, hi, b.area.y1, b.area.y0)
	b.valueAxis(s, true)

	band := b.area.width() / float64(len(c.Boxes))
	for i, box := range c.Boxes {
		color := colorAt(c.Colors, i)
		mid := b.area.x0 + band*(float64(i)+0.5)
		half := band * 0.25

		b.line(mid, s.at(box.LowerWhisker), mid, s.at(box.Q1), colorAxis, 1, false)
		b.line(mid, s.at(box.Q3), mid, s.at(box.UpperWhisker), colorAxis, 1, false)
		b.line(mid-half/2, s.at(box.LowerWhisker), mid+half/2, s.at(box.LowerWhisker), colorAxis, 1, false)
		b.line(mid-half/2, s.at(box.UpperWhisker), mid+half/2, s.at(box.UpperWhisker), colorAxis, 1, false)
		b.add(Shape{Kind: ShapeRect, X: mid - half, Y: s.at(box.Q3), W: 2 * half, H: s.at(box.Q1) - s.at(box.Q3),
			Fill: color, Stroke: colorAxis, StrokeWidth: 1})
		b.line(mid-half, s.at(box.Median), mid+half, s.at(box.Median), colorText, 2, false)
		for _, o := range box.Outliers {
			b.add(Shape{Kind: ShapeCircle, X: mid, Y: s.at(o), R: 3, Stroke: color, StrokeWidth: 1.2})
		}
		b.text(mid, b.area.y1+16, truncate(box.Name, labelChars), 11, AnchorMiddle, colorText)
	}
}

func (b *builder) series(c *chart.Chart) {
	if len(c.Series) == 0 {
		return
	}

	// the longest categorised series labels the x axis, each label at its own x
	var labelled chart.Series
	xlo, xhi := math.Inf(1), math.Inf(-1)
	ylo, yhi := math.Inf(1), math.Inf(-1)
	for _, s := range c.Series {
		if len(s.Categories) > len(labelled.Categories) {
			labelled = s
		}
		for i := range s.Y {
			x := xAt(s, i)
			xlo, xhi = math.Min(xlo, x), math.Max(xhi, x)
			ylo, yhi = math.Min(ylo, s.Y[i]), math.Max(yhi, s.Y[i])
		}
	}
	if math.IsInf(xlo, 1) {
		return
	}

	xs := newScale(xlo, xhi, b.area.x0, b.area.x1)
	ys := newScale(ylo, yhi, b.area.y1, b.area.y0)
	b.valueAxis(ys, true)
	if categories := labelled.Categories; len(categories) > 0 {
		step := int(math.Ceil(float64(len(categories)) / 8))
		for i := 0; i < len(categories); i += step {
			b.text(xs.at(xAt(labelled, i)), b.area.y1+16, truncate(categories[i], labelChars), 10, AnchorMiddle, colorSubtle)
		}
	} else {
		for _, v := range xs.ticks() {
			b.text(xs.at(v), b.area.y1+16, formatTick(v), 11, AnchorMiddle, colorSubtle)
		}
	}

	for k, s := range c.Series {
		color := s.Color
		if color == "" {
			color = colorAt(c.Colors, k)
		}
		points := make([]Point, len(s.Y))
		for i := range s.Y {
			points[i] = Point{xs.at(xAt(s, i)), ys.at(s.Y[i])}
		}
		if c.Kind == chart.KindLine {
			b.add(Shape{Kind: ShapePolyline, Points: points, Stroke: color, StrokeWidth: 2})
		} else {
			for _, p := range points {
				b.add(Shape{Kind: ShapeCircle, X: p.X, Y: p.Y, R: 3, Fill: color})
			}
		}
		if len(c.Series) > 1 {
			ly := b.area.y0 + 16*float64(k)
			b.rect(b.area.x1-110, ly-9, 10, 10, color)
			b.text(b.area.x1-96, ly, truncate(s.Name, labelChars), 11, AnchorStart, colorText)
		}
	}

	if t := c.Trend; t != nil {
		b.line(xs.at(t.XMin), ys.at(t.At(t.XMin)), xs.at(t.XMax), ys.at(t.At(t.XMax)), chart.ColorPoor, 2, true)
		b.text(b.area.x1, b.area.y0-6, fmt.Sprintf("R² = %.3f", t.RSquared), 11, AnchorEnd, colorSubtle)
	}
}

func xAt(s chart.Series, i int) float64 {
	if i < len(s.X) {
		return s.X[i]
	}
	return float64(i)
}

func (b *builder) heatmap(c *chart.Chart) {
	h := c.Heatmap
	if h == nil || len(h.XLabels) == 0 || len(h.YLabels) == 0 {
		return
	}
	cw := b.area.width() / float64(len(h.XLabels))
	ch := b.area.height() / float64(len(h.YLabels))
	annotate := cw >= 36 && ch >= 18

	for r, row := range h.Cells {
		for col, m := range row {
			x := b.area.x0 + cw*float64(col)
			y := b.area.y0 + ch*float64(r)
			fill := colorUndefined
			if m.Defined() {
				fill = heatColor(h.Scale, m.Float(), h.Min, h.Max)
			}
			b.add(Shape{Kind: ShapeRect, X: x, Y: y, W: cw, H: ch, Fill: fill, Stroke: colorBackground, StrokeWidth: 1})
			if annotate && m.Defined() {
				b.text(x+cw/2, y+ch/2+4, formatTick(m.Float()), 10, AnchorMiddle, colorText)
			}
		}
	}
	for i, label := range h.XLabels {
		b.text(b.area.x0+cw*(float64(i)+0.5), b.area.y1+16, truncate(label, labelChars), 10, AnchorMiddle, colorText)
	}
	for i, label := range h.YLabels {
		b.text(b.area.x0-6, b.area.y0+ch*(float64(i)+0.5)+4, truncate(label, labelChars), 10, AnchorEnd, colorText)
	}
}

// heatColor maps v onto the named scale: RdBu_r runs blue to red through white,
// anything else is a white to blue ramp
func heatColor(name string, v, lo, hi float64) string {
	t := 0.5
	if hi > lo {
		t = (v - lo) / (hi - lo)
	}
	t = math.Max(0, math.Min(1, t))

	if strings.EqualFold(name, "RdBu_r") {
		if t < 0.5 {
			return mix(rgb{33, 102, 172}, rgb{247, 247, 247}, t*2).hex()
		}
		return mix(rgb{247, 247, 247}, rgb{178, 24, 43}, (t-0.5)*2).hex()
	}
	return mix(rgb{247, 251, 255}, rgb{8, 48, 107}, t).hex()
}

type rgb struct{ r, g, b float64 }

func mix(a, b rgb, t float64) rgb {
	return rgb{a.r + (b.r-a.r)*t, a.g + (b.g-a.g)*t, a.b + (b.b-a.b)*t}
}

func (c rgb) hex() string {
	return fmt.Sprintf("#%02x%02x%02x", uint8(math.Round(c.r)), uint8(math.Round(c.g)), uint8(math.Round(c.b)))
}

func colorAt(colors []string, i int) string {
	if len(colors) == 0 {
		return chart.Color(i)
	}
	return colors[i%len(colors)]
}

func labelAt(labels []string, i int) string {
	if i < len(labels) {
		return labels[i]
	}
	return ""
}

func maxOf(values []float64) float64 {
	m := 0.0
	for _, v := range values {
		if v > m {
			m = v
		}
	}
	return m
}

func formatTick(v float64) string {
	switch {
	case v == 0:
		return "0"
	case math.Abs(v) >= 1e6:
		return fmt.Sprintf("%.1fM", v/1e6)
	case math.Abs(v) >= 1e4:
		return fmt.Sprintf("%.0fk", v/1e3)
	default:
		return fmt.Sprintf("%.3g", v)
	}
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
