// Package raster writes charts as PNG without external tools.
//
// Pies are drawn with go-chart and grouped bars with gonum/plot. The
// output uses the same slice order and colours as the SVG renderer but the
// libraries' own label placement; use [render.ToPNG] on an SVG document
// when the elbow leader lines must appear in the PNG.
//
// [render.ToPNG]: github.com/matzehuels/crimeviz/pkg/render#ToPNG
package raster

import (
	"bytes"
	"image/color"
	"io"
	"strings"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/matzehuels/crimeviz/pkg/chart/bar"
	"github.com/matzehuels/crimeviz/pkg/chart/palette"
	"github.com/matzehuels/crimeviz/pkg/chart/pie"
	"github.com/matzehuels/crimeviz/pkg/errors"
)

// PieOption configures PiePNG.
type PieOption func(*pieRenderer)

type pieRenderer struct {
	palette palette.Palette
	title   string
}

// WithPalette sets the slice colours.
func WithPalette(p palette.Palette) PieOption { return func(r *pieRenderer) { r.palette = p } }

// WithTitle sets the chart title.
func WithTitle(t string) PieOption { return func(r *pieRenderer) { r.title = t } }

// PiePNG renders a pie layout as PNG. Zero-count slices are skipped since
// go-chart cannot draw them, and slices below the label threshold are
// drawn without a label. An empty layout gives a blank canvas of the
// layout's size.
func PiePNG(w io.Writer, l pie.Layout, opts ...PieOption) error {
	r := pieRenderer{palette: palette.Categories()}
	for _, opt := range opts {
		opt(&r)
	}

	values := make([]chart.Value, 0, len(l.Slices))
	for i, s := range l.Slices {
		if s.Count == 0 {
			continue
		}
		label := ""
		if l.Labels[i] != nil {
			label = l.Labels[i].Text
		}
		values = append(values, chart.Value{
			Value: float64(s.Count),
			Label: label,
			Style: chart.Style{
				FillColor:   hexColor(r.palette.Lookup(s.Category)),
				StrokeColor: drawing.ColorWhite,
				StrokeWidth: 2,
			},
		})
	}
	if len(values) == 0 {
		return blank(w, l.Width, l.Height)
	}

	pc := chart.PieChart{
		Title:  r.title,
		Width:  int(l.Width),
		Height: int(l.Height),
		Values: values,
	}
	if err := pc.Render(chart.PNG, w); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "render pie png")
	}
	return nil
}

// BarPNG renders a grouped bar layout as PNG, one bar series per borough.
func BarPNG(w io.Writer, l bar.Layout) error {
	if len(l.Groups) == 0 {
		return errors.New(errors.ErrCodeInvalidData, "nothing to draw: no records")
	}

	p := plot.New()
	p.Y.Label.Text = "Total crimes"
	p.Y.Min, p.Y.Max = l.YDomain[0], l.YDomain[1]
	p.Legend.Top = true

	periods := make([]string, len(l.Groups))
	for i, g := range l.Groups {
		periods[i] = g.Period
	}
	p.NominalX(periods...)

	boroughs := l.Boroughs()
	fills := make(map[string]string, len(l.Legend))
	for _, e := range l.Legend {
		fills[e.Borough] = e.Fill
	}

	width := vg.Points(max(4, 0.8*l.Groups[0].Width/float64(max(1, len(boroughs)))))
	for i, b := range boroughs {
		values := make(plotter.Values, len(l.Groups))
		for gi, g := range l.Groups {
			for _, r := range g.Bars {
				if r.Borough == b {
					values[gi] += r.Value
				}
			}
		}
		bc, err := plotter.NewBarChart(values, width)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidData, err, "bar series %s", b)
		}
		bc.Color = rgba(fills[b])
		bc.LineStyle.Width = 0
		bc.Offset = vg.Length(float64(i)-float64(len(boroughs)-1)/2) * width
		p.Add(bc)
		p.Legend.Add(b, bc)
	}

	wt, err := p.WriterTo(vg.Points(l.Width), vg.Points(l.Height), "png")
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "bar png writer")
	}
	if _, err := wt.WriteTo(w); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write bar png")
	}
	return nil
}

// blank writes an empty transparent PNG.
func blank(w io.Writer, width, height float64) error {
	r, err := chart.PNG(max(1, int(width)), max(1, int(height)))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "blank png")
	}
	if err := r.Save(w); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write blank png")
	}
	return nil
}

// PieBytes is PiePNG into a buffer.
func PieBytes(l pie.Layout, opts ...PieOption) ([]byte, error) {
	var buf bytes.Buffer
	if err := PiePNG(&buf, l, opts...); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BarBytes is BarPNG into a buffer.
func BarBytes(l bar.Layout) ([]byte, error) {
	var buf bytes.Buffer
	if err := BarPNG(&buf, l); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func hexColor(hex string) drawing.Color {
	return drawing.ColorFromHex(strings.TrimPrefix(hex, "#"))
}

func rgba(hex string) color.Color {
	c, err := palette.Parse(hex)
	if err != nil {
		return color.Gray{Y: 128}
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}
