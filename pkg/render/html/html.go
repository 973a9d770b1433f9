// Package html builds an interactive HTML page of crime charts with
// go-echarts: one pie per dataset and, optionally, the grouped bar chart.
//
// Slice order, colours and radii come from the layouts; label placement on
// the page is left to ECharts.
package html

import (
	"bytes"
	"io"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/matzehuels/crimeviz/pkg/chart/bar"
	"github.com/matzehuels/crimeviz/pkg/chart/palette"
	"github.com/matzehuels/crimeviz/pkg/chart/pie"
	"github.com/matzehuels/crimeviz/pkg/errors"
)

// DefaultTitle is the page title when none is set.
const DefaultTitle = "Crime statistics"

// PieChart is one named pie on the page.
type PieChart struct {
	Name   string
	Layout pie.Layout
}

// Page collects charts for one HTML document.
type Page struct {
	Title   string
	Palette palette.Palette
	Pies    []PieChart
	Bar     *bar.Layout
}

// NewPage creates a page using the category palette.
func NewPage(title string) *Page {
	if title == "" {
		title = DefaultTitle
	}
	return &Page{Title: title, Palette: palette.Categories()}
}

// AddPie appends a pie chart.
func (p *Page) AddPie(name string, l pie.Layout) *Page {
	p.Pies = append(p.Pies, PieChart{Name: name, Layout: l})
	return p
}

// SetBar sets the grouped bar chart.
func (p *Page) SetBar(l bar.Layout) *Page {
	p.Bar = &l
	return p
}

// Render writes the page.
func (p *Page) Render(w io.Writer) error {
	if len(p.Pies) == 0 && p.Bar == nil {
		return errors.New(errors.ErrCodeInvalidInput, "page has no charts")
	}
	page := components.NewPage()
	page.PageTitle = p.Title
	for _, pc := range p.Pies {
		page.AddCharts(p.pie(pc))
	}
	if p.Bar != nil {
		page.AddCharts(p.bar(*p.Bar))
	}
	if err := page.Render(w); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "render html page")
	}
	return nil
}

// Bytes renders the page into memory.
func (p *Page) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := p.Render(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (p *Page) pie(pc PieChart) *charts.Pie {
	c := charts.NewPie()
	c.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: p.Title,
			Width:     px(pc.Layout.Width),
			Height:    px(pc.Layout.Height),
		}),
		charts.WithTitleOpts(opts.Title{Title: pc.Name, Left: "center"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
	)

	data := make([]opts.PieData, 0, len(pc.Layout.Slices))
	for _, s := range pc.Layout.Slices {
		data = append(data, opts.PieData{
			Name:      s.Category,
			Value:     s.Count,
			ItemStyle: &opts.ItemStyle{Color: p.Palette.Lookup(s.Category), BorderColor: "white", BorderWidth: 2},
		})
	}

	c.AddSeries(pc.Name, data).SetSeriesOptions(
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Formatter: "{b}: {d}%"}),
		charts.WithPieChartOpts(opts.PieChart{Radius: []float64{pc.Layout.InnerRadius, pc.Layout.OuterRadius}}),
	)
	return c
}

func (p *Page) bar(l bar.Layout) *charts.Bar {
	c := charts.NewBar()
	c.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: p.Title,
			Width:     px(l.Width),
			Height:    px(l.Height),
		}),
		charts.WithTitleOpts(opts.Title{Title: "Total crimes by borough"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Right: "0"}),
		charts.WithYAxisOpts(opts.YAxis{Min: l.YDomain[0], Max: l.YDomain[1]}),
	)

	periods := make([]string, len(l.Groups))
	for i, g := range l.Groups {
		periods[i] = g.Period
	}
	c.SetXAxis(periods)

	fills := make(map[string]string, len(l.Legend))
	for _, e := range l.Legend {
		fills[e.Borough] = e.Fill
	}
	for _, b := range l.Boroughs() {
		data := make([]opts.BarData, len(l.Groups))
		for gi, g := range l.Groups {
			total := 0.0
			for _, r := range g.Bars {
				if r.Borough == b {
					total += r.Value
				}
			}
			data[gi] = opts.BarData{Value: total}
		}
		c.AddSeries(b, data, charts.WithItemStyleOpts(opts.ItemStyle{Color: fills[b]}))
	}
	return c
}

func px(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "px"
}
