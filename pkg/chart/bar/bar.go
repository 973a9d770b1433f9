// Package bar computes the grouped bar chart layout: one group of bars per
// time period, one bar per borough within each group.
//
// Groups are positioned by an outer band scale over periods and bars by an
// inner band scale over boroughs spanning one group's bandwidth. Heights
// come from a linear scale over [0, max total] extended to round bounds.
// All positions are relative to the plot area, which sits inside the frame
// offset by the top and left margins.
package bar

import (
	"strconv"

	"github.com/matzehuels/crimeviz/pkg/chart/palette"
	"github.com/matzehuels/crimeviz/pkg/chart/scale"
	"github.com/matzehuels/crimeviz/pkg/crime"
	"github.com/matzehuels/crimeviz/pkg/errors"
)

// Defaults.
const (
	DefaultWidth        = 960.0
	DefaultHeight       = 500.0
	DefaultPaddingInner = 0.1
	DefaultGroupPadding = 0.05
	DefaultTickCount    = 10
	DefaultLegendRow    = 20.0
	LegendSwatch        = 19.0
)

// Margins around the plot area.
type Margins struct {
	Top    float64 `json:"top" toml:"top"`
	Right  float64 `json:"right" toml:"right"`
	Bottom float64 `json:"bottom" toml:"bottom"`
	Left   float64 `json:"left" toml:"left"`
}

// DefaultMargins leaves room for the axes.
var DefaultMargins = Margins{Top: 20, Right: 20, Bottom: 60, Left: 40}

// Options controls the bar chart geometry.
type Options struct {
	Width        float64           `json:"width" toml:"width"`
	Height       float64           `json:"height" toml:"height"`
	Margin       Margins           `json:"margin" toml:"margin"`
	PaddingInner float64           `json:"padding_inner" toml:"padding_inner"` // between period groups
	GroupPadding float64           `json:"group_padding" toml:"group_padding"` // around bars within a group
	TickCount    int               `json:"tick_count" toml:"tick_count"`
	LegendRow    float64           `json:"legend_row" toml:"legend_row"`
	Colors       map[string]string `json:"colors,omitempty" toml:"colors"` // borough colour overrides
}

// DefaultOptions returns the standard 960×500 layout.
func DefaultOptions() Options {
	return Options{
		Width:        DefaultWidth,
		Height:       DefaultHeight,
		Margin:       DefaultMargins,
		PaddingInner: DefaultPaddingInner,
		GroupPadding: DefaultGroupPadding,
		TickCount:    DefaultTickCount,
		LegendRow:    DefaultLegendRow,
	}
}

// SetDefaults fills zero-valued fields.
func (o *Options) SetDefaults() {
	d := DefaultOptions()
	if o.Width == 0 {
		o.Width = d.Width
	}
	if o.Height == 0 {
		o.Height = d.Height
	}
	if o.Margin == (Margins{}) {
		o.Margin = d.Margin
	}
	if o.PaddingInner == 0 {
		o.PaddingInner = d.PaddingInner
	}
	if o.GroupPadding == 0 {
		o.GroupPadding = d.GroupPadding
	}
	if o.TickCount == 0 {
		o.TickCount = d.TickCount
	}
	if o.LegendRow == 0 {
		o.LegendRow = d.LegendRow
	}
}

// Validate checks the option ranges.
func (o Options) Validate() error {
	if o.InnerWidth() <= 0 || o.InnerHeight() <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "margins leave no plot area in %vx%v", o.Width, o.Height)
	}
	if o.PaddingInner < 0 || o.PaddingInner >= 1 || o.GroupPadding < 0 || o.GroupPadding >= 1 {
		return errors.New(errors.ErrCodeInvalidInput, "padding must be in [0, 1)")
	}
	if o.TickCount < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "tick count %d must not be negative", o.TickCount)
	}
	return palette.Palette{Colors: o.Colors}.Validate()
}

// InnerWidth is the plot area width.
func (o Options) InnerWidth() float64 { return o.Width - o.Margin.Left - o.Margin.Right }

// InnerHeight is the plot area height.
func (o Options) InnerHeight() float64 { return o.Height - o.Margin.Top - o.Margin.Bottom }

// Bar is one rectangle. X is relative to its group.
type Bar struct {
	Borough string  `json:"borough"`
	Period  string  `json:"period"`
	Value   float64 `json:"value"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Fill    string  `json:"fill"`
}

// Group is the set of bars for one time period.
type Group struct {
	Period string  `json:"period"`
	X      float64 `json:"x"`
	Width  float64 `json:"width"`
	Bars   []Bar   `json:"bars"`
}

// Tick is an axis tick at Pos along its axis.
type Tick struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Pos   float64 `json:"pos"`
}

// LegendEntry is one legend row; Y is the row's top edge.
type LegendEntry struct {
	Borough string  `json:"borough"`
	Fill    string  `json:"fill"`
	Y       float64 `json:"y"`
}

// Layout is the computed grouped bar chart.
type Layout struct {
	Width       float64       `json:"width"`
	Height      float64       `json:"height"`
	Margin      Margins       `json:"margin"`
	InnerWidth  float64       `json:"inner_width"`
	InnerHeight float64       `json:"inner_height"`
	YDomain     [2]float64    `json:"y_domain"`
	Groups      []Group       `json:"groups"`
	XTicks      []Tick        `json:"x_ticks"`
	YTicks      []Tick        `json:"y_ticks"`
	Legend      []LegendEntry `json:"legend"`
}

// Boroughs returns the distinct boroughs drawn, in first-seen order.
func (l Layout) Boroughs() []string {
	out := make([]string, len(l.Legend))
	for i, e := range l.Legend {
		out[len(out)-1-i] = e.Borough
	}
	return out
}

// Compute lays out records as a grouped bar chart.
func Compute(records []crime.Record, opts Options) (Layout, error) {
	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return Layout{}, err
	}
	if err := crime.ValidateRecords(records); err != nil {
		return Layout{}, err
	}

	innerW, innerH := opts.InnerWidth(), opts.InnerHeight()
	groups := crime.GroupByPeriod(records)
	boroughs := crime.Boroughs(records)

	periods := make([]string, len(groups))
	for i, g := range groups {
		periods[i] = g.Period
	}

	x0 := scale.NewBand(periods, 0, innerW, true).WithPaddingInner(opts.PaddingInner)
	x1 := scale.NewBand(boroughs, 0, x0.Bandwidth(), true).WithPadding(opts.GroupPadding)

	top := crime.MaxTotal(records)
	if top == 0 {
		top = 1
	}
	y := scale.NewLinear(0, top, innerH, 0, true).Nice(opts.TickCount)

	colors := palette.Ordinal(boroughs, palette.Category10).With(opts.Colors)

	l := Layout{
		Width:       opts.Width,
		Height:      opts.Height,
		Margin:      opts.Margin,
		InnerWidth:  innerW,
		InnerHeight: innerH,
		YDomain:     y.Domain,
	}

	for _, g := range groups {
		gx, _ := x0.Pos(g.Period)
		group := Group{Period: g.Period, X: gx, Width: x0.Bandwidth()}
		for _, r := range g.Records {
			bx, _ := x1.Pos(r.Borough)
			by := y.Map(r.TotalCrimes)
			group.Bars = append(group.Bars, Bar{
				Borough: r.Borough,
				Period:  r.TimePeriod,
				Value:   r.TotalCrimes,
				X:       bx,
				Y:       by,
				Width:   x1.Bandwidth(),
				Height:  innerH - by,
				Fill:    colors.Lookup(r.Borough),
			})
		}
		l.Groups = append(l.Groups, group)
		l.XTicks = append(l.XTicks, Tick{Label: g.Period, Pos: gx + x0.Bandwidth()/2})
	}

	for _, v := range y.Ticks(opts.TickCount) {
		l.YTicks = append(l.YTicks, Tick{
			Label: strconv.FormatFloat(v, 'f', -1, 64),
			Value: v,
			Pos:   y.Map(v),
		})
	}

	for i := range boroughs {
		b := boroughs[len(boroughs)-1-i]
		l.Legend = append(l.Legend, LegendEntry{
			Borough: b,
			Fill:    colors.Lookup(b),
			Y:       float64(i) * opts.LegendRow,
		})
	}
	return l, nil
}
