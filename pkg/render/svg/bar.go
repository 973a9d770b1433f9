package svg

import (
	"fmt"
	"strings"

	"github.com/matzehuels/crimeviz/pkg/chart/bar"
)

// Layer names used by DrawBar.
const (
	LayerXAxis  = "x-axis"
	LayerYAxis  = "y-axis"
	LayerBars   = "bars"
	LayerLegend = "legend"
)

const tickSize = 6

// DrawBar draws (or redraws) a grouped bar layout. Period groups, axis
// ticks and legend rows are keyed by their labels. Every layer sits in the
// plot area offset by the layout margins.
func (s *Surface) DrawBar(l bar.Layout) JoinStats {
	plot := fmt.Sprintf(` transform="translate(%s,%s)"`, num(l.Margin.Left), num(l.Margin.Top))
	xAxis := fmt.Sprintf(` transform="translate(%s,%s)" font-family="sans-serif" font-size="10" text-anchor="middle"`,
		num(l.Margin.Left), num(l.Margin.Top+l.InnerHeight))
	yAxis := plot + ` font-family="sans-serif" font-size="10" text-anchor="end"`
	legend := plot + ` font-family="sans-serif" font-size="10" text-anchor="end"`

	xNodes := []Node{{Key: "domain", Markup: fmt.Sprintf(
		`<path class="domain" stroke="currentColor" fill="none" d="M0.5,%dV0.5H%sV%d"/>`, tickSize, num(l.InnerWidth+0.5), tickSize)}}
	for _, t := range l.XTicks {
		key := "xtick-" + t.Label
		xNodes = append(xNodes, Node{Key: key, Markup: fmt.Sprintf(
			`<g id="%s" class="tick" transform="translate(%s,0)"><line stroke="currentColor" y2="%d"/><text fill="currentColor" y="9" dy="0.71em">%s</text></g>`,
			s.ElementID(key), num(t.Pos), tickSize, escape(t.Label))})
	}

	yNodes := []Node{{Key: "domain", Markup: fmt.Sprintf(
		`<path class="domain" stroke="currentColor" fill="none" d="M-%d,%sH0.5V0.5H-%d"/>`, tickSize, num(l.InnerHeight+0.5), tickSize)}}
	for _, t := range l.YTicks {
		key := "ytick-" + t.Label
		yNodes = append(yNodes, Node{Key: key, Markup: fmt.Sprintf(
			`<g id="%s" class="tick" transform="translate(0,%s)"><line stroke="currentColor" x2="-%d"/><text fill="currentColor" x="-9" dy="0.32em">%s</text></g>`,
			s.ElementID(key), num(t.Pos), tickSize, escape(t.Label))})
	}

	groups := make([]Node, 0, len(l.Groups))
	for _, g := range l.Groups {
		key := "period-" + g.Period
		var b strings.Builder
		fmt.Fprintf(&b, `<g id="%s" class="period" transform="translate(%s,0)">`, s.ElementID(key), num(g.X))
		for _, r := range g.Bars {
			fmt.Fprintf(&b, `<rect x="%s" y="%s" width="%s" height="%s" fill="%s" data-borough="%s" data-value="%s"/>`,
				num(r.X), num(r.Y), num(r.Width), num(r.Height), escape(r.Fill), escape(r.Borough), num(r.Value))
		}
		b.WriteString("</g>")
		groups = append(groups, Node{Key: key, Markup: b.String()})
	}

	rows := make([]Node, 0, len(l.Legend))
	for _, e := range l.Legend {
		key := "legend-" + e.Borough
		rows = append(rows, Node{Key: key, Markup: fmt.Sprintf(
			`<g id="%s" transform="translate(0,%s)"><rect x="%s" width="%s" height="%s" fill="%s"/><text x="%s" y="9.5" dy="0.32em">%s</text></g>`,
			s.ElementID(key), num(e.Y), num(l.InnerWidth-bar.LegendSwatch), num(bar.LegendSwatch), num(bar.LegendSwatch),
			escape(e.Fill), num(l.InnerWidth-bar.LegendSwatch-5), escape(e.Borough))})
	}

	st := s.Join(LayerXAxis, xAxis, xNodes)
	add(&st, s.Join(LayerYAxis, yAxis, yNodes))
	add(&st, s.Join(LayerBars, plot, groups))
	add(&st, s.Join(LayerLegend, legend, rows))
	return st
}

// RenderBar renders a grouped bar layout to a standalone SVG document sized
// to the full chart including margins.
func RenderBar(l bar.Layout, opts ...SVGOption) []byte {
	r := newSVGRenderer(opts...)
	s := r.surface(l.Width, l.Height)
	s.DrawBar(l)
	return s.Bytes()
}
