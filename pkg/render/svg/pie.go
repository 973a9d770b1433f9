package svg

import (
	"fmt"
	"math"
	"strings"

	"github.com/matzehuels/crimeviz/pkg/chart/palette"
	"github.com/matzehuels/crimeviz/pkg/chart/pie"
)

// Layer names used by DrawPie.
const (
	LayerSlices  = "slices"
	LayerLeaders = "leaders"
	LayerLabels  = "labels"
)

const fullTurn = 2 * math.Pi

// DrawPie draws (or redraws) a pie layout. Slices, leader lines and labels
// are keyed by category; the surface afterwards holds exactly the elements
// of l.
func (s *Surface) DrawPie(l pie.Layout, p palette.Palette) JoinStats {
	centre := fmt.Sprintf(` transform="translate(%s,%s)"`, num(s.Width/2), num(s.Height/2))

	wedges := make([]Node, 0, len(l.Slices))
	for _, sl := range l.Slices {
		key := "slice-" + sl.Category
		wedges = append(wedges, Node{Key: key, Markup: fmt.Sprintf(
			`<path id="%s" class="slice" d="%s" fill="%s" stroke="white" stroke-width="2" data-category="%s" data-count="%d"/>`,
			s.ElementID(key), ArcPath(l.OuterRadius, l.InnerRadius, sl.StartAngle, sl.EndAngle),
			escape(p.Lookup(sl.Category)), escape(sl.Category), sl.Count)})
	}

	var leaders, labels []Node
	for _, lbl := range l.VisibleLabels() {
		key := "leader-" + lbl.Category
		pts := make([]string, len(lbl.Leader))
		for i, pt := range lbl.Leader {
			pts[i] = num(pt.X) + "," + num(pt.Y)
		}
		leaders = append(leaders, Node{Key: key, Markup: fmt.Sprintf(
			`<polyline id="%s" class="leader" points="%s" fill="none" stroke="black" stroke-width="1"/>`,
			s.ElementID(key), strings.Join(pts, " "))})

		key = "label-" + lbl.Category
		labels = append(labels, Node{Key: key, Markup: fmt.Sprintf(
			`<text id="%s" class="label" x="%s" y="%s" text-anchor="%s" dominant-baseline="middle" font-family="sans-serif" font-size="12">%s</text>`,
			s.ElementID(key), num(lbl.Anchor.X), num(lbl.Anchor.Y), lbl.TextAnchor, escape(lbl.Text))})
	}

	st := s.Join(LayerSlices, centre, wedges)
	add(&st, s.Join(LayerLeaders, centre, leaders))
	add(&st, s.Join(LayerLabels, centre, labels))
	return st
}

func add(dst *JoinStats, src JoinStats) {
	dst.Updated += src.Updated
	dst.Entered += src.Entered
	dst.Exited += src.Exited
}

// ArcPath returns the SVG path of a circular (inner == 0) or annular sector
// between two clockwise-from-twelve angles.
func ArcPath(outer, inner, start, end float64) string {
	span := end - start
	if span >= fullTurn-1e-9 {
		return ringPath(outer, inner)
	}
	large := 0
	if span > math.Pi {
		large = 1
	}
	o0, o1 := pie.PolarPoint(outer, start), pie.PolarPoint(outer, end)

	var b strings.Builder
	fmt.Fprintf(&b, "M%s,%sA%s,%s,0,%d,1,%s,%s",
		num(o0.X), num(o0.Y), num(outer), num(outer), large, num(o1.X), num(o1.Y))
	if inner > 0 {
		i0, i1 := pie.PolarPoint(inner, start), pie.PolarPoint(inner, end)
		fmt.Fprintf(&b, "L%s,%sA%s,%s,0,%d,0,%s,%s",
			num(i1.X), num(i1.Y), num(inner), num(inner), large, num(i0.X), num(i0.Y))
	} else {
		b.WriteString("L0,0")
	}
	b.WriteString("Z")
	return b.String()
}

// ringPath draws a full disc or annulus as two half arcs per circle.
func ringPath(outer, inner float64) string {
	r := num(outer)
	p := fmt.Sprintf("M0,-%sA%s,%s,0,1,1,0,%sA%s,%s,0,1,1,0,-%sZ", r, r, r, r, r, r, r)
	if inner > 0 {
		ri := num(inner)
		p += fmt.Sprintf("M0,-%sA%s,%s,0,1,0,0,%sA%s,%s,0,1,0,0,-%sZ", ri, ri, ri, ri, ri, ri, ri)
	}
	return p
}

// SVGOption configures a one-shot render.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	id      string
	title   string
	palette *palette.Palette
}

// WithElementID sets the surface ID of a one-shot render.
func WithElementID(id string) SVGOption { return func(r *svgRenderer) { r.id = id } }

// WithDocumentTitle sets the document title of a one-shot render.
func WithDocumentTitle(t string) SVGOption { return func(r *svgRenderer) { r.title = t } }

// WithPalette sets the colour mapping. Pies default to Dark2 over the
// known categories.
func WithPalette(p palette.Palette) SVGOption { return func(r *svgRenderer) { r.palette = &p } }

func newSVGRenderer(opts ...SVGOption) svgRenderer {
	var r svgRenderer
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

func (r svgRenderer) surface(w, h float64) *Surface {
	var so []SurfaceOption
	if r.id != "" {
		so = append(so, WithID(r.id))
	}
	if r.title != "" {
		so = append(so, WithTitle(r.title))
	}
	return NewSurface(w, h, so...)
}

// RenderPie renders a pie layout to a standalone SVG document.
func RenderPie(l pie.Layout, opts ...SVGOption) []byte {
	r := newSVGRenderer(opts...)
	p := palette.Categories()
	if r.palette != nil {
		p = *r.palette
	}
	s := r.surface(l.Width, l.Height)
	s.DrawPie(l, p)
	return s.Bytes()
}
