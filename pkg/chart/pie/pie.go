package pie

import (
	"fmt"
	"math"

	"github.com/matzehuels/crimeviz/pkg/crime"
	"github.com/matzehuels/crimeviz/pkg/errors"
)

// Default geometry. Ratios are relative to the base radius.
const (
	DefaultWidth           = 450.0
	DefaultHeight          = 450.0
	DefaultMargin          = 40.0
	DefaultOuterRatio      = 0.8
	DefaultInnerRatio      = 0.0
	DefaultLeaderRatio     = 0.9
	DefaultSnapRatio       = 0.95
	DefaultTextRatio       = 0.98
	DefaultMinLabelPercent = 0.1
)

// Text anchors for labels.
const (
	AnchorStart = "start"
	AnchorEnd   = "end"
)

// Options controls pie geometry and label suppression.
type Options struct {
	Width  float64 `json:"width" toml:"width"`
	Height float64 `json:"height" toml:"height"`
	Margin float64 `json:"margin" toml:"margin"`

	OuterRatio  float64 `json:"outer_ratio" toml:"outer_ratio"`   // pie outer radius
	InnerRatio  float64 `json:"inner_ratio" toml:"inner_ratio"`   // > 0 draws an annulus
	LeaderRatio float64 `json:"leader_ratio" toml:"leader_ratio"` // leader line elbow
	SnapRatio   float64 `json:"snap_ratio" toml:"snap_ratio"`     // leader line end
	TextRatio   float64 `json:"text_ratio" toml:"text_ratio"`     // label text position

	// MinLabelPercent suppresses labels of slices whose share, in percent,
	// is strictly below it.
	MinLabelPercent float64 `json:"min_label_percent" toml:"min_label_percent"`
}

// DefaultOptions returns the standard 450×450 chart geometry.
func DefaultOptions() Options {
	return Options{
		Width:           DefaultWidth,
		Height:          DefaultHeight,
		Margin:          DefaultMargin,
		OuterRatio:      DefaultOuterRatio,
		InnerRatio:      DefaultInnerRatio,
		LeaderRatio:     DefaultLeaderRatio,
		SnapRatio:       DefaultSnapRatio,
		TextRatio:       DefaultTextRatio,
		MinLabelPercent: DefaultMinLabelPercent,
	}
}

// SetDefaults fills zero-valued geometry fields. InnerRatio and
// MinLabelPercent keep zero as a meaningful value.
func (o *Options) SetDefaults() {
	d := DefaultOptions()
	if o.Width == 0 {
		o.Width = d.Width
	}
	if o.Height == 0 {
		o.Height = d.Height
	}
	if o.OuterRatio == 0 {
		o.OuterRatio = d.OuterRatio
	}
	if o.LeaderRatio == 0 {
		o.LeaderRatio = d.LeaderRatio
	}
	if o.SnapRatio == 0 {
		o.SnapRatio = d.SnapRatio
	}
	if o.TextRatio == 0 {
		o.TextRatio = d.TextRatio
	}
}

// Validate checks the option ranges.
func (o Options) Validate() error {
	if o.Width <= 0 || o.Height <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "chart size must be positive, got %vx%v", o.Width, o.Height)
	}
	if o.Margin < 0 || 2*o.Margin >= min(o.Width, o.Height) {
		return errors.New(errors.ErrCodeInvalidInput, "margin %v leaves no room for the pie", o.Margin)
	}
	if o.InnerRatio < 0 || o.InnerRatio >= o.OuterRatio {
		return errors.New(errors.ErrCodeInvalidInput, "inner ratio %v must be in [0, outer ratio %v)", o.InnerRatio, o.OuterRatio)
	}
	if o.MinLabelPercent < 0 || o.MinLabelPercent > 100 {
		return errors.New(errors.ErrCodeInvalidInput, "min label percent %v must be in [0, 100]", o.MinLabelPercent)
	}
	return nil
}

// BaseRadius is half the smaller frame side minus the margin.
func (o Options) BaseRadius() float64 {
	return min(o.Width, o.Height)/2 - o.Margin
}

// Point is a position relative to the pie centre; y grows downwards.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Slice is one angular segment of the pie.
type Slice struct {
	Category   string  `json:"category"`
	Count      int     `json:"count"`
	Share      float64 `json:"share"` // count / total, in [0, 1]
	StartAngle float64 `json:"start_angle"`
	EndAngle   float64 `json:"end_angle"`
	Index      int     `json:"index"`
}

// Span returns the slice's angular width.
func (s Slice) Span() float64 { return s.EndAngle - s.StartAngle }

// MidAngle returns the angular bisector of the slice.
func (s Slice) MidAngle() float64 { return (s.StartAngle + s.EndAngle) / 2 }

// Percent returns the share as a percentage.
func (s Slice) Percent() float64 { return s.Share * 100 }

// Label is the external annotation of a slice.
type Label struct {
	Category   string   `json:"category"`
	Text       string   `json:"text"`
	Anchor     Point    `json:"anchor"`
	TextAnchor string   `json:"text_anchor"`
	Leader     [3]Point `json:"leader"`
}

// Layout is the computed geometry of one pie chart.
type Layout struct {
	Width       float64  `json:"width"`
	Height      float64  `json:"height"`
	Radius      float64  `json:"radius"` // base radius
	OuterRadius float64  `json:"outer_radius"`
	InnerRadius float64  `json:"inner_radius"`
	Total       int      `json:"total"`
	Slices      []Slice  `json:"slices"`
	Labels      []*Label `json:"labels"` // parallel to Slices; nil when suppressed
}

// VisibleLabels returns the non-suppressed labels in slice order.
func (l Layout) VisibleLabels() []Label {
	var out []Label
	for _, lbl := range l.Labels {
		if lbl != nil {
			out = append(out, *lbl)
		}
	}
	return out
}

// Compute lays out a pie chart for counts.
//
// Empty counts produce an empty layout and no error. Non-empty counts must
// have a positive total; a zero total has no defined proportions and is
// rejected with ErrCodeInvalidData, as are negative counts.
func Compute(counts crime.Counts, opts Options) (Layout, error) {
	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return Layout{}, err
	}
	if err := counts.Validate(); err != nil {
		return Layout{}, err
	}

	base := opts.BaseRadius()
	l := Layout{
		Width:       opts.Width,
		Height:      opts.Height,
		Radius:      base,
		OuterRadius: base * opts.OuterRatio,
		InnerRadius: base * opts.InnerRatio,
		Total:       counts.Total(),
	}

	entries := counts.Sorted()
	if len(entries) == 0 {
		return l, nil
	}
	if l.Total == 0 {
		return Layout{}, errors.New(errors.ErrCodeInvalidData, "total count is zero; proportions are undefined")
	}

	l.Slices = make([]Slice, len(entries))
	l.Labels = make([]*Label, len(entries))

	angle := 0.0
	total := float64(l.Total)
	for i, e := range entries {
		share := float64(e.Count) / total
		end := angle + share*2*math.Pi
		if i == len(entries)-1 {
			end = 2 * math.Pi
		}
		s := Slice{
			Category:   e.Category,
			Count:      e.Count,
			Share:      share,
			StartAngle: angle,
			EndAngle:   end,
			Index:      i,
		}
		l.Slices[i] = s
		if ShowLabel(s, opts.MinLabelPercent) {
			lbl := PlaceLabel(s, l.OuterRadius, base, opts)
			l.Labels[i] = &lbl
		}
		angle = end
	}
	return l, nil
}

// ShowLabel reports whether a slice's share reaches the label threshold.
func ShowLabel(s Slice, minPercent float64) bool {
	return s.Percent() >= minPercent
}

// PlaceLabel computes the leader line and text position for a slice.
// outer is the pie's outer radius and base the radius the label ratios
// refer to.
func PlaceLabel(s Slice, outer, base float64, opts Options) Label {
	mid := s.MidAngle()
	side := Side(mid)

	a := PolarPoint(outer, mid)
	b := PolarPoint(base*opts.LeaderRatio, mid)
	c := Point{X: side * base * opts.SnapRatio, Y: b.Y}

	return Label{
		Category:   s.Category,
		Text:       LabelText(s.Category, s.Share),
		Anchor:     Point{X: side * base * opts.TextRatio, Y: b.Y},
		TextAnchor: TextAnchor(mid),
		Leader:     [3]Point{a, b, c},
	}
}

// Side returns +1 for mid-angles on the right half (strictly below π) and
// -1 otherwise.
func Side(midAngle float64) float64 {
	if midAngle < math.Pi {
		return 1
	}
	return -1
}

// TextAnchor returns "start" for mid-angles strictly below π and "end"
// otherwise.
func TextAnchor(midAngle float64) string {
	if midAngle < math.Pi {
		return AnchorStart
	}
	return AnchorEnd
}

// LabelText formats "{category}: {percentage to one decimal}%".
func LabelText(category string, share float64) string {
	return fmt.Sprintf("%s: %.1f%%", category, share*100)
}

// PolarPoint converts a clockwise-from-twelve angle to centre-relative
// coordinates.
func PolarPoint(r, angle float64) Point {
	return Point{X: r * math.Sin(angle), Y: -r * math.Cos(angle)}
}
