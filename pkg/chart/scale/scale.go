// Package scale implements the band and linear scales used to position
// bars, axes and ticks.
//
// The semantics follow the conventions of common web charting libraries so
// that charts keep the proportions readers expect: band scales split a
// continuous range into evenly spaced bands with fractional padding, and
// linear scales map a numeric domain onto a pixel range, optionally
// extended to "nice" round bounds.
package scale

import (
	"math"
	"slices"
)

// Band maps discrete keys to evenly spaced bands within a range.
type Band struct {
	Domain       []string
	Range        [2]float64
	PaddingInner float64 // fraction of the step left empty between bands, in [0, 1]
	PaddingOuter float64 // fraction of the step left empty before the first and after the last band
	Align        float64 // distribution of outer space; 0.5 centres the bands
	Round        bool    // snap step, start and bandwidth to integers

	computed bool
	reverse  bool
	start    float64
	step     float64
	width    float64
}

// NewBand creates a centred band scale with no padding.
func NewBand(domain []string, lo, hi float64, round bool) *Band {
	return &Band{Domain: domain, Range: [2]float64{lo, hi}, Align: 0.5, Round: round}
}

// WithPadding sets inner and outer padding to p.
func (b *Band) WithPadding(p float64) *Band {
	b.PaddingInner, b.PaddingOuter = p, p
	b.computed = false
	return b
}

// WithPaddingInner sets only the inner padding.
func (b *Band) WithPaddingInner(p float64) *Band {
	b.PaddingInner = p
	b.computed = false
	return b
}

func (b *Band) rescale() {
	if b.computed {
		return
	}
	n := float64(len(b.Domain))
	lo, hi := b.Range[0], b.Range[1]
	reverse := hi < lo
	if reverse {
		lo, hi = hi, lo
	}

	step := (hi - lo) / math.Max(1, n-b.PaddingInner+b.PaddingOuter*2)
	if b.Round {
		step = math.Floor(step)
	}
	start := lo + (hi-lo-step*(n-b.PaddingInner))*b.Align
	width := step * (1 - b.PaddingInner)
	if b.Round {
		start = roundHalfUp(start)
		width = roundHalfUp(width)
	}

	b.start, b.step, b.width = start, step, width
	b.reverse = reverse
	b.computed = true
}

// Bandwidth returns the width of each band.
func (b *Band) Bandwidth() float64 {
	b.rescale()
	return b.width
}

// Step returns the distance between the starts of adjacent bands.
func (b *Band) Step() float64 {
	b.rescale()
	return b.step
}

// Pos returns the start of key's band, and false if key is not in the domain.
func (b *Band) Pos(key string) (float64, bool) {
	b.rescale()
	i := slices.Index(b.Domain, key)
	if i < 0 {
		return 0, false
	}
	if b.reverse {
		i = len(b.Domain) - 1 - i
	}
	return b.start + b.step*float64(i), true
}

// Linear maps a continuous domain onto a continuous range.
type Linear struct {
	Domain [2]float64
	Range  [2]float64
	Round  bool
}

// NewLinear creates a linear scale.
func NewLinear(d0, d1, r0, r1 float64, round bool) *Linear {
	return &Linear{Domain: [2]float64{d0, d1}, Range: [2]float64{r0, r1}, Round: round}
}

// Map converts a domain value to a range value.
// A degenerate domain maps every value to the middle of the range.
func (l *Linear) Map(v float64) float64 {
	d0, d1 := l.Domain[0], l.Domain[1]
	t := 0.5
	if d1 != d0 {
		t = (v - d0) / (d1 - d0)
	}
	out := l.Range[0] + t*(l.Range[1]-l.Range[0])
	if l.Round {
		out = roundHalfUp(out)
	}
	return out
}

// Nice extends the domain to round values so that its bounds fall on tick
// steps for roughly count ticks.
func (l *Linear) Nice(count int) *Linear {
	start, stop := l.Domain[0], l.Domain[1]
	reverse := stop < start
	if reverse {
		start, stop = stop, start
	}

	var prestep float64
search:
	for range 10 {
		step := tickIncrement(start, stop, count)
		if step == prestep {
			break
		}
		switch {
		case step > 0:
			start = math.Floor(start/step) * step
			stop = math.Ceil(stop/step) * step
		case step < 0:
			start = math.Ceil(start*step) / step
			stop = math.Floor(stop*step) / step
		default:
			break search
		}
		prestep = step
	}
	if reverse {
		start, stop = stop, start
	}
	l.Domain = [2]float64{start, stop}
	return l
}

// Ticks returns roughly count evenly spaced round values within the domain.
func (l *Linear) Ticks(count int) []float64 {
	start, stop := l.Domain[0], l.Domain[1]
	if start == stop {
		return []float64{start}
	}
	if stop < start {
		start, stop = stop, start
	}

	inc := tickIncrement(start, stop, count)
	if inc == 0 || math.IsInf(inc, 0) || math.IsNaN(inc) {
		return nil
	}

	var ticks []float64
	if inc > 0 {
		for i := math.Ceil(start / inc); i <= math.Floor(stop/inc); i++ {
			ticks = append(ticks, i*inc)
		}
	} else {
		inc = -inc
		for i := math.Ceil(start * inc); i <= math.Floor(stop*inc); i++ {
			ticks = append(ticks, i/inc)
		}
	}
	return ticks
}

var (
	e10 = math.Sqrt(50)
	e5  = math.Sqrt(10)
	e2  = math.Sqrt(2)
)

// tickIncrement returns the 1/2/5 × 10^k tick step for the interval.
// Negative results encode the reciprocal of sub-unit steps to avoid
// floating-point error (-10 means a step of 0.1).
func tickIncrement(start, stop float64, count int) float64 {
	if count <= 0 || stop <= start {
		return 0
	}
	step := (stop - start) / float64(count)
	power := math.Floor(math.Log10(step))
	errRatio := step / math.Pow(10, power)

	factor := 1.0
	switch {
	case errRatio >= e10:
		factor = 10
	case errRatio >= e5:
		factor = 5
	case errRatio >= e2:
		factor = 2
	}

	if power >= 0 {
		return factor * math.Pow(10, power)
	}
	return -math.Pow(10, -power) / factor
}

// roundHalfUp rounds .5 toward positive infinity, matching pixel snapping
// in browsers.
func roundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}
