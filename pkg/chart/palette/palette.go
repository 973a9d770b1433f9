// Package palette maps categorical values to fill colours.
//
// A [Palette] is an explicit configuration value passed into renderers:
// the same category always gets the same colour, across renders and
// datasets. Categories missing from the mapping get a deterministic
// fallback derived from the category name, so unknown labels never render
// with an undefined fill.
//
// Two ordinal schemes are provided: [Dark2] (used for crime categories)
// and [Category10] (used for boroughs in the bar chart).
package palette

import (
	"hash/fnv"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/crimeviz/pkg/crime"
	"github.com/matzehuels/crimeviz/pkg/errors"
)

// Dark2 is the eight-colour qualitative scheme used for crime categories.
var Dark2 = []string{"#1b9e77", "#d95f02", "#7570b3", "#e7298a", "#66a61e", "#e6ab02", "#a6761d", "#666666"}

// Category10 is the ten-colour scheme used for boroughs.
var Category10 = []string{"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd", "#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf"}

// Palette is a category → colour lookup with a fallback for unknown keys.
type Palette struct {
	Colors   map[string]string
	Fallback string // used for unknown categories when set; otherwise derived from the name
}

// Ordinal assigns scheme colours to domain values in order, cycling when
// the domain is longer than the scheme.
func Ordinal(domain []string, scheme []string) Palette {
	p := Palette{Colors: make(map[string]string, len(domain))}
	if len(scheme) == 0 {
		return p
	}
	for i, key := range domain {
		p.Colors[key] = scheme[i%len(scheme)]
	}
	return p
}

// Categories maps the crime category enumeration onto Dark2.
func Categories() Palette {
	return Ordinal(crime.Categories, Dark2)
}

// Lookup returns the colour for category.
func (p Palette) Lookup(category string) string {
	if c, ok := p.Colors[category]; ok {
		return c
	}
	if p.Fallback != "" {
		return p.Fallback
	}
	return Derive(category)
}

// With returns a copy of p with overrides applied on top.
func (p Palette) With(overrides map[string]string) Palette {
	out := Palette{Colors: make(map[string]string, len(p.Colors)+len(overrides)), Fallback: p.Fallback}
	for k, v := range p.Colors {
		out.Colors[k] = v
	}
	for k, v := range overrides {
		out.Colors[k] = v
	}
	return out
}

// Validate checks that every colour (and the fallback) is a hex colour.
func (p Palette) Validate() error {
	for k, v := range p.Colors {
		if _, err := Parse(v); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidColor, err, "colour for %s", k)
		}
	}
	if p.Fallback != "" {
		if _, err := Parse(p.Fallback); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidColor, err, "fallback colour")
		}
	}
	return nil
}

// Parse parses "#rrggbb" or "rrggbb" into a colour.
func Parse(hex string) (colorful.Color, error) {
	if !strings.HasPrefix(hex, "#") {
		hex = "#" + hex
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return colorful.Color{}, errors.Wrap(errors.ErrCodeInvalidColor, err, "invalid colour %q", hex)
	}
	return c, nil
}

// Derive returns a stable mid-saturation colour for an arbitrary key.
func Derive(key string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	hue := float64(h.Sum32() % 360)
	return colorful.Hsl(hue, 0.45, 0.5).Clamped().Hex()
}
