// Package pipeline runs the load → layout → render chain shared by the CLI
// and the HTTP server.
//
// # Stages
//
//  1. Load: category counts (built-in dataset, explicit counts or a JSON
//     file) for pies; borough records (file, URL or MongoDB) for bars
//  2. Layout: [pie.Compute] or [bar.Compute]
//  3. Render: every requested format, concurrently
//
// Layouts and artifacts are cached by content hash, so rendering the same
// data with the same options twice is a cache hit.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Kind:    pipeline.KindPie,
//	    Dataset: "data1",
//	    Formats: []string{"svg", "png"},
//	})
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/crimeviz/pkg/cache"
	"github.com/matzehuels/crimeviz/pkg/chart/bar"
	"github.com/matzehuels/crimeviz/pkg/chart/pie"
	"github.com/matzehuels/crimeviz/pkg/crime"
	"github.com/matzehuels/crimeviz/pkg/errors"
	"github.com/matzehuels/crimeviz/pkg/render"
	"github.com/matzehuels/crimeviz/pkg/source"
)

// Chart kinds.
const (
	KindPie = "pie"
	KindBar = "bar"
)

// Output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
	FormatHTML = "html"
)

// ValidFormats lists the supported formats in display order.
var ValidFormats = []string{FormatSVG, FormatPNG, FormatPDF, FormatJSON, FormatHTML}

// ValidateFormat checks that format is supported.
func ValidateFormat(format string) error {
	if !slices.Contains(ValidFormats, format) {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format %q (must be one of: %s)", format, strings.Join(ValidFormats, ", "))
	}
	return nil
}

// ParseFormats splits a comma-separated list, dropping blanks and
// duplicates. An empty list means SVG.
func ParseFormats(s string) ([]string, error) {
	var out []string
	for _, f := range strings.Split(s, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" || slices.Contains(out, f) {
			continue
		}
		if err := ValidateFormat(f); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	if len(out) == 0 {
		out = []string{FormatSVG}
	}
	return out, nil
}

// ContentType returns the MIME type of a format.
func ContentType(format string) string {
	switch format {
	case FormatSVG:
		return "image/svg+xml"
	case FormatPNG:
		return "image/png"
	case FormatPDF:
		return "application/pdf"
	case FormatJSON:
		return "application/json"
	case FormatHTML:
		return "text/html; charset=utf-8"
	}
	return "application/octet-stream"
}

// Options configures one pipeline run.
type Options struct {
	Kind string `json:"kind"`

	// Pie input, first non-empty wins: Counts, CountsPath, Dataset.
	Dataset    string       `json:"dataset,omitempty"`
	Counts     crime.Counts `json:"counts,omitempty"`
	CountsPath string       `json:"counts_path,omitempty"`

	// Bar input: preloaded Records, or a source spec.
	Records      []crime.Record `json:"-"`
	RecordSource string         `json:"record_source,omitempty"`

	Pie     pie.Options       `json:"pie"`
	Bar     bar.Options       `json:"bar"`
	Palette map[string]string `json:"palette,omitempty"` // category colour overrides

	Formats   []string `json:"formats,omitempty"`
	Title     string   `json:"title,omitempty"`
	Scale     float64  `json:"scale,omitempty"`      // PNG scale when converting with rsvg-convert
	NativePNG bool     `json:"native_png,omitempty"` // draw PNG in-process instead of converting the SVG
	Refresh   bool     `json:"refresh,omitempty"`    // bypass cached layouts and artifacts

	Logger *log.Logger    `json:"-"`
	Source source.Options `json:"-"`

	validated bool
}

// Result holds the outputs of a run.
type Result struct {
	Kind       string
	Name       string // dataset, file or source the data came from
	Pie        *pie.Layout
	Bar        *bar.Layout
	LayoutHash string
	Artifacts  map[string][]byte
	Stats      Stats
	CacheInfo  CacheInfo
}

// Stats holds timings and sizes of a run.
type Stats struct {
	Items      int // categories or records
	LoadTime   time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo reports which stages were served from the cache.
type CacheInfo struct {
	LayoutHit bool
	RenderHit bool // every requested artifact was cached
}

// ValidateAndSetDefaults checks the options and fills defaults. It is
// idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Kind == "" {
		o.Kind = KindPie
	}
	switch o.Kind {
	case KindPie:
		if o.Counts == nil && o.CountsPath == "" && o.Dataset == "" {
			o.Dataset = crime.DefaultDataset
		}
		o.Pie.SetDefaults()
		if err := o.Pie.Validate(); err != nil {
			return err
		}
	case KindBar:
		if o.Records == nil && o.RecordSource == "" {
			return errors.New(errors.ErrCodeInvalidInput, "bar chart needs a record source")
		}
		o.Bar.SetDefaults()
		if err := o.Bar.Validate(); err != nil {
			return err
		}
	default:
		return errors.New(errors.ErrCodeInvalidInput, "invalid kind %q (must be pie or bar)", o.Kind)
	}

	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	for _, f := range o.Formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	if err := o.CategoryPalette().Validate(); err != nil {
		return err
	}
	if o.Scale <= 0 {
		o.Scale = render.DefaultScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if !o.NativePNG && slices.Contains(o.Formats, FormatPNG) && !render.Available() {
		o.Logger.Debug("rsvg-convert not found, drawing PNG natively")
		o.NativePNG = true
	}
	o.validated = true
	return nil
}

// LayoutKeyOpts returns the cache key inputs of the layout stage.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	if o.Kind == KindBar {
		return cache.LayoutKeyOpts{Kind: o.Kind, Options: o.Bar}
	}
	return cache.LayoutKeyOpts{Kind: o.Kind, Options: o.Pie}
}

// ArtifactKeyOpts returns the cache key inputs of one rendered format.
// name is the chart heading, which only the HTML page shows.
func (o *Options) ArtifactKeyOpts(format, name string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{Kind: o.Kind, Format: format, Title: o.Title, Palette: o.Palette}
	switch format {
	case FormatHTML:
		k.Name = name
	case FormatPNG:
		k.Native = o.NativePNG
		if !o.NativePNG {
			k.Scale = o.Scale
		}
	}
	return k
}
