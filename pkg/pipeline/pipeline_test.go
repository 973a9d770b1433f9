package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/crimeviz/pkg/cache"
	"github.com/matzehuels/crimeviz/pkg/chart/pie"
	"github.com/matzehuels/crimeviz/pkg/crime"
	"github.com/matzehuels/crimeviz/pkg/errors"
	"github.com/matzehuels/crimeviz/pkg/observability"
)

var sampleRecords = []crime.Record{
	{Borough: "Bronx", TimePeriod: "2019", TotalCrimes: 10},
	{Borough: "Queens", TimePeriod: "2019", TotalCrimes: 20},
	{Borough: "Bronx", TimePeriod: "2020", TotalCrimes: 15},
}

func quietRunner(t *testing.T, c cache.Cache) *Runner {
	t.Helper()
	return NewRunner(c, nil, log.New(&bytes.Buffer{}))
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"json", false},
		{"html", false},
		{"gif", true},
		{"SVG", true},
		{"", true},
	}
	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("ValidateFormat(%q) code = %s", tt.format, errors.GetCode(err))
		}
	}
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		in      string
		want    []string
		wantErr bool
	}{
		{"", []string{"svg"}, false},
		{"svg", []string{"svg"}, false},
		{"SVG, png ,svg", []string{"svg", "png"}, false},
		{"svg,,json", []string{"svg", "json"}, false},
		{"svg,gif", nil, true},
	}
	for _, tt := range tests {
		got, err := ParseFormats(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormats(%q) error = %v", tt.in, err)
			continue
		}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("ParseFormats(%q) (-want +got):\n%s", tt.in, diff)
		}
	}
}

func TestContentType(t *testing.T) {
	for format, want := range map[string]string{
		"svg":  "image/svg+xml",
		"png":  "image/png",
		"html": "text/html; charset=utf-8",
		"zip":  "application/octet-stream",
	} {
		if got := ContentType(format); got != want {
			t.Errorf("ContentType(%q) = %q, want %q", format, got, want)
		}
	}
}

func TestValidateAndSetDefaults(t *testing.T) {
	opts := Options{}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("zero options should be valid: %v", err)
	}
	if opts.Kind != KindPie || opts.Dataset != crime.DefaultDataset {
		t.Errorf("defaults: kind=%q dataset=%q", opts.Kind, opts.Dataset)
	}
	if diff := cmp.Diff([]string{FormatSVG}, opts.Formats); diff != "" {
		t.Errorf("default formats (-want +got):\n%s", diff)
	}
	if opts.Pie.Width != pie.DefaultWidth || opts.Logger == nil {
		t.Error("pie options and logger should be defaulted")
	}

	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"bad kind", Options{Kind: "donut"}, errors.ErrCodeInvalidInput},
		{"bar without source", Options{Kind: KindBar}, errors.ErrCodeInvalidInput},
		{"bad format", Options{Formats: []string{"gif"}}, errors.ErrCodeInvalidFormat},
		{"bad colour", Options{Palette: map[string]string{"ROBBERY": "red-ish"}}, errors.ErrCodeInvalidColor},
		{"bad pie", Options{Pie: pie.Options{Width: 10, Height: 10, Margin: 20}}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestExecutePie(t *testing.T) {
	r := quietRunner(t, nil)
	res, err := r.Execute(context.Background(), Options{
		Dataset:   "data1",
		Formats:   []string{FormatSVG, FormatJSON, FormatHTML, FormatPNG},
		NativePNG: true,
	})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if res.Pie == nil || res.Name != "data1" || res.Stats.Items != 7 {
		t.Fatalf("result = %+v", res)
	}
	if len(res.Artifacts) != 4 {
		t.Errorf("got %d artifacts, want 4", len(res.Artifacts))
	}
	if !strings.Contains(string(res.Artifacts[FormatSVG]), "GRAND_LARCENY: 63.6%") {
		t.Error("svg should carry the GRAND_LARCENY label")
	}
	if !bytes.HasPrefix(res.Artifacts[FormatPNG], []byte("\x89PNG")) {
		t.Error("png artifact is not a PNG")
	}

	var decoded pie.Layout
	if err := json.Unmarshal(res.Artifacts[FormatJSON], &decoded); err != nil {
		t.Fatalf("json artifact: %v", err)
	}
	if decoded.Total != 143 {
		t.Errorf("json total = %d, want 143", decoded.Total)
	}
	if res.LayoutHash == "" {
		t.Error("layout hash should be set")
	}
}

func TestExecutePieEmpty(t *testing.T) {
	r := quietRunner(t, nil)
	res, err := r.Execute(context.Background(), Options{
		Counts:    crime.Counts{},
		Formats:   []string{FormatSVG, FormatJSON, FormatPNG},
		NativePNG: true,
	})
	if err != nil {
		t.Fatalf("Execute(empty) error: %v", err)
	}
	if len(res.Pie.Slices) != 0 || res.Pie.Total != 0 {
		t.Errorf("empty counts drew %d slices, total %d", len(res.Pie.Slices), res.Pie.Total)
	}
	if !bytes.HasPrefix(res.Artifacts[FormatPNG], []byte("\x89PNG")) {
		t.Error("empty pie should still produce a PNG")
	}
}

func TestHTMLArtifactKeyedByName(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := quietRunner(t, c)
	ctx := context.Background()
	counts := crime.Counts{"ROBBERY": 3, "MURDER": 1}

	north, err := r.Execute(ctx, Options{Counts: counts, Dataset: "north-precinct", Formats: []string{FormatHTML}})
	if err != nil {
		t.Fatal(err)
	}
	south, err := r.Execute(ctx, Options{Counts: counts, Dataset: "south-precinct", Formats: []string{FormatHTML}})
	if err != nil {
		t.Fatal(err)
	}
	if !south.CacheInfo.LayoutHit {
		t.Error("identical counts should share the cached layout")
	}
	if south.CacheInfo.RenderHit {
		t.Error("a differently named chart must not reuse the cached page")
	}
	if !strings.Contains(string(south.Artifacts[FormatHTML]), "south-precinct") ||
		strings.Contains(string(south.Artifacts[FormatHTML]), "north-precinct") {
		t.Error("page should carry its own heading")
	}
	if !strings.Contains(string(north.Artifacts[FormatHTML]), "north-precinct") {
		t.Error("first page heading missing")
	}
}

func TestExecutePieFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "precinct.json")
	if err := os.WriteFile(path, []byte(`{"ROBBERY": 3, "MURDER": 1}`), 0o644); err != nil {
		t.Fatal(err)
	}
	res, err := quietRunner(t, nil).Execute(context.Background(), Options{CountsPath: path})
	if err != nil {
		t.Fatal(err)
	}
	if res.Name != "precinct" || res.Pie.Total != 4 {
		t.Errorf("name=%q total=%d", res.Name, res.Pie.Total)
	}
}

func TestExecuteErrors(t *testing.T) {
	r := quietRunner(t, nil)
	ctx := context.Background()

	if _, err := r.Execute(ctx, Options{Dataset: "data9"}); !errors.Is(err, errors.ErrCodeDatasetNotFound) {
		t.Errorf("unknown dataset: %v", err)
	}
	if _, err := r.Execute(ctx, Options{Counts: crime.Counts{"A": 0}}); !errors.Is(err, errors.ErrCodeInvalidData) {
		t.Errorf("zero total: %v", err)
	}
	if _, err := r.Execute(ctx, Options{Kind: KindBar, RecordSource: filepath.Join(t.TempDir(), "none.json")}); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing records file: %v", err)
	}
}

func TestExecuteBar(t *testing.T) {
	res, err := quietRunner(t, nil).Execute(context.Background(), Options{
		Kind:    KindBar,
		Records: sampleRecords,
		Formats: []string{FormatSVG, FormatJSON},
	})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if res.Bar == nil || len(res.Bar.Groups) != 2 {
		t.Fatalf("bar layout = %+v", res.Bar)
	}
	if !strings.Contains(string(res.Artifacts[FormatSVG]), `class="legend"`) {
		t.Error("bar svg should include the legend layer")
	}
}

func TestExecuteCachesLayoutAndArtifacts(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := quietRunner(t, c)
	ctx := context.Background()
	opts := Options{Dataset: "data2", Formats: []string{FormatSVG, FormatJSON}}

	first, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheInfo.LayoutHit || first.CacheInfo.RenderHit {
		t.Errorf("first run should miss, got %+v", first.CacheInfo)
	}

	second, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheInfo.LayoutHit || !second.CacheInfo.RenderHit {
		t.Errorf("second run should hit, got %+v", second.CacheInfo)
	}
	if diff := cmp.Diff(first.Artifacts, second.Artifacts); diff != "" {
		t.Errorf("cached artifacts differ (-first +second):\n%s", diff)
	}

	opts.Refresh = true
	third, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if third.CacheInfo.LayoutHit || third.CacheInfo.RenderHit {
		t.Errorf("refresh should bypass the cache, got %+v", third.CacheInfo)
	}

	opts.Refresh = false
	opts.Title = "changed"
	fourth, _ := r.Execute(ctx, opts)
	if !fourth.CacheInfo.LayoutHit || fourth.CacheInfo.RenderHit {
		t.Errorf("new title should reuse the layout but re-render, got %+v", fourth.CacheInfo)
	}
}

type countingHooks struct {
	observability.NoopPipelineHooks
	mu      sync.Mutex
	renders [][]string
}

func (h *countingHooks) OnRenderStart(_ context.Context, _ string, formats []string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.renders = append(h.renders, formats)
}

func (h *countingHooks) OnRenderComplete(context.Context, string, []string, time.Duration, error) {}

func TestExecuteFiresHooks(t *testing.T) {
	h := &countingHooks{}
	observability.SetPipelineHooks(h)
	defer observability.Reset()

	c, _ := cache.NewFileCache(t.TempDir())
	r := quietRunner(t, c)
	opts := Options{Dataset: "data3", Formats: []string{FormatSVG, FormatJSON}}
	for range 2 {
		if _, err := r.Execute(context.Background(), opts); err != nil {
			t.Fatal(err)
		}
	}
	if len(h.renders) != 1 {
		t.Errorf("render hooks fired %d times, want 1 (second run is cached)", len(h.renders))
	}
}

func TestOverview(t *testing.T) {
	r := quietRunner(t, nil)
	ctx := context.Background()

	page, barErr, err := r.Overview(ctx, Options{Title: "All charts"})
	if err != nil || barErr != nil {
		t.Fatalf("Overview() error: %v / %v", err, barErr)
	}
	if len(page.Pies) != len(crime.DatasetNames()) || page.Bar != nil {
		t.Errorf("pies = %d, bar = %v", len(page.Pies), page.Bar)
	}

	page, barErr, err = r.Overview(ctx, Options{Records: sampleRecords})
	if err != nil || barErr != nil {
		t.Fatalf("Overview(records) error: %v / %v", err, barErr)
	}
	if page.Bar == nil || len(page.Bar.Groups) != 2 {
		t.Errorf("bar = %+v, want two period groups", page.Bar)
	}

	page, barErr, err = r.Overview(ctx, Options{RecordSource: filepath.Join(t.TempDir(), "none.json")})
	if err != nil {
		t.Fatalf("Overview(bad source) error: %v", err)
	}
	if !errors.Is(barErr, errors.ErrCodeFileNotFound) || page.Bar != nil {
		t.Errorf("bad source should omit the bar, barErr = %v", barErr)
	}
}
