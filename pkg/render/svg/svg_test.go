package svg

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/crimeviz/pkg/chart/bar"
	"github.com/matzehuels/crimeviz/pkg/chart/palette"
	"github.com/matzehuels/crimeviz/pkg/chart/pie"
	"github.com/matzehuels/crimeviz/pkg/crime"
)

func layoutFor(t *testing.T, counts crime.Counts) pie.Layout {
	t.Helper()
	l, err := pie.Compute(counts, pie.DefaultOptions())
	if err != nil {
		t.Fatalf("pie.Compute() error: %v", err)
	}
	return l
}

func wellFormed(t *testing.T, doc []byte) {
	t.Helper()
	dec := xml.NewDecoder(bytes.NewReader(doc))
	for {
		_, err := dec.Token()
		if err == io.EOF {
			return
		}
		if err != nil {
			t.Fatalf("document is not well-formed XML: %v\n%s", err, doc)
		}
	}
}

func TestDrawPieReplacesNotAccumulates(t *testing.T) {
	s := NewSurface(450, 450, WithID("pie"))
	p := palette.Categories()

	for _, name := range crime.DatasetNames() {
		d, _ := crime.LookupDataset(name)
		s.DrawPie(layoutFor(t, d.Counts), p)
	}
	s.DrawPie(layoutFor(t, crime.Counts{"A": 3, "B": 1}), p)

	if diff := cmp.Diff([]string{"slice-A", "slice-B"}, s.Keys(LayerSlices)); diff != "" {
		t.Errorf("slices after redraw (-want +got):\n%s", diff)
	}
	if got := s.Len(LayerLabels); got != 2 {
		t.Errorf("labels after redraw = %d, want 2", got)
	}
	if got := strings.Count(string(s.Bytes()), `class="slice"`); got != 2 {
		t.Errorf("document holds %d slices, want 2", got)
	}
}

func TestDrawPieJoinStats(t *testing.T) {
	s := NewSurface(450, 450)
	p := palette.Categories()

	first := s.DrawPie(layoutFor(t, crime.Counts{"A": 1, "B": 1}), p)
	if first.Entered != 6 || first.Updated != 0 || first.Exited != 0 {
		t.Errorf("first draw stats = %+v", first)
	}

	second := s.DrawPie(layoutFor(t, crime.Counts{"B": 2, "C": 1}), p)
	want := JoinStats{Updated: 3, Entered: 3, Exited: 3}
	if second != want {
		t.Errorf("second draw stats = %+v, want %+v", second, want)
	}
}

func TestDrawPieSuppressedLabelsRemoved(t *testing.T) {
	s := NewSurface(450, 450)
	p := palette.Categories()

	s.DrawPie(layoutFor(t, crime.Counts{"A": 1, "B": 1}), p)
	s.DrawPie(layoutFor(t, crime.Counts{"A": 9999, "B": 1}), p)

	if diff := cmp.Diff([]string{"leader-A"}, s.Keys(LayerLeaders)); diff != "" {
		t.Errorf("leaders (-want +got):\n%s", diff)
	}
	if s.Len(LayerSlices) != 2 {
		t.Errorf("slices = %d, want 2", s.Len(LayerSlices))
	}
}

func TestDrawPieEmpty(t *testing.T) {
	s := NewSurface(450, 450)
	s.DrawPie(layoutFor(t, crime.Counts{"A": 1}), palette.Categories())
	s.DrawPie(layoutFor(t, crime.Counts{}), palette.Categories())
	for _, name := range []string{LayerSlices, LayerLeaders, LayerLabels} {
		if n := s.Len(name); n != 0 {
			t.Errorf("%s holds %d elements after empty draw", name, n)
		}
	}
}

func TestRenderPie(t *testing.T) {
	d, _ := crime.LookupDataset("data1")
	doc := RenderPie(layoutFor(t, d.Counts), WithElementID("c1"), WithDocumentTitle("Crimes & more"))
	wellFormed(t, doc)

	out := string(doc)
	for _, want := range []string{
		`id="c1"`,
		`width="450" height="450"`,
		`transform="translate(225,225)"`,
		`GRAND_LARCENY: 63.6%`,
		`<title>Crimes &amp; more</title>`,
		`fill="` + palette.Dark2[2] + `"`,
		`text-anchor="end"`,
		`text-anchor="start"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestRenderPieUnknownCategoryGetsFallback(t *testing.T) {
	doc := string(RenderPie(layoutFor(t, crime.Counts{"ARSON": 1})))
	if !strings.Contains(doc, `fill="`+palette.Derive("ARSON")+`"`) {
		t.Errorf("unknown category should use derived fallback colour:\n%s", doc)
	}
}

func TestArcPath(t *testing.T) {
	tests := []struct {
		name         string
		outer, inner float64
		start, end   float64
		want         string
	}{
		{"quarter", 10, 0, 0, 1.5707963267948966, "M0,-10A10,10,0,0,1,10,0L0,0Z"},
		{"three quarters", 10, 0, 0, 4.71238898038469, "M0,-10A10,10,0,1,1,-10,0L0,0Z"},
		{"annular quarter", 10, 5, 0, 1.5707963267948966, "M0,-10A10,10,0,0,1,10,0L5,0A5,5,0,0,0,0,-5Z"},
		{"full", 10, 0, 0, fullTurn, "M0,-10A10,10,0,1,1,0,10A10,10,0,1,1,0,-10Z"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ArcPath(tt.outer, tt.inner, tt.start, tt.end); got != tt.want {
				t.Errorf("ArcPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDrawBar(t *testing.T) {
	records := []crime.Record{
		{Borough: "Bronx", TimePeriod: "2019", TotalCrimes: 10},
		{Borough: "Queens", TimePeriod: "2019", TotalCrimes: 20},
		{Borough: "Bronx", TimePeriod: "2020", TotalCrimes: 15},
	}
	l, err := bar.Compute(records, bar.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}

	s := NewSurface(l.Width, l.Height, WithID("bar"))
	s.DrawBar(l)
	s.DrawBar(l)

	if diff := cmp.Diff([]string{"period-2019", "period-2020"}, s.Keys(LayerBars)); diff != "" {
		t.Errorf("bar groups (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"legend-Queens", "legend-Bronx"}, s.Keys(LayerLegend)); diff != "" {
		t.Errorf("legend (-want +got):\n%s", diff)
	}

	doc := s.Bytes()
	wellFormed(t, doc)
	out := string(doc)
	if !strings.Contains(out, `width="960" height="500"`) {
		t.Error("bar document should be sized to the full chart")
	}
	if got := strings.Count(out, `<rect x=`); got != 3+2 {
		t.Errorf("got %d rects, want 3 bars + 2 legend swatches", got)
	}
	if !strings.Contains(out, `transform="translate(40,20)"`) {
		t.Error("plot layers should be offset by the margins")
	}
}

func TestSurfaceClearAndIDs(t *testing.T) {
	s := NewSurface(100, 100)
	if !strings.HasPrefix(s.ID, "chart-") {
		t.Errorf("default ID = %q", s.ID)
	}
	if other := NewSurface(100, 100); other.ID == s.ID {
		t.Error("default IDs should be unique")
	}

	s.Join("a", "", []Node{{Key: "x", Markup: "<g/>"}, {Key: "x", Markup: "<g/>"}})
	s.Join("b", "", nil)
	if s.Len("a") != 1 {
		t.Errorf("duplicate keys should collapse, got %d", s.Len("a"))
	}
	s.Clear("a")
	if diff := cmp.Diff([]string{"b"}, s.Layers()); diff != "" {
		t.Errorf("layers after Clear (-want +got):\n%s", diff)
	}
	if got := s.ElementID("slice-GRAND LARCENY/MV"); !strings.HasPrefix(got, s.ID+"-slice-GRAND_LARCENY_MV-") {
		t.Errorf("ElementID = %q", got)
	}
}

func TestElementIDDistinct(t *testing.T) {
	s := NewSurface(10, 10, WithID("c"))
	tests := []struct {
		a, b string
	}{
		{"slice-A B", "slice-A_B"},
		{"slice-A/B", "slice-A B"},
		{"label-ROBBERY?", "label-ROBBERY!"},
	}
	for _, tt := range tests {
		if ga, gb := s.ElementID(tt.a), s.ElementID(tt.b); ga == gb {
			t.Errorf("ElementID(%q) and ElementID(%q) both = %q", tt.a, tt.b, ga)
		}
	}

	for _, key := range []string{"slice-ROBBERY", "bar-BRONX_2015", "label-0"} {
		if got, want := s.ElementID(key), "c-"+key; got != want {
			t.Errorf("ElementID(%q) = %q, want %q", key, got, want)
		}
	}
	if s.ElementID("slice-A B") != s.ElementID("slice-A B") {
		t.Error("ElementID should be stable")
	}
}
