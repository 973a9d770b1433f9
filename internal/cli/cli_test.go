package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/crimeviz/pkg/chart/pie"
	"github.com/matzehuels/crimeviz/pkg/crime"
	"github.com/matzehuels/crimeviz/pkg/errors"
	"github.com/matzehuels/crimeviz/pkg/observability"
)

// isolate points config and cache lookups at a fresh temp dir.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	t.Setenv("CRIMEVIZ_SOURCE_RECORDS", "")
	t.Setenv("CRIMEVIZ_CACHE_REDIS_URL", "")
	t.Cleanup(observability.Reset)
	return dir
}

func run(t *testing.T, args ...string) error {
	t.Helper()
	c := New(&bytes.Buffer{}, LogInfo)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	return root.ExecuteContext(context.Background())
}

func TestOutputPaths(t *testing.T) {
	tests := []struct {
		name    string
		output  string
		formats []string
		want    map[string]string
	}{
		{"default name", "", []string{"svg"}, map[string]string{"svg": "data1.svg"}},
		{"explicit single", "out/chart.image", []string{"png"}, map[string]string{"png": "out/chart.image"}},
		{"base for several", "out/chart.svg", []string{"svg", "json"}, map[string]string{"svg": "out/chart.svg", "json": "out/chart.json"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, outputPaths(tt.output, "data1", tt.formats)); diff != "" {
				t.Errorf("outputPaths (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPieCommand(t *testing.T) {
	dir := isolate(t)
	base := filepath.Join(dir, "data1")

	if err := run(t, "pie", "data1", "-f", "svg,json", "-o", base, "--summary"); err != nil {
		t.Fatalf("pie: %v", err)
	}

	svg, err := os.ReadFile(base + ".svg")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(svg), "GRAND_LARCENY: 63.6%") {
		t.Error("svg missing the largest slice label")
	}

	raw, err := os.ReadFile(base + ".json")
	if err != nil {
		t.Fatal(err)
	}
	var l pie.Layout
	if err := json.Unmarshal(raw, &l); err != nil {
		t.Fatalf("layout json: %v", err)
	}
	if l.Total != 143 || len(l.Slices) != len(crime.Datasets()[0].Counts) {
		t.Errorf("layout total = %d, slices = %d", l.Total, len(l.Slices))
	}

	// A second run is served from the artifact cache under XDG_CACHE_HOME.
	if err := run(t, "pie", "data1", "-o", base+".svg"); err != nil {
		t.Fatalf("cached pie: %v", err)
	}
	entries, err := os.ReadDir(filepath.Join(dir, "cache", appName))
	if err != nil || len(entries) == 0 {
		t.Errorf("expected cache entries, got %v (%v)", entries, err)
	}
}

func TestPieCommandCountsFile(t *testing.T) {
	dir := isolate(t)
	in := filepath.Join(dir, "precinct.json")
	if err := os.WriteFile(in, []byte(`{"ROBBERY": 3, "MURDER": 1}`), 0o644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "precinct.svg")

	if err := run(t, "pie", in, "-o", out, "--no-cache", "--inner-ratio", "0.4", "--min-label-percent", "30"); err != nil {
		t.Fatalf("pie: %v", err)
	}
	doc, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(doc), "ROBBERY: 75.0%") || strings.Contains(string(doc), "MURDER: 25.0%") {
		t.Errorf("labels should respect --min-label-percent:\n%s", doc)
	}
}

func TestCommandErrors(t *testing.T) {
	isolate(t)
	tests := []struct {
		name string
		args []string
		code errors.Code
	}{
		{"unknown dataset", []string{"pie", "data9", "--no-cache"}, errors.ErrCodeDatasetNotFound},
		{"bad format", []string{"pie", "data1", "-f", "gif"}, errors.ErrCodeInvalidFormat},
		{"bar without source", []string{"bar"}, errors.ErrCodeInvalidInput},
		{"missing config", []string{"--config", "/nonexistent/crimeviz.toml", "pie"}, errors.ErrCodeFileNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := run(t, tt.args...); !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestBarAndPageCommands(t *testing.T) {
	dir := isolate(t)
	records := filepath.Join(dir, "records.json")
	data := `[{"BOROUGH":"Bronx","Time_Period":"2019","Total_Crimes":10},{"BOROUGH":"Queens","Time_Period":"2019","Total_Crimes":20}]`
	if err := os.WriteFile(records, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	barOut := filepath.Join(dir, "bar.svg")
	if err := run(t, "bar", records, "-o", barOut); err != nil {
		t.Fatalf("bar: %v", err)
	}
	if doc, _ := os.ReadFile(barOut); !strings.Contains(string(doc), ">Queens</text>") {
		t.Error("bar legend missing Queens")
	}

	pageOut := filepath.Join(dir, "page.html")
	if err := run(t, "page", "--records", records, "-o", pageOut); err != nil {
		t.Fatalf("page: %v", err)
	}
	doc, err := os.ReadFile(pageOut)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range append(crime.DatasetNames(), "Total crimes by borough") {
		if !strings.Contains(string(doc), want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestDatasetListModel(t *testing.T) {
	var m tea.Model = newDatasetListModel(crime.Datasets())

	for _, k := range []string{"down", "j", "up", "down", "down"} {
		m, _ = m.Update(key(k))
	}
	if got := m.(datasetListModel).Cursor; got != 2 {
		t.Fatalf("cursor = %d, want 2", got)
	}
	if !strings.Contains(m.View(), "data3") || !strings.Contains(m.View(), "[3/5]") {
		t.Errorf("view:\n%s", m.View())
	}

	m, cmd := m.Update(key("enter"))
	if sel := m.(datasetListModel).Selected; sel == nil || sel.Name != "data3" {
		t.Fatalf("selected = %+v, want data3", sel)
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("enter should quit the program")
	}

	m, cmd = newDatasetListModel(crime.Datasets()).Update(key("q"))
	if m.(datasetListModel).Selected != nil || cmd == nil {
		t.Error("q should quit without a selection")
	}
}

func TestLargest(t *testing.T) {
	if got := largest(crime.Counts{"ROBBERY": 3, "MURDER": 3, "RAPE": 1}); got != "MURDER" {
		t.Errorf("largest = %q, want MURDER (first in order on ties)", got)
	}
	if got := largest(crime.Counts{}); got != "—" {
		t.Errorf("largest(empty) = %q", got)
	}
}
