package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/crimeviz/pkg/buildinfo"
	"github.com/matzehuels/crimeviz/pkg/crime"
	"github.com/matzehuels/crimeviz/pkg/errors"
	cio "github.com/matzehuels/crimeviz/pkg/io"
	"github.com/matzehuels/crimeviz/pkg/pipeline"
)

const maxBody = 1 << 20

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": buildinfo.Version})
}

type datasetInfo struct {
	Name  string `json:"name"`
	Total int    `json:"total"`
}

func (s *Server) handleDatasets(w http.ResponseWriter, _ *http.Request) {
	var out []datasetInfo
	for _, d := range crime.Datasets() {
		out = append(out, datasetInfo{Name: d.Name, Total: d.Counts.Total()})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	opts := s.options(r, pipeline.KindPie, pipeline.FormatHTML)
	opts.RecordSource = s.cfg.RecordSource
	page, _, err := s.runner.Overview(r.Context(), opts)
	if err != nil {
		writeError(w, r, err)
		return
	}
	body, err := page.Bytes()
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeBody(w, pipeline.FormatHTML, body)
}

func (s *Server) handlePieDataset(w http.ResponseWriter, r *http.Request) {
	opts := s.options(r, pipeline.KindPie, chi.URLParam(r, "format"))
	opts.Dataset = chi.URLParam(r, "dataset")
	s.serveChart(w, r, opts)
}

func (s *Server) handlePieCounts(w http.ResponseWriter, r *http.Request) {
	counts, err := cio.ReadCounts(http.MaxBytesReader(w, r.Body, maxBody))
	if err != nil {
		writeError(w, r, err)
		return
	}
	opts := s.options(r, pipeline.KindPie, chi.URLParam(r, "format"))
	opts.Counts = counts
	s.serveChart(w, r, opts)
}

func (s *Server) handleBar(w http.ResponseWriter, r *http.Request) {
	if s.cfg.RecordSource == "" {
		writeError(w, r, notFound("no record source configured"))
		return
	}
	opts := s.options(r, pipeline.KindBar, chi.URLParam(r, "format"))
	opts.RecordSource = s.cfg.RecordSource
	s.serveChart(w, r, opts)
}

func (s *Server) serveChart(w http.ResponseWriter, r *http.Request, opts pipeline.Options) {
	res, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		writeError(w, r, err)
		return
	}
	format := opts.Formats[0]
	if res.CacheInfo.RenderHit {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	w.Header().Set("ETag", `"`+res.LayoutHash[:16]+`"`)
	writeBody(w, format, res.Artifacts[format])
}

// options copies the configured base and applies the request's kind,
// format and query parameters.
func (s *Server) options(r *http.Request, kind, format string) pipeline.Options {
	base := s.cfg.Base
	opts := pipeline.Options{
		Kind:      kind,
		Pie:       base.Pie,
		Bar:       base.Bar,
		Palette:   base.Palette,
		Formats:   []string{format},
		Title:     base.Title,
		Scale:     base.Scale,
		NativePNG: base.NativePNG,
		Source:    base.Source,
		Logger:    s.logger,
	}
	q := r.URL.Query()
	if t := q.Get("title"); t != "" {
		opts.Title = t
	}
	opts.Refresh = q.Get("refresh") == "1" || q.Get("refresh") == "true"
	return opts
}

func writeBody(w http.ResponseWriter, format string, body []byte) {
	w.Header().Set("Content-Type", pipeline.ContentType(format))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func notFound(format string, args ...any) error {
	return errors.New(errors.ErrCodeNotFound, format, args...)
}
