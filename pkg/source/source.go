// Package source resolves where borough records come from.
//
// A record source is named by a single string: a local JSON file path, an
// http(s) URL, or a mongodb:// URI. [Open] picks the implementation:
//
//	src, err := source.Open("https://example.org/crime_stats.json", source.Options{})
//	records, err := src.LoadRecords(ctx)
package source

import (
	"context"
	"strings"

	"github.com/matzehuels/crimeviz/pkg/crime"
	"github.com/matzehuels/crimeviz/pkg/errors"
	"github.com/matzehuels/crimeviz/pkg/httputil"
	cio "github.com/matzehuels/crimeviz/pkg/io"
	"github.com/matzehuels/crimeviz/pkg/source/mongo"
)

// Records loads borough records.
type Records interface {
	LoadRecords(ctx context.Context) ([]crime.Record, error)
	String() string
}

// Options configures the non-file sources.
type Options struct {
	HTTP            *httputil.Client // nil uses a client without cache
	MongoDatabase   string
	MongoCollection string
}

// Open returns the record source named by spec.
func Open(spec string, opts Options) (Records, error) {
	switch {
	case spec == "":
		return nil, errors.New(errors.ErrCodeInvalidInput, "no record source given")
	case strings.HasPrefix(spec, "mongodb://"), strings.HasPrefix(spec, "mongodb+srv://"):
		return mongo.Source{URI: spec, Database: opts.MongoDatabase, Collection: opts.MongoCollection}, nil
	case strings.HasPrefix(spec, "http://"), strings.HasPrefix(spec, "https://"):
		return URL{URL: spec, Client: opts.HTTP}, nil
	default:
		return File{Path: spec}, nil
	}
}

// File is a local JSON file of records.
type File struct{ Path string }

func (f File) LoadRecords(context.Context) ([]crime.Record, error) { return cio.ImportRecords(f.Path) }
func (f File) String() string                                      { return f.Path }

// URL is a remote JSON document of records.
type URL struct {
	URL    string
	Client *httputil.Client
}

func (u URL) LoadRecords(ctx context.Context) ([]crime.Record, error) {
	return cio.FetchRecords(ctx, u.Client, u.URL)
}
func (u URL) String() string { return u.URL }
