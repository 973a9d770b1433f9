package pipeline

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/matzehuels/crimeviz/pkg/crime"
	cio "github.com/matzehuels/crimeviz/pkg/io"
	"github.com/matzehuels/crimeviz/pkg/source"
)

// LoadCounts resolves the pie input and returns it with a display name.
func LoadCounts(opts Options) (crime.Counts, string, error) {
	switch {
	case opts.Counts != nil:
		name := opts.Dataset
		if name == "" {
			name = "counts"
		}
		return opts.Counts, name, nil
	case opts.CountsPath != "":
		counts, err := cio.ImportCounts(opts.CountsPath)
		if err != nil {
			return nil, "", err
		}
		return counts, strings.TrimSuffix(filepath.Base(opts.CountsPath), filepath.Ext(opts.CountsPath)), nil
	default:
		d, err := crime.LookupDataset(opts.Dataset)
		if err != nil {
			return nil, "", err
		}
		return d.Counts, d.Name, nil
	}
}

// LoadRecords resolves the bar input and returns it with a display name.
func LoadRecords(ctx context.Context, opts Options) ([]crime.Record, string, error) {
	if opts.Records != nil {
		name := opts.RecordSource
		if name == "" {
			name = "records"
		}
		return opts.Records, name, nil
	}
	src, err := source.Open(opts.RecordSource, opts.Source)
	if err != nil {
		return nil, "", err
	}
	records, err := src.LoadRecords(ctx)
	if err != nil {
		return nil, "", err
	}
	return records, src.String(), nil
}
