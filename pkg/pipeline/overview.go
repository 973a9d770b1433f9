package pipeline

import (
	"context"

	"github.com/matzehuels/crimeviz/pkg/crime"
	"github.com/matzehuels/crimeviz/pkg/render/html"
)

// Overview builds an HTML page with one pie per built-in dataset and, when
// opts names a record source, the grouped bar chart below them.
//
// A failing record source does not fail the page: the bar is omitted and
// the error is logged at warn level and returned as barErr.
func (r *Runner) Overview(ctx context.Context, opts Options) (page *html.Page, barErr error, err error) {
	pieOpts := opts
	pieOpts.Kind = KindPie
	if err := pieOpts.ValidateAndSetDefaults(); err != nil {
		return nil, nil, err
	}

	page = html.NewPage(opts.Title)
	page.Palette = pieOpts.CategoryPalette()
	for _, d := range crime.Datasets() {
		l, _, err := r.PieLayoutWithCacheInfo(ctx, d.Counts, pieOpts)
		if err != nil {
			return nil, nil, err
		}
		page.AddPie(d.Name, l)
	}

	if opts.RecordSource == "" && opts.Records == nil {
		return page, nil, nil
	}
	barOpts := opts
	barOpts.Kind = KindBar
	if barErr = r.addBar(ctx, page, barOpts); barErr != nil {
		r.Logger.Warn("bar chart omitted from overview", "source", opts.RecordSource, "err", barErr)
	}
	return page, barErr, nil
}

func (r *Runner) addBar(ctx context.Context, page *html.Page, opts Options) error {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}
	records, _, err := LoadRecords(ctx, opts)
	if err != nil {
		return err
	}
	l, _, err := r.BarLayoutWithCacheInfo(ctx, records, opts)
	if err != nil {
		return err
	}
	page.SetBar(l)
	return nil
}
