package pipeline

import (
	"bytes"
	"context"

	"github.com/matzehuels/crimeviz/pkg/chart/bar"
	"github.com/matzehuels/crimeviz/pkg/chart/palette"
	"github.com/matzehuels/crimeviz/pkg/chart/pie"
	"github.com/matzehuels/crimeviz/pkg/errors"
	cio "github.com/matzehuels/crimeviz/pkg/io"
	"github.com/matzehuels/crimeviz/pkg/render"
	"github.com/matzehuels/crimeviz/pkg/render/html"
	"github.com/matzehuels/crimeviz/pkg/render/raster"
	"github.com/matzehuels/crimeviz/pkg/render/svg"
)

// CategoryPalette returns the category colours with overrides applied.
func (o *Options) CategoryPalette() palette.Palette {
	return palette.Categories().With(o.Palette)
}

// RenderPie renders one format of a pie layout. name labels the chart in
// the HTML page.
func RenderPie(ctx context.Context, l pie.Layout, name, format string, opts Options) ([]byte, error) {
	pal := opts.CategoryPalette()
	doc := func() []byte {
		return svg.RenderPie(l, svg.WithPalette(pal), svg.WithDocumentTitle(opts.Title))
	}

	switch format {
	case FormatSVG:
		return doc(), nil
	case FormatPNG:
		if opts.NativePNG {
			return raster.PieBytes(l, raster.WithPalette(pal), raster.WithTitle(opts.Title))
		}
		return render.ToPNG(ctx, doc(), opts.Scale)
	case FormatPDF:
		return render.ToPDF(ctx, doc())
	case FormatJSON:
		return layoutJSON(l)
	case FormatHTML:
		page := html.NewPage(opts.Title)
		page.Palette = pal
		return page.AddPie(name, l).Bytes()
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q", format)
}

// RenderBar renders one format of a bar layout.
func RenderBar(ctx context.Context, l bar.Layout, format string, opts Options) ([]byte, error) {
	doc := func() []byte {
		return svg.RenderBar(l, svg.WithDocumentTitle(opts.Title))
	}

	switch format {
	case FormatSVG:
		return doc(), nil
	case FormatPNG:
		if opts.NativePNG {
			return raster.BarBytes(l)
		}
		return render.ToPNG(ctx, doc(), opts.Scale)
	case FormatPDF:
		return render.ToPDF(ctx, doc())
	case FormatJSON:
		return layoutJSON(l)
	case FormatHTML:
		return html.NewPage(opts.Title).SetBar(l).Bytes()
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q", format)
}

func layoutJSON(layout any) ([]byte, error) {
	var buf bytes.Buffer
	if err := cio.WriteLayout(&buf, layout); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
