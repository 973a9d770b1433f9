// Package render converts chart documents between output formats.
//
// # Overview
//
// Chart geometry lives in [chart/pie] and [chart/bar]; the subpackages here
// turn layouts into files:
//
//   - [svg]: SVG documents drawn on an explicit, keyed [svg.Surface]
//   - [raster]: native PNG output without external tools
//   - [html]: an interactive HTML page with one chart per dataset
//
// # Format Conversion
//
// [ToPDF] and [ToPNG] convert any SVG document using the external
// rsvg-convert tool (from librsvg). The conversion honours context
// cancellation.
//
//	doc := svg.RenderPie(layout)
//	pdf, err := render.ToPDF(ctx, doc)
//	png, err := render.ToPNG(ctx, doc, 2.0) // 2x scale
//
// When rsvg-convert is missing both return an UNSUPPORTED error; callers
// that only need PNG can fall back to [raster].
//
// [chart/pie]: github.com/matzehuels/crimeviz/pkg/chart/pie
// [chart/bar]: github.com/matzehuels/crimeviz/pkg/chart/bar
// [svg]: github.com/matzehuels/crimeviz/pkg/render/svg
// [svg.Surface]: github.com/matzehuels/crimeviz/pkg/render/svg#Surface
// [raster]: github.com/matzehuels/crimeviz/pkg/render/raster
// [html]: github.com/matzehuels/crimeviz/pkg/render/html
package render
