// Package pkg holds the crimeviz libraries.
//
// # Overview
//
// crimeviz draws crime statistics: category counts become pie charts whose
// slices are labelled through elbow leader lines, and borough records
// become grouped bar charts. The packages are:
//
//  1. [crime] - categories, counts, records and the built-in datasets
//  2. [chart] - pure geometry: [chart/pie], [chart/bar] and [chart/palette]
//  3. [render] - SVG, PNG, PDF and HTML output
//  4. [pipeline] - orchestration (load → layout → render) with caching
//  5. [server] - the HTTP API over the pipeline
//
// Supporting packages: [cache] (file, Redis and null stores), [config]
// (TOML file plus CRIMEVIZ_* environment), [errors] (coded errors),
// [httputil] (retrying, caching downloads), [io] (JSON import/export),
// [observability] (hooks) and [source] (file, URL and MongoDB records).
//
// # Data Flow
//
//	built-in dataset / counts.json        records.json / URL / MongoDB
//	         ↓                                      ↓
//	    [chart/pie].Compute                  [chart/bar].Compute
//	         ↓                                      ↓
//	    [render/svg] surface  →  rsvg-convert or [render/raster]  →  files
//
// # Quick Start
//
//	runner := pipeline.NewRunner(cache.NewNullCache(), nil, nil)
//	res, err := runner.Execute(ctx, pipeline.Options{
//	    Kind:    pipeline.KindPie,
//	    Dataset: "data1",
//	    Formats: []string{"svg"},
//	})
//	os.WriteFile("data1.svg", res.Artifacts["svg"], 0o644)
package pkg
