// Package svg draws chart layouts as SVG.
//
// # Surfaces
//
// A [Surface] is the drawing context charts are rendered into. It is always
// passed explicitly; nothing in this package draws into a global document.
// Content is organised in named layers of keyed elements, and every draw is
// a keyed update: elements whose key is still present are replaced, new keys
// are appended and stale keys are removed. Calling [Surface.DrawPie] again
// with a different dataset therefore leaves exactly one slice per category
// of the new data.
//
//	s := svg.NewSurface(450, 450, svg.WithID("pie"))
//	s.DrawPie(layout1, palette.Categories())
//	s.DrawPie(layout2, palette.Categories()) // replaces, never accumulates
//	os.WriteFile("pie.svg", s.Bytes(), 0o644)
//
// Element IDs are prefixed with the surface ID so several surfaces can be
// inlined into one HTML page.
//
// # One-shot rendering
//
// [RenderPie] and [RenderBar] create a fresh surface, draw once and return
// the document bytes. Options: [WithElementID], [WithDocumentTitle],
// [WithPalette].
package svg
