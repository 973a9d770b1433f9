// Package pie computes pie-chart geometry: slice angles and externally
// placed labels connected to their slices by "elbow" leader lines.
//
// # Overview
//
// [Compute] turns a set of category counts into a [Layout]. The layout is
// pure data (no drawing): renderers in [render/svg] and friends consume it.
//
//	layout, err := pie.Compute(counts, pie.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//	for _, s := range layout.Slices {
//	    fmt.Println(s.Category, s.Span())
//	}
//
// # Angles
//
// Angles are radians measured clockwise from twelve o'clock, the
// convention used by SVG pie renderers. Slices are ordered by category
// name ascending and laid end to end from 0, so their spans always add up
// to a full turn when the total is positive.
//
// # Labels
//
// Every slice whose share of the total reaches [Options.MinLabelPercent]
// gets a [Label]: a three-point leader line and a text position. The line
// starts on the slice's outer edge at the mid-angle, bends at
// [Options.LeaderRatio] of the base radius, and runs horizontally to
// ±[Options.SnapRatio] of the base radius. Slices on the right half
// (mid-angle < π) label to the right with text-anchor "start"; the others
// label to the left with "end".
//
// [render/svg]: github.com/matzehuels/crimeviz/pkg/render/svg
package pie
