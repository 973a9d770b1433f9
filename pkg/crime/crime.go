// Package crime holds the crime-statistics data model: the category
// enumeration used by pie charts, per-category counts, the built-in
// datasets, and the per-borough records used by the grouped bar chart.
package crime

import (
	"cmp"
	"math"
	"slices"

	"github.com/matzehuels/crimeviz/pkg/errors"
)

// Category is a crime type label.
type Category = string

// The fixed category enumeration.
const (
	Burglary       Category = "BURGLARY"
	FelonyAssault  Category = "FELONY_ASSAULT"
	GrandLarceny   Category = "GRAND_LARCENY"
	GrandLarcenyMV Category = "GRAND_LARCENY_MV"
	Murder         Category = "MURDER"
	Rape           Category = "RAPE"
	Robbery        Category = "ROBBERY"
)

// Categories lists the enumeration in ascending order.
var Categories = []Category{
	Burglary,
	FelonyAssault,
	GrandLarceny,
	GrandLarcenyMV,
	Murder,
	Rape,
	Robbery,
}

// IsKnown reports whether c belongs to the fixed enumeration.
func IsKnown(c Category) bool {
	return slices.Contains(Categories, c)
}

// CategoryCount pairs a category with its count.
type CategoryCount struct {
	Category Category `json:"category"`
	Count    int      `json:"count"`
}

// Counts maps category labels to non-negative counts.
// Categories not present are implicitly zero.
type Counts map[Category]int

// Sorted returns the entries ordered by category label ascending.
func (c Counts) Sorted() []CategoryCount {
	out := make([]CategoryCount, 0, len(c))
	for cat, n := range c {
		out = append(out, CategoryCount{Category: cat, Count: n})
	}
	slices.SortFunc(out, func(a, b CategoryCount) int {
		return cmp.Compare(a.Category, b.Category)
	})
	return out
}

// Total returns the sum of all counts.
func (c Counts) Total() int {
	total := 0
	for _, n := range c {
		total += n
	}
	return total
}

// Validate rejects empty category labels, negative counts and totals that
// do not fit in an int.
func (c Counts) Validate() error {
	total := 0
	for _, cc := range c.Sorted() {
		if cc.Category == "" {
			return errors.New(errors.ErrCodeInvalidData, "empty category label")
		}
		if cc.Count < 0 {
			return errors.New(errors.ErrCodeInvalidData, "negative count %d for %s", cc.Count, cc.Category)
		}
		if cc.Count > math.MaxInt-total {
			return errors.New(errors.ErrCodeInvalidData, "total count overflows at %s", cc.Category)
		}
		total += cc.Count
	}
	return nil
}

// Clone returns an independent copy of c.
func (c Counts) Clone() Counts {
	out := make(Counts, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}
