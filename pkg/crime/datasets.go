package crime

import (
	"github.com/matzehuels/crimeviz/pkg/errors"
)

// Dataset is a named set of category counts.
type Dataset struct {
	Name   string `json:"name"`
	Counts Counts `json:"counts"`
}

// DefaultDataset is the dataset shown when none is requested.
const DefaultDataset = "data1"

var builtin = []Dataset{
	{Name: "data1", Counts: Counts{Burglary: 4, FelonyAssault: 26, GrandLarceny: 91, GrandLarcenyMV: 2, Murder: 1, Rape: 3, Robbery: 16}},
	{Name: "data2", Counts: Counts{Burglary: 0, FelonyAssault: 6, GrandLarceny: 13, GrandLarcenyMV: 0, Murder: 1, Rape: 0, Robbery: 31}},
	{Name: "data3", Counts: Counts{Burglary: 3, FelonyAssault: 35, GrandLarceny: 45, GrandLarcenyMV: 2, Murder: 0, Rape: 0, Robbery: 13}},
	{Name: "data4", Counts: Counts{Burglary: 1, FelonyAssault: 43, GrandLarceny: 24, GrandLarcenyMV: 4, Murder: 0, Rape: 1, Robbery: 21}},
	{Name: "data5", Counts: Counts{Burglary: 0, FelonyAssault: 16, GrandLarceny: 0, GrandLarcenyMV: 0, Murder: 0, Rape: 1, Robbery: 0}},
}

// Datasets returns copies of the built-in datasets in display order.
func Datasets() []Dataset {
	out := make([]Dataset, len(builtin))
	for i, d := range builtin {
		out[i] = Dataset{Name: d.Name, Counts: d.Counts.Clone()}
	}
	return out
}

// DatasetNames returns the built-in dataset names in display order.
func DatasetNames() []string {
	names := make([]string, len(builtin))
	for i, d := range builtin {
		names[i] = d.Name
	}
	return names
}

// LookupDataset returns a copy of the named built-in dataset.
func LookupDataset(name string) (Dataset, error) {
	for _, d := range builtin {
		if d.Name == name {
			return Dataset{Name: d.Name, Counts: d.Counts.Clone()}, nil
		}
	}
	return Dataset{}, errors.New(errors.ErrCodeDatasetNotFound, "unknown dataset %q", name)
}
