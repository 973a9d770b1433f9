package raster

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/matzehuels/crimeviz/pkg/chart/bar"
	"github.com/matzehuels/crimeviz/pkg/chart/pie"
	"github.com/matzehuels/crimeviz/pkg/crime"
	"github.com/matzehuels/crimeviz/pkg/errors"
)

func TestPieBytes(t *testing.T) {
	d, _ := crime.LookupDataset("data2")
	l, err := pie.Compute(d.Counts, pie.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	data, err := PieBytes(l, WithTitle("data2"))
	if err != nil {
		t.Fatalf("PieBytes() error: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not a PNG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 450 || b.Dy() != 450 {
		t.Errorf("image size = %dx%d, want 450x450", b.Dx(), b.Dy())
	}
}

func TestPieBytesEmpty(t *testing.T) {
	l, _ := pie.Compute(crime.Counts{}, pie.DefaultOptions())
	data, err := PieBytes(l)
	if err != nil {
		t.Fatalf("PieBytes(empty) error: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not a PNG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 450 || b.Dy() != 450 {
		t.Errorf("blank image size = %dx%d, want 450x450", b.Dx(), b.Dy())
	}
}

func TestBarBytes(t *testing.T) {
	l, err := bar.Compute([]crime.Record{
		{Borough: "Bronx", TimePeriod: "2019", TotalCrimes: 10},
		{Borough: "Queens", TimePeriod: "2019", TotalCrimes: 20},
		{Borough: "Bronx", TimePeriod: "2020", TotalCrimes: 15},
	}, bar.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	data, err := BarBytes(l)
	if err != nil {
		t.Fatalf("BarBytes() error: %v", err)
	}
	if _, err := png.Decode(bytes.NewReader(data)); err != nil {
		t.Errorf("output is not a PNG: %v", err)
	}

	if _, err := BarBytes(bar.Layout{}); !errors.Is(err, errors.ErrCodeInvalidData) {
		t.Errorf("BarBytes(empty) error = %v, want INVALID_DATA", err)
	}
}
