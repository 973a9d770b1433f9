package io

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/crimeviz/pkg/crime"
	"github.com/matzehuels/crimeviz/pkg/errors"
	"github.com/matzehuels/crimeviz/pkg/httputil"
)

// ReadCounts decodes a JSON object of category counts from r and validates
// it. A JSON null yields empty, non-nil counts. ReadCounts does not close r.
func ReadCounts(r io.Reader) (crime.Counts, error) {
	var counts crime.Counts
	if err := json.NewDecoder(r).Decode(&counts); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode counts")
	}
	if counts == nil {
		counts = crime.Counts{}
	}
	if err := counts.Validate(); err != nil {
		return nil, err
	}
	return counts, nil
}

// ImportCounts reads counts from the JSON file at path.
func ImportCounts(path string) (crime.Counts, error) {
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	counts, err := ReadCounts(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return counts, nil
}

// ReadRecords decodes a JSON array of borough records from r.
func ReadRecords(r io.Reader) ([]crime.Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read records")
	}
	return crime.DecodeRecords(data)
}

// ImportRecords reads records from the JSON file at path.
func ImportRecords(path string) ([]crime.Record, error) {
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	records, err := ReadRecords(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// FetchRecords downloads and decodes records from url. A nil client uses
// [httputil.NewClient] without a cache.
func FetchRecords(ctx context.Context, client *httputil.Client, url string) ([]crime.Record, error) {
	if client == nil {
		client = httputil.NewClient(nil)
	}
	body, err := client.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	records, err := crime.DecodeRecords(body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", url, err)
	}
	return records, nil
}

func open(path string) (*os.File, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "open %s", path)
	}
	return f, nil
}
