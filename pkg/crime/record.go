package crime

import (
	"encoding/json"
	"math"

	"github.com/matzehuels/crimeviz/pkg/errors"
)

// JSON field names of a borough record.
const (
	FieldBorough     = "BOROUGH"
	FieldTimePeriod  = "Time_Period"
	FieldTotalCrimes = "Total_Crimes"
)

// Record is one borough's crime total for one time period.
type Record struct {
	Borough     string  `json:"BOROUGH" bson:"BOROUGH"`
	TimePeriod  string  `json:"Time_Period" bson:"Time_Period"`
	TotalCrimes float64 `json:"Total_Crimes" bson:"Total_Crimes"`
}

// rawRecord keeps presence information so missing fields can be reported
// instead of silently decoding to zero values.
type rawRecord struct {
	Borough     *string          `json:"BOROUGH"`
	TimePeriod  *json.RawMessage `json:"Time_Period"`
	TotalCrimes *float64         `json:"Total_Crimes"`
}

// DecodeRecords parses a JSON array of records and validates each one.
// Time_Period may be a string or a number; numbers keep their JSON text.
func DecodeRecords(data []byte) ([]Record, error) {
	var raws []rawRecord
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode records")
	}

	records := make([]Record, 0, len(raws))
	for i, raw := range raws {
		var missing []string
		if raw.Borough == nil || *raw.Borough == "" {
			missing = append(missing, FieldBorough)
		}
		period, ok := periodText(raw.TimePeriod)
		if !ok {
			missing = append(missing, FieldTimePeriod)
		}
		if raw.TotalCrimes == nil {
			missing = append(missing, FieldTotalCrimes)
		}
		if len(missing) > 0 {
			return nil, &errors.FieldError{Index: i, Fields: missing}
		}
		records = append(records, Record{
			Borough:     *raw.Borough,
			TimePeriod:  period,
			TotalCrimes: *raw.TotalCrimes,
		})
	}

	if err := ValidateRecords(records); err != nil {
		return nil, err
	}
	return records, nil
}

func periodText(raw *json.RawMessage) (string, bool) {
	if raw == nil || string(*raw) == "null" {
		return "", false
	}
	var s string
	if err := json.Unmarshal(*raw, &s); err == nil {
		return s, s != ""
	}
	var n json.Number
	if err := json.Unmarshal(*raw, &n); err == nil {
		return n.String(), true
	}
	return "", false
}

// ValidateRecords checks decoded records (from any source) for empty
// fields and negative or non-finite totals.
func ValidateRecords(records []Record) error {
	for i, r := range records {
		var missing []string
		if r.Borough == "" {
			missing = append(missing, FieldBorough)
		}
		if r.TimePeriod == "" {
			missing = append(missing, FieldTimePeriod)
		}
		if len(missing) > 0 {
			return &errors.FieldError{Index: i, Fields: missing}
		}
		if r.TotalCrimes < 0 || math.IsNaN(r.TotalCrimes) || math.IsInf(r.TotalCrimes, 0) {
			return errors.New(errors.ErrCodeInvalidData, "record %d: %s must be a non-negative number, got %v", i, FieldTotalCrimes, r.TotalCrimes)
		}
	}
	return nil
}

// PeriodGroup holds the records of one time period.
type PeriodGroup struct {
	Period  string
	Records []Record
}

// GroupByPeriod groups records by time period in first-seen order.
func GroupByPeriod(records []Record) []PeriodGroup {
	index := make(map[string]int)
	var groups []PeriodGroup
	for _, r := range records {
		i, ok := index[r.TimePeriod]
		if !ok {
			i = len(groups)
			index[r.TimePeriod] = i
			groups = append(groups, PeriodGroup{Period: r.TimePeriod})
		}
		groups[i].Records = append(groups[i].Records, r)
	}
	return groups
}

// Boroughs returns the distinct boroughs in first-seen order.
func Boroughs(records []Record) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range records {
		if !seen[r.Borough] {
			seen[r.Borough] = true
			out = append(out, r.Borough)
		}
	}
	return out
}

// MaxTotal returns the largest Total_Crimes value, or 0 for no records.
func MaxTotal(records []Record) float64 {
	m := 0.0
	for _, r := range records {
		m = max(m, r.TotalCrimes)
	}
	return m
}
