// Package mongo loads borough crime records from a MongoDB collection.
//
// Documents use the same field names as the JSON record format
// (BOROUGH, Time_Period, Total_Crimes). Time_Period may be stored as a
// string or a number; Total_Crimes as any numeric BSON type.
package mongo

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/crimeviz/pkg/crime"
	"github.com/matzehuels/crimeviz/pkg/errors"
)

// DefaultTimeout bounds connecting and querying.
const DefaultTimeout = 10 * time.Second

// Source is a MongoDB collection of records.
type Source struct {
	URI        string
	Database   string
	Collection string
	Timeout    time.Duration
}

// Validate checks that the source is fully specified.
func (s Source) Validate() error {
	var missing []string
	if s.URI == "" {
		missing = append(missing, "uri")
	}
	if s.Database == "" {
		missing = append(missing, "database")
	}
	if s.Collection == "" {
		missing = append(missing, "collection")
	}
	if len(missing) > 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "mongo source missing %v", missing)
	}
	return nil
}

// String identifies the source without credentials.
func (s Source) String() string {
	return fmt.Sprintf("mongodb:%s.%s", s.Database, s.Collection)
}

// LoadRecords reads every document of the collection in natural order.
func (s Source) LoadRecords(ctx context.Context) ([]crime.Record, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(s.URI))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "connect %s", s)
	}
	defer client.Disconnect(context.WithoutCancel(ctx))

	coll := client.Database(s.Database).Collection(s.Collection)
	cur, err := coll.Find(ctx, bson.D{}, options.Find().SetProjection(bson.D{{Key: "_id", Value: 0}}))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "query %s", s)
	}
	var docs []bson.M
	if err := cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "read %s", s)
	}
	return RecordsFromDocs(docs)
}

// RecordsFromDocs converts decoded documents to validated records.
func RecordsFromDocs(docs []bson.M) ([]crime.Record, error) {
	records := make([]crime.Record, 0, len(docs))
	for i, d := range docs {
		var missing []string
		borough, ok := d[crime.FieldBorough].(string)
		if !ok || borough == "" {
			missing = append(missing, crime.FieldBorough)
		}
		period, ok := text(d[crime.FieldTimePeriod])
		if !ok {
			missing = append(missing, crime.FieldTimePeriod)
		}
		total, ok := number(d[crime.FieldTotalCrimes])
		if !ok {
			missing = append(missing, crime.FieldTotalCrimes)
		}
		if len(missing) > 0 {
			return nil, &errors.FieldError{Index: i, Fields: missing}
		}
		records = append(records, crime.Record{Borough: borough, TimePeriod: period, TotalCrimes: total})
	}
	if err := crime.ValidateRecords(records); err != nil {
		return nil, err
	}
	return records, nil
}

func text(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, t != ""
	case int32:
		return strconv.FormatInt(int64(t), 10), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	}
	return "", false
}

func number(v any) (float64, bool) {
	switch t := v.(type) {
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case float64:
		return t, true
	}
	return 0, false
}
