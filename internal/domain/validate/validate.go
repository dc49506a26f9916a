// Package validate applies schema checks at the API boundary: raw gateway
// payloads either become domain models or fail with an error naming the
// offending field. Type and range checks only; no business logic.
package validate

import (
	"fmt"
	"strings"
	"time"

	"github.com/aingelmo/HCGateway-dashboard/internal/domain/model"
)

// RawRecord mirrors one record of the gateway fetch payload.
type RawRecord struct {
	MongoID string  `json:"_id"`
	ID      string  `json:"id"`
	App     string  `json:"app"`
	Data    RawData `json:"data"`
	Start   string  `json:"start"`
	End     string  `json:"end"`
}

// RawData is the nested data field of a step record.
type RawData struct {
	Count *int `json:"count"`
}

// Steps is the validator value for step records.
type Steps struct{}

// Record validates a single raw record and builds the domain model.
// Errors name the first offending field.
func (Steps) Record(raw RawRecord) (model.StepsRecord, error) {
	id := raw.ID
	if id == "" {
		id = raw.MongoID
	}
	if strings.TrimSpace(id) == "" {
		return model.StepsRecord{}, fieldErr("id", "missing")
	}

	if raw.Data.Count == nil {
		return model.StepsRecord{}, fieldErr("count", "missing")
	}
	if *raw.Data.Count < 0 {
		return model.StepsRecord{}, fieldErr("count", "must be non-negative")
	}

	var start, end time.Time
	var err error
	if raw.Start != "" {
		if start, err = parseTimestamp(raw.Start); err != nil {
			return model.StepsRecord{}, fieldErr("start", "invalid ISO 8601 datetime")
		}
	}
	if raw.End != "" {
		if end, err = parseTimestamp(raw.End); err != nil {
			return model.StepsRecord{}, fieldErr("end", "invalid ISO 8601 datetime")
		}
	}
	if start.IsZero() && end.IsZero() {
		return model.StepsRecord{}, fieldErr("end", "missing")
	}

	app := raw.App
	if app == "" {
		app = "unknown"
	}

	return model.StepsRecord{
		ID:    id,
		App:   app,
		Count: *raw.Data.Count,
		Start: start,
		End:   end,
	}, nil
}

// Records validates a list of raw records, splitting them into valid models
// and per-record failures. A malformed record never fails the whole batch.
func (v Steps) Records(raw []RawRecord) ([]model.StepsRecord, []error) {
	var (
		out  []model.StepsRecord
		errs []error
	)
	for i, r := range raw {
		rec, err := v.Record(r)
		if err != nil {
			errs = append(errs, fmt.Errorf("record %d: %w", i, err))
			continue
		}
		out = append(out, rec)
	}
	return out, errs
}

// Range checks a caller-supplied query range before any network I/O.
func Range(q model.QueryRange) error {
	switch {
	case q.Start.IsZero():
		return fieldErr("start", "missing")
	case q.End.IsZero():
		return fieldErr("end", "missing")
	case q.Start.After(q.End):
		return fieldErr("start", "must not be after end")
	}
	return nil
}

// parseTimestamp accepts RFC3339 with either a "Z" or numeric offset.
func parseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}

func fieldErr(field, msg string) error {
	return fmt.Errorf("%w: field %q %s", ErrValidation, field, msg)
}
