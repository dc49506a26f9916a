package validate_test

import (
	"errors"
	"testing"
	"time"

	"github.com/aingelmo/HCGateway-dashboard/internal/domain/model"
	"github.com/aingelmo/HCGateway-dashboard/internal/domain/validate"
	"github.com/smartystreets/goconvey/convey"
)

func intPtr(n int) *int { return &n }

func TestStepsRecordValidation(t *testing.T) {
	convey.Convey("Given a steps validator", t, func() {
		v := validate.Steps{}

		convey.Convey("When the record is well formed", func() {
			raw := validate.RawRecord{
				ID:    "rec-1",
				App:   "com.fitband.app",
				Data:  validate.RawData{Count: intPtr(1234)},
				Start: "2025-03-01T08:00:00Z",
				End:   "2025-03-01T09:00:00Z",
			}

			rec, err := v.Record(raw)

			convey.Convey("Then it should build the domain model", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(rec.ID, convey.ShouldEqual, "rec-1")
				convey.So(rec.App, convey.ShouldEqual, "com.fitband.app")
				convey.So(rec.Count, convey.ShouldEqual, 1234)
				convey.So(rec.End.UTC(), convey.ShouldEqual, time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
			})
		})

		convey.Convey("When only the mongo id is present", func() {
			raw := validate.RawRecord{
				MongoID: "abc123",
				Data:    validate.RawData{Count: intPtr(10)},
				End:     "2025-03-01T09:00:00+00:00",
			}

			rec, err := v.Record(raw)

			convey.Convey("Then the mongo id should be used and app defaulted", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(rec.ID, convey.ShouldEqual, "abc123")
				convey.So(rec.App, convey.ShouldEqual, "unknown")
			})
		})

		convey.Convey("When the count is negative", func() {
			raw := validate.RawRecord{
				ID:   "rec-2",
				Data: validate.RawData{Count: intPtr(-5)},
				End:  "2025-03-01T09:00:00Z",
			}

			_, err := v.Record(raw)

			convey.Convey("Then it should fail naming the count field", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, validate.ErrValidation), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, `"count"`)
			})
		})

		convey.Convey("When the count is missing", func() {
			raw := validate.RawRecord{
				ID:  "rec-3",
				End: "2025-03-01T09:00:00Z",
			}

			_, err := v.Record(raw)

			convey.Convey("Then it should fail naming the count field", func() {
				convey.So(errors.Is(err, validate.ErrValidation), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, `"count"`)
			})
		})

		convey.Convey("When the end timestamp is malformed", func() {
			raw := validate.RawRecord{
				ID:   "rec-4",
				Data: validate.RawData{Count: intPtr(5)},
				End:  "yesterday",
			}

			_, err := v.Record(raw)

			convey.Convey("Then it should fail naming the end field", func() {
				convey.So(errors.Is(err, validate.ErrValidation), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, `"end"`)
			})
		})

		convey.Convey("When both timestamps are missing", func() {
			raw := validate.RawRecord{
				ID:   "rec-5",
				Data: validate.RawData{Count: intPtr(5)},
			}

			_, err := v.Record(raw)

			convey.Convey("Then it should fail validation", func() {
				convey.So(errors.Is(err, validate.ErrValidation), convey.ShouldBeTrue)
			})
		})
	})
}

func TestStepsRecordsBatch(t *testing.T) {
	convey.Convey("Given a batch with one malformed record", t, func() {
		v := validate.Steps{}
		raw := []validate.RawRecord{
			{ID: "good", Data: validate.RawData{Count: intPtr(100)}, End: "2025-03-01T09:00:00Z"},
			{ID: "bad", Data: validate.RawData{Count: intPtr(-1)}, End: "2025-03-01T09:00:00Z"},
			{ID: "good2", Data: validate.RawData{Count: intPtr(200)}, End: "2025-03-02T09:00:00Z"},
		}

		convey.Convey("When validating the batch", func() {
			records, errs := v.Records(raw)

			convey.Convey("Then the malformed record should be isolated", func() {
				convey.So(records, convey.ShouldHaveLength, 2)
				convey.So(errs, convey.ShouldHaveLength, 1)
				convey.So(errs[0].Error(), convey.ShouldContainSubstring, "record 1")
			})
		})
	})
}

func TestRangeValidation(t *testing.T) {
	convey.Convey("Given query ranges", t, func() {
		day := func(d int) time.Time { return time.Date(2025, 3, d, 0, 0, 0, 0, time.UTC) }

		convey.Convey("When start <= end", func() {
			err := validate.Range(model.QueryRange{Start: day(1), End: day(2)})

			convey.Convey("Then it should pass", func() {
				convey.So(err, convey.ShouldBeNil)
			})
		})

		convey.Convey("When start equals end", func() {
			err := validate.Range(model.QueryRange{Start: day(1), End: day(1)})

			convey.Convey("Then it should pass (inclusive bounds)", func() {
				convey.So(err, convey.ShouldBeNil)
			})
		})

		convey.Convey("When start is after end", func() {
			err := validate.Range(model.QueryRange{Start: day(3), End: day(1)})

			convey.Convey("Then it should fail with a validation error", func() {
				convey.So(errors.Is(err, validate.ErrValidation), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a bound is missing", func() {
			err := validate.Range(model.QueryRange{End: day(1)})

			convey.Convey("Then it should fail with a validation error", func() {
				convey.So(errors.Is(err, validate.ErrValidation), convey.ShouldBeTrue)
			})
		})
	})
}
