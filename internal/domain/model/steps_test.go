package model_test

import (
	"testing"
	"time"

	"github.com/aingelmo/HCGateway-dashboard/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestStepsRecord(t *testing.T) {
	convey.Convey("Given a StepsRecord", t, func() {
		start := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
		end := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

		convey.Convey("When both timestamps are set", func() {
			rec := model.StepsRecord{ID: "r1", App: "fitband", Count: 1200, Start: start, End: end}

			convey.Convey("Then When() should prefer End", func() {
				convey.So(rec.When(), convey.ShouldEqual, end)
			})
		})

		convey.Convey("When End is missing", func() {
			rec := model.StepsRecord{ID: "r2", App: "fitband", Count: 800, Start: start}

			convey.Convey("Then When() should fall back to Start", func() {
				convey.So(rec.When(), convey.ShouldEqual, start)
			})
		})
	})
}

func TestQueryRangeWindow(t *testing.T) {
	convey.Convey("Given a query range", t, func() {
		rng := model.QueryRange{
			Start: time.Date(2025, 3, 1, 14, 30, 0, 0, time.UTC),
			End:   time.Date(2025, 3, 3, 6, 15, 0, 0, time.UTC),
		}

		convey.Convey("When expanding to the fetch window", func() {
			from, to := rng.Window()

			convey.Convey("Then the window should cover full days in UTC", func() {
				convey.So(from, convey.ShouldEqual, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
				convey.So(to, convey.ShouldEqual, time.Date(2025, 3, 3, 23, 59, 59, 0, time.UTC))
			})
		})
	})
}

func TestTotals(t *testing.T) {
	convey.Convey("Given records across several days", t, func() {
		day1 := time.Date(2025, 3, 2, 10, 0, 0, 0, time.UTC)
		day2 := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

		records := []model.StepsRecord{
			{ID: "a", Count: 100, End: day1},
			{ID: "b", Count: 200, End: day2},
			{ID: "c", Count: 50, End: day1},
		}

		convey.Convey("When aggregating daily totals", func() {
			totals := model.Totals(records)

			convey.Convey("Then totals should be summed per day and sorted", func() {
				convey.So(totals, convey.ShouldHaveLength, 2)
				convey.So(totals[0].Date, convey.ShouldEqual, "2025-03-01")
				convey.So(totals[0].Count, convey.ShouldEqual, 200)
				convey.So(totals[1].Date, convey.ShouldEqual, "2025-03-02")
				convey.So(totals[1].Count, convey.ShouldEqual, 150)
			})
		})

		convey.Convey("When there are no records", func() {
			totals := model.Totals(nil)

			convey.Convey("Then the result should be empty", func() {
				convey.So(totals, convey.ShouldBeEmpty)
			})
		})
	})
}
