package mockgw

import (
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/aingelmo/HCGateway-dashboard/internal/domain/validate"
)

// Sources used for seeded records.
var seedApps = []string{
	"com.google.android.apps.fitness",
	"com.samsung.health",
	"com.fitbit.FitbitMobile",
}

// Seed generates plausible step records for the last days calendar days,
// a few observation windows per day.
func Seed(days int, now time.Time) []validate.RawRecord {
	rng := rand.New(rand.NewSource(now.UnixNano()))

	var out []validate.RawRecord
	for d := 0; d < days; d++ {
		day := now.UTC().AddDate(0, 0, -d)
		windows := 2 + rng.Intn(3)
		for w := 0; w < windows; w++ {
			start := time.Date(day.Year(), day.Month(), day.Day(), 7+w*4, 0, 0, 0, time.UTC)
			end := start.Add(time.Duration(30+rng.Intn(90)) * time.Minute)
			count := 500 + rng.Intn(4500)
			out = append(out, validate.RawRecord{
				ID:    uuid.NewString(),
				App:   seedApps[rng.Intn(len(seedApps))],
				Data:  validate.RawData{Count: &count},
				Start: start.Format(time.RFC3339),
				End:   end.Format(time.RFC3339),
			})
		}
	}
	return out
}
