// Package normalize turns completed Record and Workout elements into fixed-shape rows
// with a canonical raw snapshot and its content hash.
package normalize

import "example.com/healthingest/internal/domain"

// Element and attribute names used by Apple Health exports.
const (
	TagRecord            = "Record"
	TagWorkout           = "Workout"
	TagMetadataEntry     = "MetadataEntry"
	TagWorkoutStatistics = "WorkoutStatistics"
	TagWorkoutRoute      = "WorkoutRoute"
	TagFileReference     = "FileReference"

	heartRateType    = "HKQuantityTypeIdentifierHeartRate"
	activeEnergyType = "HKQuantityTypeIdentifierActiveEnergyBurned"
	distancePrefix   = "HKQuantityTypeIdentifierDistance"
)

// durationMultipliers converts a workout durationUnit into seconds.
var durationMultipliers = map[string]float64{
	"s":    1,
	"sec":  1,
	"min":  60,
	"hr":   3600,
	"hour": 3600,
}

// DurationSeconds converts a raw duration into seconds. Unknown units pass the
// parsed value through unchanged; an unparseable duration yields nil.
func DurationSeconds(duration, unit *string) *float64 {
	value := domain.ParseFloat(duration)
	if value == nil {
		return nil
	}
	if unit != nil {
		if mult, ok := durationMultipliers[*unit]; ok {
			seconds := *value * mult
			return &seconds
		}
	}
	return value
}
