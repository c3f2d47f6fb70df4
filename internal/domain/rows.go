package domain

import "encoding/json"

// Table identifies a target table for a batch of rows.
type Table string

const (
	TableRecords  Table = "health_raw"
	TableWorkouts Table = "workouts"
)

// RecordRow is the normalized form of one Record element, column-for-column with health_raw.
type RecordRow struct {
	RecordType     *string         `json:"record_type"`
	SourceName     *string         `json:"source_name"`
	SourceVersion  *string         `json:"source_version"`
	SourceBundleID *string         `json:"source_bundle_id"`
	Device         *string         `json:"device"`
	Unit           *string         `json:"unit"`
	ValueNumeric   *float64        `json:"value_numeric"`
	ValueText      *string         `json:"value_text"`
	StartTime      *string         `json:"start_time"`
	EndTime        *string         `json:"end_time"`
	CreationTime   *string         `json:"creation_time"`
	Metadata       json.RawMessage `json:"metadata"`
	RecordHash     string          `json:"record_hash"`
	Raw            json.RawMessage `json:"raw"`
}

// WorkoutRow is the normalized form of one Workout element, column-for-column with workouts.
type WorkoutRow struct {
	WorkoutType       *string         `json:"workout_type"`
	SourceName        *string         `json:"source_name"`
	SourceVersion     *string         `json:"source_version"`
	SourceBundleID    *string         `json:"source_bundle_id"`
	Device            *string         `json:"device"`
	StartTime         *string         `json:"start_time"`
	EndTime           *string         `json:"end_time"`
	DurationSeconds   *float64        `json:"duration_seconds"`
	DurationUnit      *string         `json:"duration_unit"`
	TotalEnergyBurned *float64        `json:"total_energy_burned"`
	TotalEnergyUnit   *string         `json:"total_energy_unit"`
	TotalDistance     *float64        `json:"total_distance"`
	TotalDistanceUnit *string         `json:"total_distance_unit"`
	AvgHeartRate      *float64        `json:"avg_heart_rate"`
	MinHeartRate      *float64        `json:"min_heart_rate"`
	MaxHeartRate      *float64        `json:"max_heart_rate"`
	RouteFile         *string         `json:"route_file"`
	Metadata          json.RawMessage `json:"metadata"`
	WorkoutHash       string          `json:"workout_hash"`
	Raw               json.RawMessage `json:"raw"`
}

// RecordColumns lists the health_raw insert columns in row order.
var RecordColumns = []string{
	"record_type", "source_name", "source_version", "source_bundle_id", "device", "unit",
	"value_numeric", "value_text", "start_time", "end_time", "creation_time",
	"metadata", "record_hash", "raw",
}

// WorkoutColumns lists the workouts insert columns in row order.
var WorkoutColumns = []string{
	"workout_type", "source_name", "source_version", "source_bundle_id", "device",
	"start_time", "end_time", "duration_seconds", "duration_unit",
	"total_energy_burned", "total_energy_unit", "total_distance", "total_distance_unit",
	"avg_heart_rate", "min_heart_rate", "max_heart_rate", "route_file",
	"metadata", "workout_hash", "raw",
}

// Values returns the row as positional arguments matching RecordColumns.
// JSON columns are passed as strings so drivers bind them as text.
func (r RecordRow) Values() []any {
	return []any{
		r.RecordType, r.SourceName, r.SourceVersion, r.SourceBundleID, r.Device, r.Unit,
		r.ValueNumeric, r.ValueText, r.StartTime, r.EndTime, r.CreationTime,
		jsonText(r.Metadata), r.RecordHash, string(r.Raw),
	}
}

// Values returns the row as positional arguments matching WorkoutColumns.
func (w WorkoutRow) Values() []any {
	return []any{
		w.WorkoutType, w.SourceName, w.SourceVersion, w.SourceBundleID, w.Device,
		w.StartTime, w.EndTime, w.DurationSeconds, w.DurationUnit,
		w.TotalEnergyBurned, w.TotalEnergyUnit, w.TotalDistance, w.TotalDistanceUnit,
		w.AvgHeartRate, w.MinHeartRate, w.MaxHeartRate, w.RouteFile,
		jsonText(w.Metadata), w.WorkoutHash, string(w.Raw),
	}
}

func jsonText(b []byte) *string {
	if b == nil {
		return nil
	}
	s := string(b)
	return &s
}
