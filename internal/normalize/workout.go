package normalize

import (
	"fmt"
	"strings"

	"example.com/healthingest/internal/domain"
)

type workoutRaw struct {
	Attributes map[string]string   `json:"attributes"`
	Children   []domain.Snapshot   `json:"children,omitempty"`
	Metadata   *domain.Metadata    `json:"metadata,omitempty"`
	Routes     []routeRaw          `json:"routes,omitempty"`
	Statistics []map[string]string `json:"statistics,omitempty"`
}

type routeRaw struct {
	Attributes map[string]string `json:"attributes"`
	Children   []domain.Snapshot `json:"children,omitempty"`
	Files      []string          `json:"files,omitempty"`
}

// workoutStats tracks which statistic kinds have already seeded row fields.
type workoutStats struct {
	heartRate bool
	energy    bool
	distance  bool
}

// Workout normalizes a completed Workout element. The first statistics entry of
// each kind seeds the scalar columns; every entry is kept in raw.statistics.
func Workout(e *domain.Element) (domain.WorkoutRow, error) {
	row := domain.WorkoutRow{
		WorkoutType:    e.AttrPtr("workoutActivityType"),
		SourceName:     e.AttrPtr("sourceName"),
		SourceVersion:  e.AttrPtr("sourceVersion"),
		SourceBundleID: e.AttrPtr("sourceBundleIdentifier"),
		Device:         e.AttrPtr("device"),
		StartTime:      e.AttrPtr("startDate"),
		EndTime:        e.AttrPtr("endDate"),
		DurationUnit:   e.AttrPtr("durationUnit"),
	}
	row.DurationSeconds = DurationSeconds(e.AttrPtr("duration"), row.DurationUnit)

	metadata := domain.NewMetadata()
	raw := workoutRaw{Attributes: e.AttrMap()}
	var seen workoutStats

	for _, child := range e.Children {
		switch child.Name {
		case TagMetadataEntry:
			addMetadataEntry(metadata, child)
		case TagWorkoutStatistics:
			raw.Statistics = append(raw.Statistics, child.AttrMap())
			applyStatistic(&row, &seen, child)
		case TagWorkoutRoute:
			raw.Routes = append(raw.Routes, collectRoute(&row, child))
		default:
			raw.Children = append(raw.Children, domain.NewSnapshot(child))
		}
	}

	if metadata.Len() > 0 {
		raw.Metadata = metadata
	}

	var err error
	if row.Metadata, err = metadataJSON(metadata); err != nil {
		return domain.WorkoutRow{}, fmt.Errorf("encode workout metadata: %w", err)
	}
	if row.Raw, err = domain.CanonicalJSON(raw); err != nil {
		return domain.WorkoutRow{}, fmt.Errorf("encode workout: %w", err)
	}
	row.WorkoutHash = domain.Hash(row.Raw)
	return row, nil
}

func applyStatistic(row *domain.WorkoutRow, seen *workoutStats, stat *domain.Element) {
	statType, _ := stat.Attr("type")
	switch {
	case statType == heartRateType:
		if seen.heartRate {
			return
		}
		seen.heartRate = true
		row.AvgHeartRate = domain.ParseFloat(stat.AttrPtr("average"))
		row.MinHeartRate = domain.ParseFloat(stat.AttrPtr("minimum"))
		row.MaxHeartRate = domain.ParseFloat(stat.AttrPtr("maximum"))
	case statType == activeEnergyType:
		if seen.energy {
			return
		}
		seen.energy = true
		row.TotalEnergyBurned = domain.ParseFloat(stat.AttrPtr("sum"))
		row.TotalEnergyUnit = stat.AttrPtr("unit")
	case strings.HasPrefix(statType, distancePrefix):
		if seen.distance {
			return
		}
		seen.distance = true
		row.TotalDistance = domain.ParseFloat(stat.AttrPtr("sum"))
		row.TotalDistanceUnit = stat.AttrPtr("unit")
	}
}

// collectRoute keeps the route attributes, gathers FileReference paths and
// snapshots any other route child. The first path across all routes becomes RouteFile.
func collectRoute(row *domain.WorkoutRow, route *domain.Element) routeRaw {
	out := routeRaw{Attributes: route.AttrMap()}
	for _, child := range route.Children {
		if child.Name != TagFileReference {
			out.Children = append(out.Children, domain.NewSnapshot(child))
			continue
		}
		path, _ := child.Attr("path")
		if path == "" {
			continue
		}
		out.Files = append(out.Files, path)
		if row.RouteFile == nil {
			row.RouteFile = &path
		}
	}
	return out
}
