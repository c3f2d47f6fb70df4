package normalize

import (
	"fmt"

	"example.com/healthingest/internal/domain"
)

type recordRaw struct {
	Attributes map[string]string `json:"attributes"`
	Children   []domain.Snapshot `json:"children,omitempty"`
	Metadata   *domain.Metadata  `json:"metadata,omitempty"`
}

// Record normalizes a completed Record element. MetadataEntry children are folded
// into metadata; any other child is kept as a structural snapshot.
func Record(e *domain.Element) (domain.RecordRow, error) {
	metadata := domain.NewMetadata()
	var extra []domain.Snapshot

	for _, child := range e.Children {
		if child.Name == TagMetadataEntry {
			addMetadataEntry(metadata, child)
			continue
		}
		extra = append(extra, domain.NewSnapshot(child))
	}

	row := domain.RecordRow{
		RecordType:     e.AttrPtr("type"),
		SourceName:     e.AttrPtr("sourceName"),
		SourceVersion:  e.AttrPtr("sourceVersion"),
		SourceBundleID: e.AttrPtr("sourceBundleIdentifier"),
		Device:         e.AttrPtr("device"),
		Unit:           e.AttrPtr("unit"),
		StartTime:      e.AttrPtr("startDate"),
		EndTime:        e.AttrPtr("endDate"),
		CreationTime:   e.AttrPtr("creationDate"),
	}

	rawValue := e.AttrPtr("value")
	row.ValueNumeric = domain.ParseFloat(rawValue)
	if row.ValueNumeric == nil && rawValue != nil && *rawValue != "" {
		row.ValueText = rawValue
	}

	raw := recordRaw{Attributes: e.AttrMap(), Children: extra}
	if metadata.Len() > 0 {
		raw.Metadata = metadata
	}

	var err error
	if row.Metadata, err = metadataJSON(metadata); err != nil {
		return domain.RecordRow{}, fmt.Errorf("encode record metadata: %w", err)
	}
	if row.Raw, err = domain.CanonicalJSON(raw); err != nil {
		return domain.RecordRow{}, fmt.Errorf("encode record: %w", err)
	}
	row.RecordHash = domain.Hash(row.Raw)
	return row, nil
}

func addMetadataEntry(m *domain.Metadata, entry *domain.Element) {
	m.Add(entry.AttrPtr("key"), entry.AttrPtr("value"))
}

func metadataJSON(m *domain.Metadata) ([]byte, error) {
	if m.Len() == 0 {
		return nil, nil
	}
	return domain.CanonicalJSON(m)
}
