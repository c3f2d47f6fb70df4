package normalize

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"example.com/healthingest/internal/domain"
	"example.com/healthingest/internal/xmlstream"
)

// parse reads the single Record or Workout in doc.
func parse(t *testing.T, doc string) *domain.Element {
	t.Helper()
	reader := xmlstream.NewReader(strings.NewReader(doc), TagRecord, TagWorkout)
	var out []*domain.Element
	for el, err := range reader.Elements() {
		require.NoError(t, err)
		out = append(out, el)
	}
	require.Len(t, out, 1)
	return out[0]
}

func decodeRaw(t *testing.T, raw json.RawMessage) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}
