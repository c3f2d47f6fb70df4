package xmlstream

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"example.com/healthingest/internal/domain"
)

const sampleExport = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE HealthData [
<!ELEMENT HealthData (ExportDate,Me,(Record|Workout)*)>
]>
<HealthData locale="en_US">
 <ExportDate value="2024-05-01 10:00:00 +0000"/>
 <Me HKCharacteristicTypeIdentifierBiologicalSex="HKBiologicalSexNotSet"/>
 <Record type="HKQuantityTypeIdentifierStepCount" value="12">
  <MetadataEntry key="HKWasUserEntered" value="1"/>
 </Record>
 <ActivitySummary dateComponents="2024-05-01" activeEnergyBurned="300"/>
 <Workout workoutActivityType="HKWorkoutActivityTypeRunning">
  <WorkoutRoute><FileReference path="/r.gpx"/></WorkoutRoute>
 </Workout>
 <Record type="HKQuantityTypeIdentifierHeartRate" value="60"/>
</HealthData>`

func collect(t *testing.T, r *Reader) []*domain.Element {
	t.Helper()
	var out []*domain.Element
	for el, err := range r.Elements() {
		require.NoError(t, err)
		out = append(out, el)
	}
	return out
}

func TestReaderYieldsOnlyRootsInDocumentOrder(t *testing.T) {
	got := collect(t, NewReader(strings.NewReader(sampleExport), "Record", "Workout"))
	require.Len(t, got, 3)

	require.Equal(t, "Record", got[0].Name)
	require.Equal(t, "Workout", got[1].Name)
	require.Equal(t, "Record", got[2].Name)

	require.Len(t, got[0].Children, 1)
	require.Equal(t, "MetadataEntry", got[0].Children[0].Name)

	route := got[1].Children[0]
	require.Equal(t, "WorkoutRoute", route.Name)
	require.Equal(t, "FileReference", route.Children[0].Name)
	path, ok := route.Children[0].Attr("path")
	require.True(t, ok)
	require.Equal(t, "/r.gpx", path)
	require.Empty(t, got[2].Children)
}

func TestReaderPreservesAttributeOrder(t *testing.T) {
	got := collect(t, NewReader(strings.NewReader(`<R><Record b="2" a="1" c="3"/></R>`), "Record"))
	require.Len(t, got, 1)
	require.Equal(t, []domain.Attr{{Name: "b", Value: "2"}, {Name: "a", Value: "1"}, {Name: "c", Value: "3"}}, got[0].Attrs)
}

func TestReaderIgnoresNestedRootNamesOutsideRoots(t *testing.T) {
	// A Record nested in a Record is a child, not a second root.
	got := collect(t, NewReader(strings.NewReader(`<D><Record id="1"><Record id="2"/></Record></D>`), "Record"))
	require.Len(t, got, 1)
	require.Len(t, got[0].Children, 1)
}

func TestReaderYieldsRecordsInsideCorrelation(t *testing.T) {
	doc := `<HealthData>
 <Correlation type="HKCorrelationTypeIdentifierBloodPressure" startDate="2024-05-01 08:00:00 +0000">
  <MetadataEntry key="HKWasUserEntered" value="1"/>
  <Record type="HKQuantityTypeIdentifierBloodPressureSystolic" value="121"/>
  <Record type="HKQuantityTypeIdentifierBloodPressureDiastolic" value="79"/>
 </Correlation>
 <Record type="HKQuantityTypeIdentifierHeartRate" value="60"/>
</HealthData>`

	got := collect(t, NewReader(strings.NewReader(doc), "Record", "Workout"))
	require.Len(t, got, 3)

	var types []string
	for _, el := range got {
		require.Equal(t, "Record", el.Name)
		require.Empty(t, el.Children)
		typ, _ := el.Attr("type")
		types = append(types, typ)
	}
	require.Equal(t, []string{
		"HKQuantityTypeIdentifierBloodPressureSystolic",
		"HKQuantityTypeIdentifierBloodPressureDiastolic",
		"HKQuantityTypeIdentifierHeartRate",
	}, types)
}

func TestReaderStopsOnBreak(t *testing.T) {
	r := NewReader(strings.NewReader(sampleExport), "Record", "Workout")
	seen := 0
	for _, err := range r.Elements() {
		require.NoError(t, err)
		seen++
		break
	}
	require.Equal(t, 1, seen)
	require.Less(t, r.InputOffset(), int64(len(sampleExport)))
}

func TestReaderIsSinglePass(t *testing.T) {
	r := NewReader(strings.NewReader(sampleExport), "Record")
	require.Len(t, collect(t, r), 2)

	for _, err := range r.Elements() {
		require.ErrorIs(t, err, ErrConsumed)
	}
}

func TestReaderReportsMalformedDocument(t *testing.T) {
	doc := `<HealthData><Record type="A" value="1"/><Record type="B"></Workout></HealthData>`
	r := NewReader(strings.NewReader(doc), "Record")

	var (
		names []string
		last  error
	)
	for el, err := range r.Elements() {
		if err != nil {
			last = err
			break
		}
		v, _ := el.Attr("type")
		names = append(names, v)
	}
	require.Equal(t, []string{"A"}, names)
	require.Error(t, last)
	require.Contains(t, last.Error(), "xmlstream:")
}

func TestReaderReportsTruncatedRoot(t *testing.T) {
	r := NewReader(strings.NewReader(`<HealthData><Record type="A">`), "Record")
	var last error
	for _, err := range r.Elements() {
		last = err
	}
	require.Error(t, last)
}

func TestReaderPropagatesSourceErrors(t *testing.T) {
	boom := errors.New("disk gone")
	src := io.MultiReader(strings.NewReader(`<HealthData><Record type="A"/>`), &failingReader{err: boom})

	var last error
	for _, err := range NewReader(src, "Record").Elements() {
		last = err
	}
	require.ErrorIs(t, last, boom)
}

type failingReader struct{ err error }

func (f *failingReader) Read([]byte) (int, error) { return 0, f.err }

// syntheticExport lazily renders an export with n records so tests can stream
// far more data than they ever hold.
type syntheticExport struct {
	n    int
	i    int
	buf  []byte
	done bool
}

func newSyntheticExport(n int) *syntheticExport {
	return &syntheticExport{n: n, buf: []byte(`<?xml version="1.0"?><HealthData locale="en_US">`)}
}

func (s *syntheticExport) Read(p []byte) (int, error) {
	for len(s.buf) == 0 {
		switch {
		case s.i < s.n:
			s.buf = fmt.Appendf(s.buf, `<Record type="HKQuantityTypeIdentifierStepCount" value="%d" startDate="2024-01-01 00:00:%02d +0000"><MetadataEntry key="seq" value="%d"/></Record>`, s.i%500, s.i%60, s.i)
			s.i++
		case !s.done:
			s.buf = append(s.buf, `</HealthData>`...)
			s.done = true
		default:
			return 0, io.EOF
		}
	}
	n := copy(p, s.buf)
	s.buf = s.buf[n:]
	return n, nil
}

func TestReaderStreamsSyntheticExport(t *testing.T) {
	const n = 20_000
	count := 0
	for el, err := range NewReader(newSyntheticExport(n), "Record").Elements() {
		require.NoError(t, err)
		seq, _ := el.Children[0].Attr("value")
		require.Equal(t, fmt.Sprint(count), seq)
		count++
	}
	require.Equal(t, n, count)
}
