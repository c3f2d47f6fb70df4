package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCanonicalJSONSortsKeysWithoutEscapingHTML(t *testing.T) {
	encoded, err := CanonicalJSON(map[string]any{
		"b": "x<y & z>",
		"a": []string{"2", "1"},
	})
	require.NoError(t, err)
	require.Equal(t, `{"a":["2","1"],"b":"x<y & z>"}`, string(encoded))
}

func TestCanonicalJSONEscapesNonASCII(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{name: "ascii untouched", in: "Adam's Watch", want: `"Adam's Watch"`},
		{name: "latin", in: "caf\u00e9", want: `"caf\u00e9"`},
		{name: "typographic quote", in: "Adam\u2019s Apple Watch", want: `"Adam\u2019s Apple Watch"`},
		{name: "astral plane uses surrogates", in: "run \U0001F3C3", want: `"run \ud83c\udfc3"`},
		{name: "delete", in: "a\x7fb", want: `"a\u007fb"`},
		{name: "controls", in: "a\x01\b\f\n\t", want: `"a\u0001\b\f\n\t"`},
		{name: "line separator", in: "a\u2028b", want: `"a\u2028b"`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			encoded, err := CanonicalJSON(tc.in)
			require.NoError(t, err)
			require.Equal(t, tc.want, string(encoded))
		})
	}
}

func TestCanonicalJSONMatchesPythonDumps(t *testing.T) {
	// Digests produced by json.dumps(raw, separators=(",", ":"), sort_keys=True).
	raw := map[string]any{
		"attributes": map[string]string{"device": "<<HKDevice>> \U0001F3C3 caf\u00e9\x7f", "type": "B"},
		"metadata":   map[string]any{"k": []*string{strPtr("1"), nil}},
	}
	encoded, err := CanonicalJSON(raw)
	require.NoError(t, err)
	require.Equal(t, `{"attributes":{"device":"<<HKDevice>> \ud83c\udfc3 caf\u00e9\u007f","type":"B"},"metadata":{"k":["1",null]}}`, string(encoded))
	require.Equal(t, "77f91cc743baa64b3d4caf6d8506975888f9383440c646c1e9414d774e4f3842", Hash(encoded))
}

func TestHashIsHexSHA256(t *testing.T) {
	// sha256("{}")
	require.Equal(t, "44136fa355b3678a1146ad16f7e8649e94fb4fc21fe77e8310c060f61caaff8a", Hash([]byte("{}")))
	require.Len(t, Hash([]byte(`{"attributes":{}}`)), 64)
}

func TestSnapshotEncodesNestedChildren(t *testing.T) {
	el := &Element{
		Name:  "HeartRateVariabilityMetadataList",
		Attrs: nil,
		Children: []*Element{
			{Name: "InstantaneousBeatsPerMinute", Attrs: []Attr{{Name: "time", Value: "7:01:02.03 AM"}, {Name: "bpm", Value: "61"}}},
		},
	}

	encoded, err := CanonicalJSON(NewSnapshot(el))
	require.NoError(t, err)
	require.Equal(t,
		`{"attributes":{},"children":[{"attributes":{"bpm":"61","time":"7:01:02.03 AM"},"tag":"InstantaneousBeatsPerMinute"}],"tag":"HeartRateVariabilityMetadataList"}`,
		string(encoded))
}

func TestElementAttrLookup(t *testing.T) {
	el := &Element{Name: "Record", Attrs: []Attr{{Name: "type", Value: "HKQuantityTypeIdentifierStepCount"}, {Name: "value", Value: ""}}}

	require.Equal(t, "HKQuantityTypeIdentifierStepCount", *el.AttrPtr("type"))
	require.NotNil(t, el.AttrPtr("value"))
	require.Nil(t, el.AttrPtr("unit"))
	require.Equal(t, map[string]string{"type": "HKQuantityTypeIdentifierStepCount", "value": ""}, el.AttrMap())
}
