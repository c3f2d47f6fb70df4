package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMetadataSingleKeyIsScalar(t *testing.T) {
	m := NewMetadata()
	m.Add(strPtr("HKWasUserEntered"), strPtr("1"))

	v, ok := m.Value("HKWasUserEntered")
	require.True(t, ok)
	require.Equal(t, strPtr("1"), v)

	encoded, err := CanonicalJSON(m)
	require.NoError(t, err)
	require.Equal(t, `{"HKWasUserEntered":"1"}`, string(encoded))
}

func TestMetadataRepeatedKeyBecomesList(t *testing.T) {
	m := NewMetadata()
	m.Add(strPtr("HKWasUserEntered"), strPtr("1"))
	m.Add(strPtr("HKWasUserEntered"), strPtr("0"))

	encoded, err := CanonicalJSON(m)
	require.NoError(t, err)
	require.Equal(t, `{"HKWasUserEntered":["1","0"]}`, string(encoded))

	m.Add(strPtr("HKWasUserEntered"), strPtr("1"))
	v, _ := m.Value("HKWasUserEntered")
	require.Equal(t, []*string{strPtr("1"), strPtr("0"), strPtr("1")}, v)
}

func TestMetadataMissingValueIsNull(t *testing.T) {
	m := NewMetadata()
	m.Add(strPtr("absent"), nil)
	m.Add(strPtr("empty"), strPtr(""))
	m.Add(strPtr("mixed"), strPtr("1"))
	m.Add(strPtr("mixed"), nil)

	encoded, err := CanonicalJSON(m)
	require.NoError(t, err)
	require.Equal(t, `{"absent":null,"empty":"","mixed":["1",null]}`, string(encoded))
}

func TestMetadataDropsMissingKeys(t *testing.T) {
	m := NewMetadata()
	m.Add(nil, strPtr("orphan"))
	m.Add(strPtr(""), strPtr("blank"))
	require.Equal(t, 0, m.Len())
}

func TestMetadataKeepsFirstAppearanceOrderButSortsOnEncode(t *testing.T) {
	m := NewMetadata()
	m.Add(strPtr("zeta"), strPtr("z"))
	m.Add(strPtr("alpha"), strPtr("a"))
	m.Add(strPtr("zeta"), strPtr("z2"))

	require.Equal(t, []string{"zeta", "alpha"}, m.Keys())

	encoded, err := CanonicalJSON(m)
	require.NoError(t, err)
	require.Equal(t, `{"alpha":"a","zeta":["z","z2"]}`, string(encoded))
}
