package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextRevision_IncrementLaw(t *testing.T) {
	// Табличная проверка закона инкремента ревизий
	cases := []struct {
		current string
		want    string
	}{
		{"v1.0", "v1.1"},
		{"v1.1", "v1.2"},
		{"v1.9", "v2.0"}, // minor переполняется в major
		{"v2.9", "v3.0"},
		{"v3.4", "v3.5"},
		{"v9.9", "v10.0"},
		{"v10.0", "v10.1"},
	}

	for _, tc := range cases {
		got, err := NextRevision(tc.current)
		require.NoError(t, err, "NextRevision(%q) не должен возвращать ошибку", tc.current)
		assert.Equal(t, tc.want, got, "NextRevision(%q)", tc.current)
	}
}

func TestNextRevision_InvalidLabels(t *testing.T) {
	invalid := []string{"", "1.0", "v1", "v1.10", "v0.5", "vX.Y", "v1.2.3", "v-1.0"}

	for _, label := range invalid {
		_, err := NextRevision(label)
		assert.Error(t, err, "NextRevision(%q) должен вернуть ошибку", label)
	}
}

func TestParseRevision(t *testing.T) {
	major, minor, err := ParseRevision("v7.3")
	require.NoError(t, err)
	assert.Equal(t, 7, major)
	assert.Equal(t, 3, minor)
}

func TestFirstRevision(t *testing.T) {
	// Первая публикация всегда v1.0
	major, minor, err := ParseRevision(FirstRevision)
	require.NoError(t, err)
	assert.Equal(t, 1, major)
	assert.Equal(t, 0, minor)
}
