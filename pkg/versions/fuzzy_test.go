package versions

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"v1.2.3", "1.2.3"},
		{"V1.2.3", "1.2.3"},
		{"release-1.2", "1.2"},
		{"version-2_0_1", "2.0.1"},
		{"rel-3-1", "3.1"},
		{"1.2.3", "1.2.3"},
		{"  v1.0 ", "1.0"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in), "normalize %q", tt.in)
	}
}

func TestClosestTagExactNormalizedMatch(t *testing.T) {
	tags := []string{"v1.0.0", "v1.2.0", "v2.0.0"}

	match, ok := ClosestTag("1.2.0", tags)
	assert.True(t, ok)
	assert.Equal(t, "v1.2.0", match)
}

func TestClosestTagFuzzyMatch(t *testing.T) {
	tags := []string{"release-1.2.4", "release-2.0.0"}

	match, ok := ClosestTag("1.2", tags)
	assert.True(t, ok)
	assert.Equal(t, "release-1.2.4", match)
}

func TestClosestTagNoResemblance(t *testing.T) {
	_, ok := ClosestTag("9.9.9", []string{"weekly-snapshot"})
	assert.False(t, ok)
}

func TestClosestTagPrefersExactOverFuzzy(t *testing.T) {
	tags := []string{"v1.2.1", "v1.2"}

	match, ok := ClosestTag("1.2", tags)
	assert.True(t, ok)
	assert.Equal(t, "v1.2", match)
}
