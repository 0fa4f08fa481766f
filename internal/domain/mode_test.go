package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyMode(t *testing.T) {
	cases := []struct {
		ref  string
		want Mode
	}{
		{"sess_test_xyz", ModeTest},
		{"cs_test_a1B2c3", ModeTest},
		{"pi_test", ModeTest},
		{"TEST_123", ModeTest},
		{"sess_live_abc", ModeLive},
		{"cs_live_9f8e", ModeLive},
		{"sess_testing_abc", ModeLive}, // "testing" is not a test token
		{"contest_entry", ModeLive},
		{"", ModeLive},
		{"completely-opaque-ref", ModeLive},
	}

	for _, c := range cases {
		assert.Equal(t, c.want, ClassifyMode(c.ref), "ref %q", c.ref)
	}
}

func TestMatchesMode(t *testing.T) {
	assert.True(t, MatchesMode("sess_test_xyz", ModeTest))
	assert.False(t, MatchesMode("sess_test_xyz", ModeLive))
	assert.True(t, MatchesMode("sess_live_abc", ModeLive))
	// unrecognized refs are live money, fail-closed
	assert.True(t, MatchesMode("whatever", ModeLive))
	assert.False(t, MatchesMode("whatever", ModeTest))
}

func TestParseMode(t *testing.T) {
	m, ok := ParseMode("live")
	assert.True(t, ok)
	assert.Equal(t, ModeLive, m)

	m, ok = ParseMode(" Test ")
	assert.True(t, ok)
	assert.Equal(t, ModeTest, m)

	_, ok = ParseMode("staging")
	assert.False(t, ok)
}
