package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatCoordinate(t *testing.T) {
	assert.Equal(t, "12.345679", FormatCoordinate(12.3456789))
	assert.Equal(t, "-0.100000", FormatCoordinate(-0.1))
	assert.Equal(t, "-123.456700", FormatCoordinate(-123.4567))
}

func TestContainsFold(t *testing.T) {
	assert.True(t, ContainsFold("TRUCK-0042", "truck"))
	assert.True(t, ContainsFold("TRUCK-0042", ""))
	assert.True(t, ContainsFold("TRUCK-0042", " 0042 "))
	assert.False(t, ContainsFold("TRUCK-0042", "van"))
}

func TestParseTimestamp(t *testing.T) {
	t.Run("RFC3339", func(t *testing.T) {
		parsed, ok := ParseTimestamp("2024-03-01T10:15:00Z")
		assert.True(t, ok)
		assert.Equal(t, time.Date(2024, 3, 1, 10, 15, 0, 0, time.UTC), parsed)
	})

	t.Run("SpaceSeparated", func(t *testing.T) {
		parsed, ok := ParseTimestamp("2024-03-01 10:15:00")
		assert.True(t, ok)
		assert.Equal(t, 10, parsed.Hour())
	})

	t.Run("UnixSeconds", func(t *testing.T) {
		parsed, ok := ParseTimestamp("1709288100")
		assert.True(t, ok)
		assert.Equal(t, int64(1709288100), parsed.Unix())
	})

	t.Run("UnixMilliseconds", func(t *testing.T) {
		parsed, ok := ParseTimestamp("1709288100000")
		assert.True(t, ok)
		assert.Equal(t, int64(1709288100), parsed.Unix())
	})

	t.Run("Garbage", func(t *testing.T) {
		_, ok := ParseTimestamp("yesterday-ish")
		assert.False(t, ok)

		_, ok = ParseTimestamp("  ")
		assert.False(t, ok)
	})
}

func TestEnvHelpers(t *testing.T) {
	env := map[string]string{
		"A_DURATION": "3s",
		"BAD":        "abc",
		"SPEEDS":     "1, 1.5,2",
		"BAD_SPEEDS": "1,x",
		"ZOOM":       "12",
	}

	assert.Equal(t, 3*time.Second, GetEnvDuration(env, "A_DURATION", time.Second))
	assert.Equal(t, time.Second, GetEnvDuration(env, "BAD", time.Second))
	assert.Equal(t, time.Second, GetEnvDuration(env, "MISSING", time.Second))

	assert.Equal(t, 5.0, GetEnvFloat(env, "BAD", 5))
	assert.Equal(t, 12, GetEnvInt(env, "ZOOM", 14))

	assert.Equal(t, []float64{1, 1.5, 2}, GetEnvFloatList(env, "SPEEDS", nil))
	assert.Equal(t, []float64{1}, GetEnvFloatList(env, "BAD_SPEEDS", []float64{1}))
}

func TestUniqueStrings(t *testing.T) {
	assert.Equal(t, []string{"admin", "client"}, UniqueStrings([]string{" admin", "client", "", "admin ", "client"}))
	assert.Nil(t, UniqueStrings(nil))
}
