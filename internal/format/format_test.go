package format

import (
	"testing"
	"time"

	"github.com/scoutdeck/scoutdeck/internal/statsapi"
	"github.com/stretchr/testify/assert"
)

func TestMinutes(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{0, "0"},
		{90, "90"},
		{999, "999"},
		{1000, "1,000"},
		{1234, "1,234"},
		{28350, "28,350"},
		{1234567, "1,234,567"},
		{-1234, "-1,234"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, Minutes(tc.in), "Minutes(%d)", tc.in)
	}
}

func TestPercent(t *testing.T) {
	assert.Equal(t, "85.3%", Percent(85.3))
	assert.Equal(t, "85.3%", Percent(85.34))
	assert.Equal(t, "0.0%", Percent(0))
	assert.Equal(t, "100.0%", Percent(100))
}

func TestDecimal(t *testing.T) {
	assert.Equal(t, "0.45", Decimal(0.45))
	assert.Equal(t, "0.00", Decimal(0))
	assert.Equal(t, "12.50", Decimal(12.5))
}

func TestPerNinety(t *testing.T) {
	tests := []struct {
		name    string
		metric  float64
		minutes int
		want    float64
	}{
		{"full season scorer", 12, 2430, 0.44},
		{"exactly one match", 1, 90, 1.0},
		{"rounds to two decimals", 7, 1234, 0.51},
		{"zero minutes yields zero", 5, 0, 0},
		{"negative minutes yields zero", 5, -10, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, PerNinety(tc.metric, tc.minutes), 0.0001)
		})
	}
}

func TestDates(t *testing.T) {
	ts := time.Date(2025, 7, 12, 9, 30, 0, 0, time.UTC)
	assert.Equal(t, "12 Jul 2025", Date(ts))
	assert.Equal(t, "12 Jul 2025 09:30", DateTime(ts))
	assert.Equal(t, Unknown, Date(time.Time{}))
	assert.Equal(t, Unknown, DateTime(time.Time{}))
}

func TestFileSize(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{10 << 20, "10.0 MB"},
		{3 << 30, "3.0 GB"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, FileSize(tc.in), "FileSize(%d)", tc.in)
	}
}

func TestStatusLabel(t *testing.T) {
	assert.Equal(t, "Non interesting", StatusLabel(statsapi.StatusNonInteresting))
	assert.Equal(t, "Interesting", StatusLabel(statsapi.StatusInteresting))
	assert.Equal(t, "To watch", StatusLabel(statsapi.StatusToWatch))
	assert.Equal(t, "My player", StatusLabel(statsapi.StatusMyPlayer))

	// Values outside the enum must render, not crash.
	assert.Equal(t, "Non interesting", StatusLabel(statsapi.TrackingStatus("scouted hard")))
	assert.Equal(t, "Non interesting", StatusLabel(""))
}

func TestCardFields(t *testing.T) {
	assert.Equal(t, "23", Age(23))
	assert.Equal(t, Unknown, Age(0))
	assert.Equal(t, "185 cm", HeightCm(185))
	assert.Equal(t, Unknown, HeightCm(0))
	assert.Equal(t, "78 kg", WeightKg(78))
	assert.Equal(t, Unknown, WeightKg(-1))
}
