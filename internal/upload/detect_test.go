package upload

import (
	"testing"

	"github.com/scoutdeck/scoutdeck/internal/statsapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func leagueFixture() []statsapi.Tournament {
	return []statsapi.Tournament{
		{ID: 1, Name: "MFL", FullName: "Moscow Football League", Code: "mfl"},
		{ID: 2, Name: "YFL-1", FullName: "Youth Football League 1", Code: "yfl1"},
		{ID: 3, Name: "YFL-2", FullName: "Youth Football League 2", Code: "yfl2"},
		{ID: 4, Name: "YFL-3", FullName: "Youth Football League 3", Code: "yfl3"},
	}
}

func TestDetect(t *testing.T) {
	tournaments := leagueFixture()

	t.Run("embedded code is a certain match", func(t *testing.T) {
		suggestions := Detect("mfl_round4_total.xlsx", tournaments)
		require.NotEmpty(t, suggestions)
		assert.Equal(t, 1, suggestions[0].Tournament.ID)
		assert.Equal(t, 1.0, suggestions[0].Confidence)
		assert.Contains(t, suggestions[0].Reasons, "Tournament code in filename")
	})

	t.Run("codes with digits resolve to the right league", func(t *testing.T) {
		suggestions := Detect("yfl2_30tur_total.xlsx", tournaments)
		require.NotEmpty(t, suggestions)
		assert.Equal(t, 3, suggestions[0].Tournament.ID)
		assert.Equal(t, 1.0, suggestions[0].Confidence)
	})

	t.Run("full name tokens give a weak match", func(t *testing.T) {
		suggestions := Detect("moscow_football_league_round2.xlsx", tournaments)
		require.NotEmpty(t, suggestions)
		assert.Equal(t, 1, suggestions[0].Tournament.ID)
		assert.Greater(t, suggestions[0].Confidence, 0.3)
		assert.Less(t, suggestions[0].Confidence, 1.0)
		assert.Contains(t, suggestions[0].Reasons, "Similar to full tournament name")
	})

	t.Run("unrelated filenames stay unmatched", func(t *testing.T) {
		assert.Empty(t, Detect("player_report_march.xlsx", tournaments))
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, Detect("", tournaments))
		assert.Empty(t, Detect(".xlsx", tournaments))
		assert.Empty(t, Detect("mfl_total.xlsx", nil))
	})
}

func TestKindFromFilename(t *testing.T) {
	assert.Equal(t, statsapi.SlicePer90, KindFromFilename("mfl_average_90min.xlsx"))
	assert.Equal(t, statsapi.SlicePer90, KindFromFilename("mfl_30tur_average90min.xlsx"))
	assert.Equal(t, statsapi.SlicePer90, KindFromFilename("yfl1_per90.xlsx"))
	assert.Equal(t, statsapi.SliceTotal, KindFromFilename("mfl_round4_total.xlsx"))
	assert.Equal(t, statsapi.SliceTotal, KindFromFilename("stats.xlsx"))
}
