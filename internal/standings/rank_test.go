package standings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/engineeralok/sleeper-footballleague/internal/models"
)

func team(id string, w, l, t int, pf float64) models.TeamRecord {
	return models.TeamRecord{ID: id, Wins: w, Losses: l, Ties: t, PointsFor: pf}
}

func ids(ranked []models.RankedTeam) []string {
	out := make([]string, len(ranked))
	for i, r := range ranked {
		out[i] = r.ID
	}
	return out
}

func TestWinPercentage(t *testing.T) {
	cases := []struct {
		name string
		rec  models.TeamRecord
		want float64
	}{
		{name: "no games", rec: team("a", 0, 0, 0, 0), want: 0},
		{name: "undefeated", rec: team("a", 5, 0, 0, 0), want: 1},
		{name: "winless", rec: team("a", 0, 4, 0, 0), want: 0},
		{name: "ties count as games only", rec: team("a", 2, 1, 1, 0), want: 0.5},
		{name: "ten and three", rec: team("a", 10, 3, 0, 0), want: 10.0 / 13.0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, WinPercentage(tc.rec), 1e-9)
		})
	}
}

func TestRank_PointsForBreaksWinsTie(t *testing.T) {
	ranked := Rank([]models.TeamRecord{
		team("A", 10, 3, 0, 1500),
		team("B", 10, 3, 0, 1600),
		team("C", 9, 4, 0, 1700),
	})

	require.Len(t, ranked, 3)
	assert.Equal(t, []string{"B", "A", "C"}, ids(ranked))
	for i, r := range ranked {
		assert.Equal(t, i+1, r.Rank)
	}
}

func TestRank_WinPercentageBreaksWinsTie(t *testing.T) {
	// Same wins, but X played fewer games.
	ranked := Rank([]models.TeamRecord{
		team("Y", 6, 4, 0, 2000),
		team("X", 6, 3, 0, 1000),
	})

	assert.Equal(t, []string{"X", "Y"}, ids(ranked))
}

func TestRank_FullTiesKeepInputOrder(t *testing.T) {
	ranked := Rank([]models.TeamRecord{
		team("first", 7, 6, 0, 1234.5),
		team("second", 7, 6, 0, 1234.5),
		team("third", 7, 6, 0, 1234.5),
	})

	assert.Equal(t, []string{"first", "second", "third"}, ids(ranked))
	assert.Equal(t, 1, ranked[0].Rank)
	assert.Equal(t, 2, ranked[1].Rank)
	assert.Equal(t, 3, ranked[2].Rank)
}

func TestRank_Empty(t *testing.T) {
	ranked := Rank(nil)
	require.NotNil(t, ranked)
	assert.Empty(t, ranked)

	ranked = Rank([]models.TeamRecord{})
	require.NotNil(t, ranked)
	assert.Empty(t, ranked)
}

func TestRank_Idempotent(t *testing.T) {
	input := []models.TeamRecord{
		team("a", 3, 10, 0, 1100),
		team("b", 10, 3, 0, 1600),
		team("c", 10, 3, 0, 1500),
		team("d", 7, 5, 1, 1400),
		team("e", 7, 6, 0, 1450),
	}

	first := Rank(input)
	second := Rank(Records(first))

	assert.Equal(t, first, second)
}

func TestRank_Pure(t *testing.T) {
	input := []models.TeamRecord{
		team("a", 1, 2, 0, 10),
		team("b", 2, 1, 0, 20),
	}
	snapshot := append([]models.TeamRecord(nil), input...)

	first := Rank(input)
	second := Rank(input)

	assert.Equal(t, first, second)
	assert.Equal(t, snapshot, input, "input slice must not be reordered")
}
