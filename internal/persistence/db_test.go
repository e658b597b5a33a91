package persistence

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/marketsim/internal/market"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestEpisodeRoundTrip(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, db.BeginEpisode("ep-1", 42))

	st := market.State{
		Time:               1,
		Regime:             market.Boom,
		SupplierShock:      1.02,
		SubstitutePressure: 0.15,
		Prices:             [market.NumFirms]float64{150, 160, 170},
		InnovationStocks:   [market.NumFirms]float64{10, 0, 5},
		MarketShares:       [market.NumFirms]float64{0.4, 0.3, 0.3},
		MarginalCost:       81.6,
		EffectiveDemand:    55.2,
	}
	profits := [market.NumFirms]float64{1200, 900, 1000}
	clamped := [market.NumFirms]bool{true, false, false}
	require.NoError(t, db.AppendStep("ep-1", st, profits, clamped))

	st.Time = 2
	require.NoError(t, db.AppendStep("ep-1", st, profits, clamped))

	cumulative := [market.NumFirms]float64{2400, 1800, 2000}
	require.NoError(t, db.FinishEpisode("ep-1", 2, true, cumulative))

	episodes, err := db.RecentEpisodes(10)
	require.NoError(t, err)
	require.Len(t, episodes, 1)
	assert.Equal(t, "ep-1", episodes[0].ID)
	assert.Equal(t, int64(42), episodes[0].Seed)
	assert.Equal(t, 2, episodes[0].Steps)
	assert.True(t, episodes[0].Terminated)
	require.NotNil(t, episodes[0].FinishedAt)

	steps, err := db.EpisodeSteps("ep-1")
	require.NoError(t, err)
	require.Len(t, steps, 2)
	assert.Equal(t, 1, steps[0].Time)
	assert.Equal(t, 2, steps[1].Time)
	assert.Equal(t, "boom", steps[0].Regime)
	assert.InDelta(t, 81.6, steps[0].MarginalCost, 1e-9)
	assert.JSONEq(t, `[150,160,170]`, steps[0].PricesJSON)
	assert.JSONEq(t, `[true,false,false]`, steps[0].ClampedJSON)
}

func TestEpisodeStepsEmptyForUnknownID(t *testing.T) {
	db := openTestDB(t)
	steps, err := db.EpisodeSteps("nope")
	require.NoError(t, err)
	assert.Empty(t, steps)
}

func TestMetaRoundTrip(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, db.SaveMeta("last_seed", "99"))
	require.NoError(t, db.SaveMeta("last_seed", "100")) // upsert

	v, err := db.GetMeta("last_seed")
	require.NoError(t, err)
	assert.Equal(t, "100", v)

	_, err = db.GetMeta("missing")
	assert.Error(t, err)
}
