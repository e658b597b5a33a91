package market

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/marketsim/internal/entropy"
)

func TestSharesSumToOne(t *testing.T) {
	p := DefaultParams()
	rng := entropy.NewSource(42)

	for i := 0; i < 200; i++ {
		var prices, innov, rd [NumFirms]float64
		for j := range Firms {
			prices[j] = rng.Uniform(81, 250)
			innov[j] = rng.Uniform(0, 500)
			rd[j] = rng.Uniform(0, 20)
		}
		out, err := Compute(p, i, prices, innov, rd, rng.LogNormal(0, 0.05), 1.0, 0.15)
		require.NoError(t, err)

		sum := out.Shares[0] + out.Shares[1] + out.Shares[2]
		assert.InDelta(t, 1.0, sum, 1e-9)
	}
}

func TestSymmetricFirmsSplitEvenly(t *testing.T) {
	p := DefaultParams()
	prices := [NumFirms]float64{150, 150, 150}
	var zero [NumFirms]float64

	out, err := Compute(p, 0, prices, zero, zero, 1.0, 1.0, 0.15)
	require.NoError(t, err)

	for i := range Firms {
		assert.InDelta(t, 1.0/3.0, out.Shares[i], 1e-12)
	}
}

func TestDemandDecreasesWithAveragePrice(t *testing.T) {
	p := DefaultParams()
	var zero [NumFirms]float64

	low, err := Compute(p, 0, [NumFirms]float64{100, 100, 100}, zero, zero, 1.0, 1.0, 0.15)
	require.NoError(t, err)
	high, err := Compute(p, 0, [NumFirms]float64{200, 200, 200}, zero, zero, 1.0, 1.0, 0.15)
	require.NoError(t, err)

	assert.Greater(t, low.EffectiveDemand, high.EffectiveDemand)
}

func TestInnovationEffectiveness(t *testing.T) {
	p := DefaultParams()
	prices := [NumFirms]float64{150, 150, 150}
	var zero [NumFirms]float64

	// No accumulated innovation: saturation factor is 1, pure tech progress.
	out, err := Compute(p, 100, prices, zero, zero, 1.0, 1.0, 0.15)
	require.NoError(t, err)
	assert.InDelta(t, 1.5*(1+0.002*100), out.Beta, 1e-12)

	// Aggregate innovation saturates the effect.
	innov := [NumFirms]float64{100, 100, 100}
	out2, err := Compute(p, 100, prices, innov, zero, 1.0, 1.0, 0.15)
	require.NoError(t, err)
	assert.InDelta(t, out.Beta/(1+0.01*300), out2.Beta, 1e-12)
	assert.Less(t, out2.Beta, out.Beta)
}

func TestSoftmaxStableUnderLargeInnovation(t *testing.T) {
	p := DefaultParams()
	prices := [NumFirms]float64{100, 150, 250}
	// Stocks this large would overflow exp without max subtraction.
	innov := [NumFirms]float64{20000, 15000, 10000}
	var zero [NumFirms]float64

	out, err := Compute(p, 200, prices, innov, zero, 1.0, 1.2, 0.05)
	require.NoError(t, err)

	sum := 0.0
	for i := range Firms {
		require.False(t, math.IsNaN(out.Shares[i]))
		sum += out.Shares[i]
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
	// The leading innovator takes essentially the whole market.
	assert.Greater(t, out.Shares[0], 0.99)
}

func TestMarginalCostScalesWithSupplierShock(t *testing.T) {
	p := DefaultParams()
	prices := [NumFirms]float64{150, 150, 150}
	var zero [NumFirms]float64

	out, err := Compute(p, 0, prices, zero, zero, 1.1, 1.0, 0.15)
	require.NoError(t, err)
	assert.InDelta(t, 80.0*1.1, out.MarginalCost, 1e-12)
}

func TestProfitPositiveAboveCost(t *testing.T) {
	p := DefaultParams()
	prices := [NumFirms]float64{200, 200, 200}
	var zero [NumFirms]float64

	out, err := Compute(p, 0, prices, zero, zero, 1.0, p.BoomMultiplier, 0.15)
	require.NoError(t, err)

	for i := range Firms {
		assert.Greater(t, out.Profits[i], 0.0, "firm %d should profit pricing well above cost", i)
	}
}

func TestProfitComposition(t *testing.T) {
	p := DefaultParams()
	prices := [NumFirms]float64{150, 150, 150}
	var innov [NumFirms]float64
	rd := [NumFirms]float64{10, 10, 10}

	out, err := Compute(p, 1, prices, innov, rd, 1.0, 1.0, 0.15)
	require.NoError(t, err)

	q := out.Quantities[0]
	want := 150*q - 80*q - 0.05*100 - 150 - (50 + 1.6*q)
	assert.InDelta(t, want, out.Profits[0], 1e-9)
}
