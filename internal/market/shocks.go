package market

import "github.com/talgya/marketsim/internal/entropy"

// ShockGenerator advances the three exogenous processes one period at a time:
// the Markov cycle regime, the supplier cost shock, and the substitute-goods
// pressure walk. All draws come from the single per-episode source, in a fixed
// order, so a seed pins down the whole shock trajectory.
type ShockGenerator struct {
	params Params
	rng    *entropy.Source
}

// NewShockGenerator creates a generator drawing from the given source.
func NewShockGenerator(p Params, rng *entropy.Source) *ShockGenerator {
	return &ShockGenerator{params: p, rng: rng}
}

// Advance mutates the shock fields of st by one period and returns the noisy
// demand multiplier implied by the new regime.
func (g *ShockGenerator) Advance(st *State) (cycleMultiplier float64) {
	p := g.params

	// Markov regime switching.
	switch st.Regime {
	case Boom:
		if g.rng.Bernoulli(p.BoomToRecession) {
			st.Regime = Recession
		}
	case Recession:
		if g.rng.Bernoulli(p.RecessionToBoom) {
			st.Regime = Boom
		}
	}

	// Demand multiplier for the (possibly new) regime, perturbed by
	// multiplicative Gaussian noise.
	cycleMultiplier = p.RecessionMultiplier
	if st.Regime == Boom {
		cycleMultiplier = p.BoomMultiplier
	}
	cycleMultiplier *= g.rng.Normal(1.0, p.RegimeNoiseStd)

	// Supplier shock: fresh lognormal draw each period, median 1.
	st.SupplierShock = g.rng.LogNormal(0, p.SupplierShockStd)

	// Substitute pressure: bounded random walk.
	st.SubstitutePressure += g.rng.Normal(0, p.SubstituteDriftStd)
	st.SubstitutePressure = clamp(st.SubstitutePressure, p.SubstituteMin, p.SubstituteMax)

	return cycleMultiplier
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
