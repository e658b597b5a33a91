// Package market implements the per-period state transition of a three-firm
// oligopoly: exogenous shocks, demand, softmax market shares, costs, and
// profits. The Episode type owns the state and exposes a reset/step interface;
// everything else in the package is a pure function of its inputs.
package market

import "math"

// NumFirms is the fixed roster size. The model assumes exactly three
// competitors and does not generalize to a variable roster.
const NumFirms = 3

// FirmID identifies one of the three firms (0, 1, 2).
type FirmID int

// Firms lists all firm IDs in observation order.
var Firms = [NumFirms]FirmID{0, 1, 2}

// Regime is the macroeconomic cycle state driving the demand multiplier.
type Regime uint8

const (
	Recession Regime = iota
	Boom
)

// String returns the lowercase regime name.
func (r Regime) String() string {
	if r == Boom {
		return "boom"
	}
	return "recession"
}

// State is the mutable market record, owned exclusively by the Episode and
// rewritten once per step.
type State struct {
	Time int `json:"time"` // period index, 0..MaxSteps

	// Exogenous shock processes.
	Regime             Regime  `json:"regime"`
	SupplierShock      float64 `json:"supplier_shock"`      // multiplicative cost factor
	SubstitutePressure float64 `json:"substitute_pressure"` // in [min, max]

	// Per-firm state.
	Prices             [NumFirms]float64 `json:"prices"`
	InnovationStocks   [NumFirms]float64 `json:"innovation_stocks"` // non-decreasing
	MarketShares       [NumFirms]float64 `json:"market_shares"`     // sums to 1
	CumulativeProfits  [NumFirms]float64 `json:"cumulative_profits"`

	// Shared market-level outcomes. Supplier shocks hit all firms
	// symmetrically, so marginal cost is a single value.
	MarginalCost    float64 `json:"marginal_cost"`
	EffectiveDemand float64 `json:"effective_demand"`
	TotalDemand     float64 `json:"total_demand"`
}

// ObservationSize is the length of the per-firm observation vector.
const ObservationSize = 17

// Observation is the full-state vector every firm sees (no information
// asymmetry). Layout, fixed for the life of the module:
//
//	[0:3]  prices
//	[3:6]  innovation stocks
//	[6:9]  market shares
//	[9]    marginal cost (shared)
//	[10]   effective demand
//	[11]   regime (boom=1, recession=0)
//	[12]   supplier shock
//	[13]   substitute pressure
//	[14]   time / MaxSteps
//	[15:17] reserved (zero)
type Observation [ObservationSize]float64

// Observation assembles the observation vector for the current state.
func (s *State) Observation(p Params) Observation {
	var obs Observation
	for i := range Firms {
		obs[i] = s.Prices[i]
		obs[3+i] = s.InnovationStocks[i]
		obs[6+i] = s.MarketShares[i]
	}
	obs[9] = s.MarginalCost
	obs[10] = s.EffectiveDemand
	if s.Regime == Boom {
		obs[11] = 1
	}
	obs[12] = s.SupplierShock
	obs[13] = s.SubstitutePressure
	obs[14] = float64(s.Time) / float64(p.MaxSteps)
	return obs
}

// Finite reports whether every field of the state is a finite number.
func (s *State) Finite() bool {
	vals := []float64{
		s.SupplierShock, s.SubstitutePressure,
		s.MarginalCost, s.EffectiveDemand, s.TotalDemand,
	}
	for i := range Firms {
		vals = append(vals,
			s.Prices[i], s.InnovationStocks[i],
			s.MarketShares[i], s.CumulativeProfits[i])
	}
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// AveragePrice returns the simple mean of the three firms' prices.
func (s *State) AveragePrice() float64 {
	sum := 0.0
	for i := range Firms {
		sum += s.Prices[i]
	}
	return sum / NumFirms
}
