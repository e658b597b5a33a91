package strategy

import (
	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/talgya/marketsim/internal/market"
)

// NoiseSweep walks price and R&D along smooth 1-D simplex noise curves, so
// consecutive actions stay correlated instead of jumping around the action
// space. Useful for exercising the simulator across its whole price corridor
// without the whiplash of uniform random actions.
type NoiseSweep struct {
	params     market.Params
	priceNoise opensimplex.Noise
	rdNoise    opensimplex.Noise
	frequency  float64
}

// NewNoiseSweep creates a sweep strategy with independent noise layers for
// price and R&D, offset per firm so the three firms trace different curves.
func NewNoiseSweep(p market.Params, seed int64) *NoiseSweep {
	return &NoiseSweep{
		params:     p,
		priceNoise: opensimplex.NewNormalized(seed),
		rdNoise:    opensimplex.NewNormalized(seed + 1),
		frequency:  0.04,
	}
}

func (s *NoiseSweep) Name() string { return "sweep" }

func (s *NoiseSweep) Act(firm market.FirmID, _ market.Observation, t int) market.Action {
	p := s.params
	x := float64(t) * s.frequency
	y := float64(firm) * 10.0 // separate curve per firm

	lo := p.MinPrice(p.BaseMarginalCost)
	price := lo + s.priceNoise.Eval2(x, y)*(p.PriceCap-lo)
	rd := s.rdNoise.Eval2(x, y) * 25.0

	return market.Action{Price: price, RDInvestment: rd}
}
