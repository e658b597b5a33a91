// Package strategy provides baseline action providers for driving episodes.
// These are evaluation scaffolding, not learned policies: the simulator scores
// whatever actions it is given, and these generate plausible ones.
package strategy

import (
	"fmt"

	"github.com/talgya/marketsim/internal/entropy"
	"github.com/talgya/marketsim/internal/market"
)

// Strategy produces one firm's action from the shared observation.
type Strategy interface {
	Name() string
	Act(firm market.FirmID, obs market.Observation, t int) market.Action
}

// New builds a named strategy for one firm. Stochastic strategies derive
// their stream from the given seed so runs stay reproducible.
func New(name string, p market.Params, seed int64) (Strategy, error) {
	switch name {
	case "markup":
		return &FixedMarkup{Markup: 1.8, RD: 10.0}, nil
	case "random":
		return &RandomExplorer{params: p, rng: entropy.NewSource(seed)}, nil
	case "sweep":
		return NewNoiseSweep(p, seed), nil
	default:
		return nil, fmt.Errorf("unknown strategy %q", name)
	}
}

// FixedMarkup prices at a constant multiple of the observed marginal cost and
// invests a flat R&D amount each period.
type FixedMarkup struct {
	Markup float64
	RD     float64
}

func (s *FixedMarkup) Name() string { return "markup" }

func (s *FixedMarkup) Act(_ market.FirmID, obs market.Observation, _ int) market.Action {
	marginalCost := obs[9]
	return market.Action{
		Price:        marginalCost * s.Markup,
		RDInvestment: s.RD,
	}
}

// RandomExplorer draws uniformly from the action space every period.
type RandomExplorer struct {
	params market.Params
	rng    *entropy.Source
}

func (s *RandomExplorer) Name() string { return "random" }

func (s *RandomExplorer) Act(_ market.FirmID, _ market.Observation, _ int) market.Action {
	p := s.params
	return market.Action{
		Price:        s.rng.Uniform(p.MinPrice(p.BaseMarginalCost), p.PriceCap),
		RDInvestment: s.rng.Uniform(0, 20),
	}
}
