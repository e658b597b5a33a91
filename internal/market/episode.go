package market

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/talgya/marketsim/internal/entropy"
)

// Phase is the lifecycle state of an episode.
type Phase uint8

const (
	Uninitialized Phase = iota
	Running
	Terminated
)

// String returns the lowercase phase name.
func (p Phase) String() string {
	switch p {
	case Running:
		return "running"
	case Terminated:
		return "terminated"
	default:
		return "uninitialized"
	}
}

// Box is a bounded continuous space, element-wise [Low[i], High[i]].
type Box struct {
	Low  []float64 `json:"low"`
	High []float64 `json:"high"`
}

// Info is the per-firm side channel attached to each step result.
type Info struct {
	// PriceClamped reports that the firm's submitted price fell outside the
	// legal corridor and was clamped to the nearest bound.
	PriceClamped bool `json:"price_clamped"`
}

// StepResult is what one firm receives from a step.
type StepResult struct {
	Observation Observation `json:"observation"`
	Reward      float64     `json:"reward"` // period profit
	Terminated  bool        `json:"terminated"`
	Truncated   bool        `json:"truncated"`
	Info        Info        `json:"info"`
}

// Env is the episode interface consumed by training and evaluation
// orchestration. Firms are the fixed enumeration 0, 1, 2.
type Env interface {
	Reset(seed int64) (map[FirmID]Observation, error)
	Step(actions Actions) (map[FirmID]StepResult, error)
	ObservationSpaceFor(firm FirmID) Box
	ActionSpaceFor(firm FirmID) Box
}

// Episode owns one market trajectory: the mutable state, the seeded random
// source, and the lifecycle state machine. One Step call runs the full
// pipeline (constraints → shocks → economics → state update → observation)
// synchronously; episodes share nothing, so separate instances may run in
// parallel without locking.
type Episode struct {
	ID     uuid.UUID
	params Params
	state  State
	rng    *entropy.Source
	shocks *ShockGenerator
	phase  Phase
	seed   int64
}

var _ Env = (*Episode)(nil)

// NewEpisode creates an episode with the given parameters. Reset must be
// called before the first Step.
func NewEpisode(p Params) *Episode {
	return &Episode{
		ID:     uuid.New(),
		params: p,
		phase:  Uninitialized,
	}
}

// Reset (re)seeds the random source and initializes the market to its
// starting distribution: boom regime, neutral shocks, zero innovation,
// prices drawn uniformly from the feasible corridor. Returns the initial
// per-firm observation.
func (e *Episode) Reset(seed int64) (map[FirmID]Observation, error) {
	// Each reset begins a new trajectory, so it gets a fresh identity.
	e.ID = uuid.New()
	e.seed = seed
	if e.rng == nil {
		e.rng = entropy.NewSource(seed)
	} else {
		e.rng.Reseed(seed)
	}
	e.shocks = NewShockGenerator(e.params, e.rng)

	p := e.params
	st := State{
		Time:               0,
		Regime:             Boom,
		SupplierShock:      1.0,
		SubstitutePressure: p.SubstituteInitial,
		MarginalCost:       p.BaseMarginalCost,
		TotalDemand:        p.BaseDemand,
		EffectiveDemand:    p.BaseDemand,
	}
	for i := range Firms {
		st.Prices[i] = e.rng.Uniform(p.MinPrice(p.BaseMarginalCost), p.PriceCap)
		st.MarketShares[i] = 1.0 / NumFirms
	}
	e.state = st
	e.phase = Running

	obs := st.Observation(p)
	out := make(map[FirmID]Observation, NumFirms)
	for _, id := range Firms {
		out[id] = obs
	}
	return out, nil
}

// Step runs one market period. The pipeline order is fixed: constraint
// enforcement against the current marginal cost, shock advancement, economic
// outcome, state mutation, termination check, observation assembly. Any
// contract violation fails the call and leaves the state untouched.
func (e *Episode) Step(actions Actions) (map[FirmID]StepResult, error) {
	switch e.phase {
	case Uninitialized:
		return nil, fmt.Errorf("step: %w", ErrNotReset)
	case Terminated:
		return nil, fmt.Errorf("step at time %d: %w", e.state.Time, ErrStepAfterTermination)
	}

	p := e.params
	valid, clamped, err := EnforceConstraints(p, e.state.MarginalCost, actions)
	if err != nil {
		return nil, fmt.Errorf("step: %w", err)
	}

	// Work on a scratch copy so a failed step leaves the state untouched.
	st := e.state
	st.Time++

	var rd [NumFirms]float64
	for i := range Firms {
		st.Prices[i] = valid[i].Price
		rd[i] = valid[i].RDInvestment
		st.InnovationStocks[i] += rd[i]
	}

	cycleMult := e.shocks.Advance(&st)

	out, err := Compute(p, st.Time, st.Prices, st.InnovationStocks, rd,
		st.SupplierShock, cycleMult, st.SubstitutePressure)
	if err != nil {
		e.phase = Terminated
		return nil, fmt.Errorf("step at time %d: %w", st.Time, err)
	}

	st.MarginalCost = out.MarginalCost
	st.TotalDemand = out.TotalDemand
	st.EffectiveDemand = out.EffectiveDemand
	st.MarketShares = out.Shares
	for i := range Firms {
		st.CumulativeProfits[i] += out.Profits[i]
	}

	if !st.Finite() {
		e.phase = Terminated
		return nil, fmt.Errorf("step at time %d: %w", st.Time, ErrStateNotFinite)
	}
	e.state = st

	done := st.Time >= p.MaxSteps
	if done {
		e.phase = Terminated
	}

	obs := st.Observation(p)
	results := make(map[FirmID]StepResult, NumFirms)
	for _, id := range Firms {
		results[id] = StepResult{
			Observation: obs,
			Reward:      out.Profits[id],
			Terminated:  done,
			Truncated:   false,
			Info:        Info{PriceClamped: clamped[id]},
		}
	}
	return results, nil
}

// ObservationSpaceFor returns the observation bounds for a firm. All firms
// observe the same full state.
func (e *Episode) ObservationSpaceFor(FirmID) Box {
	low := make([]float64, ObservationSize)
	high := make([]float64, ObservationSize)
	for i := range high {
		high[i] = 1e6 // loose upper bound
	}
	return Box{Low: low, High: high}
}

// ActionSpaceFor returns the action bounds for a firm: [price, rd_investment].
// The price floor quoted here uses the base marginal cost; the binding floor
// each period is the shocked marginal cost plus margin.
func (e *Episode) ActionSpaceFor(FirmID) Box {
	p := e.params
	return Box{
		Low:  []float64{p.MinPrice(p.BaseMarginalCost), 0},
		High: []float64{p.PriceCap, p.MaxRD},
	}
}

// State returns a copy of the current market state.
func (e *Episode) State() State { return e.state }

// Phase returns the episode lifecycle state.
func (e *Episode) Phase() Phase { return e.phase }

// Seed returns the seed of the most recent Reset.
func (e *Episode) Seed() int64 { return e.seed }

// Params returns the episode's parameter set.
func (e *Episode) Params() Params { return e.params }
