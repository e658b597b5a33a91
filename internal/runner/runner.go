// Package runner drives episodes to termination: it asks each firm's
// strategy for an action, steps the market, logs period reports, and records
// the trajectory. The market core stays free of any of this orchestration.
package runner

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/talgya/marketsim/internal/market"
	"github.com/talgya/marketsim/internal/persistence"
	"github.com/talgya/marketsim/internal/strategy"
)

// reportEvery controls how often a period report is logged at Info level.
const reportEvery = 50

// Runner owns one episode and the strategies that feed it.
type Runner struct {
	Episode    *market.Episode
	Strategies [market.NumFirms]strategy.Strategy
	DB         *persistence.DB // optional trajectory store
	Interval   time.Duration   // pacing between periods; 0 = run flat out

	mu        sync.Mutex
	running   bool
	stopped   bool
	shutdown  bool
	summary   Summary
	lastState market.State
	seed      int64
	episodeID string
}

// Summary is the result of one finished episode.
type Summary struct {
	EpisodeID         string                   `json:"episode_id"`
	Seed              int64                    `json:"seed"`
	Steps             int                      `json:"steps"`
	Terminated        bool                     `json:"terminated"`
	CumulativeProfits [market.NumFirms]float64 `json:"cumulative_profits"`
	ClampEvents       [market.NumFirms]int     `json:"clamp_events"`
	FinalShares       [market.NumFirms]float64 `json:"final_shares"`
}

// New creates a runner for the given episode and strategies.
func New(ep *market.Episode, strategies [market.NumFirms]strategy.Strategy) *Runner {
	return &Runner{Episode: ep, Strategies: strategies}
}

// Stop asks a paced run to halt after the current period. The owner of the
// runner may still start another episode afterwards.
func (r *Runner) Stop() {
	r.mu.Lock()
	r.stopped = true
	r.mu.Unlock()
}

// Shutdown halts the current episode and marks the runner as shutting down,
// so an episode loop driving this runner knows not to start another one.
func (r *Runner) Shutdown() {
	r.mu.Lock()
	r.stopped = true
	r.shutdown = true
	r.mu.Unlock()
}

// ShuttingDown reports whether Shutdown has been requested.
func (r *Runner) ShuttingDown() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.shutdown
}

// Running reports whether an episode is currently in flight.
func (r *Runner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// LastSummary returns the summary of the most recently finished episode.
func (r *Runner) LastSummary() Summary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.summary
}

// Snapshot returns a copy of the market state after the most recent period.
// Safe to call from other goroutines (the HTTP API) while a run is in flight.
func (r *Runner) Snapshot() (market.State, int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastState, r.seed
}

// EpisodeID returns the ID of the episode currently (or most recently) run.
func (r *Runner) EpisodeID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.episodeID
}

// RunEpisode resets the episode with the given seed and steps it to
// termination, recording every period if a store is attached.
func (r *Runner) RunEpisode(seed int64) (Summary, error) {
	ep := r.Episode
	obsMap, err := ep.Reset(seed)
	if err != nil {
		return Summary{}, fmt.Errorf("reset: %w", err)
	}
	obs := obsMap[0] // full observability: all firms see the same vector

	r.mu.Lock()
	r.running = true
	r.stopped = false
	r.seed = seed
	r.lastState = ep.State()
	r.episodeID = ep.ID.String()
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		r.running = false
		r.mu.Unlock()
	}()

	sum := Summary{EpisodeID: ep.ID.String(), Seed: seed}

	if r.DB != nil {
		if err := r.DB.BeginEpisode(ep.ID.String(), seed); err != nil {
			return Summary{}, fmt.Errorf("begin episode: %w", err)
		}
	}

	slog.Info("episode started",
		"id", ep.ID, "seed", seed,
		"strategies", r.strategyNames(),
		"max_steps", ep.Params().MaxSteps,
	)

	for t := 0; ; t++ {
		r.mu.Lock()
		halt := r.stopped || r.shutdown
		r.mu.Unlock()
		if halt {
			slog.Info("episode stopped early", "id", ep.ID, "time", sum.Steps)
			break
		}

		start := time.Now()

		actions := make(market.Actions, market.NumFirms)
		for _, id := range market.Firms {
			actions[id] = r.Strategies[id].Act(id, obs, t)
		}

		results, err := ep.Step(actions)
		if err != nil {
			return sum, fmt.Errorf("step %d: %w", t, err)
		}

		st := ep.State()
		r.mu.Lock()
		r.lastState = st
		r.mu.Unlock()
		sum.Steps = st.Time
		var profits [market.NumFirms]float64
		var clamped [market.NumFirms]bool
		done := false
		for _, id := range market.Firms {
			res := results[id]
			profits[id] = res.Reward
			clamped[id] = res.Info.PriceClamped
			if res.Info.PriceClamped {
				sum.ClampEvents[id]++
			}
			done = res.Terminated
		}
		obs = results[0].Observation

		if r.DB != nil {
			if err := r.DB.AppendStep(ep.ID.String(), st, profits, clamped); err != nil {
				return sum, err
			}
		}

		if st.Time%reportEvery == 0 || done {
			slog.Info("period report",
				"id", ep.ID, "time", st.Time,
				"regime", st.Regime,
				"marginal_cost", fmt.Sprintf("%.2f", st.MarginalCost),
				"demand", fmt.Sprintf("%.1f", st.EffectiveDemand),
				"substitutes", fmt.Sprintf("%.3f", st.SubstitutePressure),
				"avg_price", fmt.Sprintf("%.2f", st.AveragePrice()),
				"shares", fmt.Sprintf("%.3f/%.3f/%.3f",
					st.MarketShares[0], st.MarketShares[1], st.MarketShares[2]),
			)
		}

		if done {
			sum.Terminated = true
			sum.CumulativeProfits = st.CumulativeProfits
			sum.FinalShares = st.MarketShares
			break
		}

		// Pace the loop when an interval is set (live observation mode).
		if r.Interval > 0 {
			elapsed := time.Since(start)
			if elapsed < r.Interval {
				time.Sleep(r.Interval - elapsed)
			}
		}
	}

	if !sum.Terminated {
		st := ep.State()
		sum.CumulativeProfits = st.CumulativeProfits
		sum.FinalShares = st.MarketShares
	}

	if r.DB != nil {
		if err := r.DB.FinishEpisode(ep.ID.String(), sum.Steps, sum.Terminated, sum.CumulativeProfits); err != nil {
			return sum, err
		}
	}

	slog.Info("episode finished",
		"id", ep.ID, "seed", seed, "steps", sum.Steps, "terminated", sum.Terminated,
		"profit_0", fmt.Sprintf("%.0f", sum.CumulativeProfits[0]),
		"profit_1", fmt.Sprintf("%.0f", sum.CumulativeProfits[1]),
		"profit_2", fmt.Sprintf("%.0f", sum.CumulativeProfits[2]),
		"clamps", fmt.Sprintf("%d/%d/%d", sum.ClampEvents[0], sum.ClampEvents[1], sum.ClampEvents[2]),
	)

	r.mu.Lock()
	r.summary = sum
	r.mu.Unlock()
	return sum, nil
}

func (r *Runner) strategyNames() string {
	return fmt.Sprintf("%s/%s/%s",
		r.Strategies[0].Name(), r.Strategies[1].Name(), r.Strategies[2].Name())
}
