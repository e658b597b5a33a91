package market

import "errors"

// Contract violations surfaced by the episode interface. All are fatal to the
// offending call and leave episode state unchanged, except ErrStateNotFinite
// which marks the episode unusable.
var (
	// ErrInvalidActionShape means the action map is missing a firm or a
	// field holds a non-numeric value.
	ErrInvalidActionShape = errors.New("invalid action shape")

	// ErrNegativeInvestment means a firm submitted rd_investment < 0.
	ErrNegativeInvestment = errors.New("negative R&D investment")

	// ErrStepAfterTermination means Step was called on a terminated
	// episode; the caller must Reset first.
	ErrStepAfterTermination = errors.New("step after termination")

	// ErrNotReset means Step was called before the first Reset.
	ErrNotReset = errors.New("episode not reset")

	// ErrStateNotFinite means a computed state value became NaN or Inf.
	// This is a configuration or programming error, never a recoverable
	// market condition, so the step aborts rather than propagating it.
	ErrStateNotFinite = errors.New("non-finite market state")
)
