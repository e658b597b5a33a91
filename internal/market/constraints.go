package market

import (
	"fmt"
	"math"
)

// Action is one firm's decision for one period. Validated and consumed by the
// episode; never retained past the step.
type Action struct {
	Price        float64 `json:"price"`
	RDInvestment float64 `json:"rd_investment"`
}

// Actions maps each firm to its submitted action. All three firms must be
// present every step.
type Actions map[FirmID]Action

// EnforceConstraints validates the submitted actions against the current
// legal price corridor [marginalCost + margin, price cap].
//
// Out-of-range prices are clamped to the nearest bound rather than rejected,
// so an exploring policy never aborts the episode; clamped[i] reports the
// event for the caller's side channel. Negative R&D and malformed action maps
// are contract violations and fail the call outright.
func EnforceConstraints(p Params, marginalCost float64, actions Actions) (valid [NumFirms]Action, clamped [NumFirms]bool, err error) {
	if len(actions) != NumFirms {
		return valid, clamped, fmt.Errorf("expected %d actions, got %d: %w",
			NumFirms, len(actions), ErrInvalidActionShape)
	}

	lo := p.MinPrice(marginalCost)
	hi := p.PriceCap

	for _, id := range Firms {
		a, ok := actions[id]
		if !ok {
			return valid, clamped, fmt.Errorf("missing action for firm %d: %w", id, ErrInvalidActionShape)
		}
		if math.IsNaN(a.Price) || math.IsInf(a.Price, 0) ||
			math.IsNaN(a.RDInvestment) || math.IsInf(a.RDInvestment, 0) {
			return valid, clamped, fmt.Errorf("non-finite action for firm %d: %w", id, ErrInvalidActionShape)
		}
		if a.RDInvestment < 0 {
			return valid, clamped, fmt.Errorf("firm %d submitted rd_investment %.4f: %w",
				id, a.RDInvestment, ErrNegativeInvestment)
		}

		if a.Price < lo {
			a.Price = lo
			clamped[id] = true
		} else if a.Price > hi {
			a.Price = hi
			clamped[id] = true
		}
		valid[id] = a
	}

	return valid, clamped, nil
}
