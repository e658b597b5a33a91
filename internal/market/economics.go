package market

import (
	"fmt"
	"math"
)

// Outcome holds one period's computed market result.
type Outcome struct {
	MarginalCost    float64
	TotalDemand     float64 // demand before elasticity and substitutes
	EffectiveDemand float64
	Beta            float64 // innovation effectiveness this period
	Shares          [NumFirms]float64
	Quantities      [NumFirms]float64
	Profits         [NumFirms]float64
}

// Compute derives the full market outcome from the period's inputs. It is a
// pure function: same inputs, same outcome, no state touched. Returns
// ErrStateNotFinite if any result is NaN or Inf.
func Compute(
	p Params,
	time int,
	prices, innovations, rdInvestments [NumFirms]float64,
	supplierShock, cycleMultiplier, substitutePressure float64,
) (Outcome, error) {
	var out Outcome

	// Marginal cost: base cost scaled by the supplier shock. The regulation
	// factor hook is fixed at 1 until a regulatory regime model exists.
	out.MarginalCost = p.BaseMarginalCost * supplierShock

	// Effective demand: base size under the cycle, damped by buyer power on
	// the average price and by substitute availability.
	avgPrice := 0.0
	for i := range Firms {
		avgPrice += prices[i]
	}
	avgPrice /= NumFirms

	out.TotalDemand = p.BaseDemand * cycleMultiplier
	out.EffectiveDemand = out.TotalDemand *
		math.Exp(-p.PriceElasticity*avgPrice) *
		(1.0 - substitutePressure)

	// Innovation effectiveness: grows with elapsed periods (tech progress),
	// saturates as aggregate innovation accumulates.
	totalInnovation := 0.0
	for i := range Firms {
		totalInnovation += innovations[i]
	}
	out.Beta = p.InnovationPower * (1.0 + p.TechProgressRate*float64(time)) /
		(1.0 + p.DiminishingReturns*totalInnovation)

	// Softmax market shares over competitive scores. The max score is
	// subtracted before exponentiating; shares are shift-invariant, so this
	// changes nothing mathematically but keeps exp from overflowing as
	// innovation stocks grow over a long episode.
	var scores [NumFirms]float64
	maxScore := math.Inf(-1)
	for i := range Firms {
		scores[i] = -p.PriceSensitivity*prices[i] + out.Beta*innovations[i]
		if scores[i] > maxScore {
			maxScore = scores[i]
		}
	}
	sumExp := 0.0
	for i := range Firms {
		scores[i] = math.Exp(scores[i] - maxScore)
		sumExp += scores[i]
	}
	for i := range Firms {
		out.Shares[i] = scores[i] / sumExp
	}

	// Quantities and profits.
	for i := range Firms {
		out.Quantities[i] = out.Shares[i] * out.EffectiveDemand

		revenue := prices[i] * out.Quantities[i]
		costMarginal := out.MarginalCost * out.Quantities[i]
		costRD := p.RDCostCoeff * rdInvestments[i] * rdInvestments[i]
		costCompliance := p.ComplianceFixed + p.ComplianceVarRate*out.Quantities[i]

		out.Profits[i] = revenue - costMarginal - costRD - p.CapitalCost - costCompliance
	}

	for i := range Firms {
		if !finite(out.Shares[i]) || !finite(out.Quantities[i]) || !finite(out.Profits[i]) {
			return Outcome{}, fmt.Errorf("compute outcome for firm %d: %w", i, ErrStateNotFinite)
		}
	}
	if !finite(out.MarginalCost) || !finite(out.EffectiveDemand) || !finite(out.Beta) {
		return Outcome{}, fmt.Errorf("compute market aggregates: %w", ErrStateNotFinite)
	}

	return out, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
