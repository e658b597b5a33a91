package market

// Params holds the economic parameters of the simulated market.
// These are calibration constants, not runtime knobs: every episode of a
// given experiment should run with the same Params value.
type Params struct {
	// Demand.
	BaseDemand      float64 // D0: total market size at neutral conditions
	PriceElasticity float64 // ε: buyer-power exponent on average price

	// Cost structure.
	BaseMarginalCost  float64 // C_base: $/unit before supplier shocks
	CapitalCost       float64 // flat per-firm per-period capital charge
	ComplianceFixed   float64 // flat per-firm per-period compliance charge
	ComplianceVarRate float64 // τ: compliance $/unit sold
	RDCostCoeff       float64 // k: quadratic R&D cost coefficient

	// Competition.
	PriceSensitivity   float64 // α: softmax price penalty
	InnovationPower    float64 // β0: base innovation advantage
	TechProgressRate   float64 // β grows with elapsed periods
	DiminishingReturns float64 // β shrinks with aggregate innovation stock

	// Regulation.
	PriceCap    float64 // P_max: legal price ceiling
	PriceMargin float64 // minimum margin above marginal cost

	// Economic cycle.
	BoomMultiplier      float64
	RecessionMultiplier float64
	RegimeNoiseStd      float64
	BoomToRecession     float64 // per-period transition probability
	RecessionToBoom     float64

	// Supplier cost shock (lognormal scale).
	SupplierShockStd float64

	// Substitute-goods pressure random walk.
	SubstituteDriftStd float64
	SubstituteMin      float64
	SubstituteMax      float64
	SubstituteInitial  float64

	// Episode shape.
	MaxSteps int     // T: periods per episode
	Discount float64 // γ: carried for consumers; unused by the transition
	MaxRD    float64 // R&D action-space ceiling
}

// DefaultParams returns the calibrated parameter set for the
// three-firm manufacturing oligopoly.
func DefaultParams() Params {
	return Params{
		BaseDemand:      1000.0,
		PriceElasticity: 0.015,

		BaseMarginalCost:  80.0,
		CapitalCost:       150.0,
		ComplianceFixed:   50.0,
		ComplianceVarRate: 0.02 * 80.0,
		RDCostCoeff:       0.05,

		PriceSensitivity:   0.03,
		InnovationPower:    1.5,
		TechProgressRate:   0.002,
		DiminishingReturns: 0.01,

		PriceCap:    250.0,
		PriceMargin: 1.0,

		BoomMultiplier:      1.2,
		RecessionMultiplier: 0.8,
		RegimeNoiseStd:      0.02,
		BoomToRecession:     0.05,
		RecessionToBoom:     0.10,

		SupplierShockStd: 0.05,

		SubstituteDriftStd: 0.005,
		SubstituteMin:      0.05,
		SubstituteMax:      0.30,
		SubstituteInitial:  0.15,

		MaxSteps: 200,
		Discount: 0.99,
		MaxRD:    100.0,
	}
}

// MinPrice returns the lowest legal price for the given marginal cost.
func (p Params) MinPrice(marginalCost float64) float64 {
	return marginalCost + p.PriceMargin
}
