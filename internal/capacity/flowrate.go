package capacity

import "math"

// DefaultBlendWeight is the influence a new observation has on the live flow rate.
const DefaultBlendWeight = 0.3

// ActualFlowRate is patients per staff-hour observed in a shift. It is zero when
// no rate can be derived.
func ActualFlowRate(patientsServed, staffCount int, shiftHours float64) float64 {
	if staffCount == 0 || shiftHours == 0 {
		return 0
	}
	return float64(patientsServed) / (float64(staffCount) * shiftHours)
}

// BlendFlowRates mixes a new observation into a historical estimate.
func BlendFlowRates(historical, actual, weight float64) float64 {
	return historical*(1-weight) + actual*weight
}

// RoundToTenth rounds to one decimal place.
func RoundToTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
