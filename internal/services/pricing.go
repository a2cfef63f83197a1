package services

import "math"

// flatFee is deducted from bids below the first commission tier
const flatFee = 4.49

// commissionTier maps a price band to the fraction of the price the worker keeps
type commissionTier struct {
	min  float64
	rate float64
}

// commissionTiers is the net-of-commission schedule, highest band first
var commissionTiers = []commissionTier{
	{min: 1000, rate: 0.95},
	{min: 500, rate: 0.94},
	{min: 250, rate: 0.93},
	{min: 100, rate: 0.92},
}

// EstimateEarnings computes the worker's net earnings for a bid price using
// the tiered commission schedule, rounded to 2 decimal places.
func EstimateEarnings(price float64) float64 {
	if price < 100 {
		return round2(price - flatFee)
	}
	for _, tier := range commissionTiers {
		if price >= tier.min {
			return round2(price * tier.rate)
		}
	}
	return round2(price - flatFee)
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
