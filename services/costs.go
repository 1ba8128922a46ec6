package services

import (
	"math"
	"math/rand"
	"sort"

	"margin-leakage/models"
	"margin-leakage/utils"
)

// host-side cost structure, fractions of the nightly rate per night
const (
	cleaningCostRate      = 0.15
	suppliesCostRate      = 0.05
	maintenancePerBooking = 12.0
)

// CostDeriver computes host operating costs per booking. With loss injection
// enabled it inflates the costs of the cheapest slice of bookings so the
// dataset carries a realistic unprofitable tail: bookings at or below the
// 20th percentile of total base price get all cost components multiplied by
// U[5,12] (forced loss), bookings between the 20th and 35th percentile by
// U[2.5,4] (near breakeven).
type CostDeriver struct {
	rng           *rand.Rand
	lossInjection bool
	logger        *utils.Logger
}

// NewCostDeriver creates a CostDeriver. The rng continues the generation
// stream; multiplier draws consume it in booking order.
func NewCostDeriver(rng *rand.Rand, lossInjection bool, logger *utils.Logger) *CostDeriver {
	return &CostDeriver{rng: rng, lossInjection: lossInjection, logger: logger}
}

// Derive computes one HostCost row per booking, in booking order
func (d *CostDeriver) Derive(bookings []*models.Booking) []*models.HostCost {
	var p20, p35 float64
	if d.lossInjection && len(bookings) > 0 {
		values := make([]float64, len(bookings))
		for i, b := range bookings {
			values[i] = b.TotalBasePrice
		}
		p20 = percentile(values, 20)
		p35 = percentile(values, 35)
		d.logger.Info("Loss injection enabled: p20=%.2f p35=%.2f", p20, p35)
	}

	injected := 0
	costs := make([]*models.HostCost, 0, len(bookings))
	for _, b := range bookings {
		nights := float64(b.LengthOfStay)
		cleaning := b.BasePricePerNight * nights * cleaningCostRate
		supplies := b.BasePricePerNight * nights * suppliesCostRate
		maintenance := maintenancePerBooking

		if d.lossInjection {
			var mult float64
			if b.TotalBasePrice <= p20 {
				mult = 5.0 + d.rng.Float64()*7.0
			} else if b.TotalBasePrice <= p35 {
				mult = 2.5 + d.rng.Float64()*1.5
			}
			if mult > 0 {
				cleaning *= mult
				supplies *= mult
				maintenance *= mult
				injected++
			}
		}

		costs = append(costs, &models.HostCost{
			BookingID:             b.BookingID,
			CleaningCost:          round2(cleaning),
			SuppliesCost:          round2(supplies),
			MaintenanceAllocation: round2(maintenance),
			TotalHostCosts:        round2(cleaning + supplies + maintenance),
		})
	}

	if d.lossInjection {
		d.logger.Info("Inflated costs on %d/%d bookings", injected, len(bookings))
	}
	return costs
}

// percentile computes the q-th percentile with linear interpolation between
// order statistics
func percentile(values []float64, q float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	if len(sorted) == 1 {
		return sorted[0]
	}
	rank := q / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	frac := rank - float64(lo)
	return sorted[lo] + (sorted[lo+1]-sorted[lo])*frac
}
