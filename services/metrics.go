package services

import (
	"math"
	"sort"

	"margin-leakage/models"
)

// Stateless KPI rollups over a completed booking-margin table. A degenerate
// segment (zero rows, zero-valued denominator) yields NaN/Inf in the affected
// ratio, never a panic, so one bad segment cannot abort a whole report.

// RevenueWaterfall sums each fee, cost and margin column and expresses the
// platform/cost/margin totals as shares of gross booking value
func RevenueWaterfall(margins []*models.BookingMargin) models.RevenueWaterfall {
	var w models.RevenueWaterfall
	for _, m := range margins {
		w.GrossBookingValue += m.GrossBookingValue
		w.HostPlatformFee += m.HostPlatformFee
		w.GuestServiceFee += m.GuestServiceFee
		w.PaymentProcessingFee += m.PaymentProcessingFee
		w.NetPayoutToHost += m.NetPayoutToHost
		w.TotalHostCosts += m.TotalHostCosts
		w.NetHostMargin += m.NetHostMargin
	}
	w.TotalPlatformFees = w.HostPlatformFee + w.GuestServiceFee
	w.PlatformFeesPct = w.TotalPlatformFees / w.GrossBookingValue * 100
	w.HostCostsPct = w.TotalHostCosts / w.GrossBookingValue * 100
	w.NetMarginPct = w.NetHostMargin / w.GrossBookingValue * 100
	return w
}

// ProfitabilityDistribution counts bookings by the sign of net host margin
func ProfitabilityDistribution(margins []*models.BookingMargin) models.ProfitabilityDistribution {
	var d models.ProfitabilityDistribution
	for _, m := range margins {
		switch {
		case m.NetHostMargin > 0:
			d.Profitable++
		case m.NetHostMargin < 0:
			d.LossMaking++
		case m.NetHostMargin == 0:
			d.Breakeven++
		}
	}
	total := float64(len(margins))
	d.ProfitablePct = float64(d.Profitable) / total * 100
	d.LossMakingPct = float64(d.LossMaking) / total * 100
	d.BreakevenPct = float64(d.Breakeven) / total * 100
	return d
}

// ParetoAnalysis measures how much margin the top-ranked bookings contribute.
// The top-10%/top-20% boundaries are row-count quantiles of the sequence
// sorted descending by margin, not value-share cuts.
func ParetoAnalysis(margins []*models.BookingMargin) models.ParetoAnalysis {
	if len(margins) == 0 {
		return models.ParetoAnalysis{
			Top20PctContribute: math.NaN(),
			Top10PctContribute: math.NaN(),
			ConcentrationLevel: "Low",
		}
	}

	values := make([]float64, len(margins))
	for i, m := range margins {
		values[i] = m.NetHostMargin
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(values)))

	cumsum := make([]float64, len(values))
	var running float64
	for i, v := range values {
		running += v
		cumsum[i] = running
	}
	total := cumsum[len(cumsum)-1]

	shareAt := func(q float64) float64 {
		idx := int(float64(len(values)) * q)
		if idx > 0 {
			return cumsum[idx-1] / total * 100
		}
		return cumsum[0] / total * 100
	}

	p := models.ParetoAnalysis{
		Top20PctContribute: shareAt(0.20),
		Top10PctContribute: shareAt(0.10),
	}
	switch {
	case p.Top20PctContribute > 65:
		p.ConcentrationLevel = "High"
	case p.Top20PctContribute > 50:
		p.ConcentrationLevel = "Medium"
	default:
		p.ConcentrationLevel = "Low"
	}
	return p
}

// CancellationImpact reports the volume, GBV and margin tied up in cancelled
// bookings. MarginLostPct divides by total margin and is documented as
// unstable when the book is near breakeven overall; it is deliberately not
// clamped.
func CancellationImpact(margins []*models.BookingMargin) models.CancellationImpact {
	var c models.CancellationImpact
	var totalMargin float64
	for _, m := range margins {
		totalMargin += m.NetHostMargin
		if m.IsCancelled {
			c.TotalCancelled++
			c.GBVLost += m.GrossBookingValue
			c.MarginLost += m.NetHostMargin
		}
	}
	c.CancellationRatePct = float64(c.TotalCancelled) / float64(len(margins)) * 100
	c.MarginLostPct = c.MarginLost / totalMargin * 100
	return c
}

// RepeatGuestAnalysis splits margins by the repeat-guest flag. The flag is
// never set by the pipeline, so this always reports 100% new guests; the
// split is kept because the marts consume its shape.
func RepeatGuestAnalysis(margins []*models.BookingMargin) models.RepeatGuestAnalysis {
	var r models.RepeatGuestAnalysis
	var repeatMargin, repeatGBV, newMargin, newGBV float64
	for _, m := range margins {
		if m.IsRepeatGuest {
			r.RepeatGuestCount++
			repeatMargin += m.NetHostMargin
			repeatGBV += m.GrossBookingValue
		} else {
			r.NewGuestCount++
			newMargin += m.NetHostMargin
			newGBV += m.GrossBookingValue
		}
	}
	total := float64(len(margins))
	r.RepeatGuestPct = float64(r.RepeatGuestCount) / total * 100
	r.NewGuestPct = float64(r.NewGuestCount) / total * 100
	if r.RepeatGuestCount > 0 {
		r.RepeatAvgMargin = repeatMargin / float64(r.RepeatGuestCount)
		r.RepeatAvgGBV = repeatGBV / float64(r.RepeatGuestCount)
	}
	if r.NewGuestCount > 0 {
		r.NewAvgMargin = newMargin / float64(r.NewGuestCount)
		r.NewAvgGBV = newGBV / float64(r.NewGuestCount)
	}
	return r
}

// MarginBySegment rolls margins up by a caller-supplied grouping column.
// Groups are emitted in sorted key order.
func MarginBySegment(margins []*models.BookingMargin, segmentOf func(*models.BookingMargin) string) []models.SegmentStats {
	type acc struct {
		count     int
		gbv       float64
		margin    float64
		marginPct float64
		cancelled int
	}

	accs := make(map[string]*acc)
	var keys []string
	for _, m := range margins {
		key := segmentOf(m)
		a, ok := accs[key]
		if !ok {
			a = &acc{}
			accs[key] = a
			keys = append(keys, key)
		}
		a.count++
		a.gbv += m.GrossBookingValue
		a.margin += m.NetHostMargin
		a.marginPct += m.NetMarginPct
		if m.IsCancelled {
			a.cancelled++
		}
	}
	sort.Strings(keys)

	stats := make([]models.SegmentStats, 0, len(keys))
	for _, key := range keys {
		a := accs[key]
		n := float64(a.count)
		stats = append(stats, models.SegmentStats{
			Segment:      key,
			NumBookings:  a.count,
			TotalGBV:     round2(a.gbv),
			AvgGBV:       round2(a.gbv / n),
			TotalMargin:  round2(a.margin),
			AvgMargin:    round2(a.margin / n),
			AvgMarginPct: round2(a.marginPct / n),
			CancelRate:   round2(float64(a.cancelled) / n),
		})
	}
	return stats
}

// SeasonalityAnalysis groups margins by the derived season bucket
func SeasonalityAnalysis(margins []*models.BookingMargin) []models.SegmentStats {
	return MarginBySegment(margins, func(m *models.BookingMargin) string { return m.Season })
}

// BuildKPISummary assembles the headline metrics for the terminal report
func BuildKPISummary(margins []*models.BookingMargin) models.KPISummary {
	hosts := make(map[string]struct{})
	guests := make(map[string]struct{})
	var gbv, nightly, margin, marginPct float64
	for _, m := range margins {
		hosts[m.HostID] = struct{}{}
		guests[m.GuestID] = struct{}{}
		gbv += m.GrossBookingValue
		nightly += m.BasePricePerNight
		margin += m.NetHostMargin
		marginPct += m.NetMarginPct
	}
	n := float64(len(margins))

	return models.KPISummary{
		TotalBookings:   len(margins),
		ActiveHosts:     len(hosts),
		ActiveGuests:    len(guests),
		AvgBookingValue: gbv / n,
		AvgNightlyRate:  nightly / n,
		AvgNetMargin:    margin / n,
		AvgMarginPct:    marginPct / n,
		Waterfall:       RevenueWaterfall(margins),
		Profitability:   ProfitabilityDistribution(margins),
		Cancellations:   CancellationImpact(margins),
		Pareto:          ParetoAnalysis(margins),
		ByRoomType: MarginBySegment(margins, func(m *models.BookingMargin) string {
			return m.RoomType
		}),
	}
}
