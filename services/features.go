package services

import (
	"math"
	"sort"

	"margin-leakage/generator"
	"margin-leakage/models"
	"margin-leakage/utils"
)

// MarginFeatureEngineer joins the generated tables into the booking-margin
// fact table and rolls it up by host, neighborhood and room type
type MarginFeatureEngineer struct {
	logger *utils.Logger
}

// NewMarginFeatureEngineer creates a new MarginFeatureEngineer
func NewMarginFeatureEngineer(logger *utils.Logger) *MarginFeatureEngineer {
	return &MarginFeatureEngineer{logger: logger}
}

// CreateBookingMargins left-joins fees and costs (1:1 by booking id), listing
// property type and host quality attributes onto every booking, then derives
// the margin features. A join miss propagates NaN through the financial
// fields of that row and is counted, never fatal.
func (e *MarginFeatureEngineer) CreateBookingMargins(
	bookings []*models.Booking,
	fees []*models.BookingFee,
	costs []*models.HostCost,
	listings []*models.Listing,
	hosts []*models.Host,
) []*models.BookingMargin {

	feeByID := make(map[string]*models.BookingFee, len(fees))
	for _, f := range fees {
		feeByID[f.BookingID] = f
	}
	costByID := make(map[string]*models.HostCost, len(costs))
	for _, c := range costs {
		costByID[c.BookingID] = c
	}
	listingByID := make(map[string]*models.Listing, len(listings))
	for _, l := range listings {
		listingByID[l.ListingID] = l
	}
	hostByID := make(map[string]*models.Host, len(hosts))
	for _, h := range hosts {
		hostByID[h.HostID] = h
	}

	nan := math.NaN()
	misses := 0

	margins := make([]*models.BookingMargin, 0, len(bookings))
	for _, b := range bookings {
		m := &models.BookingMargin{
			BookingID:         b.BookingID,
			ListingID:         b.ListingID,
			HostID:            b.HostID,
			GuestID:           b.GuestID,
			BookingDate:       b.BookingDate,
			CheckinDate:       b.CheckinDate,
			CheckoutDate:      b.CheckoutDate,
			LengthOfStay:      b.LengthOfStay,
			BasePricePerNight: b.BasePricePerNight,
			TotalBasePrice:    b.TotalBasePrice,
			RoomType:          b.RoomType,
			Neighborhood:      b.Neighborhood,
			IsCancelled:       b.IsCancelled,
			DaysUntilCheckin:  b.DaysUntilCheckin,
		}

		if fee, ok := feeByID[b.BookingID]; ok {
			m.GrossBookingValue = fee.GrossBookingValue
			m.HostPlatformFee = fee.HostPlatformFee
			m.GuestServiceFee = fee.GuestServiceFee
			m.PaymentProcessingFee = fee.PaymentProcessingFee
			m.NetPayoutToHost = fee.NetPayoutToHost
		} else {
			misses++
			m.GrossBookingValue = nan
			m.HostPlatformFee = nan
			m.GuestServiceFee = nan
			m.PaymentProcessingFee = nan
			m.NetPayoutToHost = nan
		}

		if cost, ok := costByID[b.BookingID]; ok {
			m.CleaningCost = cost.CleaningCost
			m.SuppliesCost = cost.SuppliesCost
			m.MaintenanceAllocation = cost.MaintenanceAllocation
			m.TotalHostCosts = cost.TotalHostCosts
		} else {
			misses++
			m.CleaningCost = nan
			m.SuppliesCost = nan
			m.MaintenanceAllocation = nan
			m.TotalHostCosts = nan
		}

		if listing, ok := listingByID[b.ListingID]; ok {
			m.PropertyType = listing.PropertyType
		} else {
			misses++
		}

		if host, ok := hostByID[b.HostID]; ok {
			m.ResponseRate = host.ResponseRate
			m.AvgReviewRating = host.AvgReviewRating
		} else {
			misses++
			m.ResponseRate = nan
			m.AvgReviewRating = nan
		}

		m.NetHostMargin = m.NetPayoutToHost - m.TotalHostCosts
		m.NetMarginPct = round2(m.NetHostMargin / m.GrossBookingValue * 100)
		m.ProfitabilityStatus = classifyProfitability(m.NetHostMargin)
		m.BookingWindowCategory = bookingWindowCategory(b.DaysUntilCheckin)
		m.Month = int(b.CheckinDate.Month())
		m.Year = b.CheckinDate.Year()
		m.Season = seasonOf(m.Month)
		m.PlatformFeesPct = round2((m.HostPlatformFee + m.GuestServiceFee) / m.GrossBookingValue * 100)
		m.HostCostsPct = round2(m.TotalHostCosts / m.GrossBookingValue * 100)
		m.CleaningCostPct = round2(m.CleaningCost / m.GrossBookingValue * 100)
		m.IsRepeatGuest = false

		margins = append(margins, m)
	}

	if misses > 0 {
		e.logger.Warn("Booking margins: %d join misses propagated as NaN (run a validation pass)", misses)
	}
	e.logger.Info("Built %d booking margin rows", len(margins))
	return margins
}

// classifyProfitability uses a literal zero comparison for Breakeven. On a
// derived float this is fragile (near-zero margins land in Profitable/Loss by
// rounding accident), but the reference marts classify exactly this way.
func classifyProfitability(margin float64) string {
	if margin > 0 {
		return "Profitable"
	}
	if margin == 0 {
		return "Breakeven"
	}
	return "Loss"
}

// bookingWindowCategory buckets lead time with the same lower-inclusive
// boundaries the cancellation probabilities use
func bookingWindowCategory(days int) string {
	switch {
	case days < 3:
		return "<3 days"
	case days < 7:
		return "3-7 days"
	case days < 14:
		return "7-14 days"
	case days < 30:
		return "14-30 days"
	default:
		return "30+ days"
	}
}

func seasonOf(month int) string {
	switch generator.SeasonalMultiplier(month) {
	case 1.4:
		return "Peak"
	case 1.1:
		return "Shoulder"
	default:
		return "Low"
	}
}

// HostAggregates rolls margins up per host and applies the running-total
// Pareto cut: rows are ranked by total margin (stable sort, hosts pre-sorted
// by id so ties resolve deterministically) and a host is "Top 20%" while the
// running share of total margin is still within 20%.
func (e *MarginFeatureEngineer) HostAggregates(margins []*models.BookingMargin) []*models.HostProfitability {
	type acc struct {
		count        int
		gbv          float64
		margin       float64
		marginPct    float64
		cancelled    int
		responseRate float64
		avgRating    float64
	}

	accs := make(map[string]*acc)
	var keys []string
	for _, m := range margins {
		a, ok := accs[m.HostID]
		if !ok {
			a = &acc{responseRate: m.ResponseRate, avgRating: m.AvgReviewRating}
			accs[m.HostID] = a
			keys = append(keys, m.HostID)
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

	rows := make([]*models.HostProfitability, 0, len(keys))
	for _, hostID := range keys {
		a := accs[hostID]
		n := float64(a.count)
		rows = append(rows, &models.HostProfitability{
			HostID:           hostID,
			TotalBookings:    a.count,
			TotalGBV:         round2(a.gbv),
			AvgGBV:           round2(a.gbv / n),
			TotalMargin:      round2(a.margin),
			AvgMargin:        round2(a.margin / n),
			AvgMarginPct:     round2(a.marginPct / n),
			CancellationRate: round2(float64(a.cancelled) / n),
			ResponseRate:     round2(a.responseRate),
			AvgRating:        round2(a.avgRating),
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].TotalMargin > rows[j].TotalMargin
	})

	var total float64
	for _, r := range rows {
		total += r.TotalMargin
	}
	var running float64
	for _, r := range rows {
		running += r.TotalMargin
		r.CumSumMargin = round2(running)
		r.CumSumPct = round2(running / total * 100)
		if r.CumSumPct <= 20 {
			r.ParetoClassification = "Top 20%"
		} else {
			r.ParetoClassification = "Tail 80%"
		}
	}

	e.logger.Info("Host rollup: %d hosts", len(rows))
	return rows
}

// NeighborhoodAggregates rolls margins up per market
func (e *MarginFeatureEngineer) NeighborhoodAggregates(margins []*models.BookingMargin) []*models.NeighborhoodAnalysis {
	type acc struct {
		count       int
		hosts       map[string]struct{}
		listings    map[string]struct{}
		gbv         float64
		margin      float64
		marginPct   float64
		cancelled   int
		nightlyRate float64
		profitable  int
	}

	accs := make(map[string]*acc)
	var keys []string
	for _, m := range margins {
		a, ok := accs[m.Neighborhood]
		if !ok {
			a = &acc{hosts: make(map[string]struct{}), listings: make(map[string]struct{})}
			accs[m.Neighborhood] = a
			keys = append(keys, m.Neighborhood)
		}
		a.count++
		a.hosts[m.HostID] = struct{}{}
		a.listings[m.ListingID] = struct{}{}
		a.gbv += m.GrossBookingValue
		a.margin += m.NetHostMargin
		a.marginPct += m.NetMarginPct
		a.nightlyRate += m.BasePricePerNight
		if m.IsCancelled {
			a.cancelled++
		}
		if m.ProfitabilityStatus == "Profitable" {
			a.profitable++
		}
	}
	sort.Strings(keys)

	rows := make([]*models.NeighborhoodAnalysis, 0, len(keys))
	for _, nb := range keys {
		a := accs[nb]
		n := float64(a.count)
		rows = append(rows, &models.NeighborhoodAnalysis{
			Neighborhood:     nb,
			TotalBookings:    a.count,
			NumHosts:         len(a.hosts),
			NumListings:      len(a.listings),
			TotalGBV:         round2(a.gbv),
			AvgGBV:           round2(a.gbv / n),
			TotalMargin:      round2(a.margin),
			AvgMargin:        round2(a.margin / n),
			AvgMarginPct:     round2(a.marginPct / n),
			CancellationRate: round2(float64(a.cancelled) / n),
			AvgNightlyRate:   round2(a.nightlyRate / n),
			MarketSaturation: round2(float64(len(a.listings)) / float64(len(a.hosts))),
			PctProfitable:    round1(float64(a.profitable) / n * 100),
		})
	}

	e.logger.Info("Neighborhood rollup: %d markets", len(rows))
	return rows
}

// RoomTypeAnalysis rolls margins up per room type with cost component means
func (e *MarginFeatureEngineer) RoomTypeAnalysis(margins []*models.BookingMargin) []*models.RoomTypeAnalysis {
	type acc struct {
		count       int
		hosts       map[string]struct{}
		listings    map[string]struct{}
		gbv         float64
		margin      float64
		marginPct   float64
		cancelled   int
		nightlyRate float64
		cleaning    float64
		supplies    float64
		totalCosts  float64
	}

	accs := make(map[string]*acc)
	var keys []string
	for _, m := range margins {
		a, ok := accs[m.RoomType]
		if !ok {
			a = &acc{hosts: make(map[string]struct{}), listings: make(map[string]struct{})}
			accs[m.RoomType] = a
			keys = append(keys, m.RoomType)
		}
		a.count++
		a.hosts[m.HostID] = struct{}{}
		a.listings[m.ListingID] = struct{}{}
		a.gbv += m.GrossBookingValue
		a.margin += m.NetHostMargin
		a.marginPct += m.NetMarginPct
		a.nightlyRate += m.BasePricePerNight
		a.cleaning += m.CleaningCost
		a.supplies += m.SuppliesCost
		a.totalCosts += m.TotalHostCosts
		if m.IsCancelled {
			a.cancelled++
		}
	}
	sort.Strings(keys)

	rows := make([]*models.RoomTypeAnalysis, 0, len(keys))
	for _, rt := range keys {
		a := accs[rt]
		n := float64(a.count)
		rows = append(rows, &models.RoomTypeAnalysis{
			RoomType:           rt,
			TotalBookings:      a.count,
			NumHosts:           len(a.hosts),
			NumListings:        len(a.listings),
			TotalGBV:           round2(a.gbv),
			AvgGBV:             round2(a.gbv / n),
			TotalMargin:        round2(a.margin),
			AvgMarginPerBooked: round2(a.margin / n),
			AvgMarginPct:       round2(a.marginPct / n),
			CancellationRate:   round2(float64(a.cancelled) / n),
			AvgNightlyRate:     round2(a.nightlyRate / n),
			AvgCleaning:        round2(a.cleaning / n),
			AvgSupplies:        round2(a.supplies / n),
			AvgTotalCosts:      round2(a.totalCosts / n),
		})
	}

	e.logger.Info("Room type rollup: %d types", len(rows))
	return rows
}
