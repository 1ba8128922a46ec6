package models

// RevenueWaterfall traces where gross booking value goes before it becomes
// host margin. Percent fields are ratios to total GBV.
type RevenueWaterfall struct {
	GrossBookingValue    float64
	HostPlatformFee      float64
	GuestServiceFee      float64
	PaymentProcessingFee float64
	TotalPlatformFees    float64
	NetPayoutToHost      float64
	TotalHostCosts       float64
	NetHostMargin        float64
	PlatformFeesPct      float64
	HostCostsPct         float64
	NetMarginPct         float64
}

// ProfitabilityDistribution counts bookings by profitability status
type ProfitabilityDistribution struct {
	Profitable    int
	ProfitablePct float64
	LossMaking    int
	LossMakingPct float64
	Breakeven     int
	BreakevenPct  float64
}

// ParetoAnalysis reports margin concentration among top-ranked bookings.
// The top-N% boundary is a row-count quantile of the margin-sorted sequence.
type ParetoAnalysis struct {
	Top20PctContribute float64
	Top10PctContribute float64
	ConcentrationLevel string // High / Medium / Low
}

// CancellationImpact measures volume and value lost to cancellations.
// MarginLostPct divides by total net margin and is unstable when that total
// is near zero; callers should treat extreme values accordingly.
type CancellationImpact struct {
	TotalCancelled      int
	CancellationRatePct float64
	GBVLost             float64
	MarginLost          float64
	MarginLostPct       float64
}

// RepeatGuestAnalysis splits bookings by the repeat-guest flag. The flag is
// never set, so the repeat side is always empty.
type RepeatGuestAnalysis struct {
	RepeatGuestCount int
	RepeatGuestPct   float64
	RepeatAvgMargin  float64
	RepeatAvgGBV     float64
	NewGuestCount    int
	NewGuestPct      float64
	NewAvgMargin     float64
	NewAvgGBV        float64
}

// SegmentStats is one group's rollup from a caller-chosen grouping column
// (season, room type, booking window, neighborhood, ...)
type SegmentStats struct {
	Segment      string
	NumBookings  int
	TotalGBV     float64
	AvgGBV       float64
	TotalMargin  float64
	AvgMargin    float64
	AvgMarginPct float64
	CancelRate   float64
}

// KPISummary bundles the headline metrics for the terminal report
type KPISummary struct {
	TotalBookings   int
	ActiveHosts     int
	ActiveGuests    int
	AvgBookingValue float64
	AvgNightlyRate  float64
	AvgNetMargin    float64
	AvgMarginPct    float64

	Waterfall     RevenueWaterfall
	Profitability ProfitabilityDistribution
	Cancellations CancellationImpact
	Pareto        ParetoAnalysis
	ByRoomType    []SegmentStats
}
