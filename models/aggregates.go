package models

// HostProfitability is one host's rollup over its booking margins, ranked for
// the running-total Pareto cut.
type HostProfitability struct {
	HostID               string
	TotalBookings        int
	TotalGBV             float64
	AvgGBV               float64
	TotalMargin          float64
	AvgMargin            float64
	AvgMarginPct         float64
	CancellationRate     float64
	ResponseRate         float64
	AvgRating            float64
	CumSumMargin         float64
	CumSumPct            float64
	ParetoClassification string // Top 20% / Tail 80%
}

// NeighborhoodAnalysis is the per-market rollup
type NeighborhoodAnalysis struct {
	Neighborhood     string
	TotalBookings    int
	NumHosts         int
	NumListings      int
	TotalGBV         float64
	AvgGBV           float64
	TotalMargin      float64
	AvgMargin        float64
	AvgMarginPct     float64
	CancellationRate float64
	AvgNightlyRate   float64
	MarketSaturation float64 // listings per host
	PctProfitable    float64
}

// RoomTypeAnalysis is the per-room-type rollup with cost component means
type RoomTypeAnalysis struct {
	RoomType           string
	TotalBookings      int
	NumHosts           int
	NumListings        int
	TotalGBV           float64
	AvgGBV             float64
	TotalMargin        float64
	AvgMarginPerBooked float64
	AvgMarginPct       float64
	CancellationRate   float64
	AvgNightlyRate     float64
	AvgCleaning        float64
	AvgSupplies        float64
	AvgTotalCosts      float64
}
