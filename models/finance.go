package models

import "time"

// BookingFee holds the platform-side financial breakdown of one booking (1:1)
type BookingFee struct {
	BookingID            string
	GrossBookingValue    float64
	BasePrice            float64
	CleaningFeeFixed     float64
	HostPlatformFee      float64
	GuestServiceFee      float64
	PaymentProcessingFee float64
	NetPayoutToHost      float64
}

// HostCost holds the host-side operating costs of one booking (1:1)
type HostCost struct {
	BookingID             string
	CleaningCost          float64
	SuppliesCost          float64
	MaintenanceAllocation float64
	TotalHostCosts        float64
}

// BookingMargin is the analytical fact row: booking joined with its fee and
// cost records plus selected listing/host attributes and derived margin
// features. Join misses surface as NaN in the financial fields, never as a
// dropped row.
type BookingMargin struct {
	// Booking passthrough
	BookingID         string
	ListingID         string
	HostID            string
	GuestID           string
	BookingDate       time.Time
	CheckinDate       time.Time
	CheckoutDate      time.Time
	LengthOfStay      int
	BasePricePerNight float64
	TotalBasePrice    float64
	RoomType          string
	Neighborhood      string
	IsCancelled       bool
	DaysUntilCheckin  int

	// Fee join
	GrossBookingValue    float64
	HostPlatformFee      float64
	GuestServiceFee      float64
	PaymentProcessingFee float64
	NetPayoutToHost      float64

	// Cost join
	CleaningCost          float64
	SuppliesCost          float64
	MaintenanceAllocation float64
	TotalHostCosts        float64

	// Listing / host attributes
	PropertyType    string
	ResponseRate    float64
	AvgReviewRating float64

	// Derived features
	NetHostMargin         float64
	NetMarginPct          float64
	ProfitabilityStatus   string // Profitable / Breakeven / Loss
	BookingWindowCategory string // <3 days ... 30+ days
	Month                 int
	Year                  int
	Season                string // Peak / Shoulder / Low
	PlatformFeesPct       float64
	HostCostsPct          float64
	CleaningCostPct       float64

	// Always false: repeat-guest detection was never implemented upstream and
	// every repeat-guest metric is calibrated against that behavior.
	IsRepeatGuest bool
}
