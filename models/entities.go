package models

import "time"

// Host represents a property owner active in one neighborhood market
type Host struct {
	HostID           string
	Neighborhood     string
	HostSinceDays    int
	ResponseRate     float64
	NumberOfListings int
	AvgReviewRating  float64
	ReviewCount      int
}

// Listing represents a bookable property owned by exactly one host
type Listing struct {
	ListingID     string
	HostID        string
	PropertyType  string
	RoomType      string
	Neighborhood  string
	Beds          int
	PricePerNight float64 // floored at 30
	MinimumNights int
	Availability  int // available days out of 365
}

// Guest represents a traveler; independent of hosts and listings
type Guest struct {
	GuestID        string
	Country        string
	Verification   string // verified / unverified
	TotalBookings  int
	AvgRatingGiven float64
}

// Booking represents one reservation of a listing by a guest.
// Room type and neighborhood are denormalized from the listing so the
// downstream rollups never need to re-join for them.
type Booking struct {
	BookingID         string
	ListingID         string
	HostID            string
	GuestID           string
	BookingDate       time.Time
	CheckinDate       time.Time
	CheckoutDate      time.Time
	LengthOfStay      int     // nights
	BasePricePerNight float64 // listing price x seasonal multiplier
	TotalBasePrice    float64
	RoomType          string
	Neighborhood      string
	IsCancelled       bool
	DaysUntilCheckin  int
}
