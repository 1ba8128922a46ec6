package models

// Dataset bundles the six raw tables produced by one generation run. Fees
// and costs are 1:1 with bookings; a nil table means the source file was
// missing (reload workflow only).
type Dataset struct {
	Hosts    []*Host
	Listings []*Listing
	Guests   []*Guest
	Bookings []*Booking
	Fees     []*BookingFee
	Costs    []*HostCost
}
