package services

import (
	"math"

	"margin-leakage/models"
)

// platform fee structure, fractions of the booking base price
const (
	cleaningFeeFixed      = 30.0
	hostPlatformFeeRate   = 0.03
	guestServiceFeeRate   = 0.142
	paymentProcessingRate = 0.02
)

// DeriveBookingFees computes the platform-side financial breakdown for every
// booking. Pure function of total base price and the cancellation flag.
//
// Cancellation halves the aggregate gross booking value only; the individual
// fee line items keep their pre-cancellation values. Downstream marts are
// calibrated against that asymmetry, so it must not be "corrected" here.
func DeriveBookingFees(bookings []*models.Booking) []*models.BookingFee {
	fees := make([]*models.BookingFee, 0, len(bookings))
	for _, b := range bookings {
		basePrice := b.TotalBasePrice

		hostPlatformFee := basePrice * hostPlatformFeeRate
		guestServiceFee := basePrice * guestServiceFeeRate
		paymentFee := (basePrice + guestServiceFee) * paymentProcessingRate

		gbv := basePrice + guestServiceFee + paymentFee + cleaningFeeFixed
		if b.IsCancelled {
			gbv *= 0.5
		}

		netPayout := gbv - hostPlatformFee - paymentFee

		fees = append(fees, &models.BookingFee{
			BookingID:            b.BookingID,
			GrossBookingValue:    round2(gbv),
			BasePrice:            basePrice,
			CleaningFeeFixed:     cleaningFeeFixed,
			HostPlatformFee:      round2(hostPlatformFee),
			GuestServiceFee:      round2(guestServiceFee),
			PaymentProcessingFee: round2(paymentFee),
			NetPayoutToHost:      round2(netPayout),
		})
	}
	return fees
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
