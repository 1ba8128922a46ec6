package services

import (
	"testing"

	"margin-leakage/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveBookingFees(t *testing.T) {
	bookings := []*models.Booking{
		{BookingID: "BOOKING_0000001", TotalBasePrice: 100, IsCancelled: false},
	}

	fees := DeriveBookingFees(bookings)
	require.Len(t, fees, 1)
	f := fees[0]

	assert.Equal(t, "BOOKING_0000001", f.BookingID)
	assert.Equal(t, 100.0, f.BasePrice)
	assert.Equal(t, 30.0, f.CleaningFeeFixed)
	assert.InDelta(t, 3.00, f.HostPlatformFee, 0.01)
	assert.InDelta(t, 14.20, f.GuestServiceFee, 0.01)
	assert.InDelta(t, 2.284, f.PaymentProcessingFee, 0.01)
	assert.InDelta(t, 146.484, f.GrossBookingValue, 0.01)
	assert.InDelta(t, 141.20, f.NetPayoutToHost, 0.01)
}

func TestCancellationHalvesGBVButNotFeeLineItems(t *testing.T) {
	kept := DeriveBookingFees([]*models.Booking{
		{BookingID: "B1", TotalBasePrice: 100, IsCancelled: false},
	})[0]
	cancelled := DeriveBookingFees([]*models.Booking{
		{BookingID: "B1", TotalBasePrice: 100, IsCancelled: true},
	})[0]

	assert.InDelta(t, 73.242, cancelled.GrossBookingValue, 0.01)
	assert.InDelta(t, 67.958, cancelled.NetPayoutToHost, 0.01)

	// fee line items keep their pre-cancellation values
	assert.Equal(t, kept.HostPlatformFee, cancelled.HostPlatformFee)
	assert.Equal(t, kept.GuestServiceFee, cancelled.GuestServiceFee)
	assert.Equal(t, kept.PaymentProcessingFee, cancelled.PaymentProcessingFee)
	assert.Equal(t, kept.CleaningFeeFixed, cancelled.CleaningFeeFixed)
}

func TestGBVNeverZero(t *testing.T) {
	// even a free booking carries the fixed cleaning fee
	fees := DeriveBookingFees([]*models.Booking{
		{BookingID: "B1", TotalBasePrice: 0, IsCancelled: false},
		{BookingID: "B2", TotalBasePrice: 0, IsCancelled: true},
	})
	assert.Equal(t, 30.0, fees[0].GrossBookingValue)
	assert.Equal(t, 15.0, fees[1].GrossBookingValue)
}
