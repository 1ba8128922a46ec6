package services

import (
	"fmt"
	"math/rand"
	"testing"

	"margin-leakage/models"
	"margin-leakage/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *utils.Logger {
	return utils.NewLogger(false)
}

func TestCostFormulasWithoutInjection(t *testing.T) {
	d := NewCostDeriver(rand.New(rand.NewSource(1)), false, testLogger())

	costs := d.Derive([]*models.Booking{
		{BookingID: "B1", BasePricePerNight: 100, LengthOfStay: 2, TotalBasePrice: 200},
	})
	require.Len(t, costs, 1)
	c := costs[0]

	assert.Equal(t, 30.0, c.CleaningCost)  // 100 * 2 * 0.15
	assert.Equal(t, 10.0, c.SuppliesCost)  // 100 * 2 * 0.05
	assert.Equal(t, 12.0, c.MaintenanceAllocation)
	assert.Equal(t, 52.0, c.TotalHostCosts)
}

func TestLossInjectionMultipliesLowValueBookings(t *testing.T) {
	// ten bookings with base prices 10..100: p20 = 28, p35 = 41.5
	var bookings []*models.Booking
	for i := 1; i <= 10; i++ {
		bookings = append(bookings, &models.Booking{
			BookingID:         fmt.Sprintf("B%02d", i),
			BasePricePerNight: float64(i * 10),
			LengthOfStay:      1,
			TotalBasePrice:    float64(i * 10),
		})
	}

	d := NewCostDeriver(rand.New(rand.NewSource(99)), true, testLogger())
	costs := d.Derive(bookings)
	require.Len(t, costs, 10)

	for i, c := range costs {
		base := bookings[i].BasePricePerNight * 0.15
		mult := c.CleaningCost / base

		switch {
		case bookings[i].TotalBasePrice <= 28:
			assert.GreaterOrEqual(t, mult, 5.0, "booking %s", c.BookingID)
			assert.LessOrEqual(t, mult, 12.0, "booking %s", c.BookingID)
		case bookings[i].TotalBasePrice <= 41.5:
			assert.GreaterOrEqual(t, mult, 2.5, "booking %s", c.BookingID)
			assert.LessOrEqual(t, mult, 4.0, "booking %s", c.BookingID)
		default:
			assert.InDelta(t, 1.0, mult, 0.001, "booking %s should be untouched", c.BookingID)
			assert.Equal(t, 12.0, c.MaintenanceAllocation)
		}
	}
}

func TestLossInjectionScalesAllThreeComponents(t *testing.T) {
	bookings := []*models.Booking{
		{BookingID: "B1", BasePricePerNight: 10, LengthOfStay: 1, TotalBasePrice: 10},
		{BookingID: "B2", BasePricePerNight: 500, LengthOfStay: 1, TotalBasePrice: 500},
		{BookingID: "B3", BasePricePerNight: 600, LengthOfStay: 1, TotalBasePrice: 600},
		{BookingID: "B4", BasePricePerNight: 700, LengthOfStay: 1, TotalBasePrice: 700},
		{BookingID: "B5", BasePricePerNight: 800, LengthOfStay: 1, TotalBasePrice: 800},
		{BookingID: "B6", BasePricePerNight: 900, LengthOfStay: 1, TotalBasePrice: 900},
	}
	d := NewCostDeriver(rand.New(rand.NewSource(5)), true, testLogger())
	costs := d.Derive(bookings)

	// B1 sits below p20 and takes a forced-loss multiplier on every component
	c := costs[0]
	mult := c.MaintenanceAllocation / 12.0
	assert.GreaterOrEqual(t, mult, 5.0)
	assert.LessOrEqual(t, mult, 12.0)
	assert.InDelta(t, 10*0.15*mult, c.CleaningCost, 0.01)
	assert.InDelta(t, 10*0.05*mult, c.SuppliesCost, 0.01)
	assert.InDelta(t, c.CleaningCost+c.SuppliesCost+c.MaintenanceAllocation, c.TotalHostCosts, 0.02)
}

func TestPercentileLinearInterpolation(t *testing.T) {
	values := []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100}
	assert.InDelta(t, 28.0, percentile(values, 20), 0.0001)
	assert.InDelta(t, 41.5, percentile(values, 35), 0.0001)
	assert.Equal(t, 10.0, percentile(values, 0))
	assert.Equal(t, 100.0, percentile(values, 100))
	assert.Equal(t, 42.0, percentile([]float64{42}, 20))
}

func TestInjectionIsDeterministicForSameSeed(t *testing.T) {
	build := func() []*models.HostCost {
		var bookings []*models.Booking
		for i := 1; i <= 50; i++ {
			bookings = append(bookings, &models.Booking{
				BookingID:         fmt.Sprintf("B%02d", i),
				BasePricePerNight: float64(i),
				LengthOfStay:      2,
				TotalBasePrice:    float64(i * 2),
			})
		}
		d := NewCostDeriver(rand.New(rand.NewSource(42)), true, testLogger())
		return d.Derive(bookings)
	}
	assert.Equal(t, build(), build())
}
