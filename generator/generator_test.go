package generator

import (
	"testing"
	"time"

	"margin-leakage/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *utils.Logger {
	return utils.NewLogger(false)
}

func TestSameSeedProducesIdenticalTables(t *testing.T) {
	run := func() (interface{}, interface{}, interface{}, interface{}) {
		g := New(42, testLogger())
		hosts := g.Hosts(50)
		listings := g.Listings(hosts)
		guests := g.Guests(200)
		bookings := g.Bookings(listings, guests, 500)
		return hosts, listings, guests, bookings
	}

	h1, l1, g1, b1 := run()
	h2, l2, g2, b2 := run()

	assert.Equal(t, h1, h2)
	assert.Equal(t, l1, l2)
	assert.Equal(t, g1, g2)
	assert.Equal(t, b1, b2)
}

func TestDifferentSeedsDiverge(t *testing.T) {
	hosts1 := New(1, testLogger()).Hosts(50)
	hosts2 := New(2, testLogger()).Hosts(50)
	assert.NotEqual(t, hosts1, hosts2)
}

func TestReferentialIntegrity(t *testing.T) {
	g := New(42, testLogger())
	hosts := g.Hosts(50)
	listings := g.Listings(hosts)
	guests := g.Guests(200)
	bookings := g.Bookings(listings, guests, 500)

	hostIDs := make(map[string]bool)
	for _, h := range hosts {
		assert.False(t, hostIDs[h.HostID], "duplicate host id %s", h.HostID)
		hostIDs[h.HostID] = true
	}

	listingIDs := make(map[string]string) // listing id -> owning host
	for _, l := range listings {
		assert.True(t, hostIDs[l.HostID], "listing %s references unknown host", l.ListingID)
		_, dup := listingIDs[l.ListingID]
		assert.False(t, dup, "duplicate listing id %s", l.ListingID)
		listingIDs[l.ListingID] = l.HostID
	}

	guestIDs := make(map[string]bool)
	for _, gu := range guests {
		guestIDs[gu.GuestID] = true
	}

	bookingIDs := make(map[string]bool)
	for _, b := range bookings {
		assert.False(t, bookingIDs[b.BookingID], "duplicate booking id %s", b.BookingID)
		bookingIDs[b.BookingID] = true

		owner, ok := listingIDs[b.ListingID]
		require.True(t, ok, "booking %s references unknown listing", b.BookingID)
		assert.Equal(t, owner, b.HostID, "booking host must match listing owner")
		assert.True(t, guestIDs[b.GuestID], "booking %s references unknown guest", b.BookingID)
	}
}

func TestListingsPerHostMatchesHostField(t *testing.T) {
	g := New(7, testLogger())
	hosts := g.Hosts(40)
	listings := g.Listings(hosts)

	perHost := make(map[string]int)
	for _, l := range listings {
		perHost[l.HostID]++
	}
	for _, h := range hosts {
		assert.Equal(t, h.NumberOfListings, perHost[h.HostID], "host %s", h.HostID)
		assert.GreaterOrEqual(t, h.NumberOfListings, 1)
		assert.LessOrEqual(t, h.NumberOfListings, 3)
	}
}

func TestGeneratedValueRanges(t *testing.T) {
	g := New(42, testLogger())
	hosts := g.Hosts(100)
	listings := g.Listings(hosts)
	guests := g.Guests(300)
	bookings := g.Bookings(listings, guests, 1000)

	for _, h := range hosts {
		assert.GreaterOrEqual(t, h.ResponseRate, 75.0)
		assert.Less(t, h.ResponseRate, 100.0)
		assert.GreaterOrEqual(t, h.HostSinceDays, 100)
		assert.GreaterOrEqual(t, h.AvgReviewRating, 4.2)
		assert.Less(t, h.AvgReviewRating, 5.0)
	}

	for _, l := range listings {
		assert.GreaterOrEqual(t, l.PricePerNight, 30.0)
		if l.RoomType == "Shared room" {
			assert.Equal(t, 1, l.Beds)
		}
	}

	validLOS := map[int]bool{1: true, 2: true, 3: true, 4: true, 5: true, 7: true, 14: true}
	yearEnd := time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)
	for _, b := range bookings {
		assert.True(t, validLOS[b.LengthOfStay], "length of stay %d", b.LengthOfStay)
		assert.False(t, b.CheckinDate.After(yearEnd), "checkin %v past year end", b.CheckinDate)
		assert.GreaterOrEqual(t, b.DaysUntilCheckin, 1)
		assert.Equal(t, b.CheckinDate.AddDate(0, 0, b.LengthOfStay), b.CheckoutDate)
	}
}

func TestOutOfYearBookingsAreDropped(t *testing.T) {
	g := New(42, testLogger())
	hosts := g.Hosts(20)
	listings := g.Listings(hosts)
	guests := g.Guests(50)

	n := 2000
	bookings := g.Bookings(listings, guests, n)

	// late-December booking dates plus exponential lead times guarantee some
	// iterations land past year end
	assert.Less(t, len(bookings), n)
	assert.NotEmpty(t, bookings)
}

func TestSeasonalMultiplier(t *testing.T) {
	peak := []int{6, 7, 8, 12}
	shoulder := []int{3, 4, 5, 9, 10}
	low := []int{1, 2, 11}

	for _, m := range peak {
		assert.Equal(t, 1.4, SeasonalMultiplier(m), "month %d", m)
	}
	for _, m := range shoulder {
		assert.Equal(t, 1.1, SeasonalMultiplier(m), "month %d", m)
	}
	for _, m := range low {
		assert.Equal(t, 0.85, SeasonalMultiplier(m), "month %d", m)
	}
}

func TestCancellationProbBuckets(t *testing.T) {
	cases := []struct {
		days int
		want float64
	}{
		{1, 0.15}, {2, 0.15},
		{3, 0.10}, {6, 0.10},
		{7, 0.07}, {13, 0.07},
		{14, 0.05}, {29, 0.05},
		{30, 0.03}, {120, 0.03},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, cancellationProb(c.days), "days=%d", c.days)
	}
}

func TestBookingPriceAppliesSeasonalMultiplier(t *testing.T) {
	g := New(3, testLogger())
	hosts := g.Hosts(10)
	listings := g.Listings(hosts)
	guests := g.Guests(20)
	bookings := g.Bookings(listings, guests, 200)

	byID := make(map[string]float64)
	for _, l := range listings {
		byID[l.ListingID] = l.PricePerNight
	}

	for _, b := range bookings {
		want := byID[b.ListingID] * SeasonalMultiplier(int(b.CheckinDate.Month()))
		assert.InDelta(t, want, b.BasePricePerNight, 0.01, "booking %s", b.BookingID)
		// total is rounded after the multiply, so drift scales with nights
		assert.InDelta(t, b.BasePricePerNight*float64(b.LengthOfStay), b.TotalBasePrice, 0.005*float64(b.LengthOfStay)+0.005)
	}
}
