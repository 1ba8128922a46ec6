package storage

import (
	"os"
	"path/filepath"
	"testing"

	"margin-leakage/generator"
	"margin-leakage/models"
	"margin-leakage/services"
	"margin-leakage/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *utils.Logger {
	return utils.NewLogger(false)
}

func testDataset(t *testing.T) *models.Dataset {
	t.Helper()
	g := generator.New(42, testLogger())
	hosts := g.Hosts(20)
	listings := g.Listings(hosts)
	guests := g.Guests(50)
	bookings := g.Bookings(listings, guests, 200)
	require.NotEmpty(t, bookings)

	return &models.Dataset{
		Hosts:    hosts,
		Listings: listings,
		Guests:   guests,
		Bookings: bookings,
		Fees:     services.DeriveBookingFees(bookings),
		Costs:    services.NewCostDeriver(g.Rand(), true, testLogger()).Derive(bookings),
	}
}

func TestSaveRawLoadRawRoundTrip(t *testing.T) {
	dir := t.TempDir()
	ds := testDataset(t)

	w := NewCSVWriter(dir, filepath.Join(dir, "processed"), testLogger())
	require.NoError(t, w.SaveRaw(ds))

	for _, name := range []string{
		"hosts.csv", "listings.csv", "guests.csv",
		"bookings.csv", "booking_fees.csv", "host_costs.csv",
	} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}

	got, err := NewCSVReader(dir, testLogger()).LoadRaw()
	require.NoError(t, err)

	require.Len(t, got.Hosts, len(ds.Hosts))
	require.Len(t, got.Listings, len(ds.Listings))
	require.Len(t, got.Guests, len(ds.Guests))
	require.Len(t, got.Bookings, len(ds.Bookings))
	require.Len(t, got.Fees, len(ds.Fees))
	require.Len(t, got.Costs, len(ds.Costs))

	assert.Equal(t, ds.Hosts, got.Hosts)
	assert.Equal(t, ds.Listings, got.Listings)
	assert.Equal(t, ds.Guests, got.Guests)
	assert.Equal(t, ds.Fees, got.Fees)
	assert.Equal(t, ds.Costs, got.Costs)

	// dates carry no time-of-day, so the day-granular format round-trips
	for i, b := range ds.Bookings {
		r := got.Bookings[i]
		assert.Equal(t, b.BookingID, r.BookingID)
		assert.True(t, b.BookingDate.Equal(r.BookingDate))
		assert.True(t, b.CheckinDate.Equal(r.CheckinDate))
		assert.True(t, b.CheckoutDate.Equal(r.CheckoutDate))
		assert.Equal(t, b.LengthOfStay, r.LengthOfStay)
		assert.Equal(t, b.TotalBasePrice, r.TotalBasePrice)
		assert.Equal(t, b.IsCancelled, r.IsCancelled)
		assert.Equal(t, b.DaysUntilCheckin, r.DaysUntilCheckin)
	}
}

func TestLoadRawToleratesMissingTables(t *testing.T) {
	dir := t.TempDir()
	ds := testDataset(t)

	w := NewCSVWriter(dir, filepath.Join(dir, "processed"), testLogger())
	require.NoError(t, w.SaveRaw(ds))
	require.NoError(t, os.Remove(filepath.Join(dir, "host_costs.csv")))

	got, err := NewCSVReader(dir, testLogger()).LoadRaw()
	require.NoError(t, err)
	assert.Nil(t, got.Costs, "missing table stays nil")
	assert.NotEmpty(t, got.Bookings)
}

func TestLoadRawEmptyDirFails(t *testing.T) {
	_, err := NewCSVReader(t.TempDir(), testLogger()).LoadRaw()
	assert.Error(t, err)
}

func TestReadTableSkipsMalformedRows(t *testing.T) {
	dir := t.TempDir()
	content := "booking_id,cleaning_cost,supplies_cost,maintenance_allocation,total_host_costs\n" +
		"B1,30,10,12,52\n" +
		"B2,bad-row\n" +
		"B3,20,5,12,37\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "host_costs.csv"), []byte(content), 0644))

	got, err := NewCSVReader(dir, testLogger()).LoadRaw()
	require.NoError(t, err)
	require.Len(t, got.Costs, 2)
	assert.Equal(t, "B1", got.Costs[0].BookingID)
	assert.Equal(t, "B3", got.Costs[1].BookingID)
	assert.Equal(t, 52.0, got.Costs[0].TotalHostCosts)
}

func TestSaveProcessedWritesAllTables(t *testing.T) {
	dir := t.TempDir()
	processed := filepath.Join(dir, "processed")
	ds := testDataset(t)

	e := services.NewMarginFeatureEngineer(testLogger())
	margins := e.CreateBookingMargins(ds.Bookings, ds.Fees, ds.Costs, ds.Listings, ds.Hosts)

	w := NewCSVWriter(dir, processed, testLogger())
	require.NoError(t, w.SaveProcessed(
		margins,
		e.HostAggregates(margins),
		e.NeighborhoodAggregates(margins),
		e.RoomTypeAnalysis(margins),
	))

	for _, name := range []string{
		"booking_margins.csv", "host_profitability.csv",
		"neighborhood_analysis.csv", "room_type_analysis.csv",
	} {
		info, err := os.Stat(filepath.Join(processed, name))
		require.NoError(t, err, name)
		assert.Greater(t, info.Size(), int64(0), name)
	}
}
