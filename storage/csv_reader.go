package storage

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"margin-leakage/models"
	"margin-leakage/utils"
)

// CSVReader loads the six raw tables back from disk. A missing file is
// skipped with a warning (the reload workflow tolerates a partial dataset);
// a malformed row is skipped and counted, never fatal.
type CSVReader struct {
	dir    string
	logger *utils.Logger
}

// NewCSVReader creates a new CSVReader over the raw data directory
func NewCSVReader(dir string, logger *utils.Logger) *CSVReader {
	return &CSVReader{dir: dir, logger: logger}
}

// LoadRaw reads whichever raw tables exist. A table whose file is absent
// stays nil in the returned dataset.
func (r *CSVReader) LoadRaw() (*models.Dataset, error) {
	ds := &models.Dataset{}

	if rows := r.readTable("hosts.csv", len(hostsHeader)); rows != nil {
		for _, rec := range rows {
			ds.Hosts = append(ds.Hosts, &models.Host{
				HostID:           rec[0],
				Neighborhood:     rec[1],
				HostSinceDays:    parseInt(rec[2]),
				ResponseRate:     parseFloat(rec[3]),
				NumberOfListings: parseInt(rec[4]),
				AvgReviewRating:  parseFloat(rec[5]),
				ReviewCount:      parseInt(rec[6]),
			})
		}
	}

	if rows := r.readTable("listings.csv", len(listingsHeader)); rows != nil {
		for _, rec := range rows {
			ds.Listings = append(ds.Listings, &models.Listing{
				ListingID:     rec[0],
				HostID:        rec[1],
				PropertyType:  rec[2],
				RoomType:      rec[3],
				Neighborhood:  rec[4],
				Beds:          parseInt(rec[5]),
				PricePerNight: parseFloat(rec[6]),
				MinimumNights: parseInt(rec[7]),
				Availability:  parseInt(rec[8]),
			})
		}
	}

	if rows := r.readTable("guests.csv", len(guestsHeader)); rows != nil {
		for _, rec := range rows {
			ds.Guests = append(ds.Guests, &models.Guest{
				GuestID:        rec[0],
				Country:        rec[1],
				Verification:   rec[2],
				TotalBookings:  parseInt(rec[3]),
				AvgRatingGiven: parseFloat(rec[4]),
			})
		}
	}

	if rows := r.readTable("bookings.csv", len(bookingsHeader)); rows != nil {
		bad := 0
		for _, rec := range rows {
			bookingDate, err1 := parseDate(rec[4])
			checkinDate, err2 := parseDate(rec[5])
			checkoutDate, err3 := parseDate(rec[6])
			if err1 != nil || err2 != nil || err3 != nil {
				bad++
				continue
			}
			ds.Bookings = append(ds.Bookings, &models.Booking{
				BookingID:         rec[0],
				ListingID:         rec[1],
				HostID:            rec[2],
				GuestID:           rec[3],
				BookingDate:       bookingDate,
				CheckinDate:       checkinDate,
				CheckoutDate:      checkoutDate,
				LengthOfStay:      parseInt(rec[7]),
				BasePricePerNight: parseFloat(rec[8]),
				TotalBasePrice:    parseFloat(rec[9]),
				RoomType:          rec[10],
				Neighborhood:      rec[11],
				IsCancelled:       rec[12] == "1",
				DaysUntilCheckin:  parseInt(rec[13]),
			})
		}
		if bad > 0 {
			r.logger.Warn("bookings.csv: skipped %d rows with unparseable dates", bad)
		}
	}

	if rows := r.readTable("booking_fees.csv", len(feesHeader)); rows != nil {
		for _, rec := range rows {
			ds.Fees = append(ds.Fees, &models.BookingFee{
				BookingID:            rec[0],
				GrossBookingValue:    parseFloat(rec[1]),
				BasePrice:            parseFloat(rec[2]),
				CleaningFeeFixed:     parseFloat(rec[3]),
				HostPlatformFee:      parseFloat(rec[4]),
				GuestServiceFee:      parseFloat(rec[5]),
				PaymentProcessingFee: parseFloat(rec[6]),
				NetPayoutToHost:      parseFloat(rec[7]),
			})
		}
	}

	if rows := r.readTable("host_costs.csv", len(costsHeader)); rows != nil {
		for _, rec := range rows {
			ds.Costs = append(ds.Costs, &models.HostCost{
				BookingID:             rec[0],
				CleaningCost:          parseFloat(rec[1]),
				SuppliesCost:          parseFloat(rec[2]),
				MaintenanceAllocation: parseFloat(rec[3]),
				TotalHostCosts:        parseFloat(rec[4]),
			})
		}
	}

	if ds.Hosts == nil && ds.Listings == nil && ds.Guests == nil &&
		ds.Bookings == nil && ds.Fees == nil && ds.Costs == nil {
		return nil, fmt.Errorf("no raw tables found under %s", r.dir)
	}
	return ds, nil
}

// readTable returns the data rows of one CSV file, or nil if the file is
// missing. Rows with the wrong field count are skipped with a warning.
func (r *CSVReader) readTable(name string, fields int) [][]string {
	path := filepath.Join(r.dir, name)
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			r.logger.Warn("%s not found, skipping", path)
			return nil
		}
		r.logger.Error("Failed to open %s: %v", path, err)
		return nil
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		r.logger.Error("Failed to read %s: %v", path, err)
		return nil
	}
	if len(records) < 1 {
		r.logger.Warn("%s is empty", path)
		return nil
	}

	var rows [][]string
	skipped := 0
	for _, rec := range records[1:] { // skip header
		if len(rec) != fields {
			skipped++
			continue
		}
		rows = append(rows, rec)
	}
	if skipped > 0 {
		r.logger.Warn("%s: skipped %d malformed rows", name, skipped)
	}

	r.logger.Info("Loaded %s (%d rows)", path, len(rows))
	return rows
}

func parseInt(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// parseFloat maps an empty cell (how NaN serializes) back to NaN
func parseFloat(s string) float64 {
	if s == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
