package storage

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"margin-leakage/models"
	"margin-leakage/utils"
)

const dateLayout = "2006-01-02"

// column order for the six raw tables; the reader and the Postgres schema
// follow the same order
var (
	hostsHeader = []string{
		"host_id", "neighborhood", "host_since_days", "response_rate",
		"number_of_listings", "avg_review_rating", "review_count",
	}
	listingsHeader = []string{
		"listing_id", "host_id", "property_type", "room_type", "neighborhood",
		"beds", "price_per_night", "minimum_nights", "availability_365",
	}
	guestsHeader = []string{
		"guest_id", "country", "verification", "total_bookings", "avg_rating_given",
	}
	bookingsHeader = []string{
		"booking_id", "listing_id", "host_id", "guest_id", "booking_date",
		"checkin_date", "checkout_date", "length_of_stay_nights",
		"base_price_per_night", "total_base_price", "room_type", "neighborhood",
		"is_cancelled", "days_until_checkin",
	}
	feesHeader = []string{
		"booking_id", "gross_booking_value", "base_price", "cleaning_fee_fixed",
		"host_platform_fee", "guest_service_fee", "payment_processing_fee",
		"net_payout_to_host",
	}
	costsHeader = []string{
		"booking_id", "cleaning_cost", "supplies_cost", "maintenance_allocation",
		"total_host_costs",
	}
)

// CSVWriter writes the raw and processed tables as headered CSV files
type CSVWriter struct {
	rawDir       string
	processedDir string
	logger       *utils.Logger
}

// NewCSVWriter creates a new CSVWriter
func NewCSVWriter(rawDir, processedDir string, logger *utils.Logger) *CSVWriter {
	return &CSVWriter{rawDir: rawDir, processedDir: processedDir, logger: logger}
}

// SaveRaw writes the six raw tables into the raw data directory
func (w *CSVWriter) SaveRaw(ds *models.Dataset) error {
	hostRows := make([][]string, 0, len(ds.Hosts))
	for _, h := range ds.Hosts {
		hostRows = append(hostRows, []string{
			h.HostID, h.Neighborhood, strconv.Itoa(h.HostSinceDays),
			fmtFloat(h.ResponseRate), strconv.Itoa(h.NumberOfListings),
			fmtFloat(h.AvgReviewRating), strconv.Itoa(h.ReviewCount),
		})
	}
	if err := w.writeTable(w.rawDir, "hosts.csv", hostsHeader, hostRows); err != nil {
		return err
	}

	listingRows := make([][]string, 0, len(ds.Listings))
	for _, l := range ds.Listings {
		listingRows = append(listingRows, []string{
			l.ListingID, l.HostID, l.PropertyType, l.RoomType, l.Neighborhood,
			strconv.Itoa(l.Beds), fmtFloat(l.PricePerNight),
			strconv.Itoa(l.MinimumNights), strconv.Itoa(l.Availability),
		})
	}
	if err := w.writeTable(w.rawDir, "listings.csv", listingsHeader, listingRows); err != nil {
		return err
	}

	guestRows := make([][]string, 0, len(ds.Guests))
	for _, g := range ds.Guests {
		guestRows = append(guestRows, []string{
			g.GuestID, g.Country, g.Verification,
			strconv.Itoa(g.TotalBookings), fmtFloat(g.AvgRatingGiven),
		})
	}
	if err := w.writeTable(w.rawDir, "guests.csv", guestsHeader, guestRows); err != nil {
		return err
	}

	bookingRows := make([][]string, 0, len(ds.Bookings))
	for _, b := range ds.Bookings {
		bookingRows = append(bookingRows, []string{
			b.BookingID, b.ListingID, b.HostID, b.GuestID,
			b.BookingDate.Format(dateLayout), b.CheckinDate.Format(dateLayout),
			b.CheckoutDate.Format(dateLayout), strconv.Itoa(b.LengthOfStay),
			fmtFloat(b.BasePricePerNight), fmtFloat(b.TotalBasePrice),
			b.RoomType, b.Neighborhood, fmtBool(b.IsCancelled),
			strconv.Itoa(b.DaysUntilCheckin),
		})
	}
	if err := w.writeTable(w.rawDir, "bookings.csv", bookingsHeader, bookingRows); err != nil {
		return err
	}

	feeRows := make([][]string, 0, len(ds.Fees))
	for _, f := range ds.Fees {
		feeRows = append(feeRows, []string{
			f.BookingID, fmtFloat(f.GrossBookingValue), fmtFloat(f.BasePrice),
			fmtFloat(f.CleaningFeeFixed), fmtFloat(f.HostPlatformFee),
			fmtFloat(f.GuestServiceFee), fmtFloat(f.PaymentProcessingFee),
			fmtFloat(f.NetPayoutToHost),
		})
	}
	if err := w.writeTable(w.rawDir, "booking_fees.csv", feesHeader, feeRows); err != nil {
		return err
	}

	costRows := make([][]string, 0, len(ds.Costs))
	for _, c := range ds.Costs {
		costRows = append(costRows, []string{
			c.BookingID, fmtFloat(c.CleaningCost), fmtFloat(c.SuppliesCost),
			fmtFloat(c.MaintenanceAllocation), fmtFloat(c.TotalHostCosts),
		})
	}
	return w.writeTable(w.rawDir, "host_costs.csv", costsHeader, costRows)
}

// SaveProcessed writes the margin fact table and the three rollups into the
// processed data directory
func (w *CSVWriter) SaveProcessed(
	margins []*models.BookingMargin,
	hostAggs []*models.HostProfitability,
	neighborhoods []*models.NeighborhoodAnalysis,
	roomTypes []*models.RoomTypeAnalysis,
) error {
	marginHeader := []string{
		"booking_id", "listing_id", "host_id", "guest_id", "booking_date",
		"checkin_date", "checkout_date", "length_of_stay_nights",
		"base_price_per_night", "total_base_price", "room_type", "neighborhood",
		"is_cancelled", "days_until_checkin", "gross_booking_value",
		"host_platform_fee", "guest_service_fee", "payment_processing_fee",
		"net_payout_to_host", "cleaning_cost", "supplies_cost",
		"maintenance_allocation", "total_host_costs", "property_type",
		"response_rate", "avg_review_rating", "net_host_margin",
		"net_margin_pct", "profitability_status", "booking_window_category",
		"month", "year", "season", "platform_fees_pct", "host_costs_pct",
		"cleaning_cost_pct", "is_repeat_guest",
	}
	marginRows := make([][]string, 0, len(margins))
	for _, m := range margins {
		marginRows = append(marginRows, []string{
			m.BookingID, m.ListingID, m.HostID, m.GuestID,
			m.BookingDate.Format(dateLayout), m.CheckinDate.Format(dateLayout),
			m.CheckoutDate.Format(dateLayout), strconv.Itoa(m.LengthOfStay),
			fmtFloat(m.BasePricePerNight), fmtFloat(m.TotalBasePrice),
			m.RoomType, m.Neighborhood, fmtBool(m.IsCancelled),
			strconv.Itoa(m.DaysUntilCheckin), fmtFloat(m.GrossBookingValue),
			fmtFloat(m.HostPlatformFee), fmtFloat(m.GuestServiceFee),
			fmtFloat(m.PaymentProcessingFee), fmtFloat(m.NetPayoutToHost),
			fmtFloat(m.CleaningCost), fmtFloat(m.SuppliesCost),
			fmtFloat(m.MaintenanceAllocation), fmtFloat(m.TotalHostCosts),
			m.PropertyType, fmtFloat(m.ResponseRate), fmtFloat(m.AvgReviewRating),
			fmtFloat(m.NetHostMargin), fmtFloat(m.NetMarginPct),
			m.ProfitabilityStatus, m.BookingWindowCategory,
			strconv.Itoa(m.Month), strconv.Itoa(m.Year), m.Season,
			fmtFloat(m.PlatformFeesPct), fmtFloat(m.HostCostsPct),
			fmtFloat(m.CleaningCostPct), fmtBool(m.IsRepeatGuest),
		})
	}
	if err := w.writeTable(w.processedDir, "booking_margins.csv", marginHeader, marginRows); err != nil {
		return err
	}

	hostHeader := []string{
		"host_id", "total_bookings", "total_gbv", "avg_gbv", "total_margin",
		"avg_margin", "avg_margin_pct", "cancellation_rate", "response_rate",
		"avg_rating", "cumsum_margin", "cumsum_pct", "pareto_classification",
	}
	hostRows := make([][]string, 0, len(hostAggs))
	for _, h := range hostAggs {
		hostRows = append(hostRows, []string{
			h.HostID, strconv.Itoa(h.TotalBookings), fmtFloat(h.TotalGBV),
			fmtFloat(h.AvgGBV), fmtFloat(h.TotalMargin), fmtFloat(h.AvgMargin),
			fmtFloat(h.AvgMarginPct), fmtFloat(h.CancellationRate),
			fmtFloat(h.ResponseRate), fmtFloat(h.AvgRating),
			fmtFloat(h.CumSumMargin), fmtFloat(h.CumSumPct), h.ParetoClassification,
		})
	}
	if err := w.writeTable(w.processedDir, "host_profitability.csv", hostHeader, hostRows); err != nil {
		return err
	}

	nbHeader := []string{
		"neighborhood", "total_bookings", "num_hosts", "num_listings",
		"total_gbv", "avg_gbv", "total_margin", "avg_margin", "avg_margin_pct",
		"cancellation_rate", "avg_nightly_rate", "market_saturation",
		"pct_profitable",
	}
	nbRows := make([][]string, 0, len(neighborhoods))
	for _, n := range neighborhoods {
		nbRows = append(nbRows, []string{
			n.Neighborhood, strconv.Itoa(n.TotalBookings),
			strconv.Itoa(n.NumHosts), strconv.Itoa(n.NumListings),
			fmtFloat(n.TotalGBV), fmtFloat(n.AvgGBV), fmtFloat(n.TotalMargin),
			fmtFloat(n.AvgMargin), fmtFloat(n.AvgMarginPct),
			fmtFloat(n.CancellationRate), fmtFloat(n.AvgNightlyRate),
			fmtFloat(n.MarketSaturation), fmtFloat(n.PctProfitable),
		})
	}
	if err := w.writeTable(w.processedDir, "neighborhood_analysis.csv", nbHeader, nbRows); err != nil {
		return err
	}

	rtHeader := []string{
		"room_type", "total_bookings", "num_hosts", "num_listings", "total_gbv",
		"avg_gbv", "total_margin", "avg_margin_per_booking", "avg_margin_pct",
		"cancellation_rate", "avg_nightly_rate", "avg_cleaning", "avg_supplies",
		"avg_total_costs",
	}
	rtRows := make([][]string, 0, len(roomTypes))
	for _, r := range roomTypes {
		rtRows = append(rtRows, []string{
			r.RoomType, strconv.Itoa(r.TotalBookings), strconv.Itoa(r.NumHosts),
			strconv.Itoa(r.NumListings), fmtFloat(r.TotalGBV), fmtFloat(r.AvgGBV),
			fmtFloat(r.TotalMargin), fmtFloat(r.AvgMarginPerBooked),
			fmtFloat(r.AvgMarginPct), fmtFloat(r.CancellationRate),
			fmtFloat(r.AvgNightlyRate), fmtFloat(r.AvgCleaning),
			fmtFloat(r.AvgSupplies), fmtFloat(r.AvgTotalCosts),
		})
	}
	return w.writeTable(w.processedDir, "room_type_analysis.csv", rtHeader, rtRows)
}

func (w *CSVWriter) writeTable(dir, name string, header []string, rows [][]string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(dir, name)
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write header of %s: %w", name, err)
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row of %s: %w", name, err)
		}
	}

	w.logger.Info("Wrote %s (%d rows)", path, len(rows))
	return nil
}

// fmtFloat renders a float in minimal round-trip form; NaN becomes an empty
// cell like the upstream tooling emits
func fmtFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func fmtBool(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// parseDate is the inverse of the writer's date format
func parseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}
