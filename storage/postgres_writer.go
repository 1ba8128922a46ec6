package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"margin-leakage/models"
	"margin-leakage/utils"

	_ "github.com/lib/pq"
)

// PostgresWriter is the relational sink: it owns the schema for the six raw
// tables and loads a dataset in bulk. The layered SQL pipeline runs on top
// of the tables it creates.
type PostgresWriter struct {
	db     *sql.DB
	logger *utils.Logger
}

// NewPostgresWriter opens a connection and pings the DB with bounded retry
func NewPostgresWriter(connStr string, maxRetries int, logger *utils.Logger) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open DB: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Minute * 5)

	if err := utils.RetryWithBackoff("db ping", maxRetries, db.Ping, logger); err != nil {
		return nil, fmt.Errorf("failed to reach DB: %w", err)
	}

	logger.Info("Connected to PostgreSQL successfully")
	return &PostgresWriter{db: db, logger: logger}, nil
}

// DB exposes the connection for the SQL pipeline runner
func (w *PostgresWriter) DB() *sql.DB {
	return w.db
}

// CreateSchema creates the six raw tables if they don't exist
func (w *PostgresWriter) CreateSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS hosts (
		host_id            VARCHAR(20) PRIMARY KEY,
		neighborhood       VARCHAR(50)   NOT NULL,
		host_since_days    INTEGER       NOT NULL,
		response_rate      NUMERIC(8,4)  NOT NULL,
		number_of_listings INTEGER       NOT NULL,
		avg_review_rating  NUMERIC(6,4)  NOT NULL,
		review_count       INTEGER       NOT NULL
	);

	CREATE TABLE IF NOT EXISTS listings (
		listing_id      VARCHAR(40) PRIMARY KEY,
		host_id         VARCHAR(20)   NOT NULL,
		property_type   VARCHAR(30)   NOT NULL,
		room_type       VARCHAR(30)   NOT NULL,
		neighborhood    VARCHAR(50)   NOT NULL,
		beds            INTEGER       NOT NULL,
		price_per_night NUMERIC(10,2) NOT NULL,
		minimum_nights  INTEGER       NOT NULL,
		availability_365 INTEGER      NOT NULL
	);

	CREATE TABLE IF NOT EXISTS guests (
		guest_id         VARCHAR(20) PRIMARY KEY,
		country          VARCHAR(10)  NOT NULL,
		verification     VARCHAR(15)  NOT NULL,
		total_bookings   INTEGER      NOT NULL,
		avg_rating_given NUMERIC(6,4) NOT NULL
	);

	CREATE TABLE IF NOT EXISTS bookings (
		booking_id            VARCHAR(20) PRIMARY KEY,
		listing_id            VARCHAR(40)   NOT NULL,
		host_id               VARCHAR(20)   NOT NULL,
		guest_id              VARCHAR(20)   NOT NULL,
		booking_date          DATE          NOT NULL,
		checkin_date          DATE          NOT NULL,
		checkout_date         DATE          NOT NULL,
		length_of_stay_nights INTEGER       NOT NULL,
		base_price_per_night  NUMERIC(10,2) NOT NULL,
		total_base_price      NUMERIC(10,2) NOT NULL,
		room_type             VARCHAR(30)   NOT NULL,
		neighborhood          VARCHAR(50)   NOT NULL,
		is_cancelled          SMALLINT      NOT NULL,
		days_until_checkin    INTEGER       NOT NULL
	);

	CREATE TABLE IF NOT EXISTS booking_fees (
		booking_id             VARCHAR(20) PRIMARY KEY,
		gross_booking_value    NUMERIC(12,2) NOT NULL,
		base_price             NUMERIC(10,2) NOT NULL,
		cleaning_fee_fixed     NUMERIC(10,2) NOT NULL,
		host_platform_fee      NUMERIC(10,2) NOT NULL,
		guest_service_fee      NUMERIC(10,2) NOT NULL,
		payment_processing_fee NUMERIC(10,2) NOT NULL,
		net_payout_to_host     NUMERIC(12,2) NOT NULL
	);

	CREATE TABLE IF NOT EXISTS host_costs (
		booking_id             VARCHAR(20) PRIMARY KEY,
		cleaning_cost          NUMERIC(10,2) NOT NULL,
		supplies_cost          NUMERIC(10,2) NOT NULL,
		maintenance_allocation NUMERIC(10,2) NOT NULL,
		total_host_costs       NUMERIC(10,2) NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_listings_host     ON listings (host_id);
	CREATE INDEX IF NOT EXISTS idx_bookings_listing  ON bookings (listing_id);
	CREATE INDEX IF NOT EXISTS idx_bookings_host     ON bookings (host_id);
	CREATE INDEX IF NOT EXISTS idx_bookings_guest    ON bookings (guest_id);
	CREATE INDEX IF NOT EXISTS idx_bookings_checkin  ON bookings (checkin_date);
	`
	if _, err := w.db.Exec(query); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	w.logger.Info("Raw tables are ready")
	return nil
}

// LoadDataset replaces the contents of the raw tables with the dataset.
// Each table loads in its own transaction; nil tables are skipped.
func (w *PostgresWriter) LoadDataset(ds *models.Dataset) error {
	if ds.Hosts != nil {
		rows := make([][]interface{}, 0, len(ds.Hosts))
		for _, h := range ds.Hosts {
			rows = append(rows, []interface{}{
				h.HostID, h.Neighborhood, h.HostSinceDays, h.ResponseRate,
				h.NumberOfListings, h.AvgReviewRating, h.ReviewCount,
			})
		}
		if err := w.loadTable("hosts", hostsHeader, rows); err != nil {
			return err
		}
	}

	if ds.Listings != nil {
		rows := make([][]interface{}, 0, len(ds.Listings))
		for _, l := range ds.Listings {
			rows = append(rows, []interface{}{
				l.ListingID, l.HostID, l.PropertyType, l.RoomType,
				l.Neighborhood, l.Beds, l.PricePerNight, l.MinimumNights,
				l.Availability,
			})
		}
		if err := w.loadTable("listings", listingsHeader, rows); err != nil {
			return err
		}
	}

	if ds.Guests != nil {
		rows := make([][]interface{}, 0, len(ds.Guests))
		for _, g := range ds.Guests {
			rows = append(rows, []interface{}{
				g.GuestID, g.Country, g.Verification, g.TotalBookings,
				g.AvgRatingGiven,
			})
		}
		if err := w.loadTable("guests", guestsHeader, rows); err != nil {
			return err
		}
	}

	if ds.Bookings != nil {
		rows := make([][]interface{}, 0, len(ds.Bookings))
		for _, b := range ds.Bookings {
			cancelled := 0
			if b.IsCancelled {
				cancelled = 1
			}
			rows = append(rows, []interface{}{
				b.BookingID, b.ListingID, b.HostID, b.GuestID, b.BookingDate,
				b.CheckinDate, b.CheckoutDate, b.LengthOfStay,
				b.BasePricePerNight, b.TotalBasePrice, b.RoomType,
				b.Neighborhood, cancelled, b.DaysUntilCheckin,
			})
		}
		if err := w.loadTable("bookings", bookingsHeader, rows); err != nil {
			return err
		}
	}

	if ds.Fees != nil {
		rows := make([][]interface{}, 0, len(ds.Fees))
		for _, f := range ds.Fees {
			rows = append(rows, []interface{}{
				f.BookingID, f.GrossBookingValue, f.BasePrice,
				f.CleaningFeeFixed, f.HostPlatformFee, f.GuestServiceFee,
				f.PaymentProcessingFee, f.NetPayoutToHost,
			})
		}
		if err := w.loadTable("booking_fees", feesHeader, rows); err != nil {
			return err
		}
	}

	if ds.Costs != nil {
		rows := make([][]interface{}, 0, len(ds.Costs))
		for _, c := range ds.Costs {
			rows = append(rows, []interface{}{
				c.BookingID, c.CleaningCost, c.SuppliesCost,
				c.MaintenanceAllocation, c.TotalHostCosts,
			})
		}
		if err := w.loadTable("host_costs", costsHeader, rows); err != nil {
			return err
		}
	}

	return nil
}

// loadTable truncates a table and inserts all rows in one transaction
func (w *PostgresWriter) loadTable(table string, columns []string, rows [][]interface{}) error {
	tx, err := w.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction for %s: %w", table, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.Exec(fmt.Sprintf("TRUNCATE TABLE %s", table)); err != nil {
		return fmt.Errorf("failed to truncate %s: %w", table, err)
	}

	placeholders := make([]string, len(columns))
	for i := range columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	stmt, err := tx.Prepare(fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(columns, ", "), strings.Join(placeholders, ", "),
	))
	if err != nil {
		return fmt.Errorf("failed to prepare insert for %s: %w", table, err)
	}
	defer stmt.Close()

	inserted := 0
	for _, row := range rows {
		if _, err := stmt.Exec(row...); err != nil {
			w.logger.Warn("Skipping row in %s: %v", table, err)
			continue
		}
		inserted++
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit %s: %w", table, err)
	}

	w.logger.Info("Loaded %d/%d rows into %s", inserted, len(rows), table)
	return nil
}

// DropAllTables drops every table in the public schema. Used by the reload
// workflow before a clean re-load.
func (w *PostgresWriter) DropAllTables() error {
	rows, err := w.db.Query(
		"SELECT tablename FROM pg_tables WHERE schemaname = 'public'")
	if err != nil {
		return fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return fmt.Errorf("failed to scan table name: %w", err)
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate tables: %w", err)
	}

	if len(tables) == 0 {
		w.logger.Info("No tables found")
		return nil
	}

	for _, table := range tables {
		if _, err := w.db.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", table)); err != nil {
			w.logger.Warn("Failed to drop %s: %v", table, err)
			continue
		}
		w.logger.Info("Dropped %s", table)
	}
	return nil
}

// VerifyMarts spot-checks the KPI marts built by the SQL pipeline
func (w *PostgresWriter) VerifyMarts() error {
	for _, table := range []string{"kpi_profitability_distribution", "kpi_revenue_overview"} {
		var count int
		if err := w.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&count); err != nil {
			return fmt.Errorf("verification of %s failed: %w", table, err)
		}
		if count == 0 {
			return fmt.Errorf("verification failed: %s is empty", table)
		}
		w.logger.Info("%s: %d rows", table, count)
	}
	return nil
}

// Close closes the database connection
func (w *PostgresWriter) Close() {
	if w.db != nil {
		_ = w.db.Close()
	}
}
