package main

import (
	"flag"
	"fmt"
	"os"

	"margin-leakage/config"
	"margin-leakage/generator"
	"margin-leakage/models"
	"margin-leakage/services"
	"margin-leakage/storage"
	"margin-leakage/utils"
)

func main() {
	reload := flag.Bool("reload", false, "drop DB tables, reload CSVs and re-run the SQL pipeline")
	flag.Parse()

	// ================== Bootstrap ====================
	cfg := config.Load()
	logger := utils.NewLogger(cfg.Debug)

	logger.Info("Booking Margin Leakage Analyzer")

	if *reload {
		runReload(cfg, logger)
		return
	}
	runPipeline(cfg, logger)
}

// runPipeline is the default run: synthesize the dataset, derive margins and
// rollups, write CSVs, feed Postgres and print the KPI report
func runPipeline(cfg *config.Config, logger *utils.Logger) {
	logger.Info("Seed: %d | Hosts: %d | Guests: %d | Bookings: %d | Loss injection: %v",
		cfg.Seed, cfg.NHosts, cfg.NGuests, cfg.NBookings, cfg.LossInjection)

	// =============== Generation ===================================
	gen := generator.New(cfg.Seed, logger)
	hosts := gen.Hosts(cfg.NHosts)
	listings := gen.Listings(hosts)
	guests := gen.Guests(cfg.NGuests)
	bookings := gen.Bookings(listings, guests, cfg.NBookings)

	// =============== Derivation ===================================
	fees := services.DeriveBookingFees(bookings)
	costDeriver := services.NewCostDeriver(gen.Rand(), cfg.LossInjection, logger)
	costs := costDeriver.Derive(bookings)

	// =============== Feature engineering ==========================
	engineer := services.NewMarginFeatureEngineer(logger)
	margins := engineer.CreateBookingMargins(bookings, fees, costs, listings, hosts)
	hostAggs := engineer.HostAggregates(margins)
	neighborhoodAggs := engineer.NeighborhoodAggregates(margins)
	roomAggs := engineer.RoomTypeAnalysis(margins)

	// ========= CSV: raw + processed ===============================
	csvWriter := storage.NewCSVWriter(cfg.RawDataDir, cfg.ProcessedDataDir, logger)
	dataset := newDataset(hosts, listings, guests, bookings, fees, costs)
	if err := csvWriter.SaveRaw(dataset); err != nil {
		logger.Error("Failed to write raw CSVs: %v", err)
		os.Exit(1)
	}
	if err := csvWriter.SaveProcessed(margins, hostAggs, neighborhoodAggs, roomAggs); err != nil {
		logger.Error("Failed to write processed CSVs: %v", err)
		os.Exit(1)
	}

	// ========= PostgreSQL + SQL pipeline ==========================
	if cfg.DatabaseURL == "" {
		logger.Warn("DATABASE_URL not set, skipping relational sink")
	} else {
		pgWriter, err := storage.NewPostgresWriter(cfg.DatabaseURL, cfg.MaxRetries, logger)
		if err != nil {
			logger.Error("Cannot connect to PostgreSQL: %v", err)
			os.Exit(1)
		}
		defer pgWriter.Close()

		if err := pgWriter.CreateSchema(); err != nil {
			logger.Error("Failed to create schema: %v", err)
			os.Exit(1)
		}
		if err := pgWriter.LoadDataset(dataset); err != nil {
			logger.Error("Failed to load dataset: %v", err)
			os.Exit(1)
		}

		runner := storage.NewSQLRunner(pgWriter.DB(), logger)
		if err := runner.RunLayers(cfg.SQLDir); err != nil {
			logger.Error("SQL pipeline: %v", err)
			os.Exit(1)
		}
	}

	// ==== Report ==================================================
	summary := services.BuildKPISummary(margins)
	services.PrintKPISummary(summary)

	fmt.Println(" Done! Raw data →", cfg.RawDataDir)
	fmt.Println(" Processed data →", cfg.ProcessedDataDir)
}

// runReload is the maintenance workflow: drop everything, reload the CSVs
// from disk (partial dataset tolerated), re-run the SQL layers best-effort
// and verify the marts. Exits non-zero if any step failed.
func runReload(cfg *config.Config, logger *utils.Logger) {
	logger.Info("Full database reload")

	if cfg.DatabaseURL == "" {
		logger.Error("DATABASE_URL is required for reload")
		os.Exit(1)
	}

	pgWriter, err := storage.NewPostgresWriter(cfg.DatabaseURL, cfg.MaxRetries, logger)
	if err != nil {
		logger.Error("Cannot connect to PostgreSQL: %v", err)
		os.Exit(1)
	}
	defer pgWriter.Close()

	failed := false

	// =============== Step 1: drop tables ==========================
	if err := pgWriter.DropAllTables(); err != nil {
		logger.Error("Drop step failed: %v", err)
		failed = true
	}

	// =============== Step 2: reload CSVs ==========================
	reader := storage.NewCSVReader(cfg.RawDataDir, logger)
	dataset, err := reader.LoadRaw()
	if err != nil {
		logger.Error("CSV load failed: %v", err)
		failed = true
	} else {
		if err := pgWriter.CreateSchema(); err != nil {
			logger.Error("Schema step failed: %v", err)
			failed = true
		} else if err := pgWriter.LoadDataset(dataset); err != nil {
			logger.Error("Load step failed: %v", err)
			failed = true
		}
	}

	// =============== Step 3: SQL pipeline =========================
	runner := storage.NewSQLRunner(pgWriter.DB(), logger)
	if err := runner.RunLayers(cfg.SQLDir); err != nil {
		logger.Error("SQL pipeline: %v", err)
		failed = true
	}

	// =============== Step 4: verify ===============================
	if err := pgWriter.VerifyMarts(); err != nil {
		logger.Error("Verification: %v", err)
		failed = true
	}

	if failed {
		logger.Error("Reload finished with errors")
		os.Exit(1)
	}
	logger.Info("Reload finished")
}

func newDataset(
	hosts []*models.Host,
	listings []*models.Listing,
	guests []*models.Guest,
	bookings []*models.Booking,
	fees []*models.BookingFee,
	costs []*models.HostCost,
) *models.Dataset {
	return &models.Dataset{
		Hosts:    hosts,
		Listings: listings,
		Guests:   guests,
		Bookings: bookings,
		Fees:     fees,
		Costs:    costs,
	}
}
