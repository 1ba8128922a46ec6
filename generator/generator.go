package generator

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"margin-leakage/models"
	"margin-leakage/utils"
)

// neighborhood base nightly prices for the 8 simulated markets
var neighborhoods = []string{
	"Manhattan", "Brooklyn", "Queens", "San Francisco",
	"Oakland", "Austin", "Denver", "Seattle",
}

var neighborhoodBasePrice = map[string]float64{
	"Manhattan":     200,
	"Brooklyn":      150,
	"Queens":        100,
	"San Francisco": 220,
	"Oakland":       120,
	"Austin":        140,
	"Denver":        130,
	"Seattle":       160,
}

var roomTypes = []string{"Entire home/apt", "Private room", "Shared room"}
var roomTypeWeights = []float64{0.5, 0.35, 0.15}

var propertyTypes = []string{
	"Apartment", "House", "Guesthouse", "Condo", "Loft", "Villa", "Studio",
}

var (
	dateStart = time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	dateEnd   = time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)
)

// Generator synthesizes the four base tables from a single seeded stream.
// Every sample comes from the one injected *rand.Rand, consumed in a fixed
// order (hosts, listings, guests, bookings), so two generators built with the
// same seed produce identical tables. Reordering any draw breaks that.
type Generator struct {
	rng    *rand.Rand
	logger *utils.Logger
}

// New creates a Generator with its own seeded random stream
func New(seed int64, logger *utils.Logger) *Generator {
	return &Generator{
		rng:    rand.New(rand.NewSource(seed)),
		logger: logger,
	}
}

// Rand exposes the generator's stream so downstream derivers (cost loss
// injection) can keep consuming the same sequence.
func (g *Generator) Rand() *rand.Rand {
	return g.rng
}

// Hosts generates n hosts with independently sampled attributes
func (g *Generator) Hosts(n int) []*models.Host {
	hosts := make([]*models.Host, 0, n)
	for i := 0; i < n; i++ {
		hosts = append(hosts, &models.Host{
			HostID:           fmt.Sprintf("HOST_%05d", i+1),
			Neighborhood:     neighborhoods[g.rng.Intn(len(neighborhoods))],
			HostSinceDays:    intBetween(g.rng, 100, 2500),
			ResponseRate:     floatBetween(g.rng, 75, 100),
			NumberOfListings: choiceInt(g.rng, []int{1, 2, 3}, []float64{0.6, 0.3, 0.1}),
			AvgReviewRating:  floatBetween(g.rng, 4.2, 5.0),
			ReviewCount:      intBetween(g.rng, 5, 200),
		})
	}
	g.logger.Info("Generated %d hosts", len(hosts))
	return hosts
}

// Listings emits each host's listings; price depends on the host's market,
// the room type and the host's review quality.
func (g *Generator) Listings(hosts []*models.Host) []*models.Listing {
	var listings []*models.Listing
	for _, host := range hosts {
		for j := 0; j < host.NumberOfListings; j++ {
			roomType := choiceString(g.rng, roomTypes, roomTypeWeights)
			base := neighborhoodBasePrice[host.Neighborhood]

			var factor float64
			switch roomType {
			case "Entire home/apt":
				factor = 1.5
			case "Private room":
				factor = 0.75
			default:
				factor = 0.4
			}
			price := base * factor * (0.9 + host.AvgReviewRating/10)

			beds := 1
			if roomType != "Shared room" {
				beds = choiceInt(g.rng, []int{1, 2, 3}, []float64{0.6, 0.3, 0.1})
			}

			listings = append(listings, &models.Listing{
				ListingID:     fmt.Sprintf("LIST_%s_%02d", host.HostID, j+1),
				HostID:        host.HostID,
				PropertyType:  propertyTypes[g.rng.Intn(len(propertyTypes))],
				RoomType:      roomType,
				Neighborhood:  host.Neighborhood,
				Beds:          beds,
				PricePerNight: roundCents(math.Max(30, price)),
				MinimumNights: choiceInt(g.rng, []int{1, 2, 3, 7, 30}, []float64{0.4, 0.3, 0.15, 0.1, 0.05}),
				Availability:  intBetween(g.rng, 100, 350),
			})
		}
	}
	g.logger.Info("Generated %d listings for %d hosts", len(listings), len(hosts))
	return listings
}

// Guests generates n guests; country skews heavily US across three bands
func (g *Generator) Guests(n int) []*models.Guest {
	countries := []string{"US", "US", "US", "CA", "UK", "AU"}
	countryWeights := []float64{0.5, 0.2, 0.1, 0.1, 0.05, 0.05}

	guests := make([]*models.Guest, 0, n)
	for i := 0; i < n; i++ {
		guests = append(guests, &models.Guest{
			GuestID:        fmt.Sprintf("GUEST_%05d", i+1),
			Country:        choiceString(g.rng, countries, countryWeights),
			Verification:   choiceString(g.rng, []string{"verified", "unverified"}, []float64{0.85, 0.15}),
			TotalBookings:  intBetween(g.rng, 1, 15),
			AvgRatingGiven: floatBetween(g.rng, 4.0, 5.0),
		})
	}
	g.logger.Info("Generated %d guests", len(guests))
	return guests
}

// Bookings runs n iterations; each picks a listing and a guest uniformly with
// replacement. An iteration whose checkin lands past year end is dropped
// without retry, before the length-of-stay and cancellation draws, so booking
// IDs keep the iteration number and the retained count is <= n.
func (g *Generator) Bookings(listings []*models.Listing, guests []*models.Guest, n int) []*models.Booking {
	var bookings []*models.Booking
	dropped := 0

	for i := 0; i < n; i++ {
		listing := listings[g.rng.Intn(len(listings))]
		guest := guests[g.rng.Intn(len(guests))]

		bookingDate := dateStart.AddDate(0, 0, g.rng.Intn(365))

		// lead time: exponential, mean 14 days, at least 1
		daysAdvance := int(g.rng.ExpFloat64() * 14)
		if daysAdvance < 1 {
			daysAdvance = 1
		}
		checkinDate := bookingDate.AddDate(0, 0, daysAdvance)

		if checkinDate.After(dateEnd) {
			dropped++
			continue
		}

		los := choiceInt(g.rng,
			[]int{1, 2, 3, 4, 5, 7, 14},
			[]float64{0.25, 0.25, 0.2, 0.1, 0.1, 0.07, 0.03})
		checkoutDate := checkinDate.AddDate(0, 0, los)

		actualPrice := listing.PricePerNight * SeasonalMultiplier(int(checkinDate.Month()))

		daysToCheckin := int(checkinDate.Sub(bookingDate).Hours() / 24)
		isCancelled := g.rng.Float64() < cancellationProb(daysToCheckin)

		bookings = append(bookings, &models.Booking{
			BookingID:         fmt.Sprintf("BOOKING_%07d", i+1),
			ListingID:         listing.ListingID,
			HostID:            listing.HostID,
			GuestID:           guest.GuestID,
			BookingDate:       bookingDate,
			CheckinDate:       checkinDate,
			CheckoutDate:      checkoutDate,
			LengthOfStay:      los,
			BasePricePerNight: roundCents(actualPrice),
			TotalBasePrice:    roundCents(actualPrice * float64(los)),
			RoomType:          listing.RoomType,
			Neighborhood:      listing.Neighborhood,
			IsCancelled:       isCancelled,
			DaysUntilCheckin:  daysToCheckin,
		})
	}

	g.logger.Info("Generated %d bookings (%d dropped past year end)", len(bookings), dropped)
	return bookings
}

// SeasonalMultiplier returns the demand multiplier for a checkin month:
// summer and December peak, spring/fall shoulder, the rest low season.
func SeasonalMultiplier(month int) float64 {
	switch month {
	case 6, 7, 8, 12:
		return 1.4
	case 3, 4, 5, 9, 10:
		return 1.1
	default:
		return 0.85
	}
}

// cancellation rates are higher for last-minute bookings
func cancellationProb(daysToCheckin int) float64 {
	switch {
	case daysToCheckin < 3:
		return 0.15
	case daysToCheckin < 7:
		return 0.10
	case daysToCheckin < 14:
		return 0.07
	case daysToCheckin < 30:
		return 0.05
	default:
		return 0.03
	}
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
