package services

import (
	"fmt"
	"strings"

	"margin-leakage/models"
)

// PrintKPISummary formats and prints the margin leakage KPI report to terminal
func PrintKPISummary(s models.KPISummary) {
	border := strings.Repeat("═", 55)
	thin := strings.Repeat("─", 55)

	fmt.Printf("\n╔%s╗\n", border)
	fmt.Printf("║%s║\n", center("BOOKING MARGIN LEAKAGE - KPI SUMMARY ", 55))
	fmt.Printf("╚%s╝\n", border)

	fmt.Printf("\n VOLUME\n%s\n", thin)
	fmt.Printf("  Total Bookings          : %d\n", s.TotalBookings)
	fmt.Printf("  Active Hosts            : %d\n", s.ActiveHosts)
	fmt.Printf("  Active Guests           : %d\n", s.ActiveGuests)

	fmt.Printf("\n REVENUE\n%s\n", thin)
	fmt.Printf("  Gross Booking Value     : $%.0f\n", s.Waterfall.GrossBookingValue)
	fmt.Printf("  Avg Booking Value       : $%.2f\n", s.AvgBookingValue)
	fmt.Printf("  Avg Nightly Rate        : $%.2f\n", s.AvgNightlyRate)

	fmt.Printf("\n FEES & COSTS (%% of GBV)\n%s\n", thin)
	fmt.Printf("  Platform Fees           : %.1f%%\n", s.Waterfall.PlatformFeesPct)
	fmt.Printf("  Host Costs              : %.1f%%\n", s.Waterfall.HostCostsPct)
	fmt.Printf("  Net Margin              : %.1f%%\n", s.Waterfall.NetMarginPct)

	fmt.Printf("\n PROFITABILITY\n%s\n", thin)
	fmt.Printf("  Profitable              : %d (%.1f%%)\n", s.Profitability.Profitable, s.Profitability.ProfitablePct)
	fmt.Printf("  Loss-Making             : %d (%.1f%%)\n", s.Profitability.LossMaking, s.Profitability.LossMakingPct)
	fmt.Printf("  Breakeven               : %d (%.1f%%)\n", s.Profitability.Breakeven, s.Profitability.BreakevenPct)
	fmt.Printf("  Avg Net Margin          : $%.2f\n", s.AvgNetMargin)
	fmt.Printf("  Avg Margin %%            : %.1f%%\n", s.AvgMarginPct)

	fmt.Printf("\n CANCELLATIONS\n%s\n", thin)
	fmt.Printf("  Rate                    : %.1f%%\n", s.Cancellations.CancellationRatePct)
	fmt.Printf("  GBV Lost                : $%.0f\n", s.Cancellations.GBVLost)
	fmt.Printf("  Margin Lost             : $%.0f (%.1f%% of total)\n", s.Cancellations.MarginLost, s.Cancellations.MarginLostPct)

	fmt.Printf("\n CONCENTRATION (80/20)\n%s\n", thin)
	fmt.Printf("  Top 20%% bookings        : %.1f%% of margin\n", s.Pareto.Top20PctContribute)
	fmt.Printf("  Top 10%% bookings        : %.1f%% of margin\n", s.Pareto.Top10PctContribute)
	fmt.Printf("  Level                   : %s\n", s.Pareto.ConcentrationLevel)

	if len(s.ByRoomType) > 0 {
		fmt.Printf("\n BY ROOM TYPE\n%s\n", thin)
		for _, rt := range s.ByRoomType {
			fmt.Printf("  %-25s %6.1f%% margin  %5.1f%% cancel\n",
				truncate(rt.Segment, 25)+":", rt.AvgMarginPct, rt.CancelRate*100)
		}
	}

	fmt.Printf("\n%s\n\n", border)
}

func center(s string, width int) string {
	runes := []rune(s)
	if len(runes) >= width {
		return s
	}
	pad := (width - len(runes)) / 2
	return strings.Repeat(" ", pad) + s + strings.Repeat(" ", width-len(runes)-pad)
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
