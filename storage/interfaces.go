package storage

import "margin-leakage/models"

// RawSink persists the six generated raw tables
type RawSink interface {
	SaveRaw(ds *models.Dataset) error
}

// ProcessedSink persists the derived margin table and its rollups
type ProcessedSink interface {
	SaveProcessed(
		margins []*models.BookingMargin,
		hostAggs []*models.HostProfitability,
		neighborhoods []*models.NeighborhoodAnalysis,
		roomTypes []*models.RoomTypeAnalysis,
	) error
}
