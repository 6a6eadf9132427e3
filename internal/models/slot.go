package models

// Slot is a derived, never persisted bookable time. Capacity fields are omitted for
// employee-scoped queries.
type Slot struct {
	Time          string `json:"time"`
	TotalCapacity *int   `json:"total_capacity,omitempty"`
	BookedCount   *int   `json:"booked_count,omitempty"`
	IsAvailable   bool   `json:"is_available"`
}
