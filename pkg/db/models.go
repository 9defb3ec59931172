package db

import (
	"fmt"
	"time"
)

// CheckInStatus is a client's attendance state for a tour
type CheckInStatus string

const (
	// StatusPending is the implicit default before a client is checked in
	StatusPending   CheckInStatus = ""
	StatusCheckedIn CheckInStatus = "checked-in"
	StatusNoShow    CheckInStatus = "no-show"
)

// ParseCheckInStatus converts user input into a writable CheckInStatus.
// Only checked-in and no-show can be written; pending is never set explicitly.
func ParseCheckInStatus(s string) (CheckInStatus, error) {
	switch CheckInStatus(s) {
	case StatusCheckedIn, StatusNoShow:
		return CheckInStatus(s), nil
	default:
		return "", fmt.Errorf("invalid check-in status %q (expected %q or %q)", s, StatusCheckedIn, StatusNoShow)
	}
}

// Tour represents a scheduled guided tour with its guide and clients
type Tour struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Date      time.Time    `json:"date"`
	GuideID   string       `json:"guide_id,omitempty"`
	Guide     *TourGuide   `json:"guide,omitempty"`
	Clients   []TourClient `json:"clients"`
	CreatedAt time.Time    `json:"created_at"`
}

// TourGuide represents a guide record embedded in a fetched tour
type TourGuide struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// TourClient represents a client registered on a tour
type TourClient struct {
	ID            string        `json:"id"`
	TourID        string        `json:"tour_id"`
	Name          string        `json:"name"`
	Email         string        `json:"email,omitempty"`
	CheckInStatus CheckInStatus `json:"check_in_status,omitempty"`
}

// Table names watched by change feeds
const (
	TableTours       = "tours"
	TableTourClients = "tour_clients"
	TableTourGuides  = "tour_guides"
)

// ChangeEvent describes a single row-level mutation on a watched table
type ChangeEvent struct {
	Table     string `json:"table"`
	Operation string `json:"op"`
	RowID     string `json:"id"`
}
