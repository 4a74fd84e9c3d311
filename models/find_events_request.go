package models

import "time"

// FindEventsRequest is the range query sent to the calendar backend.
type FindEventsRequest struct {
	Type      string    `json:"type"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
}
