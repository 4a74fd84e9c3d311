package openinghours

import "time"

// Status is the open/closed state of the location at EvaluatedAt.
type Status struct {
	Open        bool       `json:"open"`
	EvaluatedAt time.Time  `json:"evaluatedAt"`
	NextOpening *time.Time `json:"nextOpening,omitempty"`
}
