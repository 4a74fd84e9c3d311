package openinghours

// ApplicationData is the bulk payload shared by the whole application on load.
// OpeningHours is nil when the payload carries no opening hours.
type ApplicationData struct {
	OpeningHours []*OpeningHoursEvent `json:"openingHours,omitempty"`
}
