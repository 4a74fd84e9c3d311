package openinghours

// Day groups the slots of one ISO weekday (1 = Monday ... 7 = Sunday).
type Day struct {
	ID    int                  `json:"id"`
	Slots []*OpeningHoursEvent `json:"slots"`
}
