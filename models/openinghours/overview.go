package openinghours

// Overview is the weekly view of the opening hours.
type Overview struct {
	Days       []Day  `json:"days"`
	CurrentDay int    `json:"currentDay"`
	Editing    bool   `json:"editing"`
	Visibility string `json:"visibility,omitempty"`
}
