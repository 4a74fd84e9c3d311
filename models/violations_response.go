package models

// ViolationsResponse is returned by the calendar backend when it rejects a write,
// and by this service when a submitted slot does not validate.
type ViolationsResponse struct {
	Violations []string `json:"violations"`
}
