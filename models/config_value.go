package models

// ConfigValue is one scoped key/value pair of the config store.
type ConfigValue struct {
	Scope string `json:"scope"`
	Key   string `json:"key"`
	Value string `json:"value"`
}
