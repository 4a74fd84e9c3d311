package util

import (
	"encoding/json"
	"fmt"
	"os"

	"opening-hours/models/openinghours"
)

// ReadOpeningHoursEventsFromJSON loads a list of opening hours events from JSON on disk.
func ReadOpeningHoursEventsFromJSON(filePath string) ([]*openinghours.OpeningHoursEvent, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %q: %w", filePath, err)
	}
	var events []*openinghours.OpeningHoursEvent
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, fmt.Errorf("failed to unmarshal opening hours events: %w", err)
	}
	return events, nil
}

// ReadApplicationDataFromJSON loads the bulk application data document from JSON on disk.
func ReadApplicationDataFromJSON(filePath string) (*openinghours.ApplicationData, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %q: %w", filePath, err)
	}
	var appData openinghours.ApplicationData
	if err := json.Unmarshal(data, &appData); err != nil {
		return nil, fmt.Errorf("failed to unmarshal ApplicationData: %w", err)
	}
	return &appData, nil
}
