package models

import "time"

// EventRecord is the canonical event representation handed to the matcher.
// Providers report teams sometimes as bare strings and sometimes as nested
// objects; normalization into this record happens at the provider boundary
// so only one shape ever reaches the engine.
type EventRecord struct {
	SourceID  string     `json:"source_id"`
	HomeTeam  string     `json:"home_team" validate:"required"`
	AwayTeam  string     `json:"away_team" validate:"required"`
	League    string     `json:"league"`
	StartTime *time.Time `json:"start_time"`
}

// HasDate checks whether the record carries a start time
func (e *EventRecord) HasDate() bool {
	return e.StartTime != nil && !e.StartTime.IsZero()
}
