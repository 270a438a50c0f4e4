package models

import "time"

// Sample represents one historical observation for a team or player,
// as supplied by the stats provider. Samples are immutable once recorded
// and are always ordered most-recent-first.
type Sample struct {
	Date     time.Time          `json:"date" validate:"required"`
	Opponent string             `json:"opponent"`
	Stats    map[string]float64 `json:"stats" validate:"required"`
}

// Stat returns the value for the given stat key and whether it was recorded.
func (s *Sample) Stat(key string) (float64, bool) {
	v, ok := s.Stats[key]
	return v, ok
}

// HasStat checks whether the sample carries a value for the given stat key.
func (s *Sample) HasStat(key string) bool {
	_, ok := s.Stats[key]
	return ok
}
