package monitor

import "time"

type Status struct {
	PostgreSQL   bool      `json:"postgresql"`
	Redis        bool      `json:"redis"`
	RedisEnabled bool      `json:"redis_enabled"`
	Journal      bool      `json:"journal"`
	JournalSize  int       `json:"journal_size"`
	LastCheck    time.Time `json:"last_check"`
}

// Healthy reports whether the primary store is reachable. The cache and the
// journal are optional and only degrade the service.
func (s Status) Healthy() bool {
	return s.PostgreSQL
}
