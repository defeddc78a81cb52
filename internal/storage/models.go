package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// FillRun is one recorded autofill pass.
type FillRun struct {
	ID           string    `json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	Source       string    `json:"source"`
	FilledFields []string  `json:"filled_fields"`
	FilledCount  int       `json:"filled_count"`
}
