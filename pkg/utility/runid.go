package utility

import (
	"github.com/google/uuid"
)

// RunID tags every log line and report of one experiment run.
type RunID = uuid.UUID

// NewRunID returns a time-ordered (v7) identifier.
func NewRunID() RunID {
	return uuid.Must(uuid.NewV7())
}
