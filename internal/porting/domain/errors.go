package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// Record kinds reported by RecordError.
const (
	KindProject = "project"
	KindSecret  = "secret"
)

// RecordError names the record that aborted a batch.
type RecordError struct {
	Kind  string
	Index int
	ID    uuid.UUID
	Err   error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("%s %d (%s): %v", e.Kind, e.Index, e.ID, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}
