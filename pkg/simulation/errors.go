package simulation

import "fmt"

// ReplicateError identifies the order and replicate at which a run aborted.
type ReplicateError struct {
	Order     int
	Replicate int
	Err       error
}

func (e *ReplicateError) Error() string {
	return fmt.Sprintf("order %d, replicate %d: %v", e.Order, e.Replicate, e.Err)
}

func (e *ReplicateError) Unwrap() error {
	return e.Err
}
