package regression

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrInvalidParams     = errors.New("invalid model parameters")
	ErrDimensionMismatch = errors.New("dimension mismatch")
	ErrInvalidOrder      = errors.New("invalid truncation order")
	ErrSingular          = errors.New("singular gram matrix")
	ErrIllConditioned    = errors.New("ill-conditioned gram matrix")
)

// ConditionError reports a normal-equation solve that could not be trusted.
// It unwraps to ErrSingular or ErrIllConditioned.
type ConditionError struct {
	Order     int
	Condition float64
	err       error
}

func (e *ConditionError) Error() string {
	if math.IsInf(e.Condition, 1) {
		return fmt.Sprintf("order %d: %v", e.Order, e.err)
	}
	return fmt.Sprintf("order %d: %v (condition number %.3g)", e.Order, e.err, e.Condition)
}

func (e *ConditionError) Unwrap() error {
	return e.err
}

func newConditionError(err error, order int, condition float64) *ConditionError {
	return &ConditionError{
		Order:     order,
		Condition: condition,
		err:       err,
	}
}

// IsConditionError reports whether err comes from an unusable Gram matrix.
func IsConditionError(err error) bool {
	return errors.Is(err, ErrSingular) || errors.Is(err, ErrIllConditioned)
}
