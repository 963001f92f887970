package middleware

import (
	"errors"
	"sync/atomic"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/peter-kozarec/biasvar/pkg/regression"
	"github.com/peter-kozarec/biasvar/pkg/simulation"
)

// Telemetry counts fit outcomes. Safe for concurrent workers.
type Telemetry struct {
	logger *zap.Logger

	fitCounter            atomic.Int64
	regularizedCounter    atomic.Int64
	singularCounter       atomic.Int64
	illConditionedCounter atomic.Int64
	failureCounter        atomic.Int64
}

func NewTelemetry(logger *zap.Logger) *Telemetry {
	return &Telemetry{
		logger: logger,
	}
}

func (t *Telemetry) WithFit(handler simulation.FitHandler) simulation.FitHandler {
	return func(x *mat.Dense, y *mat.VecDense, k int) (*regression.Fit, error) {
		t.fitCounter.Add(1)
		fit, err := handler(x, y, k)
		switch {
		case err == nil:
			if fit.Regularized {
				t.regularizedCounter.Add(1)
			}
		case errors.Is(err, regression.ErrSingular):
			t.singularCounter.Add(1)
			t.failureCounter.Add(1)
		case errors.Is(err, regression.ErrIllConditioned):
			t.illConditionedCounter.Add(1)
			t.failureCounter.Add(1)
		default:
			t.failureCounter.Add(1)
		}
		return fit, err
	}
}

func (t *Telemetry) Fits() int64        { return t.fitCounter.Load() }
func (t *Telemetry) Regularized() int64 { return t.regularizedCounter.Load() }
func (t *Telemetry) Failures() int64    { return t.failureCounter.Load() }

func (t *Telemetry) PrintStatistics() {
	t.logger.Info("fit statistics",
		zap.Int64("fits", t.fitCounter.Load()),
		zap.Int64("regularized", t.regularizedCounter.Load()),
		zap.Int64("singular", t.singularCounter.Load()),
		zap.Int64("ill_conditioned", t.illConditionedCounter.Load()),
		zap.Int64("failures", t.failureCounter.Load()))
}
