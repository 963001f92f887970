package middleware

import (
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/peter-kozarec/biasvar/pkg/regression"
	"github.com/peter-kozarec/biasvar/pkg/simulation"
)

// Performance accumulates the wall time spent inside the fit handler.
type Performance struct {
	logger *zap.Logger

	totalFitDur atomic.Int64
	fitCount    atomic.Int64
}

func NewPerformance(logger *zap.Logger) *Performance {
	return &Performance{
		logger: logger,
	}
}

func (p *Performance) WithFit(handler simulation.FitHandler) simulation.FitHandler {
	return func(x *mat.Dense, y *mat.VecDense, k int) (*regression.Fit, error) {
		startTime := time.Now()
		fit, err := handler(x, y, k)
		p.totalFitDur.Add(int64(time.Since(startTime)))
		p.fitCount.Add(1)
		return fit, err
	}
}

func (p *Performance) TotalFitDuration() time.Duration {
	return time.Duration(p.totalFitDur.Load())
}

func (p *Performance) PrintStatistics() {
	total := p.TotalFitDuration()
	count := p.fitCount.Load()

	var avg time.Duration
	if count > 0 {
		avg = total / time.Duration(count)
	}

	p.logger.Info("fit handler performance",
		zap.Duration("total", total),
		zap.Int64("calls", count),
		zap.Duration("avg", avg))
}
