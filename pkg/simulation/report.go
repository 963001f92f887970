package simulation

import (
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"

	"github.com/peter-kozarec/biasvar/pkg/utility"
	"github.com/peter-kozarec/biasvar/pkg/utility/fixed"
)

const reportDigits = 6

type OrderResult struct {
	Order int
	Moments
	Regularized int // replicates solved through the ridge fallback
}

type Report struct {
	RunID         utility.RunID
	Configuration Configuration
	Truth         float64
	Results       []OrderResult // indexed by k-1
	Best          OrderResult   // argmin of MSE, lowest k on ties
	Elapsed       time.Duration
}

func newReport(runID utility.RunID, cfg Configuration, truth float64, results []OrderResult, elapsed time.Duration) *Report {
	r := &Report{
		RunID:         runID,
		Configuration: cfg,
		Truth:         truth,
		Results:       results,
		Elapsed:       elapsed,
	}
	if len(results) > 0 {
		r.Best = results[floats.MinIdx(r.MSE())]
	}
	return r
}

func (r *Report) Orders() []float64 {
	return r.collect(func(o OrderResult) float64 { return float64(o.Order) })
}

func (r *Report) Bias() []float64 {
	return r.collect(func(o OrderResult) float64 { return o.BiasSquared })
}

func (r *Report) Variance() []float64 {
	return r.collect(func(o OrderResult) float64 { return o.Variance })
}

func (r *Report) MSE() []float64 {
	return r.collect(func(o OrderResult) float64 { return o.MSE })
}

func (r *Report) collect(f func(OrderResult) float64) []float64 {
	out := make([]float64, len(r.Results))
	for i, o := range r.Results {
		out[i] = f(o)
	}
	return out
}

func (r *Report) Print(logger *zap.Logger) {
	logger = logger.With(zap.Stringer("run_id", r.RunID))

	for _, o := range r.Results {
		logger.Info("order statistics",
			zap.Int("k", o.Order),
			statField("bias2", o.BiasSquared),
			statField("variance", o.Variance),
			statField("mse", o.MSE),
			zap.Int("regularized", o.Regularized))
	}

	logger.Info("bias-variance tradeoff",
		statField("truth", r.Truth),
		zap.Int("best_k", r.Best.Order),
		statField("best_mse", r.Best.MSE),
		zap.Int("replicates", r.Configuration.Replicates),
		zap.Duration("elapsed", r.Elapsed))
}

// statField logs v at reportDigits, or as a raw float when it exceeds the
// decimal range.
func statField(key string, v float64) zap.Field {
	p, ok := fixed.TryFromFloat64(v)
	if !ok {
		return zap.Float64(key, v)
	}
	return zap.Stringer(key, p.Rescale(reportDigits))
}
