package simulation

import (
	"context"
	"errors"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gonum.org/v1/gonum/mat"

	"github.com/peter-kozarec/biasvar/pkg/regression"
)

func smallParams() regression.Params {
	return regression.Params{
		Observations: 40,
		Covariates:   6,
		Relevant:     3,
		SigmaX:       0.2,
		SigmaY:       1,
	}
}

func newExecutor(t *testing.T, opts ...Option) *MonteCarloExecutor {
	t.Helper()
	exec, err := NewMonteCarloExecutor(zap.NewNop(), NewConfiguration(opts...))
	require.NoError(t, err)
	return exec
}

func TestSimulation_Aggregate(t *testing.T) {
	m := Aggregate([]float64{1, 2, 3, 4}, 2)

	assert.InDelta(t, 2.5, m.Mean, 1e-15)
	assert.InDelta(t, 0.25, m.BiasSquared, 1e-15)
	assert.InDelta(t, 1.25, m.Variance, 1e-15)
	assert.InDelta(t, 1.5, m.MSE, 1e-15)
}

func TestSimulation_AggregateUnbiased(t *testing.T) {
	m := Aggregate([]float64{3, 3, 3}, 3)

	assert.Equal(t, 0.0, m.BiasSquared)
	assert.Equal(t, 0.0, m.Variance)
	assert.Equal(t, 0.0, m.MSE)
}

func TestSimulation_DefaultConfiguration(t *testing.T) {
	cfg := DefaultConfiguration()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, 300, cfg.Observations)
	assert.Equal(t, 20, cfg.Covariates)
	assert.Equal(t, 10, cfg.Relevant)
	assert.Equal(t, 0.2, cfg.SigmaX)
	assert.Equal(t, 3.0, cfg.SigmaY)
	assert.Equal(t, 5000, cfg.Replicates)
	assert.Equal(t, 1, cfg.Workers)
	assert.Equal(t, regression.SingularReject, cfg.SingularPolicy)
}

func TestSimulation_ConfigurationValidate(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
		ok   bool
	}{
		{name: "defaults", ok: true},
		{name: "one replicate", opts: []Option{WithReplicates(1)}},
		{name: "no workers", opts: []Option{WithWorkers(0)}},
		{name: "condition limit at one", opts: []Option{WithConditionLimit(1)}},
		{name: "ridge without lambda", opts: []Option{WithRidgeFallback(0)}},
		{name: "ridge with lambda", opts: []Option{WithRidgeFallback(1e-4)}, ok: true},
		{name: "bad params", opts: []Option{WithParams(regression.Params{Observations: 5, Covariates: 6, Relevant: 1, SigmaX: 1, SigmaY: 1})}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewConfiguration(tt.opts...).Validate()
			if tt.ok {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, regression.ErrInvalidParams)

			_, err = NewMonteCarloExecutor(zap.NewNop(), NewConfiguration(tt.opts...))
			require.ErrorIs(t, err, regression.ErrInvalidParams)
		})
	}
}

func TestSimulation_Truth(t *testing.T) {
	exec := newExecutor(t)
	assert.InDelta(t, 1.5, exec.Truth(), 1e-15)
}

func TestSimulation_ReportShape(t *testing.T) {
	exec := newExecutor(t, WithParams(smallParams()), WithReplicates(50), WithSeed(3))

	report, err := exec.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, report.Results, 6)
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6}, report.Orders())
	assert.Len(t, report.Bias(), 6)
	assert.Len(t, report.Variance(), 6)
	assert.Len(t, report.MSE(), 6)
	assert.Equal(t, exec.RunID(), report.RunID)
	assert.Equal(t, exec.Configuration(), report.Configuration)
	assert.Equal(t, 50, exec.Configuration().Replicates)

	for _, o := range report.Results {
		assert.InDelta(t, o.MSE, o.BiasSquared+o.Variance, 1e-12, "k=%d", o.Order)
		assert.Zero(t, o.Regularized)
		assert.LessOrEqual(t, report.Best.MSE, o.MSE)
	}

	report.Print(zap.NewNop())
}

func TestSimulation_PrintHugeStatistics(t *testing.T) {
	params := smallParams()
	params.SigmaY = 1e11
	exec := newExecutor(t, WithParams(params), WithReplicates(50), WithSeed(3))

	report, err := exec.Run(context.Background())
	require.NoError(t, err)
	require.Greater(t, report.Best.MSE, 1e19)

	core, logs := observer.New(zapcore.InfoLevel)
	require.NotPanics(t, func() { report.Print(zap.New(core)) })

	summary := logs.FilterMessage("bias-variance tradeoff").All()
	require.Len(t, summary, 1)
	fields := summary[0].ContextMap()
	assert.Equal(t, report.Best.MSE, fields["best_mse"])
	assert.Equal(t, "1.500000", fields["truth"])
	assert.Len(t, logs.FilterMessage("order statistics").All(), 6)
}

func TestSimulation_Reproducible(t *testing.T) {
	run := func(opts ...Option) *Report {
		base := []Option{WithParams(smallParams()), WithReplicates(100), WithSeed(99)}
		report, err := newExecutor(t, append(base, opts...)...).Run(context.Background())
		require.NoError(t, err)
		return report
	}

	first := run()
	second := run()
	parallel := run(WithWorkers(4))

	require.Equal(t, first.Bias(), second.Bias())
	require.Equal(t, first.Variance(), second.Variance())
	require.Equal(t, first.MSE(), second.MSE())

	require.Equal(t, first.Bias(), parallel.Bias())
	require.Equal(t, first.Variance(), parallel.Variance())
	require.Equal(t, first.MSE(), parallel.MSE())
	require.Equal(t, first.Best, parallel.Best)

	other := run(WithSeed(100))
	require.NotEqual(t, first.MSE(), other.MSE())
}

func TestSimulation_RunOrderMatchesRun(t *testing.T) {
	exec := newExecutor(t, WithParams(smallParams()), WithReplicates(30), WithSeed(5))

	report, err := exec.Run(context.Background())
	require.NoError(t, err)

	single, err := exec.RunOrder(context.Background(), 4)
	require.NoError(t, err)
	require.Equal(t, report.Results[3], single)
}

func TestSimulation_RunOrderInvalid(t *testing.T) {
	exec := newExecutor(t, WithParams(smallParams()), WithReplicates(10))

	_, err := exec.RunOrder(context.Background(), 0)
	require.ErrorIs(t, err, regression.ErrInvalidOrder)

	_, err = exec.RunOrder(context.Background(), 7)
	require.ErrorIs(t, err, regression.ErrInvalidOrder)
}

func TestSimulation_FullModelUnbiased(t *testing.T) {
	params := regression.Params{Observations: 60, Covariates: 4, Relevant: 4, SigmaX: 0.2, SigmaY: 1}
	exec := newExecutor(t, WithParams(params), WithReplicates(2000), WithSeed(11))

	res, err := exec.RunOrder(context.Background(), 4)
	require.NoError(t, err)
	assert.Less(t, res.BiasSquared, 0.01)
	assert.Greater(t, res.Variance, 0.0)
}

func TestSimulation_IllConditionedAborts(t *testing.T) {
	exec := newExecutor(t, WithParams(smallParams()), WithReplicates(20), WithConditionLimit(1.5))

	_, err := exec.Run(context.Background())
	require.Error(t, err)
	require.ErrorIs(t, err, regression.ErrIllConditioned)

	var repErr *ReplicateError
	require.True(t, errors.As(err, &repErr))
	assert.Equal(t, 1, repErr.Order)
	assert.Equal(t, 0, repErr.Replicate)
	assert.Contains(t, err.Error(), "order 1, replicate 0")
}

func TestSimulation_FitErrorIdentifiesReplicate(t *testing.T) {
	exec := newExecutor(t, WithParams(smallParams()), WithReplicates(20))

	next := exec.FitHandler
	calls := map[int]int{}
	exec.FitHandler = func(x *mat.Dense, y *mat.VecDense, k int) (*regression.Fit, error) {
		calls[k]++
		if k == 2 && calls[k] == 8 {
			return nil, regression.ErrSingular
		}
		return next(x, y, k)
	}

	_, err := exec.Run(context.Background())
	require.ErrorIs(t, err, regression.ErrSingular)

	var repErr *ReplicateError
	require.True(t, errors.As(err, &repErr))
	assert.Equal(t, 2, repErr.Order)
	assert.Equal(t, 7, repErr.Replicate)
}

func TestSimulation_RidgeFallbackCounted(t *testing.T) {
	exec := newExecutor(t, WithParams(smallParams()), WithReplicates(10), WithRidgeFallback(1e-3))

	next := exec.FitHandler
	exec.FitHandler = func(x *mat.Dense, y *mat.VecDense, k int) (*regression.Fit, error) {
		fit, err := next(x, y, k)
		if err == nil && k == 3 {
			fit.Regularized = true
		}
		return fit, err
	}

	report, err := exec.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10, report.Results[2].Regularized)
	assert.Equal(t, 0, report.Results[1].Regularized)
}

func TestSimulation_Canceled(t *testing.T) {
	exec := newExecutor(t, WithParams(smallParams()), WithReplicates(10))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := exec.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestSimulation_ReferenceExperiment(t *testing.T) {
	if testing.Short() {
		t.Skip("reference experiment runs 100000 fits")
	}

	exec := newExecutor(t, WithWorkers(runtime.NumCPU()))
	report, err := exec.Run(context.Background())
	require.NoError(t, err)

	mse := report.MSE()
	require.Len(t, mse, 20)

	best := report.Best.Order
	assert.GreaterOrEqual(t, best, 7)
	assert.LessOrEqual(t, best, 13)

	// Decreasing from k=1 and increasing towards k=p around the minimum.
	assert.Greater(t, mse[0], mse[best-1])
	assert.Greater(t, mse[19], mse[best-1])
	assert.Greater(t, mse[0], mse[4])
	assert.Greater(t, mse[4], mse[best-1])
	assert.Greater(t, mse[19], mse[14])

	// Omitted relevant covariates dominate the error at small k.
	assert.Greater(t, report.Results[0].BiasSquared, report.Results[0].Variance)
	assert.Less(t, report.Results[19].BiasSquared, report.Results[19].Variance)
}
