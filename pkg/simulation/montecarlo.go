package simulation

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"github.com/peter-kozarec/biasvar/pkg/regression"
	"github.com/peter-kozarec/biasvar/pkg/utility"
)

// cancellation is polled once per this many replicates
const ctxCheckInterval = 64

// FitHandler fits the order-k truncated model to one replicate.
type FitHandler func(x *mat.Dense, y *mat.VecDense, k int) (*regression.Fit, error)

type MonteCarloExecutor struct {
	logger *zap.Logger
	cfg    Configuration
	runID  utility.RunID

	beta  *mat.VecDense
	x0    *mat.VecDense
	truth float64

	// FitHandler may be wrapped by middleware before Run is called.
	FitHandler FitHandler
}

func NewMonteCarloExecutor(logger *zap.Logger, cfg Configuration) (*MonteCarloExecutor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	beta := regression.TrueCoefficients(cfg.Covariates, cfg.Relevant)
	x0 := regression.EvaluationPoint(cfg.Covariates)
	estimator := regression.NewEstimator(cfg.Covariates, cfg.estimatorOptions()...)
	runID := utility.NewRunID()

	return &MonteCarloExecutor{
		logger:     logger.With(zap.Stringer("run_id", runID)),
		cfg:        cfg,
		runID:      runID,
		beta:       beta,
		x0:         x0,
		truth:      mat.Dot(x0, beta),
		FitHandler: estimator.Fit,
	}, nil
}

func (e *MonteCarloExecutor) Configuration() Configuration { return e.cfg }
func (e *MonteCarloExecutor) RunID() utility.RunID         { return e.runID }

// Truth is the noiseless response x_0ᵀ·beta.
func (e *MonteCarloExecutor) Truth() float64 { return e.truth }

// RunOrder draws M replicates for order k and reduces their predictions.
// Order k always samples from the stream (Seed, k), so its result does not
// depend on which other orders run or in what sequence.
func (e *MonteCarloExecutor) RunOrder(ctx context.Context, k int) (OrderResult, error) {
	if k < 1 || k > e.cfg.Covariates {
		return OrderResult{}, fmt.Errorf("%w: %d not in [1, %d]", regression.ErrInvalidOrder, k, e.cfg.Covariates)
	}

	src := rand.NewPCG(e.cfg.Seed, uint64(k))
	design, err := regression.NewDesignGenerator(e.cfg.Params, src)
	if err != nil {
		return OrderResult{}, err
	}
	response := regression.NewResponseGenerator(e.beta, e.cfg.SigmaY, src)

	start := time.Now()
	x := mat.NewDense(e.cfg.Observations, e.cfg.Covariates+1, nil)
	predictions := make([]float64, e.cfg.Replicates)
	regularized := 0

	for m := range predictions {
		if m%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return OrderResult{}, err
			}
		}

		design.GenerateTo(x)
		y, err := response.Generate(x)
		if err != nil {
			return OrderResult{}, &ReplicateError{Order: k, Replicate: m, Err: err}
		}

		fit, err := e.FitHandler(x, y, k)
		if err != nil {
			return OrderResult{}, &ReplicateError{Order: k, Replicate: m, Err: err}
		}
		if fit.Regularized {
			regularized++
		}
		predictions[m] = fit.Predict(e.x0)
	}

	result := OrderResult{
		Order:       k,
		Moments:     Aggregate(predictions, e.truth),
		Regularized: regularized,
	}

	e.logger.Debug("order done",
		zap.Int("k", k),
		zap.Float64("bias2", result.BiasSquared),
		zap.Float64("variance", result.Variance),
		zap.Float64("mse", result.MSE),
		zap.Int("regularized", regularized),
		zap.Duration("elapsed", time.Since(start)))

	return result, nil
}

// Run evaluates every order 1..p and returns the report once all of them
// have finished. The first failing order cancels the rest.
func (e *MonteCarloExecutor) Run(ctx context.Context) (*Report, error) {
	start := time.Now()
	e.logger.Info("monte carlo run started",
		zap.Int("n", e.cfg.Observations),
		zap.Int("p", e.cfg.Covariates),
		zap.Int("p1", e.cfg.Relevant),
		zap.Float64("sigma_x", e.cfg.SigmaX),
		zap.Float64("sigma_y", e.cfg.SigmaY),
		zap.Float64("rho_x", e.cfg.Correlation),
		zap.Int("replicates", e.cfg.Replicates),
		zap.Uint64("seed", e.cfg.Seed),
		zap.Int("workers", e.cfg.Workers),
		zap.Stringer("singular_policy", e.cfg.SingularPolicy))

	results := make([]OrderResult, e.cfg.Covariates)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Workers)
	for k := 1; k <= e.cfg.Covariates; k++ {
		g.Go(func() error {
			res, err := e.RunOrder(gctx, k)
			if err != nil {
				return err
			}
			results[k-1] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := newReport(e.runID, e.cfg, e.truth, results, time.Since(start))
	e.logger.Info("monte carlo run finished",
		zap.Int("best_k", report.Best.Order),
		zap.Duration("elapsed", report.Elapsed))

	return report, nil
}
