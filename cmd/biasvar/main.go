package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/peter-kozarec/biasvar/internal/dbg"
	"github.com/peter-kozarec/biasvar/pkg/chart"
	"github.com/peter-kozarec/biasvar/pkg/middleware"
	"github.com/peter-kozarec/biasvar/pkg/simulation"
)

func main() {
	logger := dbg.NewAutoLogger(Verbose)
	defer func(logger *zap.Logger) {
		_ = logger.Sync()
	}(logger)

	logger.Info(fmt.Sprintf("biasvar %s", Version))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg := simulation.NewConfiguration(
		simulation.WithParams(Params),
		simulation.WithReplicates(Replicates),
		simulation.WithSeed(Seed),
		simulation.WithWorkers(Workers),
	)

	executor, err := simulation.NewMonteCarloExecutor(logger, cfg)
	if err != nil {
		logger.Fatal("error creating executor", zap.Error(err))
	}
	logConfiguration(logger, executor.Configuration())

	telemetry := middleware.NewTelemetry(logger)
	performance := middleware.NewPerformance(logger)
	executor.FitHandler = middleware.Chain(telemetry.WithFit, performance.WithFit)(executor.FitHandler)

	report, err := executor.Run(ctx)
	telemetry.PrintStatistics()
	performance.PrintStatistics()
	if err != nil {
		var repErr *simulation.ReplicateError
		if errors.As(err, &repErr) {
			logger.Fatal("simulation aborted",
				zap.Int("k", repErr.Order),
				zap.Int("replicate", repErr.Replicate),
				zap.Error(repErr.Err))
		}
		logger.Fatal("simulation failed", zap.Error(err))
	}

	report.Print(logger)
	fmt.Println(report.Best.Order)

	if err := chart.Render(report, ChartPath, chart.WithDigits(ChartDigits)); err != nil {
		logger.Fatal("error rendering chart", zap.Error(err))
	}
	logger.Info("chart written", zap.String("path", ChartPath), zap.String("minimum", chart.Annotation(report, ChartDigits)))
}

func logConfiguration(logger *zap.Logger, cfg simulation.Configuration) {
	logger.Info("configuration",
		zap.Int("n", cfg.Observations),
		zap.Int("p", cfg.Covariates),
		zap.Int("p1", cfg.Relevant),
		zap.Float64("sigma_x", cfg.SigmaX),
		zap.Float64("sigma_y", cfg.SigmaY),
		zap.Float64("rho_x", cfg.Correlation),
		zap.Int("replicates", cfg.Replicates),
		zap.Uint64("seed", cfg.Seed),
		zap.Int("workers", cfg.Workers),
		zap.Stringer("singular_policy", cfg.SingularPolicy))
}
