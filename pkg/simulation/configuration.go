package simulation

import (
	"fmt"

	"github.com/peter-kozarec/biasvar/pkg/regression"
)

const (
	DefaultObservations = 300
	DefaultCovariates   = 20
	DefaultRelevant     = 10
	DefaultSigmaX       = 0.2
	DefaultSigmaY       = 3.0
	DefaultReplicates   = 5000
	DefaultSeed         = 20240101
)

// Configuration is the immutable parameter set of one experiment. It is
// passed by value; build it with NewConfiguration.
type Configuration struct {
	regression.Params

	Replicates     int    // M, replicates per order
	Seed           uint64 // master seed, order k draws from stream (Seed, k)
	Workers        int    // orders evaluated concurrently
	ConditionLimit float64
	SingularPolicy regression.SingularPolicy
	RidgeLambda    float64
}

func DefaultConfiguration() Configuration {
	return Configuration{
		Params: regression.Params{
			Observations: DefaultObservations,
			Covariates:   DefaultCovariates,
			Relevant:     DefaultRelevant,
			SigmaX:       DefaultSigmaX,
			SigmaY:       DefaultSigmaY,
		},
		Replicates:     DefaultReplicates,
		Seed:           DefaultSeed,
		Workers:        1,
		ConditionLimit: regression.DefaultConditionLimit,
		SingularPolicy: regression.SingularReject,
		RidgeLambda:    regression.DefaultRidgeLambda,
	}
}

func NewConfiguration(opts ...Option) Configuration {
	cfg := DefaultConfiguration()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

func (c Configuration) Validate() error {
	if err := c.Params.Validate(); err != nil {
		return err
	}
	if c.Replicates < 2 {
		return fmt.Errorf("%w: replicates must be at least 2, got %d", regression.ErrInvalidParams, c.Replicates)
	}
	if c.Workers < 1 {
		return fmt.Errorf("%w: workers must be positive, got %d", regression.ErrInvalidParams, c.Workers)
	}
	if c.ConditionLimit <= 1 {
		return fmt.Errorf("%w: condition limit must exceed 1, got %g", regression.ErrInvalidParams, c.ConditionLimit)
	}
	if c.SingularPolicy == regression.SingularRidge && c.RidgeLambda <= 0 {
		return fmt.Errorf("%w: ridge lambda must be positive, got %g", regression.ErrInvalidParams, c.RidgeLambda)
	}
	return nil
}

func (c Configuration) estimatorOptions() []regression.EstimatorOption {
	return []regression.EstimatorOption{
		regression.WithConditionLimit(c.ConditionLimit),
		regression.WithSingularPolicy(c.SingularPolicy),
		regression.WithRidgeLambda(c.RidgeLambda),
	}
}
