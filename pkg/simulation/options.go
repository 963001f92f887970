package simulation

import "github.com/peter-kozarec/biasvar/pkg/regression"

type Option func(*Configuration)

func WithParams(params regression.Params) Option {
	return func(c *Configuration) {
		c.Params = params
	}
}

func WithReplicates(m int) Option {
	return func(c *Configuration) {
		c.Replicates = m
	}
}

func WithSeed(seed uint64) Option {
	return func(c *Configuration) {
		c.Seed = seed
	}
}

func WithWorkers(workers int) Option {
	return func(c *Configuration) {
		c.Workers = workers
	}
}

func WithConditionLimit(limit float64) Option {
	return func(c *Configuration) {
		c.ConditionLimit = limit
	}
}

// WithRidgeFallback makes ill-posed fits retry once on the ridge-regularized
// normal equations instead of aborting the run.
func WithRidgeFallback(lambda float64) Option {
	return func(c *Configuration) {
		c.SingularPolicy = regression.SingularRidge
		c.RidgeLambda = lambda
	}
}
