package regression

type SingularPolicy int

const (
	// SingularReject surfaces a singular or ill-conditioned Gram matrix as an error.
	SingularReject SingularPolicy = iota
	// SingularRidge retries the solve once with lambda added to the Gram diagonal.
	SingularRidge
)

func (p SingularPolicy) String() string {
	switch p {
	case SingularReject:
		return "reject"
	case SingularRidge:
		return "ridge"
	default:
		return "unknown"
	}
}

const (
	DefaultConditionLimit = 1e12
	DefaultRidgeLambda    = 1e-6
)

type EstimatorOption func(*Estimator)

func WithConditionLimit(limit float64) EstimatorOption {
	return func(e *Estimator) {
		if limit > 0 {
			e.conditionLimit = limit
		}
	}
}

func WithSingularPolicy(policy SingularPolicy) EstimatorOption {
	return func(e *Estimator) {
		e.policy = policy
	}
}

func WithRidgeLambda(lambda float64) EstimatorOption {
	return func(e *Estimator) {
		if lambda > 0 {
			e.ridgeLambda = lambda
		}
	}
}
