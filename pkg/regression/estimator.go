package regression

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Fit is a truncated least-squares fit of order k.
type Fit struct {
	Order        int
	Coefficients *mat.VecDense // length p+1, entries past Order are exactly zero
	Condition    float64       // condition number estimate of the Gram matrix
	Regularized  bool          // set when the ridge fallback produced the coefficients
}

// Predict returns x0ᵀ·beta_hat.
func (f *Fit) Predict(x0 mat.Vector) float64 {
	return mat.Dot(x0, f.Coefficients)
}

// Estimator fits ordinary least squares on the intercept and the first k
// covariates of a design with a fixed number of covariates.
type Estimator struct {
	covariates     int
	conditionLimit float64
	policy         SingularPolicy
	ridgeLambda    float64
}

func NewEstimator(covariates int, opts ...EstimatorOption) *Estimator {
	e := &Estimator{
		covariates:     covariates,
		conditionLimit: DefaultConditionLimit,
		policy:         SingularReject,
		ridgeLambda:    DefaultRidgeLambda,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Fit solves (XₖᵀXₖ)·b = Xₖᵀy for the first k+1 columns of x and pads b
// with zeros to length p+1.
func (e *Estimator) Fit(x *mat.Dense, y *mat.VecDense, k int) (*Fit, error) {
	n, cols := x.Dims()
	if cols != e.covariates+1 {
		return nil, fmt.Errorf("%w: design has %d columns, want %d", ErrDimensionMismatch, cols, e.covariates+1)
	}
	if y.Len() != n {
		return nil, fmt.Errorf("%w: design has %d rows, response has %d", ErrDimensionMismatch, n, y.Len())
	}
	if k < 1 || k > e.covariates {
		return nil, fmt.Errorf("%w: %d not in [1, %d]", ErrInvalidOrder, k, e.covariates)
	}
	if n < k+1 {
		return nil, newConditionError(ErrSingular, k, math.Inf(1))
	}

	xk := x.Slice(0, n, 0, k+1)

	gram := mat.NewSymDense(k+1, nil)
	gram.SymOuterK(1, xk.T())

	var rhs mat.VecDense
	rhs.MulVec(xk.T(), y)

	b, cond, err := e.solve(gram, &rhs, k)
	regularized := false
	if err != nil {
		if e.policy != SingularRidge || !IsConditionError(err) {
			return nil, err
		}
		ridge := mat.NewSymDense(k+1, nil)
		ridge.CopySym(gram)
		for i := 0; i <= k; i++ {
			ridge.SetSym(i, i, ridge.At(i, i)+e.ridgeLambda)
		}
		if b, cond, err = e.solve(ridge, &rhs, k); err != nil {
			return nil, fmt.Errorf("ridge fallback (lambda=%g): %w", e.ridgeLambda, err)
		}
		regularized = true
	}

	coef := mat.NewVecDense(e.covariates+1, nil)
	for i := 0; i <= k; i++ {
		coef.SetVec(i, b.AtVec(i))
	}

	return &Fit{
		Order:        k,
		Coefficients: coef,
		Condition:    cond,
		Regularized:  regularized,
	}, nil
}

// Estimate fits order k and returns the prediction at x0.
func (e *Estimator) Estimate(x *mat.Dense, y *mat.VecDense, k int, x0 mat.Vector) (float64, error) {
	if x0.Len() != e.covariates+1 {
		return 0, fmt.Errorf("%w: evaluation point has %d entries, want %d", ErrDimensionMismatch, x0.Len(), e.covariates+1)
	}
	fit, err := e.Fit(x, y, k)
	if err != nil {
		return 0, err
	}
	return fit.Predict(x0), nil
}

func (e *Estimator) solve(gram *mat.SymDense, rhs *mat.VecDense, k int) (*mat.VecDense, float64, error) {
	var chol mat.Cholesky
	if ok := chol.Factorize(gram); !ok {
		return nil, math.Inf(1), newConditionError(ErrSingular, k, math.Inf(1))
	}

	cond := chol.Cond()
	if cond > e.conditionLimit {
		return nil, cond, newConditionError(ErrIllConditioned, k, cond)
	}

	b := mat.NewVecDense(k+1, nil)
	if err := chol.SolveVecTo(b, rhs); err != nil {
		var c mat.Condition
		if errors.As(err, &c) {
			return nil, float64(c), newConditionError(ErrIllConditioned, k, float64(c))
		}
		return nil, cond, fmt.Errorf("solve normal equations: %w", err)
	}
	return b, cond, nil
}
