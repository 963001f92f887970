package regression

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Params describes the generative model shared by every replicate of a run.
type Params struct {
	Observations int     // n, rows of the design matrix
	Covariates   int     // p, columns besides the intercept
	Relevant     int     // p1, covariates with a non-zero true coefficient
	SigmaX       float64 // standard deviation of each covariate
	SigmaY       float64 // standard deviation of the response noise
	Correlation  float64 // pairwise covariate correlation, 0 draws columns independently
}

func (p Params) Validate() error {
	if p.Covariates < 1 {
		return fmt.Errorf("%w: covariates must be positive, got %d", ErrInvalidParams, p.Covariates)
	}
	// The full model has p+1 unknowns and needs strictly more rows.
	if p.Observations <= p.Covariates+1 {
		return fmt.Errorf("%w: observations (%d) must exceed covariates+1 (%d)", ErrInvalidParams, p.Observations, p.Covariates+1)
	}
	if p.Relevant < 1 || p.Relevant > p.Covariates {
		return fmt.Errorf("%w: relevant covariates %d not in [1, %d]", ErrInvalidParams, p.Relevant, p.Covariates)
	}
	if p.SigmaX <= 0 || p.SigmaY <= 0 {
		return fmt.Errorf("%w: standard deviations must be positive (sigma_x=%g, sigma_y=%g)", ErrInvalidParams, p.SigmaX, p.SigmaY)
	}
	if p.Correlation >= 1 {
		return fmt.Errorf("%w: correlation %g must be below 1", ErrInvalidParams, p.Correlation)
	}
	if p.Covariates > 1 && p.Correlation <= -1/float64(p.Covariates-1) {
		return fmt.Errorf("%w: correlation %g makes the covariance indefinite for %d covariates", ErrInvalidParams, p.Correlation, p.Covariates)
	}
	return nil
}

// TrueCoefficients returns beta: ones for the intercept and the first
// relevant covariates, zeros for the rest.
func TrueCoefficients(covariates, relevant int) *mat.VecDense {
	beta := mat.NewVecDense(covariates+1, nil)
	for i := 0; i <= relevant && i <= covariates; i++ {
		beta.SetVec(i, 1)
	}
	return beta
}

// EvaluationPoint returns x_0 = [1, 1/p, ..., 1/p].
func EvaluationPoint(covariates int) *mat.VecDense {
	x0 := mat.NewVecDense(covariates+1, nil)
	x0.SetVec(0, 1)
	for i := 1; i <= covariates; i++ {
		x0.SetVec(i, 1/float64(covariates))
	}
	return x0
}
