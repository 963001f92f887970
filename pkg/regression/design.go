package regression

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"
	"gonum.org/v1/gonum/stat/distuv"
)

// DesignGenerator draws n×(p+1) design matrices: an intercept column of ones
// followed by p zero-mean Gaussian covariates.
type DesignGenerator struct {
	rows int
	cols int

	covariate distuv.Normal
	joint     *distmv.Normal // nil when covariates are independent
	row       []float64
}

func NewDesignGenerator(params Params, src rand.Source) (*DesignGenerator, error) {
	g := &DesignGenerator{
		rows:      params.Observations,
		cols:      params.Covariates + 1,
		covariate: distuv.Normal{Mu: 0, Sigma: params.SigmaX, Src: src},
	}

	if params.Correlation != 0 {
		joint, ok := distmv.NewNormal(
			make([]float64, params.Covariates),
			equicorrelated(params.Covariates, params.SigmaX, params.Correlation),
			src)
		if !ok {
			return nil, fmt.Errorf("%w: covariate covariance is not positive definite", ErrInvalidParams)
		}
		g.joint = joint
		g.row = make([]float64, params.Covariates)
	}

	return g, nil
}

// Generate returns a freshly drawn design matrix.
func (g *DesignGenerator) Generate() *mat.Dense {
	x := mat.NewDense(g.rows, g.cols, nil)
	g.GenerateTo(x)
	return x
}

// GenerateTo overwrites x with a new draw. x must be n×(p+1).
func (g *DesignGenerator) GenerateTo(x *mat.Dense) {
	if r, c := x.Dims(); r != g.rows || c != g.cols {
		panic(fmt.Sprintf("regression: design buffer is %d×%d, want %d×%d", r, c, g.rows, g.cols))
	}

	// Column-major fill keeps the draw order of sampling one covariate at a time.
	if g.joint == nil {
		for i := 0; i < g.rows; i++ {
			x.Set(i, 0, 1)
		}
		for j := 1; j < g.cols; j++ {
			for i := 0; i < g.rows; i++ {
				x.Set(i, j, g.covariate.Rand())
			}
		}
		return
	}

	for i := 0; i < g.rows; i++ {
		x.Set(i, 0, 1)
		g.joint.Rand(g.row)
		for j, v := range g.row {
			x.Set(i, j+1, v)
		}
	}
}

// equicorrelated builds sigma²·((1-rho)·I + rho·11ᵀ).
func equicorrelated(dim int, sigma, rho float64) *mat.SymDense {
	variance := sigma * sigma
	cov := mat.NewSymDense(dim, nil)
	for i := 0; i < dim; i++ {
		for j := i; j < dim; j++ {
			if i == j {
				cov.SetSym(i, j, variance)
			} else {
				cov.SetSym(i, j, variance*rho)
			}
		}
	}
	return cov
}
