package regression

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// ResponseGenerator computes y = X·beta + eps with eps ~ N(0, sigma_y²).
type ResponseGenerator struct {
	beta  *mat.VecDense
	noise distuv.Normal
}

func NewResponseGenerator(beta *mat.VecDense, sigmaY float64, src rand.Source) *ResponseGenerator {
	return &ResponseGenerator{
		beta:  beta,
		noise: distuv.Normal{Mu: 0, Sigma: sigmaY, Src: src},
	}
}

// Generate rejects a design whose column count differs from len(beta)
// before drawing any noise.
func (g *ResponseGenerator) Generate(x mat.Matrix) (*mat.VecDense, error) {
	n, cols := x.Dims()
	if cols != g.beta.Len() {
		return nil, fmt.Errorf("%w: design has %d columns, beta has %d entries", ErrDimensionMismatch, cols, g.beta.Len())
	}

	y := mat.NewVecDense(n, nil)
	y.MulVec(x, g.beta)
	for i := 0; i < n; i++ {
		y.SetVec(i, y.AtVec(i)+g.noise.Rand())
	}
	return y, nil
}
