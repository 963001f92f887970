package simulation

import (
	"gonum.org/v1/gonum/stat"
)

// Moments are the empirical error components of one order's predictions.
type Moments struct {
	Mean        float64
	BiasSquared float64
	Variance    float64
	MSE         float64
}

// Aggregate reduces the predictions of all replicates of an order against
// the noiseless response at the evaluation point. Variance and MSE use the
// 1/M normalization so that BiasSquared + Variance = MSE.
func Aggregate(predictions []float64, truth float64) Moments {
	mean, variance := stat.PopMeanVariance(predictions, nil)

	var mse float64
	for _, p := range predictions {
		d := p - truth
		mse += d * d
	}
	mse /= float64(len(predictions))

	bias := mean - truth
	return Moments{
		Mean:        mean,
		BiasSquared: bias * bias,
		Variance:    variance,
		MSE:         mse,
	}
}
