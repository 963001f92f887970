package main

import (
	"github.com/peter-kozarec/biasvar/pkg/regression"
)

const (
	Version = "v0.1.0"

	Observations = 300
	Covariates   = 20
	Relevant     = 10
	SigmaX       = 0.2
	SigmaY       = 3.0
	CorrelationX = 0.0
	Replicates   = 5000

	Seed    = 20240101
	Workers = 1

	ChartPath   = "bias_variance.png"
	ChartDigits = 4
	Verbose     = false
)

var Params = regression.Params{
	Observations: Observations,
	Covariates:   Covariates,
	Relevant:     Relevant,
	SigmaX:       SigmaX,
	SigmaY:       SigmaY,
	Correlation:  CorrelationX,
}
