package model

import (
	"math"

	gerr "gamestats/internal/errors"
	"github.com/YuminosukeSato/scigo/metrics"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Metrics holds held-out evaluation results. R2 is nil when it is not
// defined (fewer than two samples).
type Metrics struct {
	MSE float64  `json:"mse"`
	MAE float64  `json:"mae"`
	R2  *float64 `json:"r2"`
}

func checkLengths(yTrue, yPred []float64) error {
	if len(yTrue) == 0 {
		return gerr.NewEmptyAggregate("evaluation rows")
	}
	if len(yTrue) != len(yPred) {
		return gerr.New(gerr.CodeInternalError, "prediction length mismatch", "", map[string]any{"true": len(yTrue), "pred": len(yPred)})
	}
	return nil
}

// vectors checks the inputs and wraps them for the metrics package.
func vectors(yTrue, yPred []float64) (*mat.VecDense, *mat.VecDense, error) {
	if err := checkLengths(yTrue, yPred); err != nil {
		return nil, nil, err
	}
	return mat.NewVecDense(len(yTrue), yTrue), mat.NewVecDense(len(yPred), yPred), nil
}

func metricErr(name string, err error) error {
	return gerr.Wrap(gerr.CodeInternalError, err, "compute "+name, nil)
}

// MSE is the mean squared error.
func MSE(yTrue, yPred []float64) (float64, error) {
	t, p, err := vectors(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	v, err := metrics.MSE(t, p)
	if err != nil {
		return 0, metricErr("mse", err)
	}
	return v, nil
}

// MAE is the mean absolute error.
func MAE(yTrue, yPred []float64) (float64, error) {
	t, p, err := vectors(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	v, err := metrics.MAE(t, p)
	if err != nil {
		return 0, metricErr("mae", err)
	}
	return v, nil
}

// R2 is the coefficient of determination. A constant yTrue scores 1 when
// predicted exactly and 0 otherwise; fewer than two samples give NaN.
func R2(yTrue, yPred []float64) (float64, error) {
	t, p, err := vectors(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	if len(yTrue) < 2 {
		return math.NaN(), nil
	}
	// R2Score refuses a target with no variance
	if floats.Max(yTrue) == floats.Min(yTrue) {
		if floats.Equal(yTrue, yPred) {
			return 1, nil
		}
		return 0, nil
	}
	v, err := metrics.R2Score(t, p)
	if err != nil {
		return 0, metricErr("r2", err)
	}
	return v, nil
}

// Evaluate computes all three metrics.
func Evaluate(yTrue, yPred []float64) (Metrics, error) {
	mse, err := MSE(yTrue, yPred)
	if err != nil {
		return Metrics{}, err
	}
	mae, err := MAE(yTrue, yPred)
	if err != nil {
		return Metrics{}, err
	}
	r2, err := R2(yTrue, yPred)
	if err != nil {
		return Metrics{}, err
	}
	m := Metrics{MSE: mse, MAE: mae}
	if !math.IsNaN(r2) {
		m.R2 = &r2
	}
	return m, nil
}
