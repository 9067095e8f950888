package forecast

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	apperrors "github.com/yanqian/tempcast/pkg/errors"
)

// FitTrend fits an ordinary least squares line to the series, indexed by day offset.
func FitTrend(series Series) (FittedModel, error) {
	if len(series) < MinObservations {
		return FittedModel{}, insufficientData(len(series))
	}

	xs := make([]float64, len(series))
	ys := make([]float64, len(series))
	for i, obs := range series {
		if math.IsNaN(obs.Temperature) || math.IsInf(obs.Temperature, 0) {
			return FittedModel{}, apperrors.Wrap(CodeInvalidInput, fmt.Sprintf("observation %d (%s) is not finite", i, obs.Date), ErrInvalidObservation)
		}
		xs[i] = float64(i)
		ys[i] = obs.Temperature
	}

	var intercept, slope float64
	if constant(ys) {
		// exact flat line; the regression leaves rounding residuals here
		intercept = ys[0]
	} else {
		intercept, slope = stat.LinearRegression(xs, ys, nil, false)
	}

	fitted := make([]float64, len(xs))
	model := FittedModel{Slope: slope, Intercept: intercept, Fitted: fitted}
	for i, x := range xs {
		fitted[i] = model.At(x)
	}
	return model, nil
}

func constant(ys []float64) bool {
	for _, y := range ys[1:] {
		if y != ys[0] {
			return false
		}
	}
	return true
}
