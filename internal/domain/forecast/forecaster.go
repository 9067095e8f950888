package forecast

// Forecast fits the series and projects HorizonDays point predictions past its end.
// Every day shares the same band: Prediction ± ConfidenceZ*StdError.
func Forecast(series Series) (Result, error) {
	fit, err := FitTrend(series)
	if err != nil {
		return Result{}, err
	}
	stdErr, err := StdError(series.Values(), fit.Fitted)
	if err != nil {
		return Result{}, err
	}

	margin := ConfidenceZ * stdErr
	n := len(series)
	days := make([]Day, HorizonDays)
	for i := range days {
		p := fit.At(float64(n + i))
		days[i] = Day{
			Index:      i,
			Prediction: p,
			Lower:      p - margin,
			Upper:      p + margin,
		}
	}

	return Result{
		Fit:      fit,
		StdError: stdErr,
		Margin:   margin,
		Days:     days,
	}, nil
}
