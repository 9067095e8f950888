package metrics

import "math"

// FitQuality summarises how well the trend line explains the historical window.
type FitQuality struct {
	Observations int     `json:"observations"`
	Slope        float64 `json:"slope"`
	Intercept    float64 `json:"intercept"`
	RMSE         float64 `json:"rmse"`
	Margin       float64 `json:"margin"`
}

// IsZero reports whether fit data is absent.
func (q FitQuality) IsZero() bool {
	return q.Observations == 0
}

// Rounded returns a copy with every float rounded to the given number of decimals.
func (q FitQuality) Rounded(decimals int) FitQuality {
	q.Slope = Round(q.Slope, decimals)
	q.Intercept = Round(q.Intercept, decimals)
	q.RMSE = Round(q.RMSE, decimals)
	q.Margin = Round(q.Margin, decimals)
	return q
}

// Round rounds v half away from zero to the given number of decimals.
func Round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
