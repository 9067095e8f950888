package forecast

import "math"

// Validate checks the band invariants of a day that may not have come from Forecast.
func (d Day) Validate() error {
	for _, v := range []float64{d.Prediction, d.Lower, d.Upper} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return invalidDay(d.Index, "values must be finite")
		}
	}
	if d.Index < 0 {
		return invalidDay(d.Index, "index must not be negative")
	}
	if d.Upper < d.Lower {
		return invalidDay(d.Index, "upper bound below lower bound")
	}
	if d.Prediction < d.Lower || d.Prediction > d.Upper {
		return invalidDay(d.Index, "prediction outside its band")
	}
	return nil
}
