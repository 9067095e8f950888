package forecast

// Observation is one day of the historical window.
type Observation struct {
	Date        string  `json:"date"`
	Temperature float64 `json:"temperature"`
}

// Series is a chronologically ordered window of daily average temperatures.
type Series []Observation

// Values returns the temperatures in series order.
func (s Series) Values() []float64 {
	out := make([]float64, len(s))
	for i, obs := range s {
		out[i] = obs.Temperature
	}
	return out
}

// FittedModel is the least-squares line temperature = Slope*dayIndex + Intercept.
// Fitted holds the in-sample predictions, index 0 being the first observation.
type FittedModel struct {
	Slope     float64   `json:"slope"`
	Intercept float64   `json:"intercept"`
	Fitted    []float64 `json:"fitted"`
}

// At evaluates the line at a day index.
func (m FittedModel) At(dayIndex float64) float64 {
	return m.Slope*dayIndex + m.Intercept
}

// Day is a single forecast day. Index 0 is the first day after the historical window.
type Day struct {
	Index      int     `json:"index"`
	Prediction float64 `json:"prediction"`
	Lower      float64 `json:"lower"`
	Upper      float64 `json:"upper"`
}

// Result bundles the fit, its error estimate and the forecast horizon.
type Result struct {
	Fit      FittedModel `json:"fit"`
	StdError float64     `json:"stdError"`
	Margin   float64     `json:"margin"`
	Days     []Day       `json:"days"`
}

// HourlyPoint is one sample of the synthetic intraday curve.
type HourlyPoint struct {
	Hour        int     `json:"hour"`
	Temperature float64 `json:"temperature"`
}

// Tier is a temperature comfort class.
type Tier string

const (
	TierCold    Tier = "cold"
	TierCool    Tier = "cool"
	TierWarm    Tier = "warm"
	TierHot     Tier = "hot"
	TierVeryHot Tier = "very hot"
)

// Trend is the day-over-day direction of the point predictions.
type Trend string

const (
	TrendInitial Trend = "initial"
	TrendRising  Trend = "rising"
	TrendFalling Trend = "falling"
	TrendStable  Trend = "stable"
)

// Description is the classification and rendered sentence for one forecast day.
type Description struct {
	Tier     Tier   `json:"tier"`
	Trend    Trend  `json:"trend"`
	Sentence string `json:"sentence"`
}

// WeeklySummary condenses the horizon into one direction and an average.
type WeeklySummary struct {
	Average   float64 `json:"average"`
	Direction string  `json:"direction"`
	Text      string  `json:"text"`
}
