package forecast

import (
	"math"
	"math/rand"
)

const hoursPerDay = 24

// Amplitude is the diurnal swing derived from the day's band width.
func (d Day) Amplitude() float64 {
	return math.Abs(d.Upper-d.Lower) / AmplitudeDivisor
}

// Diurnal returns the noise-free intraday sinusoid around the day's prediction.
func Diurnal(day Day) ([]HourlyPoint, error) {
	if err := day.Validate(); err != nil {
		return nil, err
	}
	amp := day.Amplitude()
	points := make([]HourlyPoint, hoursPerDay)
	for h := range points {
		points[h] = HourlyPoint{
			Hour:        h,
			Temperature: day.Prediction + amp*math.Sin(float64(h-PeakShiftHours)*math.Pi/12),
		}
	}
	return points, nil
}

// SynthesizeHourly expands a forecast day into an illustrative 24 hour curve.
// Noise is drawn from a source seeded with seed only, so equal inputs give equal output.
func SynthesizeHourly(day Day, seed int64) ([]HourlyPoint, error) {
	points, err := Diurnal(day)
	if err != nil {
		return nil, err
	}
	sigma := day.Amplitude() / NoiseDivisor
	rng := rand.New(rand.NewSource(seed))
	for i := range points {
		points[i].Temperature += rng.NormFloat64() * sigma
	}
	return points, nil
}
