package forecast

// Policy constants. These are fixed choices, not quantities derived from data.
const (
	// MinObservations is the smallest series a line can be fitted through.
	MinObservations = 2
	// HorizonDays is the number of days forecast after the historical window.
	HorizonDays = 7
	// ConfidenceZ scales the standard error into the band half-width (~98% coverage).
	ConfidenceZ = 2.33

	// Tier upper bounds in °C; each tier is lower-bound inclusive.
	ColdBelow = 18.0
	CoolBelow = 24.0
	WarmBelow = 30.0
	HotBelow  = 35.0

	// TrendTolerance is the day-over-day change, in °C, above which a day is rising or falling.
	TrendTolerance = 1.0

	// AmplitudeDivisor turns the full band width into the diurnal amplitude.
	AmplitudeDivisor = 4.0
	// NoiseDivisor turns the diurnal amplitude into the noise standard deviation.
	NoiseDivisor = 4.0
	// PeakShiftHours moves the sinusoid so it crosses the mean rising at 05:00.
	PeakShiftHours = 5
	// DefaultSeed seeds the hourly noise source when the caller has no preference.
	DefaultSeed int64 = 42
)
