package forecast

import "fmt"

// Summarize reports the average prediction and whether the horizon ends warmer than it starts.
func Summarize(days []Day) WeeklySummary {
	if len(days) == 0 {
		return WeeklySummary{}
	}
	var sum float64
	for _, d := range days {
		sum += d.Prediction
	}
	avg := sum / float64(len(days))
	direction := "cooling"
	if days[len(days)-1].Prediction > days[0].Prediction {
		direction = "warming"
	}
	return WeeklySummary{
		Average:   avg,
		Direction: direction,
		Text:      fmt.Sprintf("Overall %s trend with an average temperature of %.1f°C", direction, avg),
	}
}
