package outlook

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/yanqian/tempcast/internal/domain/forecast"
	"github.com/yanqian/tempcast/pkg/metrics"
	"github.com/yanqian/tempcast/pkg/util"
)

func buildReport(id string, loc Location, now time.Time, history forecast.Series, result forecast.Result, descriptions []forecast.Description, hourly []forecast.HourlyPoint, seed int64) Report {
	days := make([]ReportDay, len(result.Days))
	for i, d := range result.Days {
		days[i] = ReportDay{
			Index:       d.Index,
			Prediction:  d.Prediction,
			Lower:       d.Lower,
			Upper:       d.Upper,
			Margin:      d.Upper - d.Prediction,
			Tier:        descriptions[i].Tier,
			Trend:       descriptions[i].Trend,
			Description: descriptions[i].Sentence,
		}
	}

	readings := make([]HourlyReading, len(hourly))
	for i, p := range hourly {
		readings[i] = HourlyReading{Hour: fmt.Sprintf("%02d:00", p.Hour), Temperature: p.Temperature}
	}

	history = append(forecast.Series(nil), history...)
	return Report{
		ID:          id,
		Location:    loc,
		GeneratedAt: now,
		History:     history,
		Days:        days,
		Hourly:      readings,
		Weekly:      forecast.Summarize(result.Days),
		Fit: metrics.FitQuality{
			Observations: len(history),
			Slope:        result.Fit.Slope,
			Intercept:    result.Fit.Intercept,
			RMSE:         result.StdError,
			Margin:       result.Margin,
		},
		Seed: seed,
	}
}

// withDates labels each day with the calendar date following last.
func withDates(days []ReportDay, last time.Time) []ReportDay {
	for i := range days {
		days[i].Date = util.FormatDate(last.AddDate(0, 0, days[i].Index+1))
	}
	return days
}

// encodeCurve renders the hourly curve of the first day with its band as CSV chart data.
func encodeCurve(report Report) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"hour", "temperature", "lower", "upper"})
	var lower, upper string
	if len(report.Days) > 0 {
		lower = formatFloat(report.Days[0].Lower)
		upper = formatFloat(report.Days[0].Upper)
	}
	for _, r := range report.Hourly {
		_ = w.Write([]string{r.Hour, formatFloat(r.Temperature), lower, upper})
	}
	w.Flush()
	return buf.Bytes()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
