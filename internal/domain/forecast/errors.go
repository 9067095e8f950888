package forecast

import (
	"errors"
	"fmt"

	apperrors "github.com/yanqian/tempcast/pkg/errors"
)

const (
	CodeInsufficientData   = "insufficient_data"
	CodeInvalidForecastDay = "invalid_forecast_day"
	CodeInvalidInput       = apperrors.CodeInvalidInput
)

var (
	// ErrInsufficientData is returned when the series is too short to fit a line.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrInvalidForecastDay is returned when a forecast day violates its band invariants.
	ErrInvalidForecastDay = errors.New("invalid forecast day")
	// ErrInvalidObservation is returned for NaN or infinite temperatures.
	ErrInvalidObservation = errors.New("invalid observation")
)

func insufficientData(n int) error {
	msg := fmt.Sprintf("need at least %d observations, got %d", MinObservations, n)
	return apperrors.Wrap(CodeInsufficientData, msg, ErrInsufficientData)
}

func invalidDay(index int, reason string) error {
	return apperrors.Wrap(CodeInvalidForecastDay, fmt.Sprintf("day %d: %s", index, reason), ErrInvalidForecastDay)
}
