package forecast

import (
	"fmt"
	"math"

	apperrors "github.com/yanqian/tempcast/pkg/errors"
)

// StdError returns the root mean squared residual between observed and fitted values.
// The caller applies ConfidenceZ to obtain the band half-width.
func StdError(observed, fitted []float64) (float64, error) {
	if len(observed) != len(fitted) {
		return 0, apperrors.New(CodeInvalidInput, fmt.Sprintf("observed has %d values, fitted has %d", len(observed), len(fitted)))
	}
	if len(observed) == 0 {
		return 0, insufficientData(0)
	}

	var sum float64
	for i := range observed {
		r := observed[i] - fitted[i]
		sum += r * r
	}
	return math.Sqrt(sum / float64(len(observed))), nil
}
