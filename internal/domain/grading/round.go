package grading

import (
	"math"
	"strconv"
)

// roundEpsilon is a small positive bias added before rounding so that
// values sitting a hair below a .xx5 boundary (a common artifact of binary
// floating point, e.g. 24.999999999) round the same way on every platform.
const roundEpsilon = 1e-9

// Round2 rounds a derived value to 2 decimal places for display.
// Every value shown to a user goes through this; stored values do not.
func Round2(v float64) float64 {
	return math.Round((v+roundEpsilon)*100) / 100
}

// FormatMark renders a mark rounded to 2 decimals without trailing zeros,
// so 19.60 displays as "19.6" and 15.00 as "15".
func FormatMark(v float64) string {
	return strconv.FormatFloat(Round2(v), 'f', -1, 64)
}
