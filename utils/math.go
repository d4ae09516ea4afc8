package utils

import "math"

// RoundFloat rounds to the given number of decimal places. Monetary PZ
// amounts use precision 2 everywhere.
func RoundFloat(val float64, precision int) float64 {
	ratio := math.Pow(10, float64(precision))
	return math.Round(val*ratio) / ratio
}
