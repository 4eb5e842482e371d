package utils

import "math"

// CentsToDollars mengkonversi nilai cents dari provider ke dollar.
// Contoh: 1250 -> 12.50
func CentsToDollars(cents int64) float64 {
	return float64(cents) / 100
}

// DollarsToCents mengkonversi dollar ke cents untuk dikirim ke provider.
// Dibulatkan ke cent terdekat.
func DollarsToCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
