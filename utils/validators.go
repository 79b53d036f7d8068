// File: /utils/validators.go
package utils

import (
	"math"
	"net/mail"
)

// IsValidEmail reports whether email parses as an RFC 5322 address.
func IsValidEmail(email string) bool {
	_, err := mail.ParseAddress(email)
	return err == nil
}

func IsValidLatitude(lat float64) bool {
	return !math.IsNaN(lat) && lat >= -90 && lat <= 90
}

func IsValidLongitude(lng float64) bool {
	return !math.IsNaN(lng) && lng >= -180 && lng <= 180
}

// IsValidCoordinate checks latitude in [-90, 90] and longitude in [-180, 180].
func IsValidCoordinate(lat, lng float64) bool {
	return IsValidLatitude(lat) && IsValidLongitude(lng)
}

// IsFinite reports whether v can be encoded as a JSON/GraphQL number.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
