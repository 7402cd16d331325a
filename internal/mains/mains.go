// Package mains infers the local electrical mains frequency so the noise
// reducer can place hum notch filters at the right harmonics.
package mains

import (
	"strings"

	tz "github.com/medama-io/go-timezone-country"
	"github.com/thlib/go-timezone-local/tzlocal"
)

// DefaultHz is used when the local mains frequency cannot be determined.
// 50 Hz covers most of the world.
const DefaultHz = 50.0

// Detect returns the local mains frequency in Hz (50 or 60), derived from
// the system timezone.
func Detect() float64 {
	timezone, err := tzlocal.RuntimeTZ()
	if err != nil {
		return DefaultHz
	}
	return ForTimezone(timezone)
}

// ForTimezone returns the mains frequency for an IANA timezone name.
func ForTimezone(timezone string) float64 {
	// UTC/GMT carry no country association.
	if timezone == "UTC" || timezone == "GMT" || strings.HasPrefix(timezone, "Etc/") {
		return DefaultHz
	}

	tzMap, err := tz.NewTimezoneCountryMap()
	if err != nil {
		return DefaultHz
	}
	country, err := tzMap.GetCountry(timezone)
	if err != nil {
		return DefaultHz
	}

	// Japan runs both grids (50 Hz east, 60 Hz west); the 50 Hz Tokyo region
	// is the most populous, and a notch at the wrong harmonic set is worse
	// than a missed one, so treat Japan as 50 Hz.
	if country == "Japan" {
		return DefaultHz
	}
	if sixtyHzCountries[country] {
		return 60.0
	}
	return DefaultHz
}

// Harmonics returns the hum fundamental and its integer harmonics up to
// maxHz. A hum notch cascade filters each returned frequency. Returns nil
// when even the fundamental is out of range.
func Harmonics(fundamental, maxHz float64) []float64 {
	if fundamental <= 0 {
		return nil
	}
	var freqs []float64
	for f := fundamental; f <= maxHz; f += fundamental {
		freqs = append(freqs, f)
	}
	return freqs
}

// sixtyHzCountries lists countries on 60 Hz grids; everywhere else is 50 Hz.
// Source: https://en.wikipedia.org/wiki/Mains_electricity_by_country
var sixtyHzCountries = map[string]bool{
	// North and Central America
	"United States": true,
	"Canada":        true,
	"Mexico":        true,
	"Belize":        true,
	"Costa Rica":    true,
	"El Salvador":   true,
	"Guatemala":     true,
	"Honduras":      true,
	"Nicaragua":     true,
	"Panama":        true,

	// Caribbean
	"Bahamas":             true,
	"Barbados":            true,
	"Cayman Islands":      true,
	"Cuba":                true,
	"Dominican Republic":  true,
	"Haiti":               true,
	"Jamaica":             true,
	"Puerto Rico":         true,
	"Trinidad and Tobago": true,
	"U.S. Virgin Islands": true,

	// South America (most of the continent is 50 Hz)
	"Brazil":    true, // both grids exist; 60 Hz predominates
	"Colombia":  true,
	"Ecuador":   true,
	"Guyana":    true,
	"Peru":      true,
	"Suriname":  true,
	"Venezuela": true,

	// Asia
	"South Korea":  true,
	"Taiwan":       true,
	"Philippines":  true,
	"Saudi Arabia": true,

	// Pacific
	"Guam":             true,
	"American Samoa":   true,
	"Marshall Islands": true,
	"Micronesia":       true,
	"Palau":            true,
}
