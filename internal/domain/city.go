package domain

import (
	"fmt"
	"strings"
)

// City is one of the fixed set of cities with trip data.
// The value is a URL-safe slug.
type City string

const (
	Chicago     City = "chicago"
	NewYorkCity City = "new-york-city"
	Washington  City = "washington"
)

// Cities lists every supported city in display order.
var Cities = []City{Chicago, NewYorkCity, Washington}

// ParseCity accepts a city name case-insensitively, with spaces, hyphens or
// underscores between words ("New York City", "new_york_city").
// Returns ErrUnknownCity for anything outside Cities.
func ParseCity(s string) (City, error) {
	slug := strings.Join(strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return r == ' ' || r == '-' || r == '_'
	}), "-")
	for _, c := range Cities {
		if City(slug) == c {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCity, s)
}

// DisplayName returns the human-readable name, e.g. "New York City".
func (c City) DisplayName() string {
	words := strings.Split(string(c), "-")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// DefaultFile is the trip-log file name conventionally used for the city.
func (c City) DefaultFile() string {
	return strings.ReplaceAll(string(c), "-", "_") + ".csv"
}
