// Package geo validates and manipulates WGS84 decimal-degree coordinates.
package geo

import (
	"math"
	"strconv"
	"strings"

	"photomap-service/internal/apperr"
)

const (
	MinLatitude  = -90.0
	MaxLatitude  = 90.0
	MinLongitude = -180.0
	MaxLongitude = 180.0
)

// Coordinate is a validated latitude/longitude pair.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// GPS is the in-flight form state of a coordinate pair: either side may be
// missing until the user or the EXIF extractor fills it in.
type GPS struct {
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// Empty reports whether neither side has been provided.
func (g GPS) Empty() bool {
	return g.Latitude == nil && g.Longitude == nil
}

// Coordinate returns the pair when both sides are present and valid.
func (g GPS) Coordinate() (Coordinate, bool) {
	if !Validate(g.Latitude, g.Longitude) {
		return Coordinate{}, false
	}
	return Coordinate{Latitude: *g.Latitude, Longitude: *g.Longitude}, true
}

// Validate reports whether lat and lon are both present, finite and in range.
func Validate(lat, lon *float64) bool {
	if lat == nil || lon == nil {
		return false
	}
	return ValidPair(*lat, *lon)
}

// ValidPair is Validate for values that are known to be present.
func ValidPair(lat, lon float64) bool {
	if !finite(lat) || !finite(lon) {
		return false
	}
	return lat >= MinLatitude && lat <= MaxLatitude &&
		lon >= MinLongitude && lon <= MaxLongitude
}

// ValidateStrings applies Validate to raw form input, where the empty string
// means the field was left blank.
func ValidateStrings(lat, lon string) bool {
	_, err := ParseCoordinate(lat, lon)
	return err == nil
}

// ParseCoordinate parses raw form values into a Coordinate, returning a
// ValidationError that names the offending field.
func ParseCoordinate(latStr, lonStr string) (Coordinate, error) {
	lat, err := parseDegrees("latitude", latStr)
	if err != nil {
		return Coordinate{}, err
	}
	lon, err := parseDegrees("longitude", lonStr)
	if err != nil {
		return Coordinate{}, err
	}
	return NewCoordinate(lat, lon)
}

// NewCoordinate checks the ranges of an already numeric pair.
func NewCoordinate(lat, lon float64) (Coordinate, error) {
	if !finite(lat) || lat < MinLatitude || lat > MaxLatitude {
		return Coordinate{}, apperr.Validationf("latitude must be between %v and %v", MinLatitude, MaxLatitude)
	}
	if !finite(lon) || lon < MinLongitude || lon > MaxLongitude {
		return Coordinate{}, apperr.Validationf("longitude must be between %v and %v", MinLongitude, MaxLongitude)
	}
	return Coordinate{Latitude: lat, Longitude: lon}, nil
}

// ParseGPS turns optional form fields into a GPS value. Blank fields stay
// nil; malformed numbers are reported.
func ParseGPS(latStr, lonStr string) (GPS, error) {
	var gps GPS
	if s := strings.TrimSpace(latStr); s != "" {
		v, err := parseDegrees("latitude", s)
		if err != nil {
			return GPS{}, err
		}
		gps.Latitude = &v
	}
	if s := strings.TrimSpace(lonStr); s != "" {
		v, err := parseDegrees("longitude", s)
		if err != nil {
			return GPS{}, err
		}
		gps.Longitude = &v
	}
	return gps, nil
}

func parseDegrees(field, s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, apperr.Validationf("%s is required", field)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || !finite(v) {
		return 0, apperr.Validationf("%s must be a number", field)
	}
	return v, nil
}

// Round6 rounds to six decimal places, roughly 0.11 m at the equator.
func Round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
