// Package exif reads GPS coordinates embedded in image metadata.
package exif

import (
	"bytes"

	goexif "github.com/rwcarlsen/goexif/exif"

	"photomap-service/internal/geo"
)

// ExtractGPS returns the GPS position stored in the image's EXIF block,
// rounded to six decimals. Missing tags, unsupported containers and parse
// failures all report found=false; the function never fails the caller.
func ExtractGPS(image []byte) (coord geo.Coordinate, found bool) {
	if len(image) == 0 {
		return geo.Coordinate{}, false
	}

	// goexif panics on some truncated containers.
	defer func() {
		if r := recover(); r != nil {
			coord, found = geo.Coordinate{}, false
		}
	}()

	x, err := goexif.Decode(bytes.NewReader(image))
	if x == nil || (err != nil && goexif.IsCriticalError(err)) {
		return geo.Coordinate{}, false
	}

	lat, lon, err := x.LatLong()
	if err != nil {
		return geo.Coordinate{}, false
	}

	lat, lon = geo.Round6(lat), geo.Round6(lon)
	if !geo.ValidPair(lat, lon) {
		return geo.Coordinate{}, false
	}
	return geo.Coordinate{Latitude: lat, Longitude: lon}, true
}
