package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"photomap-service/internal/apperr"
)

func f(v float64) *float64 { return &v }

func TestValidateInRange(t *testing.T) {
	cases := [][2]float64{
		{0, 0},
		{-90, -180},
		{90, 180},
		{48.8566, 2.3522},
		{-33.8688, 151.2093},
		{89.999999, -179.999999},
	}
	for _, c := range cases {
		assert.True(t, Validate(f(c[0]), f(c[1])), "expected %v to be valid", c)
	}
}

func TestValidateOutOfRange(t *testing.T) {
	cases := [][2]float64{
		{90.000001, 0},
		{-90.5, 0},
		{0, 180.1},
		{0, -181},
		{math.NaN(), 0},
		{0, math.Inf(1)},
	}
	for _, c := range cases {
		assert.False(t, Validate(f(c[0]), f(c[1])), "expected %v to be invalid", c)
	}
}

func TestValidateMissing(t *testing.T) {
	assert.False(t, Validate(nil, f(2.35)))
	assert.False(t, Validate(f(48.85), nil))
	assert.False(t, Validate(nil, nil))
}

func TestValidateStrings(t *testing.T) {
	assert.True(t, ValidateStrings("48.8566", "2.3522"))
	assert.True(t, ValidateStrings(" 0 ", "0"))
	assert.False(t, ValidateStrings("", "2.3522"))
	assert.False(t, ValidateStrings("48.8566", ""))
	assert.False(t, ValidateStrings("north", "2.3522"))
	assert.False(t, ValidateStrings("NaN", "2.3522"))
	assert.False(t, ValidateStrings("48.8566", "Inf"))
	assert.False(t, ValidateStrings("91", "0"))
}

func TestParseCoordinateReportsField(t *testing.T) {
	_, err := ParseCoordinate("12", "200")
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Contains(t, err.Error(), "longitude")

	c, err := ParseCoordinate("48.8566", "2.3522")
	require.NoError(t, err)
	assert.Equal(t, Coordinate{Latitude: 48.8566, Longitude: 2.3522}, c)
}

func TestParseGPS(t *testing.T) {
	gps, err := ParseGPS("", "  ")
	require.NoError(t, err)
	assert.True(t, gps.Empty())

	gps, err = ParseGPS("48.8566", "")
	require.NoError(t, err)
	assert.False(t, gps.Empty())
	_, ok := gps.Coordinate()
	assert.False(t, ok)

	gps, err = ParseGPS("48.8566", "2.3522")
	require.NoError(t, err)
	c, ok := gps.Coordinate()
	assert.True(t, ok)
	assert.Equal(t, 2.3522, c.Longitude)

	_, err = ParseGPS("abc", "2")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestRound6(t *testing.T) {
	assert.Equal(t, 48.856613, Round6(48.8566129999))
	assert.Equal(t, -2.352222, Round6(-2.3522219))
	assert.Equal(t, 0.0, Round6(0.0000001))
}
