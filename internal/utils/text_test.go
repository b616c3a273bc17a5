package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrimText(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"trims whitespace", "  hello  ", "hello"},
		{"keeps ampersand", "Tom & Jerry", "Tom & Jerry"},
		{"keeps angle brackets", "  x<y and y>z  ", "x<y and y>z"},
		{"keeps markup as typed", "<b>bold</b> move", "<b>bold</b> move"},
		{"keeps literal entities", "&lt;b&gt;", "&lt;b&gt;"},
		{"only whitespace", " \t\n ", ""},
		{"unicode", "  Zürich café ", "Zürich café"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, TrimText(tc.in))
		})
	}
}

func TestOptionalText(t *testing.T) {
	assert.Nil(t, OptionalText("   "))
	assert.Nil(t, OptionalText(""))

	got := OptionalText(" sunset ")
	if assert.NotNil(t, got) {
		assert.Equal(t, "sunset", *got)
	}

	tagged := OptionalText("<b></b>")
	if assert.NotNil(t, tagged) {
		assert.Equal(t, "<b></b>", *tagged)
	}
}
