package pixelcolor

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBinaryModelConvert(t *testing.T) {
	tests := []struct {
		name  string
		input color.Color
		want  BinaryColor
	}{
		{"on passthrough", On, On},
		{"off passthrough", Off, Off},
		{"white", color.White, On},
		{"black", color.Black, Off},
		{"half gray", color.Gray{Y: 0x80}, On},
		{"just below half", color.Gray{Y: 0x7F}, Off},
		{"rgb565 green", Green, On},
		{"rgb565 blue", Blue, Off},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BinaryModel.Convert(tt.input))
		})
	}
}

func TestBinaryColorString(t *testing.T) {
	assert.Equal(t, "On", On.String())
	assert.Equal(t, "Off", Off.String())
}
