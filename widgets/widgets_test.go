package widgets

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderKeyHelp(t *testing.T) {
	out := RenderKeyHelp([]KeySection{{
		Title: "Play",
		Keys:  []KeyBinding{{Key: "enter", Desc: "play effect"}},
	}})
	assert.Equal(t, "Play\n  enter        play effect", out)
}

func TestRgbToHex(t *testing.T) {
	assert.Equal(t, "#0d0887", rgbToHex([3]uint8{13, 8, 135}))
}
