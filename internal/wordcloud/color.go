package wordcloud

import (
	"fmt"
	"image/color"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// viridisStops samples matplotlib's viridis colormap at ten evenly spaced points.
var viridisStops = mustParseHexes(
	"#440154", "#482878", "#3e4989", "#31688e", "#26828e",
	"#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725",
)

func mustParseHexes(hexes ...string) []colorful.Color {
	colors := make([]colorful.Color, len(hexes))
	for i, h := range hexes {
		c, err := parseHex(h)
		if err != nil {
			panic(err)
		}
		colors[i] = c
	}
	return colors
}

func parseHex(s string) (colorful.Color, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return colorful.Color{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return c, nil
}

// Viridis maps t in [0, 1] onto the viridis colormap by linear
// interpolation between stops. Values outside the range are clamped.
func Viridis(t float64) colorful.Color {
	if t <= 0 {
		return viridisStops[0]
	}
	if t >= 1 {
		return viridisStops[len(viridisStops)-1]
	}
	pos := t * float64(len(viridisStops)-1)
	i := int(pos)
	return viridisStops[i].BlendRgb(viridisStops[i+1], pos-float64(i)).Clamped()
}

// rgba converts a colorful color to an opaque image color.
func rgba(c colorful.Color) color.RGBA {
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}
}
