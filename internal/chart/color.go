package chart

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// RGBA is a bar fill. A is the opacity in [0,1].
type RGBA struct {
	R, G, B uint8
	A       float64
}

func (c RGBA) String() string {
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", c.R, c.G, c.B, strconv.FormatFloat(c.A, 'f', -1, 64))
}

// Over composites the color on an opaque background and returns the
// terminal color for the result.
func (c RGBA) Over(bg [3]uint8) lipgloss.Color {
	mix := func(fg, back uint8) uint8 {
		return uint8(c.A*float64(fg) + (1-c.A)*float64(back) + 0.5)
	}
	return lipgloss.Color(fmt.Sprintf("#%02X%02X%02X", mix(c.R, bg[0]), mix(c.G, bg[1]), mix(c.B, bg[2])))
}

func randomColors(rng *rand.Rand, n int, alpha float64) []RGBA {
	out := make([]RGBA, n)
	for i := range out {
		out[i] = RGBA{
			R: uint8(rng.IntN(255)),
			G: uint8(rng.IntN(255)),
			B: uint8(rng.IntN(255)),
			A: alpha,
		}
	}
	return out
}

func parseHex(hex string) ([3]uint8, error) {
	s := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(s) != 6 {
		return [3]uint8{}, fmt.Errorf("color %q: want #RRGGBB", hex)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return [3]uint8{}, fmt.Errorf("color %q: %w", hex, err)
	}
	return [3]uint8{uint8(v >> 16), uint8(v >> 8), uint8(v)}, nil
}
