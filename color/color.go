// Package color holds the HSV colour state of the lamp and its conversion
// to RGB duty fractions. All components are fractions in [0,1]; hue is a
// fraction of the full circle rather than degrees.
package color

import "colorpot-go/x/mathx"

// Hsv is a hue/saturation/value triple, each in [0,1].
type Hsv struct {
	H float32
	S float32
	V float32
}

// Rgb holds per-channel duty fractions in [0,1]. Values are derived from an
// Hsv via ToRgb and never mutated directly.
type Rgb struct {
	R float32
	G float32
	B float32
}

// Start is the colour shown at power-on: a warm magenta.
var Start = Hsv{H: 0.9167, S: 0.75, V: 0.80}

// Clamped returns a copy with every component limited to [0,1].
func (c Hsv) Clamped() Hsv {
	return Hsv{
		H: mathx.Clamp(c.H, 0, 1),
		S: mathx.Clamp(c.S, 0, 1),
		V: mathx.Clamp(c.V, 0, 1),
	}
}

// ToRgb converts to RGB duty fractions using the usual sector decomposition:
// chroma C = V*S, X = C*(1-|((H*6) mod 2)-1|), offset m = V-C, with the
// channel ordering picked by which sixth of the hue circle H falls into.
// H=1 wraps to the H=0 case, S=0 collapses to grey (R=G=B=V) and V=0 yields
// black regardless of the other components.
func (c Hsv) ToRgb() Rgb {
	c = c.Clamped()

	chroma := c.S * c.V
	h6 := c.H * 6
	sector := int(h6)
	frac := h6 - float32(sector)

	// In even sectors the ramp rises, in odd sectors it falls.
	var x float32
	if sector&1 == 0 {
		x = chroma * frac
	} else {
		x = chroma * (1 - frac)
	}
	m := c.V - chroma

	var r, g, b float32
	switch sector {
	case 0:
		r, g, b = chroma, x, 0
	case 1:
		r, g, b = x, chroma, 0
	case 2:
		r, g, b = 0, chroma, x
	case 3:
		r, g, b = 0, x, chroma
	case 4:
		r, g, b = x, 0, chroma
	default:
		// Sector 5, and H=1 which lands in "sector 6" with frac 0.
		r, g, b = chroma, 0, x
	}

	return Rgb{R: r + m, G: g + m, B: b + m}
}

// Clamped returns a copy with every channel limited to [0,1].
func (d Rgb) Clamped() Rgb {
	return Rgb{
		R: mathx.Clamp(d.R, 0, 1),
		G: mathx.Clamp(d.G, 0, 1),
		B: mathx.Clamp(d.B, 0, 1),
	}
}
