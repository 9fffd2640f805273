package engine

import (
	"colorpot-go/color"
	"colorpot-go/x/mathx"
)

// Param identifies which HSV component the potentiometer writes.
type Param uint8

const (
	ParamHue Param = iota
	ParamSaturation
	ParamValue

	numParams
)

func (p Param) String() string {
	switch p {
	case ParamHue:
		return "hue"
	case ParamSaturation:
		return "saturation"
	case ParamValue:
		return "value"
	default:
		return "unknown"
	}
}

// Letter returns the single-character label shown by the indicator display.
func (p Param) Letter() byte {
	switch p {
	case ParamSaturation:
		return 'S'
	case ParamValue:
		return 'V'
	default:
		return 'H'
	}
}

// Selector is the button-driven state machine choosing the writable HSV
// component. Exactly one component is writable at any time; the cycle is
// Hue -> Saturation -> Value -> Hue with no terminal state.
//
// Button wiring: A steps backward (Prev), B steps forward (Next), matching
// the left/right page rotation of the reference firmware.
type Selector struct {
	cur Param
}

// Current returns the selected parameter; the zero value selects Hue.
func (s *Selector) Current() Param { return s.cur }

// Next advances the selection one step forward, wrapping after Value.
func (s *Selector) Next() Param {
	s.cur = (s.cur + 1) % numParams
	return s.cur
}

// Prev moves the selection one step backward, wrapping before Hue.
func (s *Selector) Prev() Param {
	s.cur = (s.cur + numParams - 1) % numParams
	return s.cur
}

// Apply overwrites the selected component of h with the clamped scalar.
// This is absolute-position control: the pot position is the value.
func (s *Selector) Apply(h *color.Hsv, scalar float32) {
	scalar = mathx.Clamp(scalar, 0, 1)
	switch s.cur {
	case ParamSaturation:
		h.S = scalar
	case ParamValue:
		h.V = scalar
	default:
		h.H = scalar
	}
}
