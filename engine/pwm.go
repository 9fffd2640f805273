package engine

import (
	"colorpot-go/color"
	"colorpot-go/x/mathx"
)

// ChannelState is the on/off drive for the three channels at one tick.
type ChannelState struct {
	R bool
	G bool
	B bool
}

// Scheduler turns three duty fractions into leading-edge PWM across the
// 100-tick frame: each channel is on from tick 0 until its threshold, so a
// channel spends exactly threshold/100 of the frame at logic high.
//
// Program only takes effect at tick 0 of the next frame. Swapping thresholds
// mid-frame would shorten or stretch the current pulse, which shows up as
// flicker on the LED.
type Scheduler struct {
	thresh  [3]uint8
	pending [3]uint8
	armed   bool
}

// Program stores the duty fractions to use from the next frame boundary on.
func (s *Scheduler) Program(d color.Rgb) {
	d = d.Clamped()
	s.pending = [3]uint8{dutyTicks(d.R), dutyTicks(d.G), dutyTicks(d.B)}
	s.armed = true
}

// States returns the channel drive for tick t (0-based within the frame).
// At t==0 any pending programming is latched first.
func (s *Scheduler) States(t int) ChannelState {
	if t == 0 && s.armed {
		s.thresh = s.pending
		s.armed = false
	}
	tt := uint8(mathx.Clamp(t, 0, TicksPerFrame-1))
	return ChannelState{
		R: tt < s.thresh[0],
		G: tt < s.thresh[1],
		B: tt < s.thresh[2],
	}
}

// dutyTicks converts a duty fraction to an on-tick count in [0,100],
// rounding half up so the smallest nonzero duty still lights for one tick.
func dutyTicks(d float32) uint8 {
	d = mathx.Clamp(d, 0, 1)
	return uint8(mathx.Clamp(int(d*TicksPerFrame+0.5), 0, TicksPerFrame))
}
