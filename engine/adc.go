package engine

import "colorpot-go/x/mathx"

// adcFullScale matches the 16-bit reading machine.ADC.Get returns.
const adcFullScale = 65535

// Averager accumulates raw ADC readings across one frame and collapses them
// into a single [0,1] scalar at the frame boundary. Averaging over the 10 ms
// window suppresses high-frequency noise on the potentiometer line at the
// cost of one frame of latency.
//
// Not safe for concurrent use; the frame engine owns it.
type Averager struct {
	sum   uint32
	count uint16
	last  float32
}

// Add accumulates one raw reading. One frame holds at most 100 samples, so
// the 32-bit sum cannot overflow.
func (a *Averager) Add(raw uint16) {
	a.sum += uint32(raw)
	a.count++
}

// Empty reports whether no sample arrived since the last Finish.
func (a *Averager) Empty() bool { return a.count == 0 }

// Finish returns the scaled mean of the readings seen since the last call
// and resets the accumulator. A frame with no samples returns the previous
// frame's value (0 before the first non-empty frame) rather than dividing
// by zero; frame length and sample timing are configured independently, so
// this case is real, not theoretical.
func (a *Averager) Finish() float32 {
	if a.count == 0 {
		return a.last
	}
	mean := mathx.RoundDiv(a.sum, uint32(a.count))
	a.sum = 0
	a.count = 0
	a.last = mathx.Clamp(float32(mean)/adcFullScale, 0, 1)
	return a.last
}
