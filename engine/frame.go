// Package engine is the real-time colour core: per-frame ADC averaging, the
// mode state machine, software PWM scheduling and the frame sequencer that
// ties them together. It is deliberately hardware-free; the colorloop
// service feeds it samples and button steps and drives pins from the states
// it returns, and tests call Tick directly to simulate timing.
package engine

import (
	"time"

	"colorpot-go/color"
)

// Frame geometry: 100 ticks of 100 us give the 10 ms colour frame.
const (
	TicksPerFrame = 100
	TickPeriod    = 100 * time.Microsecond
	FramePeriod   = TicksPerFrame * TickPeriod
)

// Engine sequences one colour frame. All state is owned by a single caller
// goroutine (the timer context on hardware); Sample, QueueStep and Tick must
// not be called concurrently.
type Engine struct {
	hsv   color.Hsv
	duty  color.Rgb
	sel   Selector
	avg   Averager
	sched Scheduler

	tick  int
	frame uint32

	// Net selector steps queued by button edges since the last boundary.
	// Edges never touch the Selector directly; the boundary drains this.
	steps int
}

// New returns an engine showing start from its first frame.
func New(start color.Hsv) *Engine {
	e := &Engine{hsv: start.Clamped()}
	e.duty = e.hsv.ToRgb()
	e.sched.Program(e.duty)
	return e
}

// Sample feeds one raw ADC reading into the current frame's average.
func (e *Engine) Sample(raw uint16) { e.avg.Add(raw) }

// QueueStep records button edges as pending selector steps: negative for
// backward (button A), positive for forward (button B). The steps are
// consumed at the next frame boundary.
func (e *Engine) QueueStep(delta int) { e.steps += delta }

// SetColor replaces the whole HSV state, effective from the next boundary.
func (e *Engine) SetColor(c color.Hsv) { e.hsv = c.Clamped() }

// Tick runs one 100 us step and returns the channel drive for it. At tick 0
// the frame boundary runs first: finish the average, drain pending selector
// steps, write the scalar into the selected component, convert, reprogram.
func (e *Engine) Tick() ChannelState {
	if e.tick == 0 {
		e.frameBoundary()
	}
	st := e.sched.States(e.tick)
	e.tick++
	if e.tick == TicksPerFrame {
		e.tick = 0
	}
	return st
}

func (e *Engine) frameBoundary() {
	sampled := !e.avg.Empty()
	scalar := e.avg.Finish()

	for e.steps > 0 {
		e.sel.Next()
		e.steps--
	}
	for e.steps < 0 {
		e.sel.Prev()
		e.steps++
	}

	// A frame with no samples holds the colour instead of forcing the
	// selected component to the held average; this also keeps the start
	// colour intact until the first reading arrives.
	if sampled {
		e.sel.Apply(&e.hsv, scalar)
	}

	e.duty = e.hsv.ToRgb()
	e.sched.Program(e.duty)
	e.frame++
}

// Color returns the current HSV state.
func (e *Engine) Color() color.Hsv { return e.hsv }

// Duty returns the RGB duty programmed for the current frame.
func (e *Engine) Duty() color.Rgb { return e.duty }

// Selected returns the parameter the pot currently writes.
func (e *Engine) Selected() Param { return e.sel.Current() }

// Frame counts completed frame boundaries since start.
func (e *Engine) Frame() uint32 { return e.frame }

// TickIndex is the 0-based position within the current frame of the next
// Tick call.
func (e *Engine) TickIndex() int { return e.tick }
