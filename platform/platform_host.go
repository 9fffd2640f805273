//go:build !rp2040

package platform

import (
	"os"
	"sync"

	"colorpot-go/services/colorloop"
	"colorpot-go/x/mathx"
)

// SimPin records the last level written to an LED channel.
type SimPin struct {
	mu     sync.Mutex
	number int
	level  bool
}

func (p *SimPin) Set(high bool) {
	p.mu.Lock()
	p.level = high
	p.mu.Unlock()
}

func (p *SimPin) Level() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.level
}

func (p *SimPin) Number() int { return p.number }

// SimADC models the pot: Get eases the reading toward a target so turning
// the knob in the sim produces the same gradual sweep a finger does.
type SimADC struct {
	mu     sync.Mutex
	cur    uint16
	target uint16
}

// Get returns the current reading, moved one easing step toward the target.
func (a *SimADC) Get() uint16 {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cur = mathx.LerpU16(a.cur, a.target, 2048)
	return a.cur
}

// SetPercent points the knob at a position in [0,100].
func (a *SimADC) SetPercent(pct uint16) {
	a.mu.Lock()
	a.target = mathx.MapU16(pct, 0, 100, 0, 65535)
	a.mu.Unlock()
}

// SimButton delivers press edges straight into the registered IRQ handler.
type SimButton struct {
	mu      sync.Mutex
	handler func()
}

func (b *SimButton) Get() bool { return true } // idle high, active low

func (b *SimButton) SetIRQ(handler func()) error {
	b.mu.Lock()
	b.handler = handler
	b.mu.Unlock()
	return nil
}

func (b *SimButton) ClearIRQ() error {
	b.mu.Lock()
	b.handler = nil
	b.mu.Unlock()
	return nil
}

// Press fires one falling edge.
func (b *SimButton) Press() {
	b.mu.Lock()
	h := b.handler
	b.mu.Unlock()
	if h != nil {
		h()
	}
}

// SimScreen is an in-memory 16x2 LCD that mirrors writes to stdout.
type SimScreen struct {
	mu   sync.Mutex
	rows [2]string
	row  uint8
}

func (s *SimScreen) ClearDisplay() error {
	s.mu.Lock()
	s.rows = [2]string{}
	s.row = 0
	s.mu.Unlock()
	return nil
}

func (s *SimScreen) SetCursor(col, row uint8) error {
	s.mu.Lock()
	if row < 2 {
		s.row = row
	}
	s.mu.Unlock()
	return nil
}

func (s *SimScreen) Print(data []byte) error {
	s.mu.Lock()
	s.rows[s.row] = string(data)
	r := s.rows
	s.mu.Unlock()
	println("lcd |" + r[0] + "|")
	println("    |" + r[1] + "|")
	return nil
}

func (s *SimScreen) Rows() [2]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rows
}

type simBoard struct {
	mu   sync.Mutex
	pins map[int]*SimPin
	adc  *SimADC
}

func (b *simBoard) Output(pin int) (colorloop.OutputPin, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.pins[pin]
	if !ok {
		p = &SimPin{number: pin}
		b.pins[pin] = p
	}
	return p, nil
}

func (b *simBoard) Pot() colorloop.ADC { return b.adc }

// Pin exposes a channel pin for inspection.
func (b *simBoard) Pin(n int) *SimPin {
	p, _ := b.Output(n)
	return p.(*SimPin)
}

// Sim exposes the simulated controls behind a Hardware.
type Sim struct {
	Board   *simBoard
	Pot     *SimADC
	ButtonA *SimButton
	ButtonB *SimButton
	Screen  *SimScreen
}

// OpenSim builds the simulated board along with its control handles.
func OpenSim() (*Hardware, *Sim) {
	adc := &SimADC{}
	sim := &Sim{
		Board:   &simBoard{pins: map[int]*SimPin{}, adc: adc},
		Pot:     adc,
		ButtonA: &SimButton{},
		ButtonB: &SimButton{},
		Screen:  &SimScreen{},
	}
	hw := &Hardware{
		Board:   sim.Board,
		ButtonA: sim.ButtonA,
		ButtonB: sim.ButtonB,
		Screen:  sim.Screen,
		Console: os.Stdout,
	}
	return hw, sim
}

// Open returns the simulated board.
func Open() (*Hardware, error) {
	hw, _ := OpenSim()
	return hw, nil
}
