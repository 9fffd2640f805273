// Package buttons watches the A/B mode buttons and publishes debounced
// press events on the bus. The IRQ handler itself only does a non-blocking
// enqueue; debounce and publication happen on the service goroutine, so a
// bouncing switch can never stall the interrupt path.
package buttons

import (
	"context"
	"sync/atomic"
	"time"

	"colorpot-go/bus"
	"colorpot-go/types"
	"colorpot-go/x/mathx"
	"colorpot-go/x/timex"
)

// DefaultDebounce matches the 100 ms cooldown of the reference hardware.
const DefaultDebounce = 100 * time.Millisecond

// IRQPin is the minimal contract the platform provides per button: a level
// read and a press-edge interrupt (falling edge for the active-low buttons
// on the reference board).
type IRQPin interface {
	Get() bool
	SetIRQ(handler func()) error
	ClearIRQ() error
}

var topicConfigButtons = bus.Topic{"config", "buttons"}

// TopicPressed is the topic of a press event for the named button.
func TopicPressed(name string) bus.Topic { return bus.Topic{"io", "button", name, "pressed"} }

type isrEvent struct {
	name string
}

type button struct {
	name      string
	pin       IRQPin
	lastEvent time.Time
}

// Service owns the registered buttons.
type Service struct {
	isrQ     chan isrEvent
	btns     []*button
	debounce time.Duration
	drops    uint32 // ISR drop counter
}

func New() *Service {
	return &Service{
		isrQ:     make(chan isrEvent, 16),
		debounce: DefaultDebounce,
	}
}

// Register hooks a button up before Run. The IRQ handler runs in interrupt
// context and must stay allocation- and block-free.
func (s *Service) Register(name string, pin IRQPin) error {
	b := &button{name: name, pin: pin}
	handler := func() {
		select {
		case s.isrQ <- isrEvent{name: name}:
		default:
			atomic.AddUint32(&s.drops, 1) // protect ISR path
		}
	}
	if err := pin.SetIRQ(handler); err != nil {
		return err
	}
	s.btns = append(s.btns, b)
	return nil
}

// Start runs the service loop in a goroutine.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) {
	go s.loop(ctx, conn)
}

func (s *Service) loop(ctx context.Context, conn *bus.Connection) {
	cfgSub := conn.Subscribe(topicConfigButtons)
	defer conn.Unsubscribe(cfgSub)

	for {
		select {
		case <-ctx.Done():
			for _, b := range s.btns {
				_ = b.pin.ClearIRQ()
			}
			return
		case msg := <-cfgSub.Channel():
			s.applyConfig(msg.Payload)
		case ev := <-s.isrQ:
			s.handleEdge(conn, ev)
		}
	}
}

func (s *Service) handleEdge(conn *bus.Connection, ev isrEvent) {
	b := s.find(ev.name)
	if b == nil {
		return
	}
	now := time.Now()
	if !b.lastEvent.IsZero() && now.Sub(b.lastEvent) < s.debounce {
		return
	}
	b.lastEvent = now
	conn.Publish(conn.NewMessage(
		TopicPressed(b.name),
		types.ButtonEvent{Name: b.name, TSms: timex.NowMs()},
		false,
	))
}

func (s *Service) find(name string) *button {
	for _, b := range s.btns {
		if b.name == name {
			return b
		}
	}
	return nil
}

func (s *Service) applyConfig(payload any) {
	m, ok := payload.(map[string]any)
	if !ok {
		return
	}
	if v, ok := m["debounce_ms"].(float64); ok {
		ms := mathx.Clamp(int(v), 0, 2000)
		s.debounce = time.Duration(ms) * time.Millisecond
	}
}

// ISRDrops reports edges lost to a full queue.
func (s *Service) ISRDrops() uint32 { return atomic.LoadUint32(&s.drops) }
