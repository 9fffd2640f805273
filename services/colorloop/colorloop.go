// Package colorloop owns the colour engine. One goroutine runs the 100 us
// tick loop: sample the pot, advance the engine, drive the LED pins. Button
// presses and control requests arrive over the bus and are folded into the
// engine between ticks, so the engine never needs a lock.
package colorloop

import (
	"context"
	"time"

	"colorpot-go/bus"
	"colorpot-go/color"
	"colorpot-go/engine"
	"colorpot-go/errcode"
	"colorpot-go/types"
	"colorpot-go/x/timex"
)

// OutputPin drives one LED channel.
type OutputPin interface {
	Set(high bool)
}

// ADC reads the potentiometer as a raw 16-bit sample.
type ADC interface {
	Get() uint16
}

// Board resolves configured pin numbers to hardware and exposes the pot.
type Board interface {
	Output(pin int) (OutputPin, error)
	Pot() ADC
}

const serviceName = "colorloop"

var (
	topicConfig  = bus.Topic{"config", "colorloop"}
	topicButtons = bus.Topic{"io", "button", bus.Plus, "pressed"}
	topicControl = bus.Topic{"color", "control", bus.Plus}

	// TopicState carries the retained per-frame colour snapshot.
	TopicState = bus.Topic{"color", "state"}
	// TopicParam carries the retained writable-parameter selection.
	TopicParam = bus.Topic{"color", "param"}
)

// Service runs the colour loop.
type Service struct {
	eng   *engine.Engine
	board Board
	pot   ADC
	ticks <-chan time.Time

	r, g, b   OutputPin
	activeLow bool

	stateEvery uint32
	lastParam  engine.Param
	paramSent  bool
}

// New creates the service. A nil ticks channel means Start runs its own
// ticker at the engine tick period; tests inject their own.
func New(board Board, ticks <-chan time.Time) *Service {
	return &Service{
		eng:        engine.New(color.Start),
		board:      board,
		pot:        board.Pot(),
		ticks:      ticks,
		stateEvery: 10,
	}
}

// Start runs the tick loop in a goroutine.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) {
	go s.loop(ctx, conn)
}

func (s *Service) loop(ctx context.Context, conn *bus.Connection) {
	cfgSub := conn.Subscribe(topicConfig)
	btnSub := conn.Subscribe(topicButtons)
	ctlSub := conn.Subscribe(topicControl)
	defer conn.Unsubscribe(cfgSub)
	defer conn.Unsubscribe(btnSub)
	defer conn.Unsubscribe(ctlSub)

	ticks := s.ticks
	if ticks == nil {
		tk := time.NewTicker(engine.TickPeriod)
		defer tk.Stop()
		ticks = tk.C
	}

	for {
		select {
		case <-ctx.Done():
			s.allOff()
			return
		case msg := <-cfgSub.Channel():
			s.applyConfig(msg.Payload)
		case msg := <-btnSub.Channel():
			s.handleButton(msg)
		case msg := <-ctlSub.Channel():
			s.handleControl(conn, msg)
		case <-ticks:
			s.tick(conn)
		}
	}
}

// tick is the real-time path: one engine step plus the pin writes. The
// sample is taken after the step so readings accumulate into the frame
// being rendered and land at its closing boundary.
func (s *Service) tick(conn *bus.Connection) {
	st := s.eng.Tick()
	s.drive(st)
	s.eng.Sample(s.pot.Get())
	if s.eng.TickIndex() == 1 {
		s.afterBoundary(conn)
	}
}

func (s *Service) drive(st engine.ChannelState) {
	on := func(v bool) bool {
		if s.activeLow {
			return !v
		}
		return v
	}
	if s.r != nil {
		s.r.Set(on(st.R))
	}
	if s.g != nil {
		s.g.Set(on(st.G))
	}
	if s.b != nil {
		s.b.Set(on(st.B))
	}
}

func (s *Service) allOff() {
	s.drive(engine.ChannelState{})
}

// afterBoundary publishes the retained snapshots right after a frame
// boundary has run inside Tick.
func (s *Service) afterBoundary(conn *bus.Connection) {
	sel := s.eng.Selected()
	if !s.paramSent || sel != s.lastParam {
		s.paramSent = true
		s.lastParam = sel
		conn.Publish(conn.NewMessage(TopicParam, types.ParamSelect{
			Param: sel.String(),
			TSms:  timex.NowMs(),
		}, true))
	}

	frame := s.eng.Frame()
	if s.stateEvery == 0 || frame%s.stateEvery != 0 {
		return
	}
	hsv := s.eng.Color()
	duty := s.eng.Duty()
	conn.Publish(conn.NewMessage(TopicState, types.ColorState{
		H: hsv.H, S: hsv.S, V: hsv.V,
		R: duty.R, G: duty.G, B: duty.B,
		Param: sel.String(),
		Frame: frame,
		TSms:  timex.NowMs(),
	}, true))
}

func (s *Service) handleButton(msg *bus.Message) {
	if len(msg.Topic) < 4 {
		return
	}
	name, _ := msg.Topic[2].(string)
	switch name {
	case "a":
		s.eng.QueueStep(-1)
	case "b":
		s.eng.QueueStep(+1)
	}
}

func (s *Service) handleControl(conn *bus.Connection, msg *bus.Message) {
	op, _ := msg.Topic[len(msg.Topic)-1].(string)
	switch op {
	case "set":
		c, err := decodeColorSet(msg.Payload)
		if err != errcode.OK {
			conn.Reply(msg, types.ErrorReply{Error: string(err)}, false)
			return
		}
		s.eng.SetColor(color.Hsv{H: c.H, S: c.S, V: c.V})
		conn.Reply(msg, types.OKReply{OK: true}, false)
	default:
		conn.Reply(msg, types.ErrorReply{Error: string(errcode.Unsupported)}, false)
	}
}

func decodeColorSet(payload any) (types.ColorSet, errcode.Code) {
	switch p := payload.(type) {
	case types.ColorSet:
		return p, errcode.OK
	case map[string]any:
		var c types.ColorSet
		var ok [3]bool
		c.H, ok[0] = f32(p["h"])
		c.S, ok[1] = f32(p["s"])
		c.V, ok[2] = f32(p["v"])
		if !ok[0] || !ok[1] || !ok[2] {
			return types.ColorSet{}, errcode.InvalidParams
		}
		return c, errcode.OK
	default:
		return types.ColorSet{}, errcode.InvalidPayload
	}
}

func f32(v any) (float32, bool) {
	switch n := v.(type) {
	case float64:
		return float32(n), true
	case float32:
		return n, true
	case int:
		return float32(n), true
	default:
		return 0, false
	}
}

func (s *Service) applyConfig(payload any) {
	m, ok := payload.(map[string]any)
	if !ok {
		return
	}
	if v, ok := m["active_low"].(bool); ok {
		s.activeLow = v
	}
	if v, ok := m["state_every_frames"].(float64); ok && v >= 0 {
		s.stateEvery = uint32(v)
	}
	s.r = s.resolvePin(m, "red_pin", s.r)
	s.g = s.resolvePin(m, "green_pin", s.g)
	s.b = s.resolvePin(m, "blue_pin", s.b)
}

func (s *Service) resolvePin(m map[string]any, key string, cur OutputPin) OutputPin {
	v, ok := m[key].(float64)
	if !ok {
		return cur
	}
	pin, err := s.board.Output(int(v))
	if err != nil {
		println("[" + serviceName + "] " + key + ": " + err.Error())
		return cur
	}
	return pin
}
