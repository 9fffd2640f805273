// Package display renders the colour state on a 16x2 character LCD. It is
// a pure bus consumer: retained color/state and color/param messages carry
// everything it shows, so it can start before or after the colour loop.
package display

import (
	"context"
	"strconv"

	"colorpot-go/bus"
	"colorpot-go/types"
	"colorpot-go/x/mathx"
)

// Screen is the subset of the HD44780 I2C driver the service needs; the
// host build substitutes an in-memory fake.
type Screen interface {
	ClearDisplay() error
	SetCursor(col, row uint8) error
	Print(data []byte) error
}

const serviceName = "display"

var (
	topicState = bus.Topic{"color", "state"}
	topicParam = bus.Topic{"color", "param"}
)

// Service drives one screen from bus snapshots.
type Service struct {
	scr   Screen
	state types.ColorState
	param string
	line  [16]byte // row scratch, avoids per-render allocation
}

func New(scr Screen) *Service {
	return &Service{scr: scr, param: "hue"}
}

// Start runs the render loop in a goroutine.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) {
	go s.loop(ctx, conn)
}

func (s *Service) loop(ctx context.Context, conn *bus.Connection) {
	stateSub := conn.Subscribe(topicState)
	paramSub := conn.Subscribe(topicParam)
	defer conn.Unsubscribe(stateSub)
	defer conn.Unsubscribe(paramSub)

	if err := s.scr.ClearDisplay(); err != nil {
		println("["+serviceName+"] clear:", err.Error())
	}

	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-stateSub.Channel():
			if st, ok := msg.Payload.(types.ColorState); ok {
				s.state = st
				s.param = st.Param
				s.render()
			}
		case msg := <-paramSub.Channel():
			if ps, ok := msg.Payload.(types.ParamSelect); ok {
				s.param = ps.Param
				s.render()
			}
		}
	}
}

// render paints both rows. Row 0 shows the HSV components as percentages,
// row 1 the component the pot currently adjusts.
func (s *Service) render() {
	row0 := s.line[:0]
	row0 = appendComponent(row0, 'H', s.state.H)
	row0 = append(row0, ' ')
	row0 = appendComponent(row0, 'S', s.state.S)
	row0 = append(row0, ' ')
	row0 = appendComponent(row0, 'V', s.state.V)
	row0 = pad(row0, 16)
	s.write(0, row0)

	row1 := s.line[:0]
	row1 = append(row1, "adjust: "...)
	row1 = append(row1, paramLetter(s.param))
	row1 = pad(row1, 16)
	s.write(1, row1)
}

func (s *Service) write(row uint8, data []byte) {
	if err := s.scr.SetCursor(0, row); err != nil {
		println("["+serviceName+"] cursor:", err.Error())
		return
	}
	if err := s.scr.Print(data); err != nil {
		println("["+serviceName+"] print:", err.Error())
	}
}

// appendComponent writes "X" plus the value as a right-aligned percentage,
// three cells wide so 0..100 all fit.
func appendComponent(dst []byte, letter byte, v float32) []byte {
	pct := mathx.Clamp(int(v*100+0.5), 0, 100)
	dst = append(dst, letter)
	if pct < 100 {
		dst = append(dst, ' ')
	}
	if pct < 10 {
		dst = append(dst, ' ')
	}
	return strconv.AppendInt(dst, int64(pct), 10)
}

func pad(dst []byte, width int) []byte {
	for len(dst) < width {
		dst = append(dst, ' ')
	}
	return dst
}

func paramLetter(param string) byte {
	switch param {
	case "saturation":
		return 'S'
	case "value":
		return 'V'
	default:
		return 'H'
	}
}
