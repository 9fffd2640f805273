// Package stats is the liveness heartbeat: it logs the latest colour
// snapshot at a configurable interval so a serial console shows at a glance
// that frames are still advancing.
package stats

import (
	"context"
	"time"

	"colorpot-go/bus"
	"colorpot-go/types"
	"colorpot-go/x/mathx"
)

const serviceName = "stats"

var (
	topicConfig = bus.Topic{"config", "stats"}
	topicState  = bus.Topic{"color", "state"}
)

const defaultInterval = 5 * time.Second

type Service struct {
	interval  time.Duration
	lastFrame uint32
}

func New() *Service {
	return &Service{interval: defaultInterval}
}

// Start runs the heartbeat in a goroutine.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) {
	go s.loop(ctx, conn)
}

func (s *Service) loop(ctx context.Context, conn *bus.Connection) {
	cfgSub := conn.Subscribe(topicConfig)
	stateSub := conn.Subscribe(topicState)
	defer conn.Unsubscribe(cfgSub)
	defer conn.Unsubscribe(stateSub)

	var state types.ColorState
	haveState := false

	tk := time.NewTicker(s.interval)
	defer tk.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-cfgSub.Channel():
			if s.applyConfig(msg.Payload) {
				tk.Reset(s.interval)
			}
		case msg := <-stateSub.Channel():
			if st, ok := msg.Payload.(types.ColorState); ok {
				state = st
				haveState = true
			}
		case <-tk.C:
			s.report(state, haveState)
		}
	}
}

func (s *Service) report(st types.ColorState, have bool) {
	if !have {
		println("[" + serviceName + "] no colour state yet")
		return
	}
	delta := st.Frame - s.lastFrame
	s.lastFrame = st.Frame
	println("["+serviceName+"] frame", st.Frame, "(+", delta, ") param", st.Param,
		"hsv", pct(st.H), pct(st.S), pct(st.V))
}

func pct(v float32) int {
	return mathx.Clamp(int(v*100+0.5), 0, 100)
}

func (s *Service) applyConfig(payload any) bool {
	m, ok := payload.(map[string]any)
	if !ok {
		return false
	}
	v, ok := m["interval"].(float64)
	if !ok || v <= 0 {
		return false
	}
	s.interval = time.Duration(mathx.Clamp(int(v), 1, 3600)) * time.Second
	return true
}
