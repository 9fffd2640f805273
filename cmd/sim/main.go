//go:build !rp2040

// Command sim runs the whole lamp against the simulated board and takes
// knob and button input from stdin:
//
//	a | b          press a mode button
//	pot <0-100>    turn the knob to a position
//	set <h> <s> <v>  replace the colour over the control topic
//	state          show the latest retained colour snapshot
//	quit
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/google/shlex"

	"colorpot-go/bus"
	"colorpot-go/platform"
	"colorpot-go/services/buttons"
	"colorpot-go/services/colorloop"
	"colorpot-go/services/config"
	"colorpot-go/services/display"
	"colorpot-go/services/stats"
	"colorpot-go/types"
)

func main() {
	hw, sim := platform.OpenSim()

	ctx, cancel := context.WithCancel(
		context.WithValue(context.Background(), config.CtxDeviceKey, "lamp"))
	defer cancel()

	b := bus.NewBus(64)

	loop := colorloop.New(hw.Board, nil)
	btns := buttons.New()
	if err := btns.Register("a", hw.ButtonA); err != nil {
		fmt.Fprintln(os.Stderr, "button a:", err)
		os.Exit(1)
	}
	if err := btns.Register("b", hw.ButtonB); err != nil {
		fmt.Fprintln(os.Stderr, "button b:", err)
		os.Exit(1)
	}

	config.NewConfigService().Start(ctx, b.NewConnection("config"))
	loop.Start(ctx, b.NewConnection("colorloop"))
	btns.Start(ctx, b.NewConnection("buttons"))
	display.New(hw.Screen).Start(ctx, b.NewConnection("display"))
	stats.New().Start(ctx, b.NewConnection("stats"))

	cli := b.NewConnection("sim-cli")
	fmt.Println("colorpot sim ready (a, b, pot N, set H S V, state, quit)")

	in := bufio.NewScanner(os.Stdin)
	for in.Scan() {
		args, err := shlex.Split(in.Text())
		if err != nil {
			fmt.Println("parse:", err)
			continue
		}
		if len(args) == 0 {
			continue
		}
		switch args[0] {
		case "a":
			sim.ButtonA.Press()
		case "b":
			sim.ButtonB.Press()
		case "pot":
			if len(args) != 2 {
				fmt.Println("usage: pot <0-100>")
				continue
			}
			pct, err := strconv.ParseUint(args[1], 10, 16)
			if err != nil {
				fmt.Println("pot:", err)
				continue
			}
			sim.Pot.SetPercent(uint16(pct))
		case "set":
			if len(args) != 4 {
				fmt.Println("usage: set <h> <s> <v>")
				continue
			}
			var c types.ColorSet
			fields := []*float32{&c.H, &c.S, &c.V}
			ok := true
			for i, f := range fields {
				v, err := strconv.ParseFloat(args[i+1], 32)
				if err != nil {
					fmt.Println("set:", err)
					ok = false
					break
				}
				*f = float32(v)
			}
			if !ok {
				continue
			}
			rctx, rcancel := context.WithTimeout(ctx, time.Second)
			reply, err := cli.RequestWait(rctx, cli.NewMessage(
				bus.Topic{"color", "control", "set"}, c, false))
			rcancel()
			if err != nil {
				fmt.Println("set:", err)
				continue
			}
			fmt.Printf("reply: %+v\n", reply.Payload)
		case "state":
			showState(cli)
		case "quit", "q":
			return
		default:
			fmt.Println("unknown command:", args[0])
		}
	}
}

func showState(cli *bus.Connection) {
	sub := cli.Subscribe(colorloop.TopicState)
	defer cli.Unsubscribe(sub)
	select {
	case m := <-sub.Channel():
		if st, ok := m.Payload.(types.ColorState); ok {
			fmt.Printf("frame %d param %s hsv %.2f %.2f %.2f rgb %.2f %.2f %.2f\n",
				st.Frame, st.Param, st.H, st.S, st.V, st.R, st.G, st.B)
			return
		}
		fmt.Println("unexpected payload")
	case <-time.After(time.Second):
		fmt.Println("no colour state yet")
	}
}
