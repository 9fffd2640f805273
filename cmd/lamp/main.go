package main

import (
	"context"
	"time"

	"colorpot-go/bus"
	"colorpot-go/platform"
	"colorpot-go/services/buttons"
	"colorpot-go/services/colorloop"
	"colorpot-go/services/config"
	"colorpot-go/services/display"
	"colorpot-go/services/stats"
)

const deviceID = "lamp"

func main() {
	// Allow USB CDC to enumerate before we print.
	time.Sleep(2 * time.Second)
	println("[main] colorpot boot, device", deviceID)

	hw, err := platform.Open()
	if err != nil {
		for {
			println("[main] hardware:", err.Error())
			time.Sleep(time.Second)
		}
	}
	hw.Console.Write([]byte("colorpot console up\r\n"))

	ctx := context.WithValue(context.Background(), config.CtxDeviceKey, deviceID)
	b := bus.NewBus(16)

	loop := colorloop.New(hw.Board, nil)
	btns := buttons.New()
	if err := btns.Register("a", hw.ButtonA); err != nil {
		println("[main] button a:", err.Error())
	}
	if err := btns.Register("b", hw.ButtonB); err != nil {
		println("[main] button b:", err.Error())
	}

	// Config goes first so its retained sections greet the others.
	config.NewConfigService().Start(ctx, b.NewConnection("config"))
	loop.Start(ctx, b.NewConnection("colorloop"))
	btns.Start(ctx, b.NewConnection("buttons"))
	display.New(hw.Screen).Start(ctx, b.NewConnection("display"))
	stats.New().Start(ctx, b.NewConnection("stats"))

	println("[main] services up")
	select {}
}
