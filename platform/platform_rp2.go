//go:build rp2040

package platform

import (
	"machine"

	"colorpot-go/errcode"
	"colorpot-go/services/colorloop"

	"github.com/jangala-dev/tinygo-uartx/uartx"
	"tinygo.org/x/drivers/hd44780i2c"
)

// Board profile: LED on GP2/GP3/GP6 (common anode, active low), pot on
// ADC0, buttons on GP14/GP15 to ground, LCD on I2C0 at GP4/GP5.
const (
	buttonAPin = machine.GP14
	buttonBPin = machine.GP15

	i2cSDA = machine.GP4
	i2cSCL = machine.GP5

	lcdAddr   = 0x27
	lcdWidth  = 16
	lcdHeight = 2

	consoleBaud = 115200
)

type rp2Pin struct {
	p machine.Pin
}

func (r *rp2Pin) Set(high bool) { r.p.Set(high) }

type rp2ADC struct {
	a machine.ADC
}

func (r *rp2ADC) Get() uint16 { return r.a.Get() }

type rp2Board struct{}

func (rp2Board) Output(pin int) (colorloop.OutputPin, error) {
	if pin < 0 || pin > 28 {
		return nil, errcode.UnknownPin
	}
	p := machine.Pin(pin)
	p.Configure(machine.PinConfig{Mode: machine.PinOutput})
	// Common-anode LED: idle high keeps the channel dark until driven.
	p.High()
	return &rp2Pin{p: p}, nil
}

func (rp2Board) Pot() colorloop.ADC {
	machine.InitADC()
	a := machine.ADC{Pin: machine.ADC0}
	a.Configure(machine.ADCConfig{})
	return &rp2ADC{a: a}
}

type rp2Button struct {
	p machine.Pin
}

func (b *rp2Button) Get() bool { return b.p.Get() }

func (b *rp2Button) SetIRQ(handler func()) error {
	b.p.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	return b.p.SetInterrupt(machine.PinFalling, func(machine.Pin) { handler() })
}

func (b *rp2Button) ClearIRQ() error {
	return b.p.SetInterrupt(0, nil)
}

// Open configures the board and returns its hardware handles.
func Open() (*Hardware, error) {
	if err := machine.I2C0.Configure(machine.I2CConfig{
		SDA: i2cSDA,
		SCL: i2cSCL,
	}); err != nil {
		return nil, err
	}
	lcd := hd44780i2c.New(machine.I2C0, lcdAddr)
	if err := lcd.Configure(hd44780i2c.Config{
		Width:  lcdWidth,
		Height: lcdHeight,
	}); err != nil {
		return nil, err
	}

	console := uartx.UART0
	console.Configure(uartx.UARTConfig{
		BaudRate: consoleBaud,
		TX:       machine.UART0_TX_PIN,
		RX:       machine.UART0_RX_PIN,
	})

	return &Hardware{
		Board:   rp2Board{},
		ButtonA: &rp2Button{p: buttonAPin},
		ButtonB: &rp2Button{p: buttonBPin},
		Screen:  &lcd,
		Console: console,
	}, nil
}
