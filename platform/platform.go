// Package platform is the board abstraction: Open returns the hardware
// handles the services run on. The rp2040 build wires real pins, the ADC,
// the I2C LCD and the debug UART; every other build returns an in-memory
// simulation usable from tests and the sim command.
package platform

import (
	"io"

	"colorpot-go/services/buttons"
	"colorpot-go/services/colorloop"
	"colorpot-go/services/display"
)

// Hardware bundles everything the services need from the board.
type Hardware struct {
	Board   colorloop.Board
	ButtonA buttons.IRQPin
	ButtonB buttons.IRQPin
	Screen  display.Screen
	Console io.Writer
}
