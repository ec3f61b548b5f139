// Package tinygospi runs a BlueNRG from a microcontroller using TinyGo.
//
// Any tinygo.org/x/drivers SPI bus works, and a machine.Pin configured as
// an output can be used as the active line directly:
//
//	active := machine.D9
//	active.Configure(machine.PinConfig{Mode: machine.PinOutput})
//	machine.SPI0.Configure(machine.SPIConfig{Frequency: 1000000})
//	d := tinygospi.New(machine.SPI0, active)
package tinygospi

import (
	"github.com/rabidaudio/bluenrg"
	"tinygo.org/x/drivers"
)

var _ bluenrg.Bus = (*Bus)(nil)

// Bus adapts a drivers.SPI to a bluenrg bus. The first transfer error is
// kept and reported by Err.
type Bus struct {
	spi drivers.SPI
	err error
}

// New returns a driver for a BlueNRG on spi with the given active line.
func New(spi drivers.SPI, active bluenrg.Pin) (*bluenrg.Driver, *Bus) {
	b := &Bus{spi: spi}
	return bluenrg.New(active, b), b
}

func (b *Bus) Transfer(out byte) byte {
	in, err := b.spi.Transfer(out)
	if err != nil && b.err == nil {
		b.err = err
	}
	return in
}

// Err returns the first transfer error, if any.
func (b *Bus) Err() error {
	return b.err
}
