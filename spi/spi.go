// Package spi connects a BlueNRG to a Raspberry Pi SPI bus using go-rpio.
//
// The BlueNRG chip select is driven from a plain GPIO pin so that it stays
// low for the whole header plus payload, so the hardware chip select of the
// bus should be left unconnected.
package spi

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/rabidaudio/bluenrg"
	rpio "github.com/stianeikeland/go-rpio/v4"
)

const SPI_SPEED = 1_000_000 // 1 MHz

// DefaultActivePin is the BCM number of the GPIO used as the active line
// when none is given (the pin usually wired to CE0).
const DefaultActivePin = 8

var ErrNoDevice = fmt.Errorf("spi: no such spi device")

var _ bluenrg.Bus = (*Spi)(nil)
var _ bluenrg.Pin = rpio.Pin(0)

type Spi struct {
	dev        rpio.SpiDev
	chipSelect uint8
	active     rpio.Pin
}

// Device maps a bus index to its rpio device.
func Device(index int) (rpio.SpiDev, error) {
	switch index {
	case 0:
		return rpio.Spi0, nil
	case 1:
		return rpio.Spi1, nil
	case 2:
		return rpio.Spi2, nil
	default:
		return 0, errors.Wrapf(ErrNoDevice, "index %d", index)
	}
}

func Open() (*Spi, error) {
	return OpenDevice(rpio.Spi0, 0, DefaultActivePin, SPI_SPEED)
}

func OpenDevice(dev rpio.SpiDev, chipSelect uint8, activePin uint8, speed int) (spi *Spi, err error) {
	err = rpio.Open()
	if err != nil {
		return nil, errors.Wrap(err, "spi: open gpio memory")
	}
	err = rpio.SpiBegin(dev)
	if err != nil {
		return nil, errors.Wrap(err, "spi: begin")
	}
	rpio.SpiChipSelect(chipSelect)
	rpio.SpiSpeed(speed)
	rpio.SpiMode(0, 0)

	active := rpio.Pin(activePin)
	active.Output()
	active.High()

	spi = &Spi{dev: dev, chipSelect: chipSelect, active: active}
	return
}

// Transfer exchanges a single byte.
func (*Spi) Transfer(b byte) byte {
	buf := []byte{b}
	rpio.SpiExchange(buf)
	return buf[0]
}

// Active returns the GPIO pin used as the BlueNRG active line.
func (s *Spi) Active() rpio.Pin {
	return s.active
}

// Driver creates a driver using this bus and its active line.
func (s *Spi) Driver() *bluenrg.Driver {
	return bluenrg.New(s.active, s)
}

func (s *Spi) Close() error {
	s.active.High()
	rpio.SpiEnd(s.dev)
	return rpio.Close()
}
