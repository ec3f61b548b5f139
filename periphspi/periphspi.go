// Package periphspi connects a BlueNRG through periph.io, using a spidev
// port for the bus and any registered GPIO for the active line.
package periphspi

import (
	"github.com/pkg/errors"
	"github.com/rabidaudio/bluenrg"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// DefaultFreq is the bus clock used by Open when none is given.
const DefaultFreq = 1 * physic.MegaHertz

var (
	_ bluenrg.Bus = (*Spi)(nil)
	_ bluenrg.Pin = (*Spi)(nil)
)

// txer is the part of spi.Conn used here.
type txer interface {
	Tx(w, r []byte) error
}

// outPin is the part of gpio.PinOut used here.
type outPin interface {
	Out(l gpio.Level) error
}

// Spi is both the bus and the active line of a BlueNRG.
//
// bluenrg treats both as infallible, so Spi keeps the first error
// reported by periph and returns it from Err. Check Err after a driver
// call returns to tell a real device status from a broken bus.
type Spi struct {
	port spi.PortCloser
	conn txer
	pin  outPin
	err  error
}

// Open initializes periph, opens the named SPI port ("" for the first
// one) and the named GPIO as the active line.
func Open(portName, pinName string, freq physic.Frequency) (*Spi, error) {
	if _, err := host.Init(); err != nil {
		return nil, errors.Wrap(err, "periphspi: failed to initialize periph host")
	}
	port, err := spireg.Open(portName)
	if err != nil {
		return nil, errors.Wrapf(err, "periphspi: failed to open SPI port %q", portName)
	}
	if freq == 0 {
		freq = DefaultFreq
	}
	conn, err := port.Connect(freq, spi.Mode0, 8)
	if err != nil {
		_ = port.Close()
		return nil, errors.Wrap(err, "periphspi: failed to connect SPI")
	}
	pin := gpioreg.ByName(pinName)
	if pin == nil {
		_ = port.Close()
		return nil, errors.Errorf("periphspi: no GPIO named %q", pinName)
	}
	s := New(conn, pin)
	s.port = port
	if err := s.Err(); err != nil {
		_ = port.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an already connected bus and pin. The pin is driven high.
func New(conn txer, pin outPin) *Spi {
	s := &Spi{conn: conn, pin: pin}
	s.High()
	return s
}

func (s *Spi) fail(err error) {
	if s.err == nil {
		s.err = err
	}
}

func (s *Spi) Transfer(b byte) byte {
	w := [1]byte{b}
	var r [1]byte
	if err := s.conn.Tx(w[:], r[:]); err != nil {
		s.fail(errors.Wrap(err, "periphspi: transfer"))
	}
	return r[0]
}

func (s *Spi) High() { s.out(gpio.High) }
func (s *Spi) Low()  { s.out(gpio.Low) }

func (s *Spi) out(l gpio.Level) {
	if err := s.pin.Out(l); err != nil {
		s.fail(errors.Wrapf(err, "periphspi: set active %s", l))
	}
}

// Err returns the first error seen on the bus or the pin, if any.
func (s *Spi) Err() error {
	return s.err
}

// Driver creates a driver using s as both bus and active line.
func (s *Spi) Driver() *bluenrg.Driver {
	return bluenrg.New(s, s)
}

// Close deselects the device and releases the port.
func (s *Spi) Close() error {
	s.High()
	if s.port == nil {
		return nil
	}
	return s.port.Close()
}
