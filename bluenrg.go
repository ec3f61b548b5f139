// Package bluenrg talks to a BlueNRG Bluetooth Low Energy network
// co-processor over its SPI interface.
//
// Every transaction starts with a fixed 5 byte header: the host sends a
// read or write opcode followed by four filler bytes, and the co-processor
// answers with a status byte followed by its current write and read buffer
// sizes. Payload bytes follow the header only when the co-processor is
// ready and has room for them.
//
// The driver does no locking. Calls on a single [Driver] must not overlap.
//
// See the [BlueNRG SPI user manual] for the wire protocol.
//
// [BlueNRG SPI user manual]: http://www.st.com/st-web-ui/static/active/en/resource/technical/document/user_manual/DM00114498.pdf
package bluenrg

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

const (
	opWrite = 0x0A
	opRead  = 0x0B
)

// headerSize is the length of the status header that opens every transaction.
const headerSize = 5

// Pin is a digital output. The driver uses it as the active (chip select)
// line of the co-processor, which is enabled while low.
type Pin interface {
	High()
	Low()
}

// Bus exchanges a single byte over SPI, blocking until the transfer is done.
type Bus interface {
	Transfer(b byte) byte
}

// Capacity holds the buffer sizes reported in a status header.
// The values are only valid for the transaction that reported them.
type Capacity struct {
	Write uint16 // bytes the co-processor will accept
	Read  uint16 // bytes the co-processor has ready to send
}

func (c Capacity) String() string {
	return fmt.Sprintf("write=%d read=%d", c.Write, c.Read)
}

// Driver is a BlueNRG SPI driver. It owns the active line and the bus
// for its whole lifetime. Create one with [New].
//
// Debug logging can be enabled by specifying LogMode. For [LogModeLogger],
// supply a logger to Logger.
type Driver struct {
	LogMode LogMode            // direct the driver logs
	Logger  logrus.FieldLogger // if LogMode == LogModeLogger, the logger to use

	active Pin
	bus    Bus
}

// New creates a driver over the given active line and bus.
// The active line is driven high (deselected) before New returns.
func New(active Pin, bus Bus) *Driver {
	active.High()
	return &Driver{active: active, bus: bus}
}

// header runs the 5 byte status exchange with the given opcode.
// The active line must already be low.
func (d *Driver) header(op byte) (Status, Capacity) {
	var frame [headerSize]byte
	frame[0] = d.bus.Transfer(op)
	for i := 1; i < headerSize; i++ {
		frame[i] = d.bus.Transfer(0)
	}
	return Status(frame[0]), Capacity{
		Write: binary.BigEndian.Uint16(frame[1:3]),
		Read:  binary.BigEndian.Uint16(frame[3:5]),
	}
}

// Check reads the device status and returns the maximum write and read
// sizes. It returns [ErrSleeping] if the device is asleep and an
// [UnknownStatusError] for any other status that is not ready.
func (d *Driver) Check() (Capacity, error) {
	d.active.Low()
	status, c := d.header(opRead)
	d.active.High()

	switch status.Kind() {
	case StatusReady:
		d.logger().WithFields(logrus.Fields{"write": c.Write, "read": c.Read}).Debug("bluenrg: ready")
		return c, nil
	case StatusSleeping:
		d.logger().WithField("status", status).Debug("bluenrg: sleeping")
		return Capacity{}, ErrSleeping
	default:
		d.logger().WithField("status", status).Debug("bluenrg: unknown status")
		return Capacity{}, UnknownStatusError(status)
	}
}

// Wakeup polls the device until it is no longer sleeping. A sleeping
// device is checked again at most retries times, with no delay in between.
// The result of the last check is returned, so a device that never wakes
// up yields [ErrSleeping].
func (d *Driver) Wakeup(retries uint32) (Capacity, error) {
	left := retries
	for {
		c, err := d.Check()
		sleeping := errors.Is(err, ErrSleeping)
		if !sleeping || left == 0 {
			if sleeping {
				d.logger().WithField("retries", retries).Debug("bluenrg: still sleeping")
			}
			return c, err
		}
		left--
	}
}

// Receive reads exactly len(buf) bytes from the device into buf.
//
// Unlike [Driver.Check], any status other than ready, sleeping included,
// fails with an [UnknownStatusError]. If the device has fewer than
// len(buf) bytes ready, Receive returns a [BufferSizeError] holding the
// available size and no payload is read.
func (d *Driver) Receive(buf []byte) error {
	d.active.Low()
	defer d.active.High()

	status, c := d.header(opRead)
	if err := d.admit(status, c.Read, len(buf)); err != nil {
		return err
	}
	for i := range buf {
		buf[i] = d.bus.Transfer(0)
	}
	return nil
}

// Send writes all of buf to the device.
//
// Status handling mirrors [Driver.Receive]: any status other than ready
// fails with an [UnknownStatusError], and a buffer larger than the
// device's write capacity fails with a [BufferSizeError] before any
// payload byte is sent.
func (d *Driver) Send(buf []byte) error {
	d.active.Low()
	defer d.active.High()

	status, c := d.header(opWrite)
	if err := d.admit(status, c.Write, len(buf)); err != nil {
		return err
	}
	for _, b := range buf {
		d.bus.Transfer(b)
	}
	return nil
}

// admit decides whether a payload of n bytes may follow a header.
func (d *Driver) admit(status Status, available uint16, n int) error {
	if status.Kind() != StatusReady {
		d.logger().WithField("status", status).Debug("bluenrg: transfer rejected")
		return UnknownStatusError(status)
	}
	if int(available) < n {
		d.logger().WithFields(logrus.Fields{"available": available, "requested": n}).Debug("bluenrg: buffer too large")
		return BufferSizeError(available)
	}
	return nil
}
