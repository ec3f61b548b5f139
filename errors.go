package bluenrg

import "fmt"

// ErrSleeping is returned by [Driver.Check] and [Driver.Wakeup] when the
// device reports that it is asleep. Retrying later may succeed.
var ErrSleeping = fmt.Errorf("bluenrg: device is sleeping")

// UnknownStatusError is returned when the device reports a status that is
// not understood. The value is the raw status byte.
type UnknownStatusError byte

func (e UnknownStatusError) Error() string {
	return fmt.Sprintf("bluenrg: unknown status 0x%02X", byte(e))
}

// BufferSizeError is returned by [Driver.Send] and [Driver.Receive] when
// the buffer is larger than the device can currently take or give.
// The value is the size the device reported as available.
type BufferSizeError uint16

func (e BufferSizeError) Error() string {
	return fmt.Sprintf("bluenrg: buffer too large, %d bytes available", uint16(e))
}
