package bluenrg

import (
	"context"
	"time"
)

// maxFrame is the most a device can report as ready in one header.
const maxFrame = 0xFFFF

// Poll checks the device every interval and passes whatever it has ready
// to handle. The slice handed to handle is reused between calls.
//
// Poll returns nil once ctx is done. It stops early with the first error
// from handle or from the device; a sleeping device is not an error.
func Poll(ctx context.Context, d *Driver, interval time.Duration, handle func([]byte) error) error {
	c := Conn{Driver: d}
	buf := make([]byte, maxFrame)
	for {
		select {
		case <-time.After(interval):
			n, err := c.Read(buf)
			if err != nil {
				return err
			}
			if n == 0 {
				continue
			}
			d.logger().WithField("bytes", n).Debug("bluenrg: received frame")
			if err := handle(buf[:n]); err != nil {
				return err
			}
		case <-ctx.Done():
			return nil
		}
	}
}
