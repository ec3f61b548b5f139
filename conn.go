package bluenrg

import (
	"errors"
	"io"
)

// Conn adapts a [Driver] to [io.Reader] and [io.Writer], splitting
// transfers to fit the buffer sizes the device reports.
type Conn struct {
	*Driver
	Retries uint32 // wakeup retries per chunk, and attempts per chunk while the device has no room
}

var _ io.ReadWriter = (*Conn)(nil)

// Write sends all of p, waking the device before every chunk. If the
// device keeps reporting no room, or falls asleep before the chunk is
// sent, Write gives up with [io.ErrShortWrite].
func (c *Conn) Write(p []byte) (n int, err error) {
	var misses uint32
	for n < len(p) {
		capacity, err := c.Wakeup(c.Retries)
		if err != nil {
			return n, err
		}
		size := min(len(p)-n, int(capacity.Write))
		if size > 0 {
			size, err = c.transfer(c.Send, p[n:n+size])
			if err != nil {
				return n, err
			}
		}
		if size == 0 {
			if misses >= c.Retries {
				return n, io.ErrShortWrite
			}
			misses++
			continue
		}
		misses = 0
		n += size
	}
	return n, nil
}

// Read receives as many bytes as the device has ready, up to len(p).
// A sleeping device or one with nothing to send yields 0, nil, even if
// it falls asleep between the status check and the read.
func (c *Conn) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	capacity, err := c.Check()
	if errors.Is(err, ErrSleeping) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	size := min(len(p), int(capacity.Read))
	if size == 0 {
		return 0, nil
	}
	return c.transfer(c.Receive, p[:size])
}

// transfer runs fn over buf. If the device shrank its buffer since the
// last check, the transfer is retried once with the reported size.
// A device that went to sleep moves nothing but is not an error.
// It returns how many bytes were moved.
func (c *Conn) transfer(fn func([]byte) error, buf []byte) (int, error) {
	err := fn(buf)
	var sizeErr BufferSizeError
	if !errors.As(err, &sizeErr) {
		if asleep(err) {
			return 0, nil
		}
		if err != nil {
			return 0, err
		}
		return len(buf), nil
	}
	if sizeErr == 0 {
		return 0, nil
	}
	buf = buf[:int(sizeErr)]
	if err := fn(buf); err != nil {
		if errors.As(err, &sizeErr) || asleep(err) {
			return 0, nil
		}
		return 0, err
	}
	return len(buf), nil
}

// asleep reports whether err is a transfer rejected with a sleeping status.
func asleep(err error) bool {
	var unknown UnknownStatusError
	return errors.As(err, &unknown) && Status(unknown).Kind() == StatusSleeping
}
