// Package mock provides test doubles for the bluenrg bus and active line.
package mock

import "github.com/rabidaudio/bluenrg"

var (
	_ bluenrg.Pin = (*Pin)(nil)
	_ bluenrg.Bus = (*Bus)(nil)
)

// Pin records every level it is driven to.
type Pin struct {
	Levels []bool // true for high, in call order
}

func (p *Pin) High() { p.Levels = append(p.Levels, true) }
func (p *Pin) Low()  { p.Levels = append(p.Levels, false) }

// IsHigh reports the last level the pin was driven to.
// A pin that was never driven is reported low.
func (p *Pin) IsHigh() bool {
	return len(p.Levels) > 0 && p.Levels[len(p.Levels)-1]
}

// Bus answers transfers from a canned script and records what was sent.
type Bus struct {
	Replies []byte // consumed one per transfer; 0 once exhausted
	Sent    []byte // every byte written, in order

	// If Select is set, transfers made while it is high are counted.
	Select     *Pin
	Deselected int
}

func (b *Bus) Transfer(out byte) (in byte) {
	b.Sent = append(b.Sent, out)
	if b.Select != nil && b.Select.IsHigh() {
		b.Deselected++
	}
	if len(b.Replies) > 0 {
		in, b.Replies = b.Replies[0], b.Replies[1:]
	}
	return
}

// Header returns the 5 bytes a device sends in answer to a status header.
func Header(status byte, write, read uint16) []byte {
	return []byte{status, byte(write >> 8), byte(write), byte(read >> 8), byte(read)}
}
