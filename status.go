package bluenrg

import "fmt"

// Status is the first byte of every status header.
type Status byte

// StatusKind classifies a [Status].
type StatusKind int

const (
	StatusUnknown  StatusKind = iota // any other value
	StatusReady                      // 0x02
	StatusSleeping                   // 0x00 or 0xFF
)

// Kind returns the classification of s.
func (s Status) Kind() StatusKind {
	switch s {
	case 0x02:
		return StatusReady
	case 0x00, 0xFF:
		return StatusSleeping
	default:
		return StatusUnknown
	}
}

func (s Status) String() string {
	return fmt.Sprintf("%s(0x%02X)", s.Kind(), byte(s))
}

func (k StatusKind) String() string {
	switch k {
	case StatusReady:
		return "ready"
	case StatusSleeping:
		return "sleeping"
	default:
		return "unknown"
	}
}
