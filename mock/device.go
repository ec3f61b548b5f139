package mock

import (
	"github.com/rabidaudio/bluenrg"
)

var (
	_ bluenrg.Pin = (*Device)(nil)
	_ bluenrg.Bus = (*Device)(nil)
)

// Device simulates a BlueNRG co-processor. It is both the active line and
// the bus, so it can tell where each transaction starts and ends.
//
// The device reports sleeping for the first Sleeps transactions and ready
// afterwards, unless Force is set, in which case Status is always
// reported. WriteCapacity is reported in every header; the device drains
// its input between transactions. Bytes written while ready are appended
// to Written, and reads are served from Pending.
type Device struct {
	Sleeps        int
	Force         bool
	Status        byte
	WriteCapacity uint16
	Pending       []byte
	Written       []byte

	Transactions int // completed transactions
	Strays       int // transfers made while deselected

	selected bool
	pos      int
	op       byte
	status   byte
}

func (d *Device) Low() {
	if d.selected {
		return
	}
	d.selected = true
	d.pos = 0
	switch {
	case d.Force:
		d.status = d.Status
	case d.Sleeps > 0:
		d.Sleeps--
		d.status = 0xFF
	default:
		d.status = 0x02
	}
}

func (d *Device) High() {
	if d.selected {
		d.Transactions++
	}
	d.selected = false
}

func (d *Device) readCapacity() uint16 {
	if len(d.Pending) > 0xFFFF {
		return 0xFFFF
	}
	return uint16(len(d.Pending))
}

func (d *Device) Transfer(out byte) byte {
	if !d.selected {
		d.Strays++
		return 0
	}
	pos := d.pos
	d.pos++
	if pos == 0 {
		d.op = out
	}
	if d.status != 0x02 {
		if pos == 0 {
			return d.status
		}
		return 0
	}
	if pos < 5 {
		return Header(d.status, d.WriteCapacity, d.readCapacity())[pos]
	}
	switch d.op {
	case 0x0A:
		d.Written = append(d.Written, out)
	case 0x0B:
		if len(d.Pending) > 0 {
			in := d.Pending[0]
			d.Pending = d.Pending[1:]
			return in
		}
	}
	return 0
}
