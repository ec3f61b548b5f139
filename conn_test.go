package bluenrg_test

import (
	"io"
	"testing"

	"github.com/rabidaudio/bluenrg"
	"github.com/rabidaudio/bluenrg/mock"
	"github.com/stretchr/testify/assert"
)

func TestConnWriteChunks(t *testing.T) {
	dev := &mock.Device{Sleeps: 1, WriteCapacity: 4}
	c := bluenrg.Conn{Driver: bluenrg.New(dev, dev), Retries: 3}

	p := []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	n, err := c.Write(p)
	failIfErr(t, err)
	assert.Equal(t, len(p), n)
	assert.Equal(t, p, dev.Written)
	// sleeping check, then a wakeup check and a send per chunk
	assert.Equal(t, 1+3*2, dev.Transactions)
	assert.Zero(t, dev.Strays)
}

func TestConnWriteNoRoom(t *testing.T) {
	dev := &mock.Device{WriteCapacity: 0}
	c := bluenrg.Conn{Driver: bluenrg.New(dev, dev), Retries: 2}

	n, err := c.Write([]byte{1, 2, 3})
	assert.ErrorIs(t, err, io.ErrShortWrite)
	assert.Zero(t, n)
	assert.Empty(t, dev.Written)
	assert.Equal(t, 3, dev.Transactions)
}

func TestConnWriteSleeping(t *testing.T) {
	dev := &mock.Device{Force: true, Status: 0xFF}
	c := bluenrg.Conn{Driver: bluenrg.New(dev, dev), Retries: 2}

	n, err := c.Write([]byte{1})
	assert.ErrorIs(t, err, bluenrg.ErrSleeping)
	assert.Zero(t, n)
}

func TestConnWriteShrunkBuffer(t *testing.T) {
	pin := &mock.Pin{}
	bus := &mock.Bus{Select: pin}
	bus.Replies = append(bus.Replies, mock.Header(0x02, 4, 0)...) // wakeup
	bus.Replies = append(bus.Replies, mock.Header(0x02, 2, 0)...) // send rejected
	bus.Replies = append(bus.Replies, mock.Header(0x02, 2, 0)...) // retry with 2
	bus.Replies = append(bus.Replies, 0, 0)
	bus.Replies = append(bus.Replies, mock.Header(0x02, 4, 0)...) // wakeup
	bus.Replies = append(bus.Replies, mock.Header(0x02, 4, 0)...) // send rest
	c := bluenrg.Conn{Driver: bluenrg.New(pin, bus), Retries: 1}

	n, err := c.Write([]byte{1, 2, 3, 4})
	failIfErr(t, err)
	assert.Equal(t, 4, n)
	assert.Empty(t, bus.Replies)
	assert.Equal(t, []byte{1, 2}, bus.Sent[15:17])
	assert.Equal(t, []byte{3, 4}, bus.Sent[len(bus.Sent)-2:])
}

func TestConnRead(t *testing.T) {
	dev := &mock.Device{Pending: []byte{1, 2, 3, 4, 5, 6}}
	c := bluenrg.Conn{Driver: bluenrg.New(dev, dev)}

	p := make([]byte, 4)
	n, err := c.Read(p)
	failIfErr(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, []byte{1, 2, 3, 4}, p)

	n, err = c.Read(p)
	failIfErr(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []byte{5, 6}, p[:n])

	n, err = c.Read(p)
	failIfErr(t, err)
	assert.Zero(t, n)
}

func TestConnReadSleeping(t *testing.T) {
	dev := &mock.Device{Sleeps: 1, Pending: []byte{1}}
	c := bluenrg.Conn{Driver: bluenrg.New(dev, dev)}

	n, err := c.Read(make([]byte, 1))
	failIfErr(t, err)
	assert.Zero(t, n)
	assert.Equal(t, []byte{1}, dev.Pending)
}

func TestConnReadUnknown(t *testing.T) {
	dev := &mock.Device{Force: true, Status: 0x55}
	c := bluenrg.Conn{Driver: bluenrg.New(dev, dev)}

	_, err := c.Read(make([]byte, 1))
	assert.Equal(t, bluenrg.UnknownStatusError(0x55), err)
}

func scriptedConn(retries uint32, replies ...[]byte) (*bluenrg.Conn, *mock.Bus) {
	pin := &mock.Pin{}
	bus := &mock.Bus{Select: pin}
	for _, r := range replies {
		bus.Replies = append(bus.Replies, r...)
	}
	return &bluenrg.Conn{Driver: bluenrg.New(pin, bus), Retries: retries}, bus
}

func TestConnWriteSleepsBeforeSend(t *testing.T) {
	c, bus := scriptedConn(1,
		mock.Header(0x02, 4, 0), // wakeup
		mock.Header(0x00, 0, 0), // asleep again by the send
		mock.Header(0x02, 4, 0), // wakeup
		mock.Header(0x02, 4, 0), // send
	)

	n, err := c.Write([]byte{1, 2})
	failIfErr(t, err)
	assert.Equal(t, 2, n)
	assert.Empty(t, bus.Replies)
	assert.Equal(t, []byte{1, 2}, bus.Sent[len(bus.Sent)-2:])
	assert.Zero(t, bus.Deselected)
}

func TestConnWriteKeepsSleeping(t *testing.T) {
	c, _ := scriptedConn(1,
		mock.Header(0x02, 4, 0), mock.Header(0xFF, 0, 0),
		mock.Header(0x02, 4, 0), mock.Header(0xFF, 0, 0),
	)

	n, err := c.Write([]byte{1})
	assert.ErrorIs(t, err, io.ErrShortWrite)
	assert.Zero(t, n)
}

func TestConnWriteMissesPerChunk(t *testing.T) {
	c, bus := scriptedConn(1,
		mock.Header(0x02, 0, 0),            // no room
		mock.Header(0x02, 1, 0),            // wakeup
		mock.Header(0x02, 1, 0), []byte{0}, // send first byte
		mock.Header(0x02, 0, 0),            // no room again
		mock.Header(0x02, 1, 0),            // wakeup
		mock.Header(0x02, 1, 0),            // send second byte
	)

	n, err := c.Write([]byte{0xA1, 0xA2})
	failIfErr(t, err)
	assert.Equal(t, 2, n)
	assert.Empty(t, bus.Replies)
	assert.Equal(t, byte(0xA2), bus.Sent[len(bus.Sent)-1])
}

func TestConnReadSleepsBeforeReceive(t *testing.T) {
	c, bus := scriptedConn(0,
		mock.Header(0x02, 0, 3), // check
		mock.Header(0xFF, 0, 0), // asleep by the receive
	)

	p := make([]byte, 3)
	n, err := c.Read(p)
	failIfErr(t, err)
	assert.Zero(t, n)
	assert.Len(t, bus.Sent, 10, "no payload is read")
}

func TestConnReadShrunkBuffer(t *testing.T) {
	c, bus := scriptedConn(0,
		mock.Header(0x02, 0, 4), // check
		mock.Header(0x02, 0, 2), // receive rejected
		mock.Header(0x02, 0, 2), []byte{7, 8},
	)

	p := make([]byte, 4)
	n, err := c.Read(p)
	failIfErr(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []byte{7, 8}, p[:n])
	assert.Empty(t, bus.Replies)
}
