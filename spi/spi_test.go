package spi

import (
	"testing"

	rpio "github.com/stianeikeland/go-rpio/v4"
	"github.com/stretchr/testify/assert"
)

func TestDevice(t *testing.T) {
	dev, err := Device(0)
	assert.NoError(t, err)
	assert.Equal(t, rpio.Spi0, dev)

	dev, err = Device(1)
	assert.NoError(t, err)
	assert.Equal(t, rpio.Spi1, dev)

	_, err = Device(7)
	assert.ErrorIs(t, err, ErrNoDevice)
	assert.Contains(t, err.Error(), "index 7")
}
