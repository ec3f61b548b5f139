// Package config loads the settings used by the bluenrg command.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	BackendRpio   = "rpio"
	BackendPeriph = "periph"
)

var ErrInvalid = fmt.Errorf("config: invalid")

type Config struct {
	Backend      string        `yaml:"backend"`
	SPI          SPI           `yaml:"spi"`
	ActivePin    string        `yaml:"active_pin"` // BCM number (rpio) or GPIO name (periph)
	Retries      uint32        `yaml:"retries"`
	PollInterval time.Duration `yaml:"poll_interval"`
	LogLevel     string        `yaml:"log_level"`
}

type SPI struct {
	Device     int    `yaml:"device"`      // rpio bus index
	ChipSelect uint8  `yaml:"chip_select"` // rpio hardware chip select, left unconnected
	Port       string `yaml:"port"`        // periph port name, "" for the first
	SpeedHz    int    `yaml:"speed_hz"`
}

// Default returns the settings for a BlueNRG on SPI0 of a Raspberry Pi
// with its active line on GPIO8.
func Default() Config {
	return Config{
		Backend:      BackendRpio,
		SPI:          SPI{SpeedHz: 1_000_000},
		ActivePin:    "8",
		Retries:      100,
		PollInterval: 10 * time.Millisecond,
		LogLevel:     "info",
	}
}

// Load reads a YAML file on top of [Default] and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(err, "config: read")
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "config: parse %s", path)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	switch c.Backend {
	case BackendRpio:
		if _, err := c.RpioPin(); err != nil {
			return err
		}
	case BackendPeriph:
		if c.ActivePin == "" {
			return errors.Wrap(ErrInvalid, "active_pin is required")
		}
	default:
		return errors.Wrapf(ErrInvalid, "unknown backend %q", c.Backend)
	}
	if c.SPI.SpeedHz <= 0 {
		return errors.Wrapf(ErrInvalid, "speed_hz must be positive, got %d", c.SPI.SpeedHz)
	}
	if c.PollInterval <= 0 {
		return errors.Wrapf(ErrInvalid, "poll_interval must be positive, got %s", c.PollInterval)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// RpioPin parses ActivePin as a BCM pin number.
func (c Config) RpioPin() (uint8, error) {
	n, err := strconv.ParseUint(c.ActivePin, 10, 8)
	if err != nil {
		return 0, errors.Wrapf(ErrInvalid, "active_pin %q is not a BCM pin number", c.ActivePin)
	}
	return uint8(n), nil
}

func (c Config) Level() (logrus.Level, error) {
	lvl, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return lvl, errors.Wrapf(ErrInvalid, "log_level %q", c.LogLevel)
	}
	return lvl, nil
}
