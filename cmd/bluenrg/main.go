// Command bluenrg talks to a BlueNRG co-processor from a Linux host.
//
//	bluenrg check
//	bluenrg wakeup --retries 500
//	bluenrg send 0103 0c00
//	bluenrg receive 7
//	bluenrg listen
package main

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/rabidaudio/bluenrg"
	"github.com/rabidaudio/bluenrg/config"
	"github.com/rabidaudio/bluenrg/periphspi"
	"github.com/rabidaudio/bluenrg/spi"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"periph.io/x/conn/v3/physic"
)

// device is an open driver together with its backend.
type device struct {
	*bluenrg.Driver
	close func() error
	err   func() error // reports bus faults the driver cannot see, may be nil
}

func (d *device) Close() error {
	if d.close == nil {
		return nil
	}
	return d.close()
}

// busErr returns a fault recorded by the backend, if any.
func (d *device) busErr() error {
	if d.err == nil {
		return nil
	}
	return d.err()
}

type opener func(cfg config.Config) (*device, error)

func openDevice(cfg config.Config) (*device, error) {
	switch cfg.Backend {
	case config.BackendRpio:
		dev, err := spi.Device(cfg.SPI.Device)
		if err != nil {
			return nil, err
		}
		pin, err := cfg.RpioPin()
		if err != nil {
			return nil, err
		}
		s, err := spi.OpenDevice(dev, cfg.SPI.ChipSelect, pin, cfg.SPI.SpeedHz)
		if err != nil {
			return nil, err
		}
		return &device{Driver: s.Driver(), close: s.Close}, nil
	case config.BackendPeriph:
		freq := physic.Frequency(cfg.SPI.SpeedHz) * physic.Hertz
		s, err := periphspi.Open(cfg.SPI.Port, cfg.ActivePin, freq)
		if err != nil {
			return nil, err
		}
		return &device{Driver: s.Driver(), close: s.Close, err: s.Err}, nil
	default:
		return nil, errors.Wrapf(config.ErrInvalid, "unknown backend %q", cfg.Backend)
	}
}

// app holds what every subcommand needs once flags are parsed.
type app struct {
	open opener
	log  *logrus.Logger
	cfg  config.Config
	dev  *device

	configPath string
	backend    string
	retries    uint32
	logLevel   string
}

func newApp(open opener) *app {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	return &app{open: open, log: log}
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "bluenrg",
		Short:         "Talk to a BlueNRG co-processor over SPI",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	flags := root.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "YAML config file")
	flags.StringVar(&a.backend, "backend", "", "bus backend: rpio or periph")
	flags.Uint32Var(&a.retries, "retries", 0, "wakeup retries while the device sleeps")
	flags.StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(
		a.checkCmd(),
		a.wakeupCmd(),
		a.sendCmd(),
		a.receiveCmd(),
		a.listenCmd(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg := config.Default()
	if a.configPath != "" {
		var err error
		cfg, err = config.Load(a.configPath)
		if err != nil {
			return err
		}
	}
	flags := cmd.Flags()
	if flags.Changed("backend") {
		cfg.Backend = a.backend
	}
	if flags.Changed("retries") {
		cfg.Retries = a.retries
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	lvl, _ := cfg.Level()
	a.log.SetLevel(lvl)
	a.cfg = cfg

	dev, err := a.open(cfg)
	if err != nil {
		return err
	}
	dev.LogMode = bluenrg.LogModeLogger
	dev.Logger = a.log.WithField("backend", cfg.Backend)
	a.dev = dev
	return nil
}

// run executes the command line in args, closing the device afterwards.
func (a *app) run(args []string, out io.Writer) error {
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetOut(out)
	err := root.Execute()
	if a.dev != nil {
		if cerr := a.dev.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

func main() {
	a := newApp(openDevice)
	if err := a.run(os.Args[1:], os.Stdout); err != nil {
		a.log.Error(err)
		os.Exit(1)
	}
}
