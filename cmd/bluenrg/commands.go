package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/pkg/errors"
	"github.com/rabidaudio/bluenrg"
	"github.com/spf13/cobra"
)

// result returns err, or a bus fault that explains it.
func (a *app) result(err error) error {
	if busErr := a.dev.busErr(); busErr != nil {
		return busErr
	}
	return err
}

func (a *app) checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Read the device status and buffer sizes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.dev.Check()
			if err = a.result(err); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), c)
			return nil
		},
	}
}

func (a *app) wakeupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "wakeup",
		Short: "Poll the device until it wakes up",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.dev.Wakeup(a.cfg.Retries)
			if err = a.result(err); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), c)
			return nil
		},
	}
}

func (a *app) sendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "send HEX...",
		Short: "Send hex encoded bytes, split to fit the device buffer",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := hex.DecodeString(strings.Join(args, ""))
			if err != nil {
				return errors.Wrap(err, "send: bad hex")
			}
			conn := bluenrg.Conn{Driver: a.dev.Driver, Retries: a.cfg.Retries}
			n, err := conn.Write(data)
			if err = a.result(err); err != nil {
				return errors.Wrapf(err, "send: %d of %d bytes sent", n, len(data))
			}
			a.log.WithField("bytes", n).Info("sent")
			return nil
		},
	}
}

func (a *app) receiveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "receive N",
		Short: "Receive exactly N bytes and print them as hex",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.ParseUint(args[0], 10, 16)
			if err != nil {
				return errors.Wrapf(err, "receive: bad count %q", args[0])
			}
			if _, err := a.dev.Wakeup(a.cfg.Retries); err != nil {
				return a.result(err)
			}
			buf := make([]byte, n)
			if err := a.result(a.dev.Receive(buf)); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(buf))
			return nil
		},
	}
}

func (a *app) listenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "listen",
		Short: "Print every frame the device sends until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			a.log.WithField("interval", a.cfg.PollInterval).Info("listening, ctrl-c to stop")
			return a.listen(ctx, cmd)
		},
	}
}

func (a *app) listen(ctx context.Context, cmd *cobra.Command) error {
	err := bluenrg.Poll(ctx, a.dev.Driver, a.cfg.PollInterval, func(frame []byte) error {
		if err := a.dev.busErr(); err != nil {
			return err
		}
		_, err := fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(frame))
		return err
	})
	return a.result(err)
}
