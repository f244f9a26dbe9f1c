package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/nerrad567/gray-logic-remote/internal/connection"
	"github.com/nerrad567/gray-logic-remote/internal/device"
	"github.com/nerrad567/gray-logic-remote/internal/feedback"
	"github.com/nerrad567/gray-logic-remote/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-remote/internal/site"
)

type sendOptions struct {
	action bool
	target string
	wait   time.Duration
}

// newSendCmd creates the "send" subcommand.
func newSendCmd() *cobra.Command {
	var opts sendOptions
	cmd := &cobra.Command{
		Use:   "send <zone> <device> <op> [value]",
		Short: "Send one command to a zone device",
		Long: "Connects to the zone, sends one operation (or, with --action, one\n" +
			"control action) to the device and prints its feedback after --wait.",
		Example: "  graylogic-remote send salon ceiling intensity 40\n" +
			"  graylogic-remote send salon store stop\n" +
			"  graylogic-remote send salon ac --action nudge --target temperature 1",
		Args: cobra.RangeArgs(3, 4),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			st, err := site.Load(cfg.Site.File)
			if err != nil {
				return fmt.Errorf("loading site: %w", err)
			}

			var value any
			if len(args) == 4 {
				value = parseValue(args[3])
			}
			command := buildCommand(args[2], value, opts)

			store := feedback.NewStore()
			manager := connection.NewManager(cfg.Connection, store)
			manager.SetLogger(logging.New(cfg.Logging, version).With("component", "connection"))
			defer manager.Disconnect(true)

			session := site.NewSession(st, store, manager)
			defer session.Close()

			return send(cmd.Context(), cmd.OutOrStdout(), session, store, args[0], args[1], command, opts.wait)
		},
	}
	cmd.Flags().BoolVar(&opts.action, "action", false, "treat <op> as a control action (toggle, set, nudge, press, mute...)")
	cmd.Flags().StringVar(&opts.target, "target", "", "operation a control action applies to")
	cmd.Flags().DurationVar(&opts.wait, "wait", time.Second, "how long to collect feedback before printing it")
	return cmd
}

// send selects zone, executes command against dev and prints the device's
// feedback after wait.
func send(ctx context.Context, out io.Writer, session *site.Session, store device.Source, zone, dev string, command site.Command, wait time.Duration) error {
	if err := session.SelectZone(ctx, zone); err != nil {
		return fmt.Errorf("selecting zone %s: %w", zone, err)
	}
	if !session.Connected() {
		return fmt.Errorf("zone %s has no remote address", zone)
	}

	target, err := session.Device(dev)
	if err != nil {
		return err
	}
	if err := session.Execute(dev, command); err != nil {
		return fmt.Errorf("sending to %s: %w", target.Slug, err)
	}
	fmt.Fprintf(out, "sent %s to %s/%s\n", describe(command), zone, target.Slug)

	if wait > 0 {
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(wait):
		}
	}

	projection := device.Project(store, target.Commands).ByOp(target.Commands)
	data, err := json.MarshalIndent(projection, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding feedback: %w", err)
	}
	fmt.Fprintf(out, "%s\n", data)
	return nil
}

func buildCommand(name string, value any, opts sendOptions) site.Command {
	if opts.action {
		return site.Command{Action: name, Target: opts.target, Value: value}
	}
	return site.Command{Op: name, Value: value}
}

// parseValue reads a command-line value as a number when it parses as one.
func parseValue(raw string) any {
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	return raw
}

func describe(cmd site.Command) string {
	name := cmd.Op
	if cmd.Action != "" {
		name = cmd.Action
		if cmd.Target != "" {
			name += " " + cmd.Target
		}
	}
	if cmd.Value != nil {
		return fmt.Sprintf("%s=%v", name, cmd.Value)
	}
	return name
}
