// Copyright 2026 The SeatGate Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command seatctl is the device and tenant-server side of SeatGate.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/seatgate/seatgate/internal/client"
	"github.com/seatgate/seatgate/internal/fingerprint"
	"github.com/seatgate/seatgate/internal/observability/logger"
)

func main() {
	cmd := &cli.Command{
		Name:  "seatctl",
		Usage: "Activate devices and report tenant server liveness",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "server",
				Value:   "http://localhost:8080",
				Sources: cli.EnvVars("SEATGATE_URL"),
				Usage:   "SeatGate base URL",
			},
			&cli.StringFlag{
				Name:    "fingerprint-file",
				Sources: cli.EnvVars("SEATGATE_FINGERPRINT_FILE"),
				Usage:   "Where the device fingerprint is kept (default: user config dir)",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "warn",
				Sources: cli.EnvVars("SEATGATE_LOG_LEVEL"),
				Usage:   "debug, info, warn or error",
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			logger.InitLogger(logger.Config{
				Level:       c.String("log-level"),
				Format:      "text",
				ServiceName: "seatctl",
				Output:      os.Stderr,
				DisableOTel: true,
			})
			return ctx, nil
		},
		Commands: []*cli.Command{
			fingerprintCommand(),
			checkCommand(),
			activateCommand(),
			heartbeatCommand(),
			verifyCommand(),
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cmd.Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "seatctl: %v\n", err)
		os.Exit(1)
	}
}

func fingerprintCommand() *cli.Command {
	return &cli.Command{
		Name:  "fingerprint",
		Usage: "Print this device's fingerprint, creating it on first use",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "reset", Usage: "Discard the stored fingerprint and create a new one"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			store := fingerprintStore(ctx, c)
			if c.Bool("reset") {
				if err := store.Clear(); err != nil {
					return err
				}
			}
			fp := deviceFingerprint(ctx, store)
			fmt.Println(fp)
			return nil
		},
	}
}

func checkCommand() *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "Report whether this device holds a seat",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "watch", Usage: "Keep re-checking until interrupted"},
			&cli.DurationFlag{Name: "interval", Value: client.ActivationPollInterval, Usage: "Re-check period with --watch"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			api, err := newClient(c)
			if err != nil {
				return err
			}
			store := fingerprintStore(ctx, c)
			fp := deviceFingerprint(ctx, store)

			check := func(ctx context.Context) error {
				res, err := api.CheckActivation(ctx, fp)
				printJSON(res)
				return err
			}

			if !c.Bool("watch") {
				return check(ctx)
			}
			p, err := client.NewPoller("activation_check", c.Duration("interval"), check)
			if err != nil {
				return err
			}
			p.Run(ctx)
			return nil
		},
	}
}

func activateCommand() *cli.Command {
	return &cli.Command{
		Name:  "activate",
		Usage: "Bind an activation code to this device",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "tenant", Required: true, Usage: "Tenant ID"},
			&cli.StringFlag{Name: "code", Required: true, Usage: "Activation code, e.g. SEAT-7KQ2-MX9D-4HJP"},
			&cli.StringFlag{Name: "name", Usage: "Device name shown to operators"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			api, err := newClient(c)
			if err != nil {
				return err
			}
			store := fingerprintStore(ctx, c)
			fp := deviceFingerprint(ctx, store)

			code, err := api.Activate(ctx, c.String("tenant"), c.String("code"), fp, c.String("name"))
			if err != nil {
				return err
			}
			printJSON(code)
			return nil
		},
	}
}

func apiKeyFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "api-key",
		Required: true,
		Sources:  cli.EnvVars("SEATGATE_API_KEY"),
		Usage:    "Tenant API key",
	}
}

func heartbeatCommand() *cli.Command {
	return &cli.Command{
		Name:  "heartbeat",
		Usage: "Send tenant server heartbeats",
		Flags: []cli.Flag{
			apiKeyFlag(),
			&cli.StringFlag{Name: "server-id", Sources: cli.EnvVars("SEATGATE_SERVER_ID"), Usage: "Server identifier"},
			&cli.StringFlag{Name: "version", Value: "dev", Usage: "Version reported to the operator console"},
			&cli.DurationFlag{Name: "interval", Value: client.HeartbeatInterval, Usage: "Heartbeat period"},
			&cli.BoolFlag{Name: "once", Usage: "Send a single heartbeat and exit"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			api, err := newClient(c, client.WithAPIKey(c.String("api-key")), client.WithServerID(c.String("server-id")))
			if err != nil {
				return err
			}

			if c.Bool("once") {
				return api.Heartbeat(ctx, c.String("version"), "")
			}

			p, err := client.NewHeartbeatPoller(api, c.Duration("interval"), c.String("version"))
			if err != nil {
				return err
			}
			slog.InfoContext(ctx, "sending heartbeats", logger.String("interval", c.Duration("interval").String()))
			p.Run(ctx)
			return nil
		},
	}
}

func verifyCommand() *cli.Command {
	return &cli.Command{
		Name:  "verify",
		Usage: "Check a tenant API key",
		Flags: []cli.Flag{apiKeyFlag()},
		Action: func(ctx context.Context, c *cli.Command) error {
			api, err := newClient(c, client.WithAPIKey(c.String("api-key")))
			if err != nil {
				return err
			}
			res, err := api.Verify(ctx)
			if err != nil {
				return err
			}
			printJSON(res)
			return nil
		},
	}
}

func newClient(c *cli.Command, opts ...client.Option) (*client.Client, error) {
	return client.New(c.String("server"), opts...)
}

// fingerprintStore falls back to a session-only store when the host has no
// per-user config directory.
func fingerprintStore(ctx context.Context, c *cli.Command) fingerprint.ClearableStore {
	store, err := fingerprint.OpenStore(c.String("fingerprint-file"))
	if err != nil {
		slog.WarnContext(ctx, "device fingerprint will not persist", logger.Error(err))
	}
	return store
}

// deviceFingerprint never fails: an unwritable store still yields an
// identity for this run.
func deviceFingerprint(ctx context.Context, store fingerprint.Store) string {
	p := fingerprint.New(store, fingerprint.HostTraits{})
	fp, err := p.GetOrCreate(ctx)
	if errors.Is(err, fingerprint.ErrStorageUnavailable) {
		slog.WarnContext(ctx, "device fingerprint will not persist", logger.Error(err))
	}
	return fp
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
