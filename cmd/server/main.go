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

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/seatgate/seatgate/internal/config"
	"github.com/seatgate/seatgate/internal/observability/logger"
	"github.com/seatgate/seatgate/internal/operator"
)

func main() {
	cmd := &cli.Command{
		Name:   "seatgate",
		Usage:  "Seat activation and presence tracking server",
		Action: serveAction,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP server (default)",
				Action: serveAction,
			},
			{
				Name:   "migrate",
				Usage:  "Apply database migrations and exit",
				Action: migrateAction,
			},
			{
				Name:  "hash-password",
				Usage: "Print an argon2id hash for SEATGATE_OPERATOR_PASSWORD_HASH",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "password",
						Usage: "Password to hash; read from stdin when omitted",
					},
				},
				Action: hashPasswordAction,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "seatgate: %v\n", err)
		os.Exit(1)
	}
}

func serveAction(ctx context.Context, _ *cli.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	initLogger(cfg)
	return serve(ctx, cfg)
}

func migrateAction(ctx context.Context, _ *cli.Command) error {
	cfg, err := config.LoadRaw()
	if err != nil {
		return err
	}
	if err := cfg.Database.Validate(); err != nil {
		return err
	}
	initLogger(cfg)

	b, err := openBackend(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer b.Close()

	return b.Migrate(ctx)
}

func hashPasswordAction(_ context.Context, c *cli.Command) error {
	password := c.String("password")
	if password == "" {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("read password: %w", err)
		}
		password = strings.TrimRight(line, "\r\n")
	}
	if password == "" {
		return errors.New("password must not be empty")
	}

	hash, err := operator.DefaultPasswordHasher().Hash(password)
	if err != nil {
		return err
	}
	fmt.Println(hash)
	return nil
}

func initLogger(cfg *config.Config) {
	logger.InitLogger(logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		ServiceName: cfg.Observability.ServiceName,
		DisableOTel: !cfg.Observability.Enabled,
	})
}
