package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/tinovyatkin/nuspec-lsp/internal/lspserver"
	"github.com/tinovyatkin/nuspec-lsp/internal/schema"
)

func lspCommand() *cli.Command {
	return &cli.Command{
		Name:  "lsp",
		Usage: "Start the language server",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "stdio",
				Usage: "Communicate over stdin/stdout (the only supported transport)",
				Value: true,
			},
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Write logs to this file instead of stderr",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if !cmd.Bool("stdio") {
				return errors.New("only the stdio transport is supported")
			}

			cfg, err := loadConfig(cmd, map[string]string{"log-file": "log-file"})
			if err != nil {
				return err
			}
			log, closeLog, err := newLogger(cfg, cmd.Root().ErrWriter)
			if err != nil {
				return err
			}
			defer closeLog()

			s, err := schema.Load()
			if err != nil {
				return fmt.Errorf("load nuspec schema: %w", err)
			}

			log.WithField("config", cmd.String("config")).Debug("lsp: starting")
			return lspserver.New(s, lspserver.WithLogger(log)).RunStdio(ctx)
		},
	}
}
