package cmd

import (
	"context"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	"github.com/tinovyatkin/nuspec-lsp/internal/config"
	"github.com/tinovyatkin/nuspec-lsp/internal/version"
)

// NewApp creates the CLI application
func NewApp() *cli.Command {
	return &cli.Command{
		Name:    "nuspec-lsp",
		Usage:   "Diagnostics for NuGet .nuspec manifests",
		Version: version.Version(),
		Description: `nuspec-lsp validates NuGet package manifests against the nuspec schema
and flags template placeholders that were never replaced.

It runs as a language server for editors, or checks files from the
command line.

Examples:
  nuspec-lsp lsp --stdio
  nuspec-lsp check MyPackage.nuspec
  nuspec-lsp check --format json .`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the config file (default: " + config.FileName + " in the working directory)",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level: trace, debug, info, warn, error",
			},
		},
		Commands: []*cli.Command{
			checkCommand(),
			lspCommand(),
			versionCommand(),
		},
	}
}

// Execute runs the CLI application
func Execute() error {
	return NewApp().Run(context.Background(), os.Args)
}

// loadConfig merges the config sources with the flags that were set on the
// command line. flagKeys maps flag names to config keys.
func loadConfig(cmd *cli.Command, flagKeys map[string]string) (*config.Config, error) {
	overrides := map[string]any{}
	if cmd.IsSet("log-level") {
		overrides["log-level"] = cmd.String("log-level")
	}
	for flag, key := range flagKeys {
		if cmd.IsSet(flag) {
			overrides[key] = cmd.Value(flag)
		}
	}
	return config.Load(config.LoadOptions{
		Path:      cmd.String("config"),
		Overrides: overrides,
	})
}

// newLogger builds the process logger. Output goes to cfg.LogFile when set,
// otherwise to w; never to stdout, which the language server speaks on.
func newLogger(cfg *config.Config, w io.Writer) (*logrus.Logger, func(), error) {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	log := logrus.New()
	log.SetLevel(level)
	log.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})
	log.SetOutput(w)

	closer := func() {}
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, err
		}
		log.SetOutput(f)
		closer = func() { _ = f.Close() }
	}
	return log, closer, nil
}
