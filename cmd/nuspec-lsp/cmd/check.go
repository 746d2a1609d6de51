package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/muesli/termenv"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/tinovyatkin/nuspec-lsp/internal/buffer"
	"github.com/tinovyatkin/nuspec-lsp/internal/config"
	"github.com/tinovyatkin/nuspec-lsp/internal/discovery"
	"github.com/tinovyatkin/nuspec-lsp/internal/lint"
	"github.com/tinovyatkin/nuspec-lsp/internal/nuspec"
	"github.com/tinovyatkin/nuspec-lsp/internal/reporter"
	"github.com/tinovyatkin/nuspec-lsp/internal/schema"
)

func checkCommand() *cli.Command {
	return &cli.Command{
		Name:      "check",
		Usage:     "Check .nuspec manifests for problems",
		ArgsUsage: "[PATH...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: text, json",
				Value:   "text",
			},
			&cli.StringFlag{
				Name:  "color",
				Usage: "Colorize text output: auto, always, never",
			},
			&cli.IntFlag{
				Name:    "jobs",
				Aliases: []string{"j"},
				Usage:   "Files checked in parallel (0 = one per CPU)",
			},
			&cli.StringSliceFlag{
				Name:  "include",
				Usage: "Glob selecting manifests inside directories (repeatable)",
			},
			&cli.StringSliceFlag{
				Name:  "exclude",
				Usage: "Ignore pattern applied inside directories (repeatable)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			format, err := reporter.ParseFormat(cmd.String("format"))
			if err != nil {
				return err
			}

			cfg, err := loadConfig(cmd, map[string]string{
				"color":   "check.color",
				"jobs":    "check.jobs",
				"include": "check.include",
				"exclude": "check.exclude",
			})
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

			paths, err := discovery.Discover(cmd.Args().Slice(), discovery.Options{
				Include: cfg.Check.Include,
				Exclude: cfg.Check.Exclude,
			})
			if err != nil {
				return err
			}
			log.WithField("files", len(paths)).Debug("check: discovered")

			results, err := checkFiles(ctx, s, paths, cfg.Check.Jobs, cmd.Root().Reader, log)
			if err != nil {
				return err
			}

			w := cmd.Root().Writer
			opts := reporter.Options{Color: config.ColorEnabled(cfg.Check.Color, isTerminal(w))}
			if err := reporter.Write(w, format, results, opts); err != nil {
				return fmt.Errorf("write report: %w", err)
			}

			if n := reporter.CountDiagnostics(results); n > 0 {
				return cli.Exit(fmt.Sprintf("found %d problem(s)", n), 1)
			}
			return nil
		},
	}
}

// checkFiles lints paths in parallel through a shared store and engine.
// Results keep the order of paths.
func checkFiles(
	ctx context.Context,
	s *schema.Schema,
	paths []string,
	jobs int,
	stdin io.Reader,
	log logrus.FieldLogger,
) ([]reporter.FileResult, error) {
	store := buffer.NewStore()
	engine := lint.NewEngine(store, s, lint.WithLogger(log))

	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)

	results := make([]reporter.FileResult, len(paths))
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			src, err := readSource(path, stdin)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}
			store.Update(src.URI, 0, src.Text)
			defer store.Close(src.URI)

			results[i] = reporter.FileResult{
				File:        path,
				URI:         src.URI,
				Source:      src.Text,
				Diagnostics: engine.Run(src.URI),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func readSource(path string, stdin io.Reader) (*nuspec.Source, error) {
	if path == discovery.Stdin {
		return nuspec.Read(stdin, path)
	}
	return nuspec.ReadFile(path)
}

// isTerminal reports whether w is a terminal that accepts color.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return termenv.NewOutput(f).EnvColorProfile() != termenv.Ascii
}
