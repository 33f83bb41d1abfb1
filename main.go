package main

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/almanac/internal/almanac"
	"github.com/colonyops/almanac/internal/commands"
	"github.com/colonyops/almanac/internal/core/config"
	"github.com/colonyops/almanac/internal/core/logging"
	"github.com/colonyops/almanac/internal/core/styles"
	"github.com/colonyops/almanac/internal/printer"
	"github.com/colonyops/almanac/pkg/logutils"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	// When installed via `go install module@version`, init() populates
	// these from runtime/debug.BuildInfo instead.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	v, c, d := version, commit, date

	// When installed via `go install module@version`, ldflags aren't set
	// so version remains "dev". Fall back to runtime/debug.BuildInfo which
	// Go populates automatically with the module version and VCS metadata.
	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if mv := info.Main.Version; mv != "" && mv != "(devel)" {
				v = mv
			}
			for _, s := range info.Settings {
				switch s.Key {
				case "vcs.revision":
					c = s.Value
				case "vcs.time":
					d = s.Value
				}
			}
		}
	}

	short := c
	if len(c) > 7 {
		short = c[:7]
	}

	return fmt.Sprintf("%s (%s) %s", v, short, d)
}

func main() {
	ctx := context.Background()

	var (
		logCloser  func()
		almanacApp = &almanac.App{}
		opened     *almanac.App
	)

	flags := &commands.Flags{}

	app := &cli.Command{
		Name:        commands.RootName,
		Usage:       commands.RootUsage,
		UsageText:   "almanac [global options] command [command options]",
		Description: commands.RootDescription,
		Version:     build(),
		Flags:       commands.GlobalFlags(flags),
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			logger, closer, err := logutils.New(flags.LogLevel, flags.LogFile)
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			log.Logger = logger.Hook(logging.ContextHook{})
			logCloser = closer

			ctx = printer.NewContext(ctx, printer.New(os.Stderr))
			ctx = logging.WithCommand(ctx, c.Args().First())

			// config subcommands inspect the file themselves
			if c.Args().First() == commands.ConfigCommandName {
				return ctx, nil
			}

			cfg, err := config.Load(flags.ConfigPath, flags.DataDir)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}
			flags.Config = cfg

			// Apply configured theme (validation ensures name is valid)
			palette, _ := styles.GetPalette(cfg.UI.Theme)
			styles.SetTheme(palette)

			opened, err = almanac.Open(ctx, cfg, almanac.Options{Notices: os.Stderr})
			if err != nil {
				return ctx, fmt.Errorf("open collection %q: %w", cfg.Collection.Name, err)
			}

			// Populate the pre-allocated App struct (commands already hold a pointer to it)
			almanacApp.Store = opened.Store
			almanacApp.Config = opened.Config
			almanacApp.Clock = opened.Clock
			almanacApp.Bus = opened.Bus

			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			var err error
			if opened != nil {
				if err = opened.Close(); err != nil {
					log.Error().Err(err).Msg("failed to close collection")
				}
			}

			// Close log file
			if logCloser != nil {
				logCloser()
			}
			return err
		},
	}

	app = commands.RegisterAll(app, flags, almanacApp)

	exitCode := 0
	runErr := app.Run(ctx, os.Args)
	if runErr != nil {
		fmt.Println()
		fmt.Println(runErr.Error())
		exitCode = 1
	}

	os.Exit(exitCode)
}
