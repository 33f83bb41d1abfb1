package commands

import (
	"github.com/urfave/cli/v3"

	"github.com/colonyops/almanac/internal/almanac"
)

const (
	RootName        = "almanac"
	RootUsage       = "Keep a journal, log or any other timestamped collection"
	RootDescription = `Almanac stores timestamped entities (diary entries, meetings, recipes,
books) in a local collection and answers questions about them: what happened
on a day, what is still open, which categories dominate and how long your
streaks run.

Run 'almanac add <title>' to record something.
Run 'almanac ls' to browse and 'almanac stats' for a summary.`
)

// GlobalFlags returns the root flags bound to f.
func GlobalFlags(f *Flags) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error, fatal, panic)",
			Sources:     cli.EnvVars("ALMANAC_LOG_LEVEL"),
			Value:       "warn",
			Destination: &f.LogLevel,
		},
		&cli.StringFlag{
			Name:        "log-file",
			Usage:       "path to log file (defaults to stderr)",
			Sources:     cli.EnvVars("ALMANAC_LOG_FILE"),
			Destination: &f.LogFile,
		},
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "path to config file",
			Sources:     cli.EnvVars("ALMANAC_CONFIG"),
			Value:       DefaultConfigPath(),
			Destination: &f.ConfigPath,
		},
		&cli.StringFlag{
			Name:        "data-dir",
			Usage:       "path to data directory",
			Sources:     cli.EnvVars("ALMANAC_DATA_DIR"),
			Value:       DefaultDataDir(),
			Destination: &f.DataDir,
		},
	}
}

// RegisterAll attaches every subcommand to root. app may still be empty at
// this point; it is populated in the root Before hook.
func RegisterAll(root *cli.Command, f *Flags, app *almanac.App) *cli.Command {
	root = NewAddCmd(f, app).Register(root)
	root = NewEditCmd(f, app).Register(root)
	root = NewShowCmd(f, app).Register(root)
	root = NewRmCmd(f, app).Register(root)
	root = NewClearCmd(f, app).Register(root)
	root = NewToggleCmd(f, app).Register(root)
	root = NewLsCmd(f, app).Register(root)
	root = NewDayCmd(f, app).Register(root)
	root = NewCalCmd(f, app).Register(root)
	root = NewStatsCmd(f, app).Register(root)
	root = NewBadgesCmd(f, app).Register(root)
	root = NewRandomCmd(f, app).Register(root)
	root = NewImportCmd(f, app).Register(root)
	root = NewConfigCmd(f).Register(root)
	return root
}
