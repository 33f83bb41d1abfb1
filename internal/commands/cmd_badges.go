package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/almanac/internal/almanac"
	"github.com/colonyops/almanac/internal/core/analytics"
	"github.com/colonyops/almanac/internal/core/styles"
	"github.com/colonyops/almanac/pkg/iojson"
)

type BadgesCmd struct {
	flags *Flags
	app   *almanac.App

	// flags
	jsonOutput bool
}

// NewBadgesCmd creates a new badges command
func NewBadgesCmd(flags *Flags, app *almanac.App) *BadgesCmd {
	return &BadgesCmd{flags: flags, app: app}
}

// Register adds the badges command to the application
func (cmd *BadgesCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "badges",
		Usage:     "Show achievement badges and progress",
		UsageText: "almanac badges [--json]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON lines",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *BadgesCmd) run(ctx context.Context, c *cli.Command) error {
	badges := analytics.EvaluateBadges(analytics.StatsOf(cmd.app.Store.Snapshot(), cmd.app.Now()))
	out := c.Root().Writer

	if cmd.jsonOutput {
		for _, b := range badges {
			if err := iojson.WriteLine(out, b); err != nil {
				return fmt.Errorf("encode badge: %w", err)
			}
		}
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "\tBADGE\tPROGRESS\tDESCRIPTION")
	for _, b := range badges {
		icon := styles.IconLocked
		if b.Unlocked {
			icon = styles.IconBadge
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d/%d\t%s\n", icon, b.Name, b.Progress, b.Goal, b.Description)
	}
	return w.Flush()
}
