package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/colonyops/almanac/internal/almanac"
	"github.com/colonyops/almanac/internal/core/analytics"
	"github.com/colonyops/almanac/internal/core/styles"
	"github.com/colonyops/almanac/pkg/iojson"
)

const statsWrap = 80

var weekdayNames = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

type StatsCmd struct {
	flags *Flags
	app   *almanac.App

	// flags
	window     int
	jsonOutput bool
	plain      bool
}

// NewStatsCmd creates a new stats command
func NewStatsCmd(flags *Flags, app *almanac.App) *StatsCmd {
	return &StatsCmd{flags: flags, app: app}
}

// Register adds the stats command to the application
func (cmd *StatsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "stats",
		Usage:     "Show collection statistics",
		UsageText: "almanac stats [--window N] [--json] [--plain]",
		Description: `Computes counts, rates, category and weekday distributions, activity
averages over a trailing window, completion streaks and badge progress.

The report is rendered as markdown in a terminal. Use --plain for the raw
markdown or --json for machine-readable output.`,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:        "window",
				Aliases:     []string{"w"},
				Usage:       "trailing window in days (defaults to analytics.window_days)",
				Destination: &cmd.window,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON",
				Destination: &cmd.jsonOutput,
			},
			&cli.BoolFlag{
				Name:        "plain",
				Usage:       "print markdown without rendering",
				Destination: &cmd.plain,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *StatsCmd) run(ctx context.Context, c *cli.Command) error {
	window := cmd.window
	if window == 0 {
		window = cmd.app.Config.Analytics.WindowDays
	}
	if window < 1 {
		return fmt.Errorf("--window must be at least 1, got %d", window)
	}

	report := analytics.Compute(cmd.app.Store.Snapshot(), cmd.app.Now(), window)

	out := c.Root().Writer
	if cmd.jsonOutput {
		return iojson.WriteWith(out, c.Root().ErrWriter, report)
	}

	md := statsMarkdown(cmd.app.Config.Collection.Name, report)
	if cmd.plain || !isTerminal(out) {
		_, err := io.WriteString(out, md)
		return err
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStyles(styles.GlamourStyle()),
		glamour.WithWordWrap(statsWrap),
	)
	if err != nil {
		return fmt.Errorf("create markdown renderer: %w", err)
	}

	rendered, err := renderer.Render(md)
	if err != nil {
		return fmt.Errorf("render stats: %w", err)
	}

	_, err = io.WriteString(out, rendered)
	return err
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func statsMarkdown(name string, r analytics.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", name)
	fmt.Fprintf(&b, "_Last %d days, as of %s_\n\n", r.WindowDays, r.GeneratedAt.Format("2006-01-02 15:04"))

	b.WriteString("| Metric | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Entities | %d |\n", r.Counts.Total)
	fmt.Fprintf(&b, "| Completed | %d (%.1f%%) |\n", r.Counts.Completed, r.CompletionRate*100)
	fmt.Fprintf(&b, "| Favorites | %d (%.1f%%) |\n", r.Counts.Favorites, r.FavoriteRate*100)
	fmt.Fprintf(&b, "| Average per day | %.2f |\n", r.AveragePerDay)
	fmt.Fprintf(&b, "| Average per week | %.2f |\n", r.AveragePerWeek)
	if r.MostActiveDay != nil {
		fmt.Fprintf(&b, "| Most active day | %s (%d) |\n", r.MostActiveDay.Date, r.MostActiveDay.Count)
	}
	fmt.Fprintf(&b, "| Longest streak | %s |\n", pluralize(r.LongestStreak, "day", "days"))
	fmt.Fprintf(&b, "| Current streak | %s |\n", pluralize(r.CurrentStreak, "day", "days"))
	if r.AverageTimeToComplete != nil {
		fmt.Fprintf(&b, "| Average time to complete | %s |\n", r.AverageTimeToComplete.Round(time.Minute))
	}

	if len(r.Categories) > 0 {
		b.WriteString("\n## Categories\n\n| Category | Entities |\n|---|---|\n")
		for _, cc := range r.Categories {
			fmt.Fprintf(&b, "| %s | %d |\n", cc.Category, cc.Count)
		}
		if r.TopCategory != "" {
			fmt.Fprintf(&b, "\nMost completed: **%s**\n", r.TopCategory)
		}
	}

	b.WriteString("\n## Weekdays\n\n| " + strings.Join(weekdayNames[:], " | ") + " |\n")
	b.WriteString("|" + strings.Repeat("---|", 7) + "\n|")
	for _, n := range r.Weekdays {
		fmt.Fprintf(&b, " %d |", n)
	}
	b.WriteString("\n")

	unlocked := r.Unlocked()
	fmt.Fprintf(&b, "\n## Badges (%d/%d)\n\n", len(unlocked), len(r.Badges))
	for _, bs := range r.Badges {
		if bs.Unlocked {
			fmt.Fprintf(&b, "- %s **%s**: %s\n", styles.IconBadge, bs.Name, bs.Description)
		}
	}
	if len(unlocked) == 0 {
		b.WriteString("No badges yet.\n")
	}

	return b.String()
}
