package commands

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/almanac/internal/almanac"
	"github.com/colonyops/almanac/internal/core/calendar"
	"github.com/colonyops/almanac/internal/core/styles"
	"github.com/colonyops/almanac/pkg/iojson"
)

const monthLayout = "2006-01"

var weekdayLabels = [7]string{"Mo", "Tu", "We", "Th", "Fr", "Sa", "Su"}

type CalCmd struct {
	flags *Flags
	app   *almanac.App

	// flags
	month      string
	jsonOutput bool
}

// NewCalCmd creates a new cal command
func NewCalCmd(flags *Flags, app *almanac.App) *CalCmd {
	return &CalCmd{flags: flags, app: app}
}

// Register adds the cal command to the application
func (cmd *CalCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "cal",
		Usage:     "Show a month calendar with daily activity",
		UsageText: "almanac cal [--month YYYY-MM] [--json]",
		Description: `Renders a Monday-first month grid. Days are shaded by how many entities
were created on them; today is underlined.

Use --json for per-day counts.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "month",
				Aliases:     []string{"m"},
				Usage:       "month to show (YYYY-MM), defaults to the current month",
				Destination: &cmd.month,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output per-day counts as JSON",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *CalCmd) run(ctx context.Context, c *cli.Command) error {
	now := cmd.app.Now()
	year, month := now.Year(), now.Month()

	if cmd.month != "" {
		t, err := time.Parse(monthLayout, cmd.month)
		if err != nil {
			return fmt.Errorf("invalid --month %q: expected YYYY-MM", cmd.month)
		}
		year, month = t.Year(), t.Month()
	}

	counts := calendar.CountsForMonth(cmd.app.Store.Snapshot(), year, month, cmd.app.Store.Location())

	if cmd.jsonOutput {
		return iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, struct {
			Month string              `json:"month"`
			Total int                 `json:"total"`
			Days  []calendar.DayCount `json:"days"`
		}{
			Month: fmt.Sprintf("%04d-%02d", year, month),
			Total: counts.Total(),
			Days:  counts.Days(),
		})
	}

	_, err := fmt.Fprintln(c.Root().Writer, renderMonth(calendar.MonthGrid(year, month), counts, calendar.DateOf(now)))
	return err
}

// renderMonth draws the grid. Days outside the month are dimmed and carry no
// activity shading.
func renderMonth(g calendar.Grid, counts calendar.Counts, today calendar.Date) string {
	var rows []string

	header := make([]string, 0, 7)
	for _, label := range weekdayLabels {
		header = append(header, styles.CalendarWeekdayStyle.Render(label))
	}
	rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, header...))

	for _, week := range g.Weeks() {
		cells := make([]string, 0, 7)
		for _, cell := range week {
			cells = append(cells, renderCell(cell, counts, today))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}

	body := lipgloss.JoinVertical(lipgloss.Left, rows...)
	title := styles.CalendarTitleStyle.
		Width(lipgloss.Width(body)).
		Render(fmt.Sprintf("%s %d", g.Month, g.Year))

	summary := styles.MutedStyle.Render(pluralize(counts.Total(), "entity", "entities") + " this month")

	return styles.CalendarBoxStyle.Render(
		lipgloss.JoinVertical(lipgloss.Left, title, body, "", summary),
	)
}

func renderCell(cell calendar.Cell, counts calendar.Counts, today calendar.Date) string {
	label := strconv.Itoa(cell.Date.Day)
	if !cell.InMonth {
		return styles.CalendarOutsideStyle.Render(label)
	}

	style := styles.CalendarHeat[heatLevel(counts.Count(cell.Date))]
	if cell.Date == today {
		style = style.Underline(true).Bold(true)
	}
	return style.Render(label)
}

func heatLevel(n int) int {
	return min(n, len(styles.CalendarHeat)-1)
}

func pluralize(n int, one, many string) string {
	if n == 1 {
		return "1 " + one
	}
	return fmt.Sprintf("%d %s", n, many)
}
