package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/almanac/internal/almanac"
	"github.com/colonyops/almanac/internal/core/calendar"
	"github.com/colonyops/almanac/internal/core/entity"
	"github.com/colonyops/almanac/internal/printer"
	"github.com/colonyops/almanac/pkg/iojson"
)

type AddCmd struct {
	flags *Flags
	app   *almanac.App

	// flags
	notes      string
	location   string
	category   string
	favorite   bool
	date       string
	jsonOutput bool
}

// NewAddCmd creates a new add command
func NewAddCmd(flags *Flags, app *almanac.App) *AddCmd {
	return &AddCmd{flags: flags, app: app}
}

// Register adds the add command to the application
func (cmd *AddCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "add",
		Usage:     "Add an entity to the collection",
		UsageText: "almanac add <title> [options]",
		Description: `Adds a new entity. All positional arguments are joined to form the title.

In a daily collection only one entity may exist per calendar day; use --date
to back-date an entry.

Examples:
  almanac add "Met a street musician" --category people
  almanac add "Sourdough" --notes "75% hydration" --favorite
  almanac add "Forgot to write" --date 2026-10-14`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "notes",
				Aliases:     []string{"n"},
				Usage:       "free-form notes",
				Destination: &cmd.notes,
			},
			&cli.StringFlag{
				Name:        "location",
				Aliases:     []string{"l"},
				Usage:       "where it happened",
				Destination: &cmd.location,
			},
			&cli.StringFlag{
				Name:        "category",
				Aliases:     []string{"c"},
				Usage:       "category tag",
				Destination: &cmd.category,
			},
			&cli.BoolFlag{
				Name:        "favorite",
				Aliases:     []string{"f"},
				Usage:       "mark as favorite",
				Destination: &cmd.favorite,
			},
			&cli.StringFlag{
				Name:        "date",
				Aliases:     []string{"d"},
				Usage:       "creation day (YYYY-MM-DD), defaults to now",
				Destination: &cmd.date,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "print the created entity as JSON",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *AddCmd) run(ctx context.Context, c *cli.Command) error {
	payload := entity.Payload{
		Title:    strings.Join(c.Args().Slice(), " "),
		Notes:    cmd.notes,
		Location: cmd.location,
		Category: cmd.category,
		Favorite: cmd.favorite,
	}

	if cmd.date != "" {
		at, err := backdate(cmd.date, cmd.app.Now())
		if err != nil {
			return err
		}
		payload.Date = &at
	}

	e, err := cmd.app.Store.Add(ctx, payload)
	if err != nil && !almanac.IsPersistenceError(err) {
		return fmt.Errorf("add entity: %w", err)
	}

	if cmd.jsonOutput {
		if werr := iojson.WriteLine(c.Root().Writer, e); werr != nil {
			return werr
		}
	} else {
		printer.Ctx(ctx).Success("Added", e.ID)
	}

	return err
}

// backdate parses a YYYY-MM-DD day and keeps now's wall-clock time, so
// entities added for the same past day still order by when they were added.
func backdate(day string, now time.Time) (time.Time, error) {
	d, err := calendar.ParseDate(day)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --date: %w", err)
	}
	return time.Date(d.Year, d.Month, d.Day, now.Hour(), now.Minute(), now.Second(), now.Nanosecond(), now.Location()), nil
}
