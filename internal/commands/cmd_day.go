package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/almanac/internal/almanac"
	"github.com/colonyops/almanac/internal/core/calendar"
	"github.com/colonyops/almanac/internal/core/collection"
	"github.com/colonyops/almanac/internal/core/entity"
	"github.com/colonyops/almanac/pkg/iojson"
)

// DayCmd registers the today and day commands, which list the entities
// created on one calendar day.
type DayCmd struct {
	flags *Flags
	app   *almanac.App

	// flags
	jsonOutput bool
}

// NewDayCmd creates the day commands
func NewDayCmd(flags *Flags, app *almanac.App) *DayCmd {
	return &DayCmd{flags: flags, app: app}
}

// Register adds the today and day commands to the application
func (cmd *DayCmd) Register(app *cli.Command) *cli.Command {
	jsonFlag := &cli.BoolFlag{
		Name:        "json",
		Usage:       "output as JSON lines",
		Destination: &cmd.jsonOutput,
	}

	app.Commands = append(app.Commands,
		&cli.Command{
			Name:      "today",
			Usage:     "Show today's entities",
			UsageText: "almanac today [--json]",
			Description: `Lists the entities created today. In a daily collection this is at most
one entity, shown in full.`,
			Flags:  []cli.Flag{jsonFlag},
			Action: cmd.runToday,
		},
		&cli.Command{
			Name:      "day",
			Usage:     "Show the entities of a given day",
			UsageText: "almanac day <YYYY-MM-DD> [--json]",
			Flags:     []cli.Flag{jsonFlag},
			Action:    cmd.runDay,
		},
	)

	return app
}

func (cmd *DayCmd) runToday(ctx context.Context, c *cli.Command) error {
	return cmd.show(c, cmd.app.Now(), true)
}

func (cmd *DayCmd) runDay(ctx context.Context, c *cli.Command) error {
	if c.NArg() < 1 {
		return fmt.Errorf("usage: almanac day <YYYY-MM-DD>")
	}

	d, err := calendar.ParseDate(c.Args().First())
	if err != nil {
		return err
	}

	return cmd.show(c, d.In(cmd.app.Store.Location()), false)
}

func (cmd *DayCmd) show(c *cli.Command, day time.Time, today bool) error {
	store := cmd.app.Store
	out := c.Root().Writer

	var entities []entity.Entity
	if store.Mode() == collection.ModeDaily {
		if e, ok := calendar.TodayEntity(store.Snapshot(), day); ok {
			entities = []entity.Entity{e}
		}
	} else if today {
		entities = calendar.Today(store.Snapshot(), day)
	} else {
		entities = calendar.EntitiesOnDay(store.Snapshot(), day)
	}

	if cmd.jsonOutput {
		for _, e := range entities {
			if err := iojson.WriteLine(out, e); err != nil {
				return fmt.Errorf("encode entity: %w", err)
			}
		}
		return nil
	}

	if len(entities) == 0 {
		fmt.Fprintf(os.Stderr, "Nothing on %s\n", calendar.DateOf(day))
		return nil
	}

	if len(entities) == 1 {
		return writeEntityDetail(out, entities[0], store.Location())
	}
	return writeEntityTable(out, entities, store.Location())
}
