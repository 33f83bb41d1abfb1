package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/almanac/internal/almanac"
	"github.com/colonyops/almanac/internal/core/query"
	"github.com/colonyops/almanac/pkg/iojson"
)

type RandomCmd struct {
	flags *Flags
	app   *almanac.App

	// flags
	exclude    string
	category   string
	jsonOutput bool
}

// NewRandomCmd creates a new random command
func NewRandomCmd(flags *Flags, app *almanac.App) *RandomCmd {
	return &RandomCmd{flags: flags, app: app}
}

// Register adds the random command to the application
func (cmd *RandomCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "random",
		Usage:     "Pick a random entity",
		UsageText: "almanac random [--exclude <id>] [--category <name>]",
		Description: `Shows a uniformly random entity. --exclude avoids repeating the entity
picked last time unless it is the only one.`,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "exclude", Aliases: []string{"x"}, Usage: "id to avoid", Destination: &cmd.exclude},
			&cli.StringFlag{Name: "category", Aliases: []string{"c"}, Usage: "pick within a category", Destination: &cmd.category},
			&cli.BoolFlag{Name: "json", Usage: "output as JSON", Destination: &cmd.jsonOutput},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *RandomCmd) run(ctx context.Context, c *cli.Command) error {
	entities := query.Apply(cmd.app.Store.Snapshot(), query.Filter{Category: cmd.category})

	exclude := cmd.exclude
	if exclude != "" {
		if id, err := resolveID(cmd.app.Store, exclude); err == nil {
			exclude = id
		}
	}

	e, ok := query.Random(entities, exclude, nil)
	if !ok {
		fmt.Fprintf(os.Stderr, "No entities to pick from\n")
		return nil
	}

	if cmd.jsonOutput {
		return iojson.WriteLine(c.Root().Writer, e)
	}
	return writeEntityDetail(c.Root().Writer, e, cmd.app.Store.Location())
}
