package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/almanac/internal/almanac"
	"github.com/colonyops/almanac/internal/core/entity"
	"github.com/colonyops/almanac/internal/printer"
)

type EditCmd struct {
	flags *Flags
	app   *almanac.App

	// flags
	title    string
	notes    string
	location string
	category string
	favorite bool
}

// NewEditCmd creates a new edit command
func NewEditCmd(flags *Flags, app *almanac.App) *EditCmd {
	return &EditCmd{flags: flags, app: app}
}

// Register adds the edit command to the application
func (cmd *EditCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "edit",
		Usage:     "Edit an entity",
		UsageText: "almanac edit <id> [options]",
		Description: `Replaces the content of an entity. Fields whose flag is not given keep
their current value; pass an empty string to clear a field.

Examples:
  almanac edit 0192f3a1 --title "Met a street violinist"
  almanac edit 0192f3a1 --category ""`,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "new title", Destination: &cmd.title},
			&cli.StringFlag{Name: "notes", Aliases: []string{"n"}, Usage: "new notes", Destination: &cmd.notes},
			&cli.StringFlag{Name: "location", Aliases: []string{"l"}, Usage: "new location", Destination: &cmd.location},
			&cli.StringFlag{Name: "category", Aliases: []string{"c"}, Usage: "new category", Destination: &cmd.category},
			&cli.BoolFlag{Name: "favorite", Aliases: []string{"f"}, Usage: "favorite flag", Destination: &cmd.favorite},
		},
		ShellComplete: EntityIDCompleter(cmd.app),
		Action:        cmd.run,
	})

	return app
}

func (cmd *EditCmd) run(ctx context.Context, c *cli.Command) error {
	id, err := requireID(c, cmd.app.Store, "almanac edit <id>")
	if err != nil {
		return err
	}

	current, err := cmd.app.Store.Get(id)
	if err != nil {
		return err
	}

	payload := entity.PayloadOf(current)
	if c.IsSet("title") {
		payload.Title = cmd.title
	}
	if c.IsSet("notes") {
		payload.Notes = cmd.notes
	}
	if c.IsSet("location") {
		payload.Location = cmd.location
	}
	if c.IsSet("category") {
		payload.Category = cmd.category
	}
	if c.IsSet("favorite") {
		payload.Favorite = cmd.favorite
	}

	e, err := cmd.app.Store.Update(ctx, id, payload)
	if err != nil && !almanac.IsPersistenceError(err) {
		return fmt.Errorf("edit entity: %w", err)
	}

	printer.Ctx(ctx).Success("Updated", e.ID)
	return err
}
