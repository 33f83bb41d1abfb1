package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/almanac/internal/almanac"
	"github.com/colonyops/almanac/internal/printer"
)

// ToggleCmd registers the done and fav commands, which flip a single flag on
// an entity.
type ToggleCmd struct {
	flags *Flags
	app   *almanac.App
}

// NewToggleCmd creates the toggle commands
func NewToggleCmd(flags *Flags, app *almanac.App) *ToggleCmd {
	return &ToggleCmd{flags: flags, app: app}
}

// Register adds the done and fav commands to the application
func (cmd *ToggleCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands,
		&cli.Command{
			Name:          "done",
			Usage:         "Toggle an entity's completion",
			UsageText:     "almanac done <id>",
			ShellComplete: EntityIDCompleter(cmd.app),
			Action:        cmd.runDone,
		},
		&cli.Command{
			Name:          "fav",
			Usage:         "Toggle an entity's favorite flag",
			UsageText:     "almanac fav <id>",
			ShellComplete: EntityIDCompleter(cmd.app),
			Action:        cmd.runFav,
		},
	)

	return app
}

func (cmd *ToggleCmd) runDone(ctx context.Context, c *cli.Command) error {
	id, err := requireID(c, cmd.app.Store, "almanac done <id>")
	if err != nil {
		return err
	}

	e, err := cmd.app.Store.ToggleCompletion(ctx, id)
	if err != nil && !almanac.IsPersistenceError(err) {
		return fmt.Errorf("toggle completion: %w", err)
	}

	if e.Completed() {
		printer.Ctx(ctx).Success("Completed", e.Title)
	} else {
		printer.Ctx(ctx).Success("Reopened", e.Title)
	}
	return err
}

func (cmd *ToggleCmd) runFav(ctx context.Context, c *cli.Command) error {
	id, err := requireID(c, cmd.app.Store, "almanac fav <id>")
	if err != nil {
		return err
	}

	e, err := cmd.app.Store.ToggleFavorite(ctx, id)
	if err != nil && !almanac.IsPersistenceError(err) {
		return fmt.Errorf("toggle favorite: %w", err)
	}

	if e.Favorite {
		printer.Ctx(ctx).Success("Favorited", e.Title)
	} else {
		printer.Ctx(ctx).Success("Unfavorited", e.Title)
	}
	return err
}
