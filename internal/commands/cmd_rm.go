package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/almanac/internal/almanac"
	"github.com/colonyops/almanac/internal/printer"
)

type RmCmd struct {
	flags *Flags
	app   *almanac.App
}

// NewRmCmd creates a new rm command
func NewRmCmd(flags *Flags, app *almanac.App) *RmCmd {
	return &RmCmd{flags: flags, app: app}
}

// Register adds the rm command to the application
func (cmd *RmCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:          "rm",
		Aliases:       []string{"delete"},
		Usage:         "Delete one or more entities",
		UsageText:     "almanac rm <id> [id...]",
		ShellComplete: EntityIDCompleter(cmd.app),
		Action:        cmd.run,
	})

	return app
}

func (cmd *RmCmd) run(ctx context.Context, c *cli.Command) error {
	if c.NArg() < 1 {
		return fmt.Errorf("usage: almanac rm <id> [id...]")
	}

	p := printer.Ctx(ctx)
	for _, arg := range c.Args().Slice() {
		id, err := resolveID(cmd.app.Store, arg)
		if err != nil {
			return err
		}

		if err := cmd.app.Store.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete %s: %w", shortID(id), err)
		}
		p.Success("Deleted", id)
	}

	return nil
}
