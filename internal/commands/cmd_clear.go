package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/colonyops/almanac/internal/almanac"
	"github.com/colonyops/almanac/internal/printer"
)

type ClearCmd struct {
	flags *Flags
	app   *almanac.App

	// flags
	yes bool

	// confirm asks the user before deleting; replaced in tests.
	confirm func(title, description string) (bool, error)
}

// NewClearCmd creates a new clear command
func NewClearCmd(flags *Flags, app *almanac.App) *ClearCmd {
	return &ClearCmd{flags: flags, app: app, confirm: confirmPrompt}
}

// Register adds the clear command to the application
func (cmd *ClearCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "clear",
		Usage:     "Delete every entity in the collection",
		UsageText: "almanac clear [--yes]",
		Description: `Removes all entities from the configured collection.

Asks for confirmation when run in a terminal. Without a terminal, --yes is
required.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "yes",
				Aliases:     []string{"y"},
				Usage:       "skip the confirmation prompt",
				Destination: &cmd.yes,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *ClearCmd) run(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)
	n := cmd.app.Store.Len()
	if n == 0 {
		p.Infof("Collection %q is already empty", cmd.app.Config.Collection.Name)
		return nil
	}

	if !cmd.yes {
		if cmd.confirm == nil {
			return fmt.Errorf("refusing to clear without a terminal; pass --yes")
		}
		ok, err := cmd.confirm(
			fmt.Sprintf("Delete all %d entities?", n),
			fmt.Sprintf("Collection %q. This cannot be undone.", cmd.app.Config.Collection.Name),
		)
		if err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return nil
			}
			return err
		}
		if !ok {
			p.Infof("Clear cancelled")
			return nil
		}
	}

	if err := cmd.app.Store.DeleteAll(ctx); err != nil {
		return fmt.Errorf("clear collection: %w", err)
	}

	p.Successf("Removed %d entities", n)
	return nil
}

func confirmPrompt(title, description string) (bool, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return false, fmt.Errorf("refusing to clear without a terminal; pass --yes")
	}

	var ok bool
	err := huh.NewConfirm().
		Title(title).
		Description(description).
		Affirmative("Delete").
		Negative("Cancel").
		Value(&ok).
		Run()
	return ok, err
}
