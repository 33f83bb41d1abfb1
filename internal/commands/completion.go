package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/almanac/internal/almanac"
)

// EntityIDCompleter returns a ShellCompleteFunc that suggests entity ids as
// positional completions.
//
// When the user's last typed argument starts with "-", it falls back to the
// default flag completion behavior.
func EntityIDCompleter(app *almanac.App) cli.ShellCompleteFunc {
	return func(ctx context.Context, cmd *cli.Command) {
		// Delegate to default flag completion when typing a flag
		if args := cmd.Args(); args.Present() {
			last := args.Slice()[args.Len()-1]
			if len(last) > 0 && last[0] == '-' {
				cli.DefaultCompleteWithFlags(ctx, cmd)
				return
			}
		}

		if app == nil || app.Store == nil {
			return
		}

		w := cmd.Root().Writer
		for _, e := range app.Store.Snapshot() {
			_, _ = fmt.Fprintf(w, "%s:%s\n", e.ID, e.Title)
		}
	}
}
