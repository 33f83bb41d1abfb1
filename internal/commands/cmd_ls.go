package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/almanac/internal/almanac"
	"github.com/colonyops/almanac/internal/core/calendar"
	"github.com/colonyops/almanac/internal/core/query"
	"github.com/colonyops/almanac/pkg/iojson"
)

type LsCmd struct {
	flags *Flags
	app   *almanac.App

	// flags
	search       string
	category     string
	categoryGlob string
	favorite     bool
	completed    bool
	open         bool
	from         string
	to           string
	sort         string
	limit        int
	group        string
	jsonOutput   bool
}

// NewLsCmd creates a new ls command
func NewLsCmd(flags *Flags, app *almanac.App) *LsCmd {
	return &LsCmd{flags: flags, app: app}
}

// Register adds the ls command to the application
func (cmd *LsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "ls",
		Aliases:   []string{"list"},
		Usage:     "List entities",
		UsageText: "almanac ls [options]",
		Description: `Displays a table of entities. Filters are combined: an entity must match
all of them. Search matches title, notes, location and category, ignoring
case.

Use --json for JSON lines output.

Examples:
  almanac ls --search musician
  almanac ls --category-glob "work/*" --open --sort oldest
  almanac ls --from 2026-10-01 --to 2026-10-31 --favorite
  almanac ls --group week --sort oldest`,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "search", Aliases: []string{"s"}, Usage: "case-insensitive text search", Destination: &cmd.search},
			&cli.StringFlag{Name: "category", Aliases: []string{"c"}, Usage: "exact category", Destination: &cmd.category},
			&cli.StringFlag{Name: "category-glob", Usage: "category glob, e.g. \"work/**\"", Destination: &cmd.categoryGlob},
			&cli.BoolFlag{Name: "favorite", Aliases: []string{"f"}, Usage: "favorites only", Destination: &cmd.favorite},
			&cli.BoolFlag{Name: "completed", Usage: "completed only", Destination: &cmd.completed},
			&cli.BoolFlag{Name: "open", Usage: "not completed only", Destination: &cmd.open},
			&cli.StringFlag{Name: "from", Usage: "created on or after day (YYYY-MM-DD)", Destination: &cmd.from},
			&cli.StringFlag{Name: "to", Usage: "created on or before day (YYYY-MM-DD)", Destination: &cmd.to},
			&cli.StringFlag{Name: "sort", Usage: fmt.Sprintf("sort order %v", query.SortKeys), Destination: &cmd.sort},
			&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Usage: "show at most n entities (0 for all)", Destination: &cmd.limit},
			&cli.StringFlag{Name: "group", Aliases: []string{"g"}, Usage: "group tables by day, week or month", Destination: &cmd.group},
			&cli.BoolFlag{Name: "json", Usage: "output as JSON lines", Destination: &cmd.jsonOutput},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *LsCmd) buildQuery() (query.Query, error) {
	q := query.Query{Text: cmd.search}
	q.Filter.Loc = cmd.app.Store.Location()

	key, err := query.ParseSortKey(cmd.sort)
	if err != nil {
		return q, err
	}
	q.Sort = key

	if cmd.completed && cmd.open {
		return q, fmt.Errorf("--completed and --open are mutually exclusive")
	}

	q.Filter.Category = cmd.category
	q.Filter.CategoryPattern = cmd.categoryGlob
	if cmd.favorite {
		q.Filter.Favorite = query.Bool(true)
	}
	if cmd.completed {
		q.Filter.Completed = query.Bool(true)
	}
	if cmd.open {
		q.Filter.Completed = query.Bool(false)
	}

	if cmd.from != "" {
		d, err := calendar.ParseDate(cmd.from)
		if err != nil {
			return q, fmt.Errorf("invalid --from: %w", err)
		}
		q.Filter.From = &d
	}
	if cmd.to != "" {
		d, err := calendar.ParseDate(cmd.to)
		if err != nil {
			return q, fmt.Errorf("invalid --to: %w", err)
		}
		q.Filter.To = &d
	}

	return q, q.Filter.Validate()
}

func (cmd *LsCmd) run(ctx context.Context, c *cli.Command) error {
	q, err := cmd.buildQuery()
	if err != nil {
		return err
	}

	entities := query.Run(cmd.app.Store.Snapshot(), q)
	if cmd.limit > 0 && len(entities) > cmd.limit {
		entities = entities[:cmd.limit]
	}

	out := c.Root().Writer

	// JSON output mode
	if cmd.jsonOutput {
		for _, e := range entities {
			if err := iojson.WriteLine(out, e); err != nil {
				return fmt.Errorf("encode entity: %w", err)
			}
		}
		return nil
	}

	if len(entities) == 0 {
		fmt.Fprintf(os.Stderr, "No entities found\n")
		return nil
	}

	loc := cmd.app.Store.Location()
	if cmd.group != "" {
		g, err := parseGranularity(cmd.group)
		if err != nil {
			return err
		}
		return writeGroupedTables(out, calendar.Group(entities, g, loc), g, loc)
	}

	return writeEntityTable(out, entities, loc)
}
