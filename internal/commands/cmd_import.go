package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/almanac/internal/almanac"
	"github.com/colonyops/almanac/internal/core/entity"
	"github.com/colonyops/almanac/internal/printer"
	"github.com/colonyops/almanac/pkg/iojson"
)

// importItem is the JSON input format for almanac import.
type importItem struct {
	Title     string     `json:"title"`
	Notes     string     `json:"notes,omitempty"`
	Location  string     `json:"location,omitempty"`
	Category  string     `json:"category,omitempty"`
	Favorite  bool       `json:"favorite,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

type ImportCmd struct {
	flags  *Flags
	app    *almanac.App
	reader iojson.FileReader[[]importItem]

	// flags
	keepGoing bool
	jsonOut   bool
}

type importResult struct {
	Added   int      `json:"added"`
	Total   int      `json:"total"`
	Skipped []int    `json:"skipped"`
	IDs     []string `json:"ids"`
}

// NewImportCmd creates a new import command
func NewImportCmd(flags *Flags, app *almanac.App) *ImportCmd {
	return &ImportCmd{flags: flags, app: app}
}

// Register adds the import command to the application
func (cmd *ImportCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "import",
		Usage:     "Add entities from a JSON array",
		UsageText: "almanac import [-f file] [--keep-going] [--json]",
		Description: `Reads a JSON array of entities from a file or stdin and adds each one in
order. Only title is required; created_at back-dates the entity.

Example input:
  [{"title": "Dune", "category": "books", "created_at": "2026-10-01T20:00:00Z"}]`,
		Flags: []cli.Flag{
			cmd.reader.Flag(),
			&cli.BoolFlag{
				Name:        "keep-going",
				Aliases:     []string{"k"},
				Usage:       "skip invalid items instead of stopping",
				Destination: &cmd.keepGoing,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "print a JSON summary; skipped items are reported as JSON errors on stderr",
				Destination: &cmd.jsonOut,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *ImportCmd) run(ctx context.Context, c *cli.Command) error {
	items, err := cmd.reader.Read()
	if err != nil {
		return err
	}

	p := printer.Ctx(ctx)
	result := importResult{Total: len(items), Skipped: []int{}, IDs: []string{}}
	for i, item := range items {
		e, err := cmd.app.Store.Add(ctx, entity.Payload{
			Title:    item.Title,
			Notes:    item.Notes,
			Location: item.Location,
			Category: item.Category,
			Favorite: item.Favorite,
			Date:     item.CreatedAt,
		})
		if err != nil {
			if almanac.IsPersistenceError(err) || !cmd.keepGoing {
				return fmt.Errorf("item %d: %w", i, err)
			}
			result.Skipped = append(result.Skipped, i)
			if cmd.jsonOut {
				if werr := iojson.WriteError(c.Root().ErrWriter, "skipped item", map[string]any{"index": i, "error": err.Error()}); werr != nil {
					return werr
				}
				continue
			}
			p.Warnf("skipping item %d: %v", i, err)
			continue
		}
		result.Added++
		result.IDs = append(result.IDs, e.ID)
	}

	if cmd.jsonOut {
		return iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, result)
	}

	p.Successf("Imported %d of %d entities", result.Added, result.Total)
	return nil
}
