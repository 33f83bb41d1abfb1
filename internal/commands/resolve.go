package commands

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/almanac/internal/core/collection"
	"github.com/colonyops/almanac/internal/core/entity"
)

// resolveID maps a full id, or a unique prefix or suffix of one, to the
// entity's full id.
func resolveID(store *collection.Store, arg string) (string, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return "", fmt.Errorf("id cannot be empty")
	}

	if e, err := store.Get(arg); err == nil {
		return e.ID, nil
	}

	var matches []string
	for _, e := range store.Snapshot() {
		if strings.HasPrefix(e.ID, arg) || strings.HasSuffix(e.ID, arg) {
			matches = append(matches, e.ID)
		}
	}

	switch len(matches) {
	case 0:
		return "", &entity.NotFoundError{ID: arg}
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("id %q is ambiguous (%d matches)", arg, len(matches))
	}
}

// requireID resolves the first positional argument.
func requireID(c *cli.Command, store *collection.Store, usage string) (string, error) {
	if c.NArg() < 1 {
		return "", fmt.Errorf("usage: %s", usage)
	}
	return resolveID(store, c.Args().First())
}
