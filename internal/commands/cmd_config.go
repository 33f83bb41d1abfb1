package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/hay-kot/criterio"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/colonyops/almanac/internal/core/config"
	"github.com/colonyops/almanac/internal/printer"
	"github.com/colonyops/almanac/pkg/iojson"
)

// ConfigCommandName is the command that runs without opening a collection,
// so a broken config can still be inspected.
const ConfigCommandName = "config"

type ConfigCmd struct {
	flags  *Flags
	format string
}

// NewConfigCmd creates a new config command.
func NewConfigCmd(flags *Flags) *ConfigCmd {
	return &ConfigCmd{flags: flags}
}

// Register adds the config command to the application.
func (cmd *ConfigCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  ConfigCommandName,
		Usage: "Configuration management commands",
		Commands: []*cli.Command{
			{
				Name:        "validate",
				Usage:       "Validate configuration file",
				UsageText:   "almanac config validate [options]",
				Description: "Validates the configuration file and environment overrides, reporting every invalid field.",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "format",
						Usage:       "output format (text, json)",
						Value:       "text",
						Destination: &cmd.format,
					},
				},
				Action: cmd.runValidate,
			},
			{
				Name:      "show",
				Usage:     "Print the effective configuration",
				UsageText: "almanac config show",
				Action:    cmd.runShow,
			},
		},
	})

	return app
}

// fieldProblem is one invalid config field.
type fieldProblem struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (cmd *ConfigCmd) runValidate(ctx context.Context, c *cli.Command) error {
	_, err := config.Load(cmd.flags.ConfigPath, cmd.flags.DataDir)
	problems := problemsOf(err)

	if cmd.format == "json" {
		out := struct {
			Valid    bool           `json:"valid"`
			Path     string         `json:"path"`
			Problems []fieldProblem `json:"problems,omitempty"`
		}{
			Valid:    err == nil,
			Path:     cmd.flags.ConfigPath,
			Problems: problems,
		}
		if werr := iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, out); werr != nil {
			return werr
		}
		if err != nil {
			return cli.Exit("", 1)
		}
		return nil
	}

	p := printer.Ctx(ctx)
	if err == nil {
		p.Successf("Configuration is valid")
		return nil
	}

	for _, prob := range problems {
		p.Errorf("%s: %s", prob.Field, prob.Message)
	}
	p.Printf("")
	p.Errorf("%d error(s) found", len(problems))
	return cli.Exit("", 1)
}

func (cmd *ConfigCmd) runShow(ctx context.Context, c *cli.Command) error {
	cfg, err := config.Load(cmd.flags.ConfigPath, cmd.flags.DataDir)
	if err != nil {
		return err
	}

	bits, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	_, err = fmt.Fprintf(c.Root().Writer, "# data dir: %s\n# store: %s\n%s", cfg.DataDir, cfg.StorePath(), bits)
	return err
}

// problemsOf flattens field errors; any other error becomes a single problem
// on the file itself.
func problemsOf(err error) []fieldProblem {
	if err == nil {
		return nil
	}

	var fieldErrs criterio.FieldErrors
	if !errors.As(err, &fieldErrs) {
		return []fieldProblem{{Field: "file", Message: err.Error()}}
	}

	out := make([]fieldProblem, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, fieldProblem{Field: fe.Field, Message: fe.Err.Error()})
	}
	return out
}
