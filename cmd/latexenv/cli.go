package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/alecthomas/kong"
)

const (
	name        = "latexenv"
	description = "Inspect LaTeX environments and keep an index of them."
)

// CLI is the top-level command-line interface.
type CLI struct {
	Log    logConfig       `embed:"" group:"log" prefix:"log-"`
	Config kong.ConfigFlag `help:"Load flags from a JSON file."`

	Envs   Envs   `cmd:"" help:"List environments of files."`
	Index  Index  `cmd:"" help:"Build an index of environments and save it."`
	Search Search `cmd:"" help:"Fuzzy search environments by name and label."`
	Label  Label  `cmd:"" help:"Find environments which declare a label."`
	Watch  Watch  `cmd:"" help:"Keep an index up to date while files change."`
}

// Run parses args and executes the selected command. Command output goes to
// stdout, logs and usage errors go to stderr.
func Run(ctx context.Context, exit func(code int), stdout, stderr io.Writer, args ...string) error {
	var cli CLI

	parser, err := kong.New(&cli,
		kong.Name(name),
		kong.Description(description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.Writers(stdout, stderr),
		kong.ExplicitGroups([]kong.Group{cli.Log.group()}),
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.BindTo(stdout, (*io.Writer)(nil)),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}),
		kong.Configuration(kong.JSON, ".latexenv.json", "~/.config/latexenv/config.json"),
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	logger := cli.Log.logger(stderr)
	logger.DebugContext(ctx, "logger initialized",
		slog.String("level", cli.Log.Level),
		slog.String("format", cli.Log.Format),
	)

	return ktx.Run(logger)
}
