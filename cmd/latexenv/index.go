package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/eolymp/go-latexenv/index"
)

// Index builds an index of all LaTeX files found under the paths.
type Index struct {
	Out string `default:".latexenv/index.msgpack" help:"Where to save the index." short:"o"`

	Paths []string `arg:"" default:"." help:"Files or directories to index." type:"existingpath"`
}

func (i *Index) Run(ctx context.Context, log *slog.Logger) error {
	files, err := collect(i.Paths...)
	if err != nil {
		return err
	}

	x, err := index.Build(ctx, files...)
	if err != nil {
		return err
	}

	if err := x.SaveFile(i.Out); err != nil {
		return fmt.Errorf("save index: %w", err)
	}

	log.InfoContext(ctx, "index saved",
		slog.String("path", i.Out),
		slog.Int("files", len(x.Files())),
		slog.Int("environments", x.Len()),
	)

	return nil
}

func collect(roots ...string) (files []string, err error) {
	for _, root := range roots {
		found, err := index.Collect(root)
		if err != nil {
			return nil, err
		}

		files = append(files, found...)
	}

	return
}

// Search prints index entries best matching the query.
type Search struct {
	Index string `default:".latexenv/index.msgpack" help:"Index file to search." short:"i"`
	Limit int    `default:"20"                      help:"Maximum number of results, 0 for all." short:"n"`

	Query string `arg:"" help:"Text to look for in environment names and labels."`
}

func (s *Search) Run(out io.Writer) error {
	x, err := index.LoadFile(s.Index)
	if err != nil {
		return err
	}

	entries := x.Search(s.Query)
	if s.Limit > 0 && len(entries) > s.Limit {
		entries = entries[:s.Limit]
	}

	printEntries(out, entries)
	return nil
}

// Label prints environments declaring a label, it fails if there are none.
type Label struct {
	Index string `default:".latexenv/index.msgpack" help:"Index file to look in." short:"i"`

	Label string `arg:"" help:"Label to resolve."`
}

func (l *Label) Run(out io.Writer) error {
	x, err := index.LoadFile(l.Index)
	if err != nil {
		return err
	}

	entries := x.ByLabel(l.Label)
	if len(entries) == 0 {
		return fmt.Errorf("label %q is not defined", l.Label)
	}

	printEntries(out, entries)
	return nil
}

func printEntries(out io.Writer, entries []index.Entry) {
	for _, entry := range entries {
		fmt.Fprintf(out, "%s:%d-%d\t%s", entry.Path, entry.Stub.Start, entry.Stub.End, entry.Stub.Name)

		if entry.Stub.Label != "" {
			fmt.Fprintf(out, "\tlabel=%s", entry.Stub.Label)
		}

		fmt.Fprintln(out)
	}
}
