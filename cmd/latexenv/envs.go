package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/eolymp/go-latexenv"
)

// Envs prints environments of each file.
type Envs struct {
	Format string `default:"text" enum:"text,yaml" help:"Output format (text or yaml)." short:"f"`

	Files []string `arg:"" help:"LaTeX files to inspect." type:"existingfile"`
}

type record struct {
	Path     string `yaml:"path"`
	Name     string `yaml:"name"`
	Label    string `yaml:"label,omitempty"`
	Language string `yaml:"language,omitempty"`
	Start    int    `yaml:"start"`
	End      int    `yaml:"end"`
	Valid    bool   `yaml:"valid"`
}

func (e *Envs) Run(ctx context.Context, out io.Writer, log *slog.Logger) error {
	var records []record

	for _, path := range e.Files {
		doc, err := parseFile(path)
		if err != nil {
			return err
		}

		envs := doc.Environments()
		log.DebugContext(ctx, "file parsed", slog.String("path", path), slog.Int("environments", len(envs)))

		for _, env := range envs {
			stub := env.Stub()
			records = append(records, record{
				Path:     path,
				Name:     stub.Name,
				Label:    stub.Label,
				Language: stub.Language,
				Start:    stub.Start,
				End:      stub.End,
				Valid:    env.IsValidHost(),
			})
		}
	}

	if e.Format == "yaml" {
		return yaml.NewEncoder(out, yaml.Indent(2)).Encode(records)
	}

	for _, r := range records {
		name := r.Name
		if name == "" {
			name = "<unnamed>"
		}

		fmt.Fprintf(out, "%s:%d-%d\t%s", r.Path, r.Start, r.End, name)

		if r.Label != "" {
			fmt.Fprintf(out, "\tlabel=%s", r.Label)
		}

		if r.Language != "" {
			fmt.Fprintf(out, "\tlanguage=%s", r.Language)
		}

		if !r.Valid {
			fmt.Fprint(out, "\tinvalid")
		}

		fmt.Fprintln(out)
	}

	return nil
}

func parseFile(path string) (*latexenv.Document, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	defer file.Close()

	doc, err := latexenv.Parse(bufio.NewReader(file))
	if err != nil {
		return nil, fmt.Errorf("parse %v: %w", path, err)
	}

	return doc, nil
}
