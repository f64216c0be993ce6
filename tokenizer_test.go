package latexenv_test

import (
	"io"
	"strings"
	"testing"

	"github.com/eolymp/go-latexenv"
	"github.com/google/go-cmp/cmp"
)

func TestTokenizer(t *testing.T) {
	tt := []struct {
		name   string
		input  string
		output []any
	}{
		{
			name:  "text",
			input: "one\ntwo\nthree",
			output: []any{
				latexenv.Text("one\n"),
				latexenv.Text("two\n"),
				latexenv.Text("three"),
			},
		},
		{
			name:  "command",
			input: "\\textbf{foo\\par bar}",
			output: []any{
				latexenv.Command("\\textbf"),
				latexenv.ParameterStart{},
				latexenv.Text("foo"),
				latexenv.Command("\\par"),
				latexenv.Text(" bar"),
				latexenv.ParameterEnd{},
			},
		},
		{
			name:  "optional parameter",
			input: "\\item[a]b",
			output: []any{
				latexenv.Command("\\item"),
				latexenv.OptionalStart{},
				latexenv.Text("a"),
				latexenv.OptionalEnd{},
				latexenv.Text("b"),
			},
		},
		{
			name:  "one symbol commands",
			input: "50\\% \\\\* \\{",
			output: []any{
				latexenv.Text("50"),
				latexenv.Command("\\%"),
				latexenv.Text(" "),
				latexenv.Command("\\\\*"),
				latexenv.Text(" "),
				latexenv.Command("\\{"),
			},
		},
		{
			name:  "math",
			input: "foo $a_i^2 + b_i^2 \\le a_{i+1}^2$ bar",
			output: []any{
				latexenv.Text("foo "),
				latexenv.Math{Delimiter: "$", Data: "a_i^2 + b_i^2 \\le a_{i+1}^2", Closed: true},
				latexenv.Text(" bar"),
			},
		},
		{
			name:  "math with escaped $ symbol",
			input: "foo $a \\$ b$ bar",
			output: []any{
				latexenv.Text("foo "),
				latexenv.Math{Delimiter: "$", Data: "a \\$ b", Closed: true},
				latexenv.Text(" bar"),
			},
		},
		{
			name:  "math block with escaped $ symbols",
			input: "foo $$a_i^2 + b_i^2 \\$$ \\le a_{i+1}^2$$ bar",
			output: []any{
				latexenv.Text("foo "),
				latexenv.Math{Delimiter: "$$", Data: "a_i^2 + b_i^2 \\$$ \\le a_{i+1}^2", Closed: true},
				latexenv.Text(" bar"),
			},
		},
		{
			name:  "unterminated math",
			input: "foo $x + y",
			output: []any{
				latexenv.Text("foo "),
				latexenv.Math{Delimiter: "$", Data: "x + y"},
			},
		},
		{
			name:  "line comment keeps line break",
			input: "a % note\nb",
			output: []any{
				latexenv.Text("a "),
				latexenv.Comment("% note"),
				latexenv.Text("\n"),
				latexenv.Text("b"),
			},
		},
		{
			name:  "environment",
			input: "\\begin{equation}x=1\\end{equation}",
			output: []any{
				latexenv.EnvironmentStart{Name: "equation"},
				latexenv.Text("x=1"),
				latexenv.EnvironmentEnd{Name: "equation"},
			},
		},
		{
			name:  "environment with star",
			input: "\\begin{align*}\\end{align*}",
			output: []any{
				latexenv.EnvironmentStart{Name: "align*"},
				latexenv.EnvironmentEnd{Name: "align*"},
			},
		},
		{
			name:  "whitespace before environment name",
			input: "\\begin {itemize}",
			output: []any{
				latexenv.EnvironmentStart{Name: "itemize"},
			},
		},
		{
			name:  "environment without name",
			input: "\\begin x",
			output: []any{
				latexenv.EnvironmentStart{},
				latexenv.Text(" x"),
			},
		},
		{
			name:  "unterminated environment name",
			input: "\\begin{equ",
			output: []any{
				latexenv.EnvironmentStart{},
				latexenv.ParameterStart{},
				latexenv.Text("equ"),
			},
		},
		{
			name:  "malformed environment name",
			input: "\\end{a b}",
			output: []any{
				latexenv.EnvironmentEnd{},
				latexenv.ParameterStart{},
				latexenv.Text("a b"),
				latexenv.ParameterEnd{},
			},
		},
		{
			name:  "commands starting with end",
			input: "\\endgroup",
			output: []any{
				latexenv.Command("\\endgroup"),
			},
		},
		{
			name:  "verb command",
			input: "The \\verb|\\ldots| command",
			output: []any{
				latexenv.Text("The "),
				latexenv.Verb{Command: "\\verb", Delimiter: "|", Data: "\\ldots", Closed: true},
				latexenv.Text(" command"),
			},
		},
		{
			name:  "verb command with star",
			input: "\\verb*+like   this+",
			output: []any{
				latexenv.Verb{Command: "\\verb*", Delimiter: "+", Data: "like   this", Closed: true},
			},
		},
		{
			name:  "verb does not span lines",
			input: "\\verb|a\nb",
			output: []any{
				latexenv.Verb{Command: "\\verb", Delimiter: "|", Data: "a"},
				latexenv.Text("\n"),
				latexenv.Text("b"),
			},
		},
		{
			name:  "bytes which are not utf-8 are kept",
			input: "\xe9t\xe9 $\xff$ \\verb\xa7x\xa7",
			output: []any{
				latexenv.Text("\xe9t\xe9 "),
				latexenv.Math{Delimiter: "$", Data: "\xff", Closed: true},
				latexenv.Text(" "),
				latexenv.Verb{Command: "\\verb", Delimiter: "\xa7", Data: "x", Closed: true},
			},
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			lexer := latexenv.NewTokenizer(strings.NewReader(tc.input))

			var got []any

			for {
				token, err := lexer.Token()
				if err == io.EOF {
					break
				}

				if err != nil {
					t.Fatalf("Unable to read token: %v", err)
				}

				got = append(got, token)
			}

			if diff := cmp.Diff(tc.output, got); diff != "" {
				t.Errorf("Tokens do not match (-want +got):\n%s", diff)
			}

			if lexer.Offset() != len(tc.input) {
				t.Errorf("Offset does not match: want %v, got %v", len(tc.input), lexer.Offset())
			}

			if lexer.Source() != tc.input {
				t.Errorf("Source does not match: want %q, got %q", tc.input, lexer.Source())
			}
		})
	}
}

func TestTokenizer_Raw(t *testing.T) {
	lexer := latexenv.NewTokenizer(strings.NewReader("x = $1 % not a comment\n\\end{lstlisting} after"))

	raw, err := lexer.Raw("lstlisting")
	if err != nil {
		t.Fatal(err)
	}

	if want := latexenv.Text("x = $1 % not a comment\n"); raw != want {
		t.Errorf("Raw text does not match: want %q, got %q", want, raw)
	}

	if lexer.Offset() != len(raw) {
		t.Errorf("Offset does not match: want %v, got %v", len(raw), lexer.Offset())
	}

	token, err := lexer.Token()
	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff(latexenv.EnvironmentEnd{Name: "lstlisting"}, token); diff != "" {
		t.Errorf("Token does not match (-want +got):\n%s", diff)
	}
}

func TestTokenizer_RawUntilEOF(t *testing.T) {
	lexer := latexenv.NewTokenizer(strings.NewReader("print('\\end{x}')"))

	raw, err := lexer.Raw("minted")
	if err != nil {
		t.Fatal(err)
	}

	if want := latexenv.Text("print('\\end{x}')"); raw != want {
		t.Errorf("Raw text does not match: want %q, got %q", want, raw)
	}

	if _, err := lexer.Token(); err != io.EOF {
		t.Errorf("Expected EOF, got %v", err)
	}
}
