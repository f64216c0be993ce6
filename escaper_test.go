package latexenv_test

import (
	"strings"
	"testing"

	"github.com/eolymp/go-latexenv"
)

func TestEscaper_RoundTrip(t *testing.T) {
	inputs := []string{
		"\\begin{equation}\\label{eq:1}x=1\\end{equation}",
		"text before \\begin{lstlisting}[language=Go]\nfunc main() { fmt.Println(\"$\") }\n\\end{lstlisting}",
		"\\begin{itemize}\\item \\begin{itemize}\\item nested\\end{itemize}\\end{itemize}",
		"\\begin{minted}{python}\nprint('\\\\end{minted')\n\\end{minted}",
		"\\begin{itemize}\\item \\verb|\\end{itemize}|\\end{itemize}",
		"\\begin{itemize}% \\end{itemize}\n\\end{itemize}",
		"\\begin{itemize}\\begin{verbatim}\\end{itemize}\\end{verbatim}\\end{itemize}",
		"\\begin{b}\\begin{a}\\begin{c}\\end{c}\\end{a}\\end{b}",
	}

	for _, input := range inputs {
		env := single(t, input)
		escaper := env.CreateLiteralTextEscaper()
		rng := escaper.RelevantTextRange()

		content, _ := env.EnvironmentContent()
		if got, want := rng, content.Span().Shift(-env.Span().Start); got != want {
			t.Errorf("Relevant range of %q does not match: want %v, got %v", input, want, got)
		}

		var decoded strings.Builder
		if !escaper.Decode(rng, &decoded) {
			t.Fatalf("Unable to decode %q", input)
		}

		if decoded.String() != content.Text() {
			t.Errorf("Decoded text does not match: want %q, got %q", content.Text(), decoded.String())
		}

		var encoded strings.Builder
		if !escaper.Encode(decoded.String(), &encoded) {
			t.Fatalf("Unable to encode %q", decoded.String())
		}

		if host := env.Text()[rng.Start:rng.End]; encoded.String() != host {
			t.Errorf("Round trip does not match: want %q, got %q", host, encoded.String())
		}

		if escaper.IsOneLine() {
			t.Error("Environment content is not one line")
		}
	}
}

func TestEscaper_EmptyBody(t *testing.T) {
	escaper := single(t, "\\begin{center}\\end{center}").CreateLiteralTextEscaper()

	if got, want := escaper.RelevantTextRange(), (latexenv.Span{Start: 14, End: 14}); got != want {
		t.Errorf("Relevant range does not match: want %v, got %v", want, got)
	}
}

func TestEscaper_Decode(t *testing.T) {
	escaper := single(t, "\\begin{a}xyz\\end{a}").CreateLiteralTextEscaper()

	var out strings.Builder
	if !escaper.Decode(latexenv.Span{Start: 10, End: 12}, &out) || out.String() != "yz" {
		t.Errorf("Unable to decode part of the content, got %q", out.String())
	}

	for _, rng := range []latexenv.Span{{Start: -1, End: 2}, {Start: 3, End: 2}, {Start: 0, End: 100}} {
		if escaper.Decode(rng, &out) {
			t.Errorf("Range %v must not be decoded", rng)
		}
	}
}

func TestEscaper_OffsetInHost(t *testing.T) {
	escaper := single(t, "\\begin{a}xyz\\end{a}").CreateLiteralTextEscaper()
	rng := escaper.RelevantTextRange()

	tt := map[int]int{
		0:  9,
		2:  11,
		3:  12,
		4:  -1,
		-1: -1,
	}

	for offset, want := range tt {
		if got := escaper.OffsetInHost(offset, rng); got != want {
			t.Errorf("OffsetInHost(%d): want %d, got %d", offset, want, got)
		}
	}
}

func TestEscaper_Encode(t *testing.T) {
	tt := []struct {
		name    string
		host    string
		decoded string
		ok      bool
	}{
		{name: "plain text", host: "\\begin{lstlisting}\\end{lstlisting}", decoded: "x := 1", ok: true},
		{name: "terminator of raw host", host: "\\begin{lstlisting}\\end{lstlisting}", decoded: "x\\end{lstlisting}", ok: false},
		{name: "other end in raw host", host: "\\begin{lstlisting}\\end{lstlisting}", decoded: "\\end{itemize}", ok: true},
		{name: "balanced environments", host: "\\begin{itemize}\\end{itemize}", decoded: "\\begin{itemize}\\item\\end{itemize}", ok: true},
		{name: "unbalanced end", host: "\\begin{itemize}\\end{itemize}", decoded: "\\item a \\end{itemize}", ok: false},
		{name: "commands starting with end", host: "\\begin{itemize}\\end{itemize}", decoded: "\\endgroup", ok: true},
		{name: "end in verb", host: "\\begin{itemize}\\end{itemize}", decoded: "\\verb|\\end{itemize}|", ok: true},
		{name: "end in comment", host: "\\begin{itemize}\\end{itemize}", decoded: "% \\end{itemize}\n", ok: true},
		{name: "comment over closing marker", host: "\\begin{itemize}\\end{itemize}", decoded: "% \\end{itemize}", ok: false},
		{name: "begin in comment", host: "\\begin{itemize}\\end{itemize}", decoded: "%\\begin{x}\n\\end{itemize} tail", ok: false},
		{name: "end in nested raw", host: "\\begin{itemize}\\end{itemize}", decoded: "\\begin{verbatim}\\end{itemize}\\end{verbatim}", ok: true},
		{name: "unterminated math", host: "\\begin{itemize}\\end{itemize}", decoded: "$x", ok: false},
		{name: "leading option", host: "\\begin{itemize}\\end{itemize}", decoded: "[x] y", ok: false},
		{name: "leading bracket in verbatim", host: "\\begin{verbatim}\\end{verbatim}", decoded: "[x] y", ok: true},
		{name: "unterminated host", host: "\\begin{itemize}x", decoded: "\\item y", ok: true},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			var out strings.Builder

			ok := single(t, tc.host).CreateLiteralTextEscaper().Encode(tc.decoded, &out)
			if ok != tc.ok {
				t.Fatalf("Encode result does not match: want %v, got %v", tc.ok, ok)
			}

			if ok && out.String() != tc.decoded {
				t.Errorf("Encoded text does not match: want %q, got %q", tc.decoded, out.String())
			}
		})
	}
}

func TestEscaper_EncodeNested(t *testing.T) {
	doc := latexenv.ParseString("\\begin{b}\\begin{a}x\\end{a}\\end{b}")
	escaper := doc.Environments()[1].CreateLiteralTextEscaper()

	tt := map[string]bool{
		"\\begin{c}\\end{c}": true,
		"\\begin{c}\\end{b}": false,
		"\\end{b}":           false,
	}

	for decoded, want := range tt {
		var out strings.Builder
		if got := escaper.Encode(decoded, &out); got != want {
			t.Errorf("Encode(%q): want %v, got %v", decoded, want, got)
		}
	}
}
