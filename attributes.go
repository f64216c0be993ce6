package latexenv

import (
	"strings"
)

// KeyValue parses key-value parameters in this format: key=value, key=value, for example as used in
// \begin{lstlisting}[language=Go, label=lst:main] option parameter. Commas inside curly brackets do not
// separate parameters.
func KeyValue(raw string) map[string]string {
	kv := map[string]string{}

	for _, part := range splitTopLevel(raw, ',') {
		n := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if n[0] == "" {
			continue
		}

		if len(n) == 1 {
			kv[strings.ToLower(n[0])] = ""
			continue
		}

		kv[strings.ToLower(strings.TrimSpace(n[0]))] = strings.TrimSpace(n[1])
	}

	return kv
}

// splitTopLevel splits string by separator which is not enclosed in curly brackets
func splitTopLevel(raw string, sep byte) (parts []string) {
	depth, start := 0, 0
	for i := 0; i < len(raw); i++ {
		switch raw[i] {
		case '{':
			depth++
		case '}':
			if depth > 0 {
				depth--
			}
		case sep:
			if depth == 0 {
				parts = append(parts, raw[start:i])
				start = i + 1
			}
		}
	}

	return append(parts, raw[start:])
}
