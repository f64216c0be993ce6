package latexenv

import "strings"

// unbrace removes one pair of curly brackets wrapping the value, if any
func unbrace(value string) string {
	value = strings.TrimSpace(value)
	if len(value) >= 2 && value[0] == '{' && value[len(value)-1] == '}' {
		return strings.TrimSpace(value[1 : len(value)-1])
	}

	return value
}
