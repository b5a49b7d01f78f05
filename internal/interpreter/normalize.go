package interpreter

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Normalize collapses whitespace, case-folds and NFC-normalizes a command.
func Normalize(raw string) string {
	collapsed := strings.Join(strings.Fields(raw), " ")
	return norm.NFC.String(cases.Fold().String(collapsed))
}

// Parse splits a normalized command into its verb and arguments.
func Parse(raw string) (string, []string) {
	parts := strings.Fields(Normalize(raw))
	if len(parts) == 0 {
		return "", nil
	}
	return parts[0], parts[1:]
}
