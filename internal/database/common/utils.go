package common

import (
	"regexp"
	"sort"
	"strings"
)

var (
	lineComment   = regexp.MustCompile(`(?m)^\s*--.*$`)
	quotedLiteral = regexp.MustCompile(`'(?:[^']|'')*'|"(?:[^"]|"")*"|` + "`(?:[^`]|``)*`")
)

// Record is one row or document keyed by column/field name.
type Record = map[string]interface{}

// SplitStatements breaks a schema script on semicolons that are not inside a
// quoted literal. Line comments and empty statements are dropped.
func SplitStatements(script string) []string {
	script = lineComment.ReplaceAllString(script, "")

	quoted := make([]bool, len(script))
	for _, loc := range quotedLiteral.FindAllStringIndex(script, -1) {
		for i := loc[0]; i < loc[1]; i++ {
			quoted[i] = true
		}
	}

	var out []string
	start := 0
	flush := func(end int) {
		if stmt := strings.TrimSpace(script[start:end]); stmt != "" {
			out = append(out, stmt)
		}
	}
	for i := 0; i < len(script); i++ {
		if script[i] == ';' && !quoted[i] {
			flush(i)
			start = i + 1
		}
	}
	flush(len(script))
	return out
}

// Columns returns the record's keys in sorted order, so every statement built
// from the same record shape has the same column list.
func Columns(rec Record) []string {
	cols := make([]string, 0, len(rec))
	for k := range rec {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}
