// Package output renders command results as a table, JSON or YAML.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"
)

// Format selects how results are printed.
type Format string

const (
	Table Format = "table"
	JSON  Format = "json"
	YAML  Format = "yaml"
)

// ParseFormat accepts table, json and yaml. An empty string means table.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", Table:
		return Table, nil
	case JSON:
		return JSON, nil
	case YAML, "yml":
		return YAML, nil
	}
	return "", fmt.Errorf("unknown output format %q (expected table, json or yaml)", s)
}

// Rows is the tabular form of a result.
type Rows struct {
	Headers []string
	Rows    [][]string
}

// Add appends a row.
func (r *Rows) Add(cells ...string) {
	r.Rows = append(r.Rows, cells)
}

// Render writes v in the requested format. table is only called for Table.
func Render(w io.Writer, f Format, v any, table func() Rows) error {
	switch f {
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return WriteTable(w, table())
	}
}

// WriteTable prints rows aligned in columns under an underlined header.
func WriteTable(w io.Writer, rows Rows) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	if len(rows.Headers) > 0 {
		fmt.Fprintln(tw, strings.Join(rows.Headers, "\t"))
		rules := make([]string, len(rows.Headers))
		for i, h := range rows.Headers {
			rules[i] = strings.Repeat("─", len([]rune(h)))
		}
		fmt.Fprintln(tw, strings.Join(rules, "\t"))
	}

	for _, row := range rows.Rows {
		cells := make([]string, len(row))
		for i, c := range row {
			cells[i] = clean(c)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}

	return tw.Flush()
}

// clean keeps a cell on one line.
func clean(s string) string {
	s = strings.NewReplacer("\t", " ", "\r", " ", "\n", " ").Replace(s)
	if s == "" {
		return "-"
	}
	return s
}

// Truncate shortens s to at most n runes, marking the cut with an ellipsis.
func Truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}
