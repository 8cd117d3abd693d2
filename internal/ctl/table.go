package ctl

import (
	"fmt"
	"strings"
)

// table accumulates rows and renders them with aligned columns.
type table struct {
	indent  string
	headers []string
	rows    [][]string
}

func newTable(indent string, headers ...string) *table {
	return &table{indent: indent, headers: headers}
}

func (t *table) row(cells ...string) {
	t.rows = append(t.rows, cells)
}

// flush prints the header, a dim separator and every accumulated row.
func (t *table) flush() {
	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = len(h)
	}
	for _, r := range t.rows {
		for i, c := range r {
			if i < len(widths) && len(c) > widths[i] {
				widths[i] = len(c)
			}
		}
	}

	var head strings.Builder
	for i, h := range t.headers {
		head.WriteString(padRight(h, widths[i]+2))
	}
	fmt.Println(t.indent + colorize(dim, strings.TrimRight(head.String(), " ")))
	total := 0
	for _, w := range widths {
		total += w + 2
	}
	fmt.Println(t.indent + colorize(dim, strings.Repeat("─", total-2)))

	for _, r := range t.rows {
		var line strings.Builder
		for i, c := range r {
			if i < len(widths) {
				line.WriteString(padRight(c, widths[i]+2))
			} else {
				line.WriteString(c)
			}
		}
		fmt.Println(t.indent + strings.TrimRight(line.String(), " "))
	}
}
