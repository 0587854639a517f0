// gamestats: release tallies and award prediction over game release exports
// SPDX-License-Identifier: MIT
//
// Award count extraction from the wide awards table.

package awards

import (
	gerr "gamestats/internal/errors"
	"gamestats/internal/table"
)

// Layout selects how category cells map to titles.
type Layout string

const (
	// LayoutRows: each row is a title (first column), each filled category
	// cell is one award entry for that title.
	LayoutRows Layout = "rows"
	// LayoutNominees: each filled category cell names the title it counts for.
	LayoutNominees Layout = "nominees"
)

// Options controls extraction.
type Options struct {
	Sentinel string
	SkipRows int
	SkipCols int
	Layout   Layout
}

// DefaultOptions matches the published awards export.
func DefaultOptions() Options {
	return Options{Sentinel: "—", SkipRows: 2, SkipCols: 2, Layout: LayoutRows}
}

// Counts maps a title to its award count.
type Counts map[string]int

// Total is the sum over all titles.
func (c Counts) Total() int {
	sum := 0
	for _, v := range c {
		sum += v
	}
	return sum
}

// missingMarkers are the cell values read as "no entry" in addition to the
// configured sentinel.
var missingMarkers = map[string]bool{
	"": true, "#N/A": true, "#N/A N/A": true, "#NA": true, "-1.#IND": true,
	"-1.#QNAN": true, "-NaN": true, "-nan": true, "1.#IND": true, "1.#QNAN": true,
	"<NA>": true, "N/A": true, "NA": true, "NULL": true, "NaN": true, "None": true,
	"n/a": true, "nan": true, "null": true,
}

func (o Options) missing(v string) bool {
	return v == o.Sentinel || missingMarkers[v]
}

// Load reads path and extracts award counts.
func Load(path string, opts Options) (Counts, error) {
	tbl, err := table.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Extract(tbl, opts)
}

// Extract counts awards per title in tbl after skipping opts.SkipRows data
// rows and opts.SkipCols leading columns.
func Extract(tbl *table.Table, opts Options) (Counts, error) {
	if opts.SkipRows < 0 || opts.SkipCols < 0 {
		return nil, gerr.NewInvalidInput("negative skip", "", map[string]any{"skip_rows": opts.SkipRows, "skip_cols": opts.SkipCols})
	}
	if len(tbl.Header) == 0 {
		return nil, gerr.New(gerr.CodeSchema, "awards table has no columns", "", map[string]any{"path": tbl.Name})
	}
	counts := Counts{}
	if opts.SkipRows >= tbl.Len() {
		return counts, nil
	}
	rows := tbl.Rows[opts.SkipRows:]
	switch opts.Layout {
	case LayoutRows, "":
		for i := range rows {
			r := opts.SkipRows + i
			title, _ := tbl.Cell(r, 0)
			if opts.missing(title) {
				continue
			}
			n := 0
			for c := opts.SkipCols; c < len(tbl.Header); c++ {
				if v, ok := tbl.Cell(r, c); ok && !opts.missing(v) {
					n++
				}
			}
			counts[title] += n
		}
	case LayoutNominees:
		for i := range rows {
			r := opts.SkipRows + i
			for c := opts.SkipCols; c < len(tbl.Header); c++ {
				if v, ok := tbl.Cell(r, c); ok && !opts.missing(v) {
					counts[v]++
				}
			}
		}
	default:
		return nil, gerr.NewInvalidInput("unknown awards layout", "use rows or nominees", map[string]any{"layout": string(opts.Layout)})
	}
	return counts, nil
}
