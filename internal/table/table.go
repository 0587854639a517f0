// gamestats: release tallies and award prediction over game release exports
// SPDX-License-Identifier: MIT
//
// In-memory CSV tables with a header row.

package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	gerr "gamestats/internal/errors"
	"github.com/jszwec/csvutil"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Table is a header plus string rows. Rows may be shorter than the header
// when the source file had ragged lines.
type Table struct {
	Name   string
	Header []string
	Rows   [][]string
}

// ReadFile opens path and parses it as a comma-separated table.
func ReadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, gerr.NewIO(path, err)
	}
	defer f.Close()
	return Read(f, path)
}

// Read parses r as a comma-separated table. A leading byte order mark is
// removed; invalid UTF-8 is replaced rather than rejected. Lines with more
// or fewer fields than the header are kept as read.
func Read(r io.Reader, name string) (*Table, error) {
	cr := csv.NewReader(transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	dec, err := csvutil.NewDecoder(cr)
	if err == io.EOF {
		return nil, gerr.New(gerr.CodeSchema, "missing header row", "", map[string]any{"path": name})
	}
	if err != nil {
		return nil, gerr.NewIO(name, err)
	}
	t := &Table{Name: name, Header: dec.Header()}
	var row struct{}
	for {
		err := dec.Decode(&row)
		if err == io.EOF {
			break
		}
		if err != nil && !errors.Is(err, csvutil.ErrFieldCount) {
			return nil, gerr.NewIO(name, err)
		}
		t.Rows = append(t.Rows, append([]string(nil), dec.Record()...))
	}
	return t, nil
}

// Glob returns the files in dir matching pattern, sorted by name.
func Glob(dir, pattern string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, gerr.NewInvalidInput("bad file pattern", "", map[string]any{"pattern": pattern})
	}
	if len(matches) == 0 {
		return nil, gerr.NewNoInputFiles(dir, pattern)
	}
	sort.Strings(matches)
	return matches, nil
}

func (t *Table) Len() int { return len(t.Rows) }

// Index returns the position of column, or -1.
func (t *Table) Index(column string) int {
	for i, h := range t.Header {
		if h == column {
			return i
		}
	}
	return -1
}

// Require is Index that reports a schema error for a missing column.
func (t *Table) Require(column string) (int, error) {
	i := t.Index(column)
	if i < 0 {
		return -1, gerr.NewMissingColumn(t.Name, column)
	}
	return i, nil
}

// Cell returns the value at row/col; ok is false when the row is too short.
func (t *Table) Cell(row, col int) (string, bool) {
	r := t.Rows[row]
	if col < 0 || col >= len(r) {
		return "", false
	}
	return r[col], true
}

// Drop returns a copy of t without the named columns. Every column must exist.
func (t *Table) Drop(columns ...string) (*Table, error) {
	skip := make(map[int]bool, len(columns))
	for _, c := range columns {
		i, err := t.Require(c)
		if err != nil {
			return nil, err
		}
		skip[i] = true
	}
	out := &Table{Name: t.Name}
	for i, h := range t.Header {
		if !skip[i] {
			out.Header = append(out.Header, h)
		}
	}
	out.Rows = make([][]string, len(t.Rows))
	for r := range t.Rows {
		row := make([]string, 0, len(out.Header))
		for i := range t.Header {
			if skip[i] {
				continue
			}
			v, _ := t.Cell(r, i)
			row = append(row, v)
		}
		out.Rows[r] = row
	}
	return out, nil
}

// DropLastRow removes the final row in place. It is a no-op on an empty table.
func (t *Table) DropLastRow() {
	if len(t.Rows) == 0 {
		return
	}
	t.Rows = t.Rows[:len(t.Rows)-1]
}

// Concat stacks tables by column name. The result header is the union of
// headers in first-seen order; cells a source table lacks are "".
func Concat(name string, tables ...*Table) *Table {
	out := &Table{Name: name}
	pos := map[string]int{}
	for _, t := range tables {
		for _, h := range t.Header {
			if _, ok := pos[h]; !ok {
				pos[h] = len(out.Header)
				out.Header = append(out.Header, h)
			}
		}
	}
	for _, t := range tables {
		// first occurrence wins for duplicated header names
		target := make([]int, len(t.Header))
		for i, h := range t.Header {
			target[i] = -1
			if t.Index(h) == i {
				target[i] = pos[h]
			}
		}
		for r := range t.Rows {
			row := make([]string, len(out.Header))
			for i := range t.Header {
				if target[i] < 0 {
					continue
				}
				row[target[i]], _ = t.Cell(r, i)
			}
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}

func (t *Table) String() string {
	return fmt.Sprintf("%s (%d columns, %d rows)", t.Name, len(t.Header), len(t.Rows))
}
