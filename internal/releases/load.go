package releases

import (
	"context"
	"strings"

	gerr "gamestats/internal/errors"
	"gamestats/internal/fanout"
	"gamestats/internal/logging"
	"gamestats/internal/table"
	"go.uber.org/zap"
)

// LoadRecords reads one release CSV. The required column must be in the
// header and present on every row; other known columns are optional.
// List columns are split on sep without trimming.
func LoadRecords(path, sep, required string) ([]Record, error) {
	tbl, err := table.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return FromTable(tbl, sep, required)
}

// FromTable converts an already-read table to records.
func FromTable(tbl *table.Table, sep, required string) ([]Record, error) {
	req, err := tbl.Require(required)
	if err != nil {
		return nil, err
	}
	idx := map[string]int{}
	for _, c := range []string{ColumnTitle, ColumnMonth, ColumnDay, ColumnPlatforms, ColumnGenres, ColumnDevelopers, ColumnPublishers} {
		idx[c] = tbl.Index(c)
	}
	records := make([]Record, 0, tbl.Len())
	for i := range tbl.Rows {
		if _, ok := tbl.Cell(i, req); !ok {
			// +2: header line plus 1-based numbering
			return nil, gerr.NewShortRow(tbl.Name, required, i+2)
		}
		get := func(column string) (string, bool) {
			return tbl.Cell(i, idx[column])
		}
		var r Record
		r.Title, _ = get(ColumnTitle)
		r.Month, _ = get(ColumnMonth)
		r.Day, _ = get(ColumnDay)
		r.Platforms, _ = get(ColumnPlatforms)
		r.Genres, _ = get(ColumnGenres)
		if v, ok := get(ColumnDevelopers); ok {
			r.Developers = strings.Split(v, sep)
		}
		if v, ok := get(ColumnPublishers); ok {
			r.Publishers = strings.Split(v, sep)
		}
		records = append(records, r)
	}
	return records, nil
}

// LoadAll reads every path and returns the records in path order. Any
// failing file aborts the whole load.
func LoadAll(ctx context.Context, paths []string, sep, required string, parallelism int, logger *zap.Logger) ([]Record, error) {
	logger = logging.OrNop(logger)
	perFile, err := fanout.Map(ctx, paths, parallelism, func(_ context.Context, _ int, path string) ([]Record, error) {
		recs, err := LoadRecords(path, sep, required)
		if err != nil {
			return nil, err
		}
		logging.WithFields(logger, logging.Fields{Stage: "load", File: path}).
			Debug("loaded release file", zap.Int("records", len(recs)))
		return recs, nil
	})
	if err != nil {
		return nil, err
	}
	var all []Record
	for _, recs := range perFile {
		all = append(all, recs...)
	}
	return all, nil
}
