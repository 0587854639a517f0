package dataset

import (
	"context"
	"strconv"

	"gamestats/internal/awards"
	gerr "gamestats/internal/errors"
	"gamestats/internal/fanout"
	"gamestats/internal/logging"
	"gamestats/internal/table"
	"go.uber.org/zap"
)

// Options describes where the training data lives and how it is shaped.
type Options struct {
	DataDir         string
	Pattern         string
	DropColumns     []string
	AwardsPath      string
	Awards          awards.Options
	TitleColumn     string
	TargetColumn    string
	DropTrailingRow bool
	Parallelism     int
}

// Dataset is the joined release table plus what went into it.
type Dataset struct {
	Table  *table.Table
	Files  []string
	Awards awards.Counts
	// Matched counts release rows that found an awards entry.
	Matched int
}

// LoadReleases reads every file in dir matching pattern, stacks them by
// column name and removes the drop columns.
func LoadReleases(ctx context.Context, dir, pattern string, drop []string, parallelism int, logger *zap.Logger) (*table.Table, []string, error) {
	logger = logging.OrNop(logger)
	files, err := table.Glob(dir, pattern)
	if err != nil {
		return nil, nil, err
	}
	parts, err := fanout.Map(ctx, files, parallelism, func(_ context.Context, _ int, path string) (*table.Table, error) {
		tbl, err := table.ReadFile(path)
		if err != nil {
			return nil, err
		}
		logging.WithFields(logger, logging.Fields{File: path}).
			Debug("read release file", zap.Int("rows", tbl.Len()), zap.Int("columns", len(tbl.Header)))
		return tbl, nil
	})
	if err != nil {
		return nil, nil, err
	}
	merged := table.Concat(dir+"/"+pattern, parts...)
	logger.Debug("merged release files", zap.Int("files", len(files)), zap.Int("rows", merged.Len()))
	if len(drop) > 0 {
		merged, err = merged.Drop(drop...)
		if err != nil {
			return nil, nil, err
		}
	}
	return merged, files, nil
}

// JoinAwards left-joins counts onto tbl by titleColumn, appending
// targetColumn. Every input row yields exactly one output row; titles
// without an awards entry get 0.
func JoinAwards(tbl *table.Table, titleColumn, targetColumn string, counts awards.Counts) (*table.Table, int, error) {
	ti, err := tbl.Require(titleColumn)
	if err != nil {
		return nil, 0, err
	}
	if tbl.Index(targetColumn) >= 0 {
		return nil, 0, gerr.NewInvalidInput("target column already present in release data", "pick another target_column", map[string]any{"column": targetColumn})
	}
	out := &table.Table{Name: tbl.Name, Header: append(append([]string(nil), tbl.Header...), targetColumn)}
	out.Rows = make([][]string, len(tbl.Rows))
	matched := 0
	for r := range tbl.Rows {
		row := make([]string, len(out.Header))
		for c := range tbl.Header {
			row[c], _ = tbl.Cell(r, c)
		}
		title, _ := tbl.Cell(r, ti)
		n, ok := counts[title]
		if ok {
			matched++
		}
		row[len(row)-1] = strconv.Itoa(n)
		out.Rows[r] = row
	}
	return out, matched, nil
}

// Build runs load, merge, award extraction and join.
func Build(ctx context.Context, opts Options, logger *zap.Logger) (*Dataset, error) {
	logger = logging.WithStage(logging.OrNop(logger), "load")
	releases, files, err := LoadReleases(ctx, opts.DataDir, opts.Pattern, opts.DropColumns, opts.Parallelism, logger)
	if err != nil {
		return nil, err
	}
	counts, err := awards.Load(opts.AwardsPath, opts.Awards)
	if err != nil {
		return nil, err
	}
	logger.Debug("extracted awards", zap.Int("titles", len(counts)), zap.Int("total", counts.Total()))

	joined, matched, err := JoinAwards(releases, opts.TitleColumn, opts.TargetColumn, counts)
	if err != nil {
		return nil, err
	}
	if opts.DropTrailingRow {
		joined.DropLastRow()
	}
	if joined.Len() == 0 {
		return nil, gerr.NewEmptyAggregate("release rows")
	}
	logger.Info("dataset ready",
		zap.Int("files", len(files)),
		zap.Int("rows", joined.Len()),
		zap.Int("with_awards", matched),
		zap.Bool("dropped_trailing_row", opts.DropTrailingRow),
	)
	return &Dataset{Table: joined, Files: files, Awards: counts, Matched: matched}, nil
}
