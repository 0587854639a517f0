// gamestats: release tallies and award prediction over game release exports
// SPDX-License-Identifier: MIT
//
// Release counter: which company released the most games.

package releases

import (
	"context"

	gerr "gamestats/internal/errors"
	"gamestats/internal/logging"
	"go.uber.org/zap"
)

// Run loads every file in opts.Paths, tallies opts.Column and reports the
// leading name.
func Run(ctx context.Context, opts Options, logger *zap.Logger) (*Result, error) {
	logger = logging.WithComponent(logging.OrNop(logger), "releases")
	if len(opts.Paths) == 0 {
		return nil, gerr.NewInvalidInput("no release files given", "set release_files", nil)
	}
	field, err := FieldFor(opts.Column)
	if err != nil {
		return nil, err
	}
	records, err := LoadAll(ctx, opts.Paths, opts.Separator, opts.Column, opts.Parallelism, logger)
	if err != nil {
		return nil, err
	}
	tally := Count(records, field)
	winner, err := tally.Max()
	if err != nil {
		return nil, err
	}
	top := opts.Top
	if top < 1 {
		top = 1
	}
	logger.Info("tally complete",
		zap.Int("files", len(opts.Paths)),
		zap.Int("records", len(records)),
		zap.Int("distinct", tally.Len()),
		zap.String("winner", winner.Name),
		zap.Int("count", winner.Count),
	)
	return &Result{
		Column:  opts.Column,
		Files:   opts.Paths,
		Records: len(records),
		Pairs:   tally.Total(),
		Names:   tally.Len(),
		Winner:  winner,
		Top:     tally.Top(top),
	}, nil
}
