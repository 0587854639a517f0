package main

import (
	"io"

	"gamestats/internal/awards"
	"gamestats/internal/config"
	gerr "gamestats/internal/errors"
	"gamestats/internal/logging"
	"gamestats/internal/model"
	"gamestats/internal/predictor"
	"gamestats/internal/releases"
	"gamestats/internal/version"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "gamestats",
		Short: "Release tallies and award prediction over game release CSV exports",
		Long: `gamestats runs small batch jobs over game release exports.

  releases  count releases per company and report the leader
  awards    fit a k-nearest-neighbors model on award counts and predict a new game

Settings come from defaults, a config file, GAMESTATS_* environment
variables and flags, in increasing priority.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return gerr.Wrap(gerr.CodeInvalidInput, err, "invalid configuration", nil)
			}
			logger, err := logging.NewLogger(cfg.LogLevel)
			if err != nil {
				return gerr.Wrap(gerr.CodeInvalidInput, err, "invalid log level", map[string]any{"log_level": cfg.LogLevel})
			}
			a.cfg, a.logger = cfg, logger.With(zap.String("run_id", uuid.NewString()))
			return nil
		},
	}
	config.RegisterFlags(root.PersistentFlags())
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return gerr.Wrap(gerr.CodeInvalidInput, err, "bad flag", nil)
	})
	root.AddCommand(newReleasesCmd(a), newAwardsCmd(a), newVersionCmd(a))
	return root
}

func newReleasesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "releases",
		Short: "Count releases per company and print the company with the most",
		Long: `Reads the quarterly release files, splits the tally column on the
separator and counts every name. Prints the name with the most releases;
ties go to the name seen first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := releases.Run(cmd.Context(), releaseOptions(a.cfg), a.logger)
			if err != nil {
				return err
			}
			if a.cfg.Format == config.FormatJSON {
				return writeJSON(a.out, res)
			}
			return releases.RenderText(a.out, res)
		},
	}
}

func newAwardsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "awards",
		Short: "Predict the award count of a new game with k-nearest neighbors",
		Long: `Merges every release file matching the clean pattern, joins award
counts by title, one-hot encodes the categorical columns, picks k by
cross-validation, reports held-out metrics and predicts the new game.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rep, err := predictor.Run(cmd.Context(), predictorOptions(a.cfg), a.logger)
			if err != nil {
				return err
			}
			if a.cfg.Format == config.FormatJSON {
				return writeJSON(a.out, rep)
			}
			return predictor.RenderText(a.out, rep)
		},
	}
}

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			_, err := io.WriteString(a.out, version.Info().String()+"\n")
			return err
		},
	}
}

func releaseOptions(cfg config.Config) releases.Options {
	return releases.Options{
		Paths:       cfg.ReleasePaths(),
		Column:      cfg.TallyColumn,
		Separator:   cfg.TallySeparator,
		Top:         cfg.Top,
		Parallelism: cfg.Parallelism,
	}
}

func predictorOptions(cfg config.Config) predictor.Options {
	return predictor.Options{
		DataDir:     cfg.DataDir,
		Pattern:     cfg.CleanPattern,
		DropColumns: cfg.DropColumns,
		AwardsPath:  cfg.AwardsPath(),
		Awards: awards.Options{
			Sentinel: cfg.AwardsSentinel,
			SkipRows: cfg.AwardsSkipRows,
			SkipCols: cfg.AwardsSkipCols,
			Layout:   awards.Layout(cfg.AwardsLayout),
		},
		TitleColumn:     cfg.TitleColumn,
		TargetColumn:    cfg.TargetColumn,
		Categorical:     cfg.CategoricalCols,
		DropTrailingRow: cfg.DropTrailingRow,
		TestSize:        cfg.TestSize,
		Seed:            cfg.Seed,
		Search: model.SearchConfig{
			KMin:        cfg.KMin,
			KMax:        cfg.KMax,
			Folds:       cfg.CVFolds,
			Parallelism: cfg.Parallelism,
		},
		Unknown:     predictor.UnknownPolicy(cfg.UnknownCategories),
		NewGame:     cfg.NewGame,
		Parallelism: cfg.Parallelism,
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return gerr.Wrap(gerr.CodeInternalError, err, "encode report", nil)
	}
	return nil
}
