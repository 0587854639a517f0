// gamestats: release tallies and award prediction over game release exports
// SPDX-License-Identifier: MIT
//
// Type definitions for the award predictor.

package predictor

import (
	"gamestats/internal/awards"
	"gamestats/internal/model"
)

// UnknownPolicy decides what a literal value unseen at fit time does.
type UnknownPolicy string

const (
	UnknownIgnore UnknownPolicy = "ignore"
	UnknownError  UnknownPolicy = "error"
)

// Options configures one predictor run.
type Options struct {
	DataDir         string
	Pattern         string
	DropColumns     []string
	AwardsPath      string
	Awards          awards.Options
	TitleColumn     string
	TargetColumn    string
	Categorical     []string
	DropTrailingRow bool
	TestSize        float64
	Seed            uint64
	Search          model.SearchConfig
	Unknown         UnknownPolicy
	NewGame         map[string]string
	Parallelism     int
}

// Report is the outcome of a predictor run.
type Report struct {
	Files       []string            `json:"files"`
	Rows        int                 `json:"rows"`
	RowsAwarded int                 `json:"rows_with_awards"`
	Features    int                 `json:"features"`
	TrainRows   int                 `json:"train_rows"`
	TestRows    int                 `json:"test_rows"`
	Search      *model.SearchResult `json:"search"`
	Metrics     model.Metrics       `json:"metrics"`
	NewGame     map[string]string   `json:"new_game"`
	Prediction  float64             `json:"prediction"`
	Unmatched   []string            `json:"unmatched_columns,omitempty"`
}
