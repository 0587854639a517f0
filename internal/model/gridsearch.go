package model

import (
	"context"
	"math"

	"gamestats/internal/cache"
	gerr "gamestats/internal/errors"
	"gamestats/internal/fanout"
	"gamestats/internal/logging"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
)

// SearchConfig configures the neighbor-count search.
type SearchConfig struct {
	// KMin and KMax bound the candidate neighbor counts, inclusive.
	KMin int
	KMax int

	// Folds is the number of contiguous cross-validation folds.
	Folds int

	// Parallelism caps how many folds are prepared at once.
	Parallelism int
}

// DefaultSearchConfig returns the 5-fold search over k in [1,49].
func DefaultSearchConfig() SearchConfig {
	return SearchConfig{KMin: 1, KMax: 49, Folds: 5, Parallelism: 1}
}

// CandidateScore is the cross-validated error of one k.
type CandidateScore struct {
	K       int       `json:"k"`
	MeanMSE float64   `json:"mean_mse"`
	FoldMSE []float64 `json:"fold_mse"`
}

// SearchResult lists every evaluated k and the winner.
type SearchResult struct {
	BestK      int              `json:"best_k"`
	BestMSE    float64          `json:"best_mse"`
	Candidates []CandidateScore `json:"candidates"`
	// Skipped lists k values larger than some fold's training set.
	Skipped []int `json:"skipped,omitempty"`
}

// foldNeighbors holds, for each validation row of a fold, the running sums
// of training targets in nearest-first order plus the true target.
type foldNeighbors struct {
	prefix  [][]float64
	targets []float64
	train   int
}

// GridSearch picks the k in [KMin,KMax] with the lowest mean validation MSE
// over contiguous folds of x, smallest k on ties. Each fold's neighbor
// ordering is computed once and reused for every k.
func GridSearch(ctx context.Context, x mat.Matrix, y []float64, cfg SearchConfig, logger *zap.Logger) (*SearchResult, error) {
	logger = logging.WithStage(logging.OrNop(logger), "grid_search")
	n, _ := x.Dims()
	if n != len(y) {
		return nil, gerr.New(gerr.CodeInternalError, "feature and target lengths differ", "", map[string]any{"rows": n, "targets": len(y)})
	}
	if cfg.KMin < 1 || cfg.KMin > cfg.KMax {
		return nil, gerr.NewInvalidInput("bad neighbor range", "need 1 <= k_min <= k_max", map[string]any{"k_min": cfg.KMin, "k_max": cfg.KMax})
	}
	folds, err := KFold(n, cfg.Folds)
	if err != nil {
		return nil, err
	}

	memo := cache.New[int, *foldNeighbors]()
	prepare := func(f int) (*foldNeighbors, error) {
		return memo.GetOrCompute(f, func() (*foldNeighbors, error) {
			return neighborsForFold(x, y, folds[f]), nil
		})
	}
	if _, err := fanout.Map(ctx, folds, cfg.Parallelism, func(_ context.Context, f int, _ []int) (struct{}, error) {
		_, err := prepare(f)
		return struct{}{}, err
	}); err != nil {
		return nil, err
	}

	res := &SearchResult{BestK: -1, BestMSE: math.Inf(1)}
	for k := cfg.KMin; k <= cfg.KMax; k++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		score := CandidateScore{K: k, FoldMSE: make([]float64, len(folds))}
		valid := true
		sum := 0.0
		for f := range folds {
			fn, err := prepare(f)
			if err != nil {
				return nil, err
			}
			if k > fn.train {
				valid = false
				break
			}
			score.FoldMSE[f] = fn.mse(k)
			sum += score.FoldMSE[f]
		}
		if !valid {
			res.Skipped = append(res.Skipped, k)
			continue
		}
		score.MeanMSE = sum / float64(len(folds))
		res.Candidates = append(res.Candidates, score)
		if score.MeanMSE < res.BestMSE {
			res.BestK, res.BestMSE = k, score.MeanMSE
		}
	}
	if res.BestK < 0 {
		return nil, gerr.NewInvalidInput("no neighbor count fits the fold sizes", "lower k_min or cv_folds", map[string]any{"k_min": cfg.KMin, "rows": n, "folds": cfg.Folds})
	}
	hits, misses := memo.Stats()
	logger.Debug("grid search done",
		zap.Int("best_k", res.BestK),
		zap.Float64("best_mse", res.BestMSE),
		zap.Int("candidates", len(res.Candidates)),
		zap.Int("skipped", len(res.Skipped)),
		zap.Int("fold_cache_hits", hits),
		zap.Int("fold_cache_misses", misses),
	)
	return res, nil
}

func neighborsForFold(x mat.Matrix, y []float64, fold []int) *foldNeighbors {
	n, _ := x.Dims()
	trainIdx := complement(n, fold)
	trainX := Rows(x, trainIdx)
	trainY := Pick(y, trainIdx)

	fn := &foldNeighbors{
		prefix:  make([][]float64, len(fold)),
		targets: Pick(y, fold),
		train:   len(trainIdx),
	}
	_, c := x.Dims()
	q := make([]float64, c)
	for i, r := range fold {
		mat.Row(q, r, x)
		order := neighborOrder(trainX, q)
		p := make([]float64, len(order)+1)
		for j, t := range order {
			p[j+1] = p[j] + trainY[t]
		}
		fn.prefix[i] = p
	}
	return fn
}

// mse is the validation error of a k-neighbor mean predictor on this fold.
func (fn *foldNeighbors) mse(k int) float64 {
	sum := 0.0
	for i, p := range fn.prefix {
		d := p[k]/float64(k) - fn.targets[i]
		sum += d * d
	}
	return sum / float64(len(fn.prefix))
}
