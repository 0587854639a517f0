package model

import (
	"math"
	"math/rand/v2"

	gerr "gamestats/internal/errors"
	"gonum.org/v1/gonum/mat"
)

// TrainTestSplit shuffles 0..n-1 with a generator seeded by seed and
// returns train and test index sets. The test set takes ceil(testSize*n)
// rows; both sets must end up non-empty.
func TrainTestSplit(n int, testSize float64, seed uint64) (train, test []int, err error) {
	if testSize <= 0 || testSize >= 1 {
		return nil, nil, gerr.NewInvalidInput("test size must be in (0,1)", "", map[string]any{"test_size": testSize})
	}
	nTest := int(math.Ceil(testSize * float64(n)))
	nTrain := n - nTest
	if nTest == 0 || nTrain <= 0 {
		return nil, nil, gerr.NewInvalidInput("not enough rows to split", "add more release rows", map[string]any{"rows": n, "test_size": testSize})
	}
	perm := rand.New(rand.NewPCG(seed, seed)).Perm(n)
	return perm[nTest:], perm[:nTest], nil
}

// Rows copies the listed rows of x into a new matrix.
func Rows(x mat.Matrix, idx []int) *mat.Dense {
	_, c := x.Dims()
	out := mat.NewDense(len(idx), c, nil)
	for i, r := range idx {
		mat.Row(out.RawRowView(i), r, x)
	}
	return out
}

// Pick returns y at the listed positions.
func Pick(y []float64, idx []int) []float64 {
	out := make([]float64, len(idx))
	for i, r := range idx {
		out[i] = y[r]
	}
	return out
}

// KFold partitions 0..n-1 into k contiguous, unshuffled validation folds.
// The first n%k folds hold one extra index.
func KFold(n, k int) ([][]int, error) {
	if k < 2 {
		return nil, gerr.NewInvalidInput("need at least two folds", "", map[string]any{"folds": k})
	}
	if k > n {
		return nil, gerr.NewInvalidInput("more folds than training rows", "lower cv_folds or add data", map[string]any{"folds": k, "rows": n})
	}
	folds := make([][]int, k)
	start := 0
	for f := 0; f < k; f++ {
		size := n / k
		if f < n%k {
			size++
		}
		fold := make([]int, size)
		for i := range fold {
			fold[i] = start + i
		}
		folds[f] = fold
		start += size
	}
	return folds, nil
}

// complement returns 0..n-1 without the contiguous fold.
func complement(n int, fold []int) []int {
	out := make([]int, 0, n-len(fold))
	lo, hi := fold[0], fold[len(fold)-1]
	for i := 0; i < n; i++ {
		if i < lo || i > hi {
			out = append(out, i)
		}
	}
	return out
}
