// gamestats: release tallies and award prediction over game release exports
// SPDX-License-Identifier: MIT
//
// k-nearest-neighbors regression.

package model

import (
	"sort"

	gerr "gamestats/internal/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// KNNRegressor predicts the unweighted mean target of the K training rows
// closest in Euclidean distance. Equal distances resolve to the lower
// training row index.
type KNNRegressor struct {
	K int

	x *mat.Dense
	y []float64
}

func NewKNNRegressor(k int) *KNNRegressor {
	return &KNNRegressor{K: k}
}

// Fit stores the training set; x and y are copied.
func (m *KNNRegressor) Fit(x mat.Matrix, y []float64) error {
	r, _ := x.Dims()
	if r == 0 {
		return gerr.NewEmptyAggregate("training rows")
	}
	if r != len(y) {
		return gerr.New(gerr.CodeInternalError, "feature and target lengths differ", "", map[string]any{"rows": r, "targets": len(y)})
	}
	if m.K < 1 || m.K > r {
		return gerr.NewInvalidInput("neighbor count out of range", "need 1 <= k <= training rows", map[string]any{"k": m.K, "rows": r})
	}
	m.x = mat.DenseCopyOf(x)
	m.y = append([]float64(nil), y...)
	return nil
}

// PredictRow predicts one feature row.
func (m *KNNRegressor) PredictRow(row []float64) (float64, error) {
	if m.x == nil {
		return 0, gerr.New(gerr.CodeInternalError, "model not fitted", "", nil)
	}
	if _, c := m.x.Dims(); c != len(row) {
		return 0, gerr.New(gerr.CodeInternalError, "feature width mismatch", "", map[string]any{"fitted": c, "got": len(row)})
	}
	order := neighborOrder(m.x, row)
	sum := 0.0
	for _, i := range order[:m.K] {
		sum += m.y[i]
	}
	return sum / float64(m.K), nil
}

// Predict predicts every row of x.
func (m *KNNRegressor) Predict(x mat.Matrix) ([]float64, error) {
	r, c := x.Dims()
	out := make([]float64, r)
	row := make([]float64, c)
	for i := 0; i < r; i++ {
		mat.Row(row, i, x)
		p, err := m.PredictRow(row)
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}

// neighborOrder returns training row indices sorted by distance to q.
func neighborOrder(x *mat.Dense, q []float64) []int {
	r, _ := x.Dims()
	dist := make([]float64, r)
	order := make([]int, r)
	for i := 0; i < r; i++ {
		dist[i] = floats.Distance(x.RawRowView(i), q, 2)
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return dist[order[a]] < dist[order[b]] })
	return order
}
