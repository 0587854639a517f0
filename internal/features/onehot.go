// gamestats: release tallies and award prediction over game release exports
// SPDX-License-Identifier: MIT
//
// One-hot encoding of categorical columns.

package features

import (
	"sort"
	"strconv"

	gerr "gamestats/internal/errors"
	"github.com/YuminosukeSato/scigo/preprocessing"
	"gonum.org/v1/gonum/mat"
)

// OneHotEncoder maps each observed value of each categorical column to its
// own indicator column. The whole cell is the category; multi-valued cells
// such as "Win, PS5" are one category.
type OneHotEncoder struct {
	Columns    []string
	Categories [][]string

	inner   *preprocessing.OneHotEncoder
	offsets []int
}

func NewOneHotEncoder(columns []string) *OneHotEncoder {
	return &OneHotEncoder{Columns: append([]string(nil), columns...)}
}

// Fit learns the categories. rows[i][j] is the value of Columns[j] in row i.
func (e *OneHotEncoder) Fit(rows [][]string) error {
	e.inner, e.Categories, e.offsets = nil, nil, nil
	if len(e.Columns) == 0 {
		return nil
	}
	if len(rows) == 0 {
		return gerr.NewEmptyAggregate("categorical rows")
	}
	for i, row := range rows {
		if len(row) != len(e.Columns) {
			return gerr.New(gerr.CodeInternalError, "row width does not match encoder columns", "", map[string]any{"row": i, "width": len(row)})
		}
	}
	inner := preprocessing.NewOneHotEncoder()
	if err := inner.Fit(rows); err != nil {
		return gerr.Wrap(gerr.CodeInternalError, err, "fit one-hot encoder", nil)
	}
	// reorder in place so Transform and the feature names follow the same order
	e.offsets = make([]int, len(e.Columns))
	width := 0
	for j, cats := range inner.Categories {
		sortCategories(cats)
		for k, v := range cats {
			inner.CategoryToIdx[j][v] = k
		}
		e.offsets[j] = width
		width += len(cats)
	}
	e.inner, e.Categories = inner, inner.Categories
	return nil
}

// Width is the number of indicator columns.
func (e *OneHotEncoder) Width() int {
	if e.inner == nil {
		return 0
	}
	return e.inner.NOutputs
}

// FeatureNames returns "<column>_<value>" per indicator column.
func (e *OneHotEncoder) FeatureNames() []string {
	if e.inner == nil {
		return nil
	}
	return e.inner.GetFeatureNamesOut(e.Columns)
}

// Transform encodes rows into a len(rows) x Width() indicator matrix.
// Unseen values leave their block zero.
func (e *OneHotEncoder) Transform(rows [][]string) (*mat.Dense, error) {
	if e.inner == nil || len(rows) == 0 {
		return nil, gerr.New(gerr.CodeInternalError, "nothing to one-hot encode", "", map[string]any{"rows": len(rows), "width": e.Width()})
	}
	m, err := e.inner.Transform(rows)
	if err != nil {
		return nil, gerr.Wrap(gerr.CodeInternalError, err, "one-hot encode", nil)
	}
	return mat.DenseCopyOf(m), nil
}

// EncodeInto sets the indicators for row in dst, which must be zeroed and
// Width() long. It returns the positions in Columns whose value was not
// seen during Fit; their blocks stay all zero.
func (e *OneHotEncoder) EncodeInto(dst []float64, row []string) []int {
	if e.inner == nil {
		return nil
	}
	var unmatched []int
	for j, v := range row {
		k, ok := e.inner.CategoryToIdx[j][v]
		if !ok {
			unmatched = append(unmatched, j)
			continue
		}
		dst[e.offsets[j]+k] = 1
	}
	return unmatched
}

// sortCategories orders numerically when every value is a number, so
// months sort 1..12 rather than 1, 10, 11, 12, 2.
func sortCategories(cats []string) {
	nums := make(map[string]float64, len(cats))
	for _, c := range cats {
		f, err := strconv.ParseFloat(c, 64)
		if err != nil {
			sort.Strings(cats)
			return
		}
		nums[c] = f
	}
	sort.Slice(cats, func(a, b int) bool {
		if nums[cats[a]] != nums[cats[b]] {
			return nums[cats[a]] < nums[cats[b]]
		}
		return cats[a] < cats[b]
	})
}
