package features

import (
	"sort"
	"strconv"
	"strings"

	gerr "gamestats/internal/errors"
	"gamestats/internal/table"
	"gonum.org/v1/gonum/mat"
)

// Encoded is a feature matrix with its targets.
type Encoded struct {
	X      *mat.Dense
	Y      []float64
	Titles []string
}

// TableEncoder turns a joined release table into numeric features: numeric
// passthrough columns first, then one-hot indicators for the categorical
// columns. The title and target columns are never features. A blank
// passthrough cell reads as 0.
type TableEncoder struct {
	TitleColumn  string
	TargetColumn string
	Passthrough  []string
	OneHot       *OneHotEncoder

	titleIdx  int
	targetIdx int
	passIdx   []int
	catIdx    []int
}

func NewTableEncoder(titleColumn, targetColumn string, categorical []string) *TableEncoder {
	return &TableEncoder{
		TitleColumn:  titleColumn,
		TargetColumn: targetColumn,
		OneHot:       NewOneHotEncoder(categorical),
	}
}

// Width is the total number of feature columns.
func (e *TableEncoder) Width() int { return len(e.Passthrough) + e.OneHot.Width() }

// FeatureNames lists passthrough columns then indicator columns.
func (e *TableEncoder) FeatureNames() []string {
	return append(append([]string(nil), e.Passthrough...), e.OneHot.FeatureNames()...)
}

// FitTransform learns the column layout and categories from tbl and encodes it.
func (e *TableEncoder) FitTransform(tbl *table.Table) (*Encoded, error) {
	var err error
	if e.titleIdx, err = tbl.Require(e.TitleColumn); err != nil {
		return nil, err
	}
	if e.targetIdx, err = tbl.Require(e.TargetColumn); err != nil {
		return nil, err
	}
	isCat := map[int]bool{}
	e.catIdx = e.catIdx[:0]
	for _, c := range e.OneHot.Columns {
		i, err := tbl.Require(c)
		if err != nil {
			return nil, err
		}
		e.catIdx = append(e.catIdx, i)
		isCat[i] = true
	}
	e.Passthrough, e.passIdx = nil, nil
	for i, h := range tbl.Header {
		if i == e.titleIdx || i == e.targetIdx || isCat[i] {
			continue
		}
		e.Passthrough = append(e.Passthrough, h)
		e.passIdx = append(e.passIdx, i)
	}

	n := tbl.Len()
	if n == 0 {
		return nil, gerr.NewEmptyAggregate("feature rows")
	}
	catRows := make([][]string, n)
	for r := 0; r < n; r++ {
		row := make([]string, len(e.catIdx))
		for j, ci := range e.catIdx {
			row[j], _ = tbl.Cell(r, ci)
		}
		catRows[r] = row
	}
	if err := e.OneHot.Fit(catRows); err != nil {
		return nil, err
	}
	width := e.Width()
	if width == 0 {
		return nil, gerr.NewInvalidInput("no feature columns", "list at least one categorical column", nil)
	}

	out := &Encoded{
		X:      mat.NewDense(n, width, nil),
		Y:      make([]float64, n),
		Titles: make([]string, n),
	}
	if e.OneHot.Width() > 0 {
		hot, err := e.OneHot.Transform(catRows)
		if err != nil {
			return nil, err
		}
		out.X.Slice(0, n, len(e.passIdx), width).(*mat.Dense).Copy(hot)
	}
	for r := 0; r < n; r++ {
		dst := out.X.RawRowView(r)
		for j, pi := range e.passIdx {
			v, _ := tbl.Cell(r, pi)
			f, ok := parseNumeric(v)
			if !ok {
				return nil, gerr.NewBadValue(e.Passthrough[j], r+2, v)
			}
			dst[j] = f
		}

		tv, _ := tbl.Cell(r, e.targetIdx)
		y, err := strconv.ParseFloat(strings.TrimSpace(tv), 64)
		if err != nil {
			return nil, gerr.NewBadValue(e.TargetColumn, r+2, tv)
		}
		out.Y[r] = y
		out.Titles[r], _ = tbl.Cell(r, e.titleIdx)
	}
	return out, nil
}

// Literal encodes one hand-written row. Keys match column names without
// regard to case. Every passthrough column needs a numeric or blank value; a
// categorical column that is absent or holds an unseen value is returned
// in unmatched and its indicators stay zero.
func (e *TableEncoder) Literal(values map[string]string) (row []float64, unmatched []string, err error) {
	known := map[string]string{}
	for _, c := range e.Passthrough {
		known[strings.ToLower(c)] = c
	}
	for _, c := range e.OneHot.Columns {
		known[strings.ToLower(c)] = c
	}
	resolved := make(map[string]string, len(values))
	var unknown []string
	for k, v := range values {
		col, ok := known[strings.ToLower(k)]
		if !ok {
			unknown = append(unknown, k)
			continue
		}
		resolved[col] = v
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, nil, gerr.NewInvalidInput("literal names unknown columns", "use the release CSV column names", map[string]any{"columns": strings.Join(unknown, ", ")})
	}

	row = make([]float64, e.Width())
	for j, c := range e.Passthrough {
		v, ok := resolved[c]
		if !ok {
			return nil, nil, gerr.NewInvalidInput("literal lacks numeric column", "", map[string]any{"column": c})
		}
		f, ok := parseNumeric(v)
		if !ok {
			return nil, nil, gerr.NewBadValue(c, 0, v)
		}
		row[j] = f
	}
	cats := make([]string, len(e.OneHot.Columns))
	missing := map[int]bool{}
	for j, c := range e.OneHot.Columns {
		v, ok := resolved[c]
		if !ok {
			missing[j] = true
			continue
		}
		cats[j] = v
	}
	for _, j := range e.OneHot.EncodeInto(row[len(e.Passthrough):], cats) {
		if !missing[j] {
			unmatched = append(unmatched, e.OneHot.Columns[j])
		}
	}
	// an absent column cannot set an indicator even if "" was a training category
	for j := range e.OneHot.Columns {
		if missing[j] {
			clearBlock(row[len(e.Passthrough):], e.OneHot, j)
			unmatched = append(unmatched, e.OneHot.Columns[j])
		}
	}
	sort.Strings(unmatched)
	return row, unmatched, nil
}

// parseNumeric reads a passthrough cell. A blank cell counts as 0.
func parseNumeric(v string) (float64, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, true
	}
	f, err := strconv.ParseFloat(v, 64)
	return f, err == nil
}

func clearBlock(dst []float64, enc *OneHotEncoder, j int) {
	start := enc.offsets[j]
	for k := range enc.Categories[j] {
		dst[start+k] = 0
	}
}
