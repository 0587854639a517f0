package features

import (
	gerr "gamestats/internal/errors"
	"github.com/YuminosukeSato/scigo/preprocessing"
	"gonum.org/v1/gonum/mat"
)

// StandardScaler centers each column on its mean and divides by its
// population standard deviation. Columns with no spread keep scale 1.
type StandardScaler struct {
	Mean  []float64
	Scale []float64

	inner *preprocessing.StandardScaler
}

// Fit computes per-column statistics from x.
func (s *StandardScaler) Fit(x mat.Matrix) error {
	r, c := x.Dims()
	if r == 0 || c == 0 {
		return gerr.NewEmptyAggregate("scaler input")
	}
	inner := preprocessing.NewStandardScaler(true, true)
	if err := inner.Fit(x); err != nil {
		return gerr.Wrap(gerr.CodeInternalError, err, "fit scaler", nil)
	}
	s.inner, s.Mean, s.Scale = inner, inner.Mean, inner.Scale
	return nil
}

// Transform returns a scaled copy of x.
func (s *StandardScaler) Transform(x mat.Matrix) (*mat.Dense, error) {
	r, c := x.Dims()
	if c != len(s.Mean) {
		return nil, gerr.New(gerr.CodeInternalError, "scaler width mismatch", "", map[string]any{"fitted": len(s.Mean), "got": c})
	}
	if r == 0 {
		return nil, gerr.NewEmptyAggregate("scaler input")
	}
	if s.inner == nil {
		return nil, gerr.New(gerr.CodeInternalError, "scaler used before fit", "", nil)
	}
	out, err := s.inner.Transform(x)
	if err != nil {
		return nil, gerr.Wrap(gerr.CodeInternalError, err, "scale features", nil)
	}
	return mat.DenseCopyOf(out), nil
}

// FitTransform is Fit followed by Transform on the same matrix.
func (s *StandardScaler) FitTransform(x mat.Matrix) (*mat.Dense, error) {
	if err := s.Fit(x); err != nil {
		return nil, err
	}
	return s.Transform(x)
}

// TransformRow scales a single feature row.
func (s *StandardScaler) TransformRow(row []float64) ([]float64, error) {
	if s.inner == nil {
		return nil, gerr.New(gerr.CodeInternalError, "scaler used before fit", "", nil)
	}
	if len(row) != len(s.Mean) {
		return nil, gerr.New(gerr.CodeInternalError, "scaler width mismatch", "", map[string]any{"fitted": len(s.Mean), "got": len(row)})
	}
	out, err := s.Transform(mat.NewDense(1, len(row), append([]float64(nil), row...)))
	if err != nil {
		return nil, err
	}
	return out.RawRowView(0), nil
}
