package predictor

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// RenderText writes the human-readable report.
func RenderText(w io.Writer, r *Report) error {
	r2 := "nan"
	if r.Metrics.R2 != nil {
		r2 = formatFloat(*r.Metrics.R2)
	}
	lines := []string{
		fmt.Sprintf("Rows: %d (%d with awards), features: %d, train/test: %d/%d", r.Rows, r.RowsAwarded, r.Features, r.TrainRows, r.TestRows),
		fmt.Sprintf("Best k: %d (cross-validated MSE %s)", r.Search.BestK, formatFloat(r.Search.BestMSE)),
		"Mean Squared Error: " + formatFloat(r.Metrics.MSE),
		"Mean Absolute Error: " + formatFloat(r.Metrics.MAE),
		"R-squared: " + r2,
	}
	if len(r.Unmatched) > 0 {
		lines = append(lines, "Warning: unseen values for "+strings.Join(r.Unmatched, ", "))
	}
	lines = append(lines, "Predicted awards for the new game: "+formatFloat(r.Prediction))
	_, err := io.WriteString(w, strings.Join(lines, "\n")+"\n")
	return err
}
