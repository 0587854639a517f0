package releases

import (
	"fmt"
	"io"
)

// RenderText writes the human-readable report.
func RenderText(w io.Writer, r *Result) error {
	if _, err := fmt.Fprintf(w, "Most releases: %s, released %d times.\n", r.Winner.Name, r.Winner.Count); err != nil {
		return err
	}
	if len(r.Top) <= 1 {
		return nil
	}
	if _, err := fmt.Fprintf(w, "\nTop %d by %s (%d records, %d names):\n", len(r.Top), r.Column, r.Records, r.Names); err != nil {
		return err
	}
	for i, e := range r.Top {
		if _, err := fmt.Fprintf(w, "%3d. %-40s %d\n", i+1, e.Name, e.Count); err != nil {
			return err
		}
	}
	return nil
}
