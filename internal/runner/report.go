package runner

import (
	"fmt"
	"io"

	"github.com/float2qb-dev/float2qb/internal/model"
)

// WriteReport prints the user-facing run summary: outcome counts plus the
// reason for every failed row.
func WriteReport(w io.Writer, s *model.Summary) {
	fmt.Fprintf(w, "%s: %d created, %d skipped as duplicates, %d failed\n",
		s.File, s.Created(), s.Skipped(), s.Failed())

	for _, r := range s.Results {
		if r.Outcome != model.OutcomeFailed {
			continue
		}
		if r.Reference != "" {
			fmt.Fprintf(w, "  row %d (%s): %s\n", r.Row, r.Reference, r.Reason)
		} else {
			fmt.Fprintf(w, "  row %d: %s\n", r.Row, r.Reason)
		}
	}
}
