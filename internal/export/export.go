// Package export renders a user's full thing collection for download.
// The JSON form is the oldest-first item list itself; Text produces
// the numbered human-readable report.
package export

import (
	"fmt"
	"strings"

	"github.com/paperbark/kindwords/internal/model"
)

// dateLayout mirrors the short locale date the original report used.
const dateLayout = "1/2/2006"

// Text renders things (expected oldest-first) as a numbered report.
// Each entry reads:
//
//	1. "<thing>" — <who>
//	   Why: <why>
//	   Date: <date>
//
// The Why line is omitted entirely when absent, and entries are
// separated by a blank line.
func Text(things []model.Thing) string {
	entries := make([]string, 0, len(things))
	for i, t := range things {
		var b strings.Builder
		fmt.Fprintf(&b, "%d. \"%s\" — %s", i+1, t.Thing, t.Who)
		if t.Why != nil && *t.Why != "" {
			fmt.Fprintf(&b, "\n   Why: %s", *t.Why)
		}
		fmt.Fprintf(&b, "\n   Date: %s\n", t.CreatedAt.Format(dateLayout))
		entries = append(entries, b.String())
	}
	return strings.Join(entries, "\n")
}
