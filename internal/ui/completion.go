package ui

import (
	"fmt"
	"strings"

	"github.com/bamsammich/reflink-diff/internal/stats"
)

// CompletionSummary builds a final summary line from a snapshot.
// Format: done ✓  scanned 48,917 (2.1 GiB)  unchanged 48,900  copies 9  adds 4  deletes 11  cloned 9 (310 MiB)  time 3s
func CompletionSummary(snap stats.Snapshot, dryRun, failed bool) string {
	icon := "✓"
	if failed {
		icon = "✗"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "done %s  scanned %s (%s)  unchanged %s  copies %s  adds %s  deletes %s",
		icon,
		FormatCount(snap.FilesScanned),
		FormatBytes(snap.BytesScanned),
		FormatCount(snap.Unchanged),
		FormatCount(snap.Copies),
		FormatCount(snap.Adds),
		FormatCount(snap.Deletes),
	)
	if snap.CandidatesRejected > 0 {
		fmt.Fprintf(&b, "  rejected %s", FormatCount(snap.CandidatesRejected))
	}
	if dryRun {
		fmt.Fprintf(&b, "  planned %s", FormatCount(snap.ClonesPlanned))
	} else {
		fmt.Fprintf(&b, "  cloned %s (%s)", FormatCount(snap.ClonesCreated), FormatBytes(snap.BytesCloned))
	}
	fmt.Fprintf(&b, "  time %s", FormatDuration(snap.Elapsed))
	return b.String()
}
