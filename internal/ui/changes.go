package ui

import (
	"bufio"
	"fmt"
	"io"

	"github.com/bamsammich/reflink-diff/internal/engine"
)

// WriteChanges prints the logical change set: copies as "C <src> -> <dst>",
// then deletes as "D <path>", then adds as "A <path>".
func WriteChanges(w io.Writer, cs engine.ChangeSet, th Theme) error {
	bw := bufio.NewWriter(w)
	for _, c := range cs.Copies {
		fmt.Fprintf(bw, "%s %s\n", th.paint(th.copy, "C"), th.ArrowLine(c.Src, c.Dst))
	}
	for _, p := range cs.Deletes {
		fmt.Fprintf(bw, "%s %s\n", th.paint(th.delete, "D"), p)
	}
	for _, p := range cs.Adds {
		fmt.Fprintf(bw, "%s %s\n", th.paint(th.add, "A"), p)
	}
	return bw.Flush()
}
