package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/quantmind-br/cabalctl/internal/core"
	"github.com/quantmind-br/cabalctl/internal/ui"
)

// Render writes a finished reconciliation to w. It is pure translation:
// every Outcome field survives into the output, none is interpreted.
// JSON mode emits the structured result shape on a single line for the
// calling automation to parse; human mode renders the same facts for a
// terminal.
func Render(w io.Writer, outcome core.Outcome, reconcileErr error, asJSON bool) error {
	if asJSON {
		return json.NewEncoder(w).Encode(outcome)
	}

	renderHuman(w, outcome, reconcileErr)
	return nil
}

func renderHuman(w io.Writer, outcome core.Outcome, reconcileErr error) {
	if reconcileErr != nil {
		fmt.Fprintf(w, "%s %s\n", ui.CrossMark, outcome.Message)
		if outcome.Cmd != "" {
			ui.Muted.Fprintf(w, "  %s %s\n", ui.Arrow, outcome.Cmd)
		}
		if outcome.ExitCode != 0 {
			ui.Muted.Fprintf(w, "  exit code %d\n", outcome.ExitCode)
		}
		return
	}

	fmt.Fprintf(w, "%s %s %s\n", ui.CheckMark, outcome.Message, changedTag(outcome.Changed))
	if outcome.Cmd != "" {
		ui.Muted.Fprintf(w, "  %s %s\n", ui.Arrow, outcome.Cmd)
	}
}

func changedTag(changed bool) string {
	if changed {
		return ui.Warning.Sprint("(changed)")
	}
	return ui.Muted.Sprint("(unchanged)")
}
