package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/quantmind-br/cabalctl/internal/config"
	"github.com/quantmind-br/cabalctl/internal/helpers"
	"github.com/quantmind-br/cabalctl/internal/journal"
	"github.com/quantmind-br/cabalctl/internal/ui"
)

// NewHistoryCmd creates the history command
func NewHistoryCmd(cfg *config.Config, log *zerolog.Logger) *cobra.Command {
	var (
		limit   int
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past reconciliations",
		Long:  `Show the journal of past reconciliations, newest first. The journal is an audit record only; it never influences what a reconciliation does.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if jsonOut {
				ui.DisableColors()
			}

			jnl, err := journal.Open(cmd.Context(), cfg.Paths.JournalFile)
			if err != nil {
				ui.PrintError("failed to open journal: %v", err)
				return fmt.Errorf("open journal: %w", err)
			}
			defer jnl.Close()

			entries, err := jnl.Recent(cmd.Context(), limit)
			if err != nil {
				ui.PrintError("failed to read journal: %v", err)
				return fmt.Errorf("read journal: %w", err)
			}

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(historyResult(entries))
			}

			if len(entries) == 0 {
				ui.PrintInfo("No reconciliations recorded yet")
				return nil
			}

			ui.PrintHeader("Reconciliation History")
			fmt.Println()
			printHistoryTable(cmd, entries)

			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "maximum number of entries to show")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output in JSON format")

	return cmd
}

// historyEntry is the JSON output shape of one journal record
type historyEntry struct {
	ID        int64     `json:"id"`
	StartedAt time.Time `json:"started_at"`
	State     string    `json:"state"`
	Name      string    `json:"name,omitempty"`
	Version   string    `json:"version,omitempty"`
	Changed   bool      `json:"changed"`
	Message   string    `json:"message"`
	Cmd       string    `json:"cmd,omitempty"`
	ExitCode  int       `json:"exit_code"`
}

func historyResult(entries []journal.Entry) []historyEntry {
	out := make([]historyEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, historyEntry{
			ID:        e.ID,
			StartedAt: e.StartedAt,
			State:     e.State,
			Name:      e.Name,
			Version:   e.Version,
			Changed:   e.Changed,
			Message:   e.Message,
			Cmd:       e.Cmd,
			ExitCode:  e.ExitCode,
		})
	}
	return out
}

// printHistoryTable prints journal entries as a table
func printHistoryTable(cmd *cobra.Command, entries []journal.Entry) {
	table := tablewriter.NewTable(cmd.OutOrStdout(),
		tablewriter.WithHeader([]string{"When", "State", "Package", "Result", "Message"}),
		tablewriter.WithAlignment(tw.MakeAlign(5, tw.AlignLeft)),
		tablewriter.WithSymbols(tw.NewSymbols(tw.StyleNone)),
	)

	for _, e := range entries {
		pkg := helpers.JoinRegistryToken(e.Name, e.Version)
		if pkg == "" {
			pkg = "-"
		}

		message := e.Message
		if len(message) > 60 {
			message = message[:57] + "..."
		}

		table.Append(
			e.StartedAt.Format("2006-01-02 15:04"),
			ui.ColorizeState(e.State),
			pkg,
			ui.ColorizeChanged(e.Changed),
			message,
		)
	}

	table.Render()
}
