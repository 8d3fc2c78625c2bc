package main

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"tritcalc/internal/store"
)

var (
	journalLimit   int
	journalSession string
	journalStats   bool
)

// journalCmd lists recorded commands
var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Show recently executed commands",
	Long: `Lists entries from the command journal, newest first.

Examples:
  tritcalc journal --limit 50
  tritcalc journal --session 3f1c...
  tritcalc journal --stats`,
	Args: cobra.NoArgs,
	RunE: runJournal,
}

func init() {
	journalCmd.Flags().IntVarP(&journalLimit, "limit", "n", 20, "Maximum entries to show")
	journalCmd.Flags().StringVar(&journalSession, "session", "", "Only show this session")
	journalCmd.Flags().BoolVar(&journalStats, "stats", false, "Show per-command counts instead of entries")
}

func runJournal(cmd *cobra.Command, args []string) error {
	ws, _, cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if !cfg.Store.Enabled {
		return errors.New("journal is disabled (store.enabled: false)")
	}

	j, err := store.NewJournal(cfg.DatabasePath(ws))
	if err != nil {
		return err
	}
	defer j.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	out := cmd.OutOrStdout()
	if journalStats {
		counts, err := j.OperationCounts(ctx)
		if err != nil {
			return err
		}
		names := make([]string, 0, len(counts))
		for name := range counts {
			names = append(names, name)
		}
		sort.Slice(names, func(a, b int) bool {
			if counts[names[a]] != counts[names[b]] {
				return counts[names[a]] > counts[names[b]]
			}
			return names[a] < names[b]
		})
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "COMMAND\tCOUNT")
		for _, name := range names {
			fmt.Fprintf(tw, "%s\t%d\n", name, counts[name])
		}
		return tw.Flush()
	}

	entries, err := j.Recent(ctx, journalSession, journalLimit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(out, "No journal entries.")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tSESSION\tTURN\tINPUT\tRESULT")
	for _, e := range entries {
		result := e.Output
		if e.Failed() {
			result = fmt.Sprintf("error %d: %s", e.ErrorCode, e.Error)
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n",
			e.CreatedAt.Local().Format("2006-01-02 15:04:05"), shortID(e.SessionID), e.Turn, e.Input, firstLine(result))
	}
	return tw.Flush()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func firstLine(s string) string {
	if head, _, found := strings.Cut(s, "\n"); found {
		return head + " ..."
	}
	return s
}
