package cli

import (
	"encoding/json"
	"io"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/quantbench/quantcache/internal/cache"
)

// newStatsCmd creates the "stats" subcommand.
func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show cache statistics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openCache(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			stats := store.Stats()

			if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
				data, marshalErr := json.MarshalIndent(stats, "", "  ")
				if marshalErr != nil {
					return marshalErr
				}
				cmd.Println(string(data))
				return nil
			}

			renderStats(cmd.OutOrStdout(), store.Root(), stats, time.Now())
			return nil
		},
	}

	cmd.Flags().Bool("json", false, "emit statistics as JSON")
	return cmd
}

// renderStats writes a human-readable statistics summary.
func renderStats(w io.Writer, root string, stats cache.Stats, now time.Time) {
	p := message.NewPrinter(language.English)

	p.Fprintf(w, "Cache: %s\n", root)
	p.Fprintf(w, "  Entries:    %d\n", stats.TotalEntries)
	p.Fprintf(w, "  Total size: %d bytes\n", stats.TotalSizeBytes)
	p.Fprintf(w, "  Session:    %d hits / %d misses (%.1f%% hit rate)\n",
		stats.HitCount, stats.MissCount, stats.HitRate*100)

	if stats.OldestEntry != nil && stats.NewestEntry != nil {
		p.Fprintf(w, "  Oldest:     %s (%s ago)\n",
			stats.OldestEntry.Format(time.RFC3339), cache.FormatDuration(now.Sub(*stats.OldestEntry)))
		p.Fprintf(w, "  Newest:     %s (%s ago)\n",
			stats.NewestEntry.Format(time.RFC3339), cache.FormatDuration(now.Sub(*stats.NewestEntry)))
	}

	if len(stats.ByType) > 0 {
		p.Fprintf(w, "  By type:\n")
		for _, t := range cache.Types() {
			perType, ok := stats.ByType[t]
			if !ok {
				continue
			}
			p.Fprintf(w, "    %-17s %6d entries  %12d bytes\n", string(t), perType.Entries, perType.SizeBytes)
		}
	}
}
