package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quantbench/quantcache/internal/cache"
)

// newClearCmd creates the "clear" subcommand covering all four eviction
// policies: expired, by type, by tags, and by age.
func newClearCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Evict cache entries by expiry, type, tag, or age",
		Example: `  quantcache clear --expired
  quantcache clear --type market-data
  quantcache clear --tags experiment-42,scratch
  quantcache clear --older-than 30`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			expired, _ := cmd.Flags().GetBool("expired")
			typeFlag, _ := cmd.Flags().GetString("type")
			tags, _ := cmd.Flags().GetStringSlice("tags")
			olderThan, _ := cmd.Flags().GetInt("older-than")
			olderThanSet := cmd.Flags().Changed("older-than")

			modes := 0
			if expired {
				modes++
			}
			if typeFlag != "" {
				modes++
			}
			if len(tags) > 0 {
				modes++
			}
			if olderThanSet {
				modes++
			}
			if modes != 1 {
				return fmt.Errorf("specify exactly one of --expired, --type, --tags, --older-than")
			}

			store, err := openCache(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			var removed int
			switch {
			case expired:
				removed = store.ClearExpired()
			case typeFlag != "":
				ct, parseErr := cache.ParseType(typeFlag)
				if parseErr != nil {
					return parseErr
				}
				removed = store.ClearType(ct)
			case len(tags) > 0:
				removed = store.ClearTags(tags)
			default:
				if olderThan < 0 {
					return fmt.Errorf("--older-than must be >= 0, got %d", olderThan)
				}
				removed = store.CleanupOldEntries(olderThan)
			}

			cmd.Printf("removed %d entries\n", removed)
			return nil
		},
	}

	cmd.Flags().Bool("expired", false, "remove entries past their expiry deadline")
	cmd.Flags().String("type", "", "remove all entries of this cache type")
	cmd.Flags().StringSlice("tags", nil, "remove entries carrying any of these tags")
	cmd.Flags().Int("older-than", 0, "remove entries idle for more than this many days")
	return cmd
}
