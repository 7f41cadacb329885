package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/quantbench/quantcache/internal/cache"
)

// newGetCmd creates the "get" subcommand. The payload is written verbatim
// to stdout; a miss exits non-zero so scripts can branch on it.
func newGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <key>",
		Short: "Read a cached payload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ct, err := parseTypeFlag(cmd)
			if err != nil {
				return err
			}
			paramFlags, _ := cmd.Flags().GetStringArray("param")
			params, err := parseParams(paramFlags)
			if err != nil {
				return err
			}

			store, err := openCache(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			payload, ok, err := store.Get(args[0], ct, params)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("cache miss for %q (%s)", args[0], ct)
			}

			_, err = cmd.OutOrStdout().Write(payload)
			return err
		},
	}

	cmd.Flags().String("type", "", "cache type (market-data, analysis-result, backtest-result, model-response, user-preference)")
	cmd.Flags().StringArray("param", nil, "request parameter as key=value (repeatable)")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

// newSetCmd creates the "set" subcommand. The payload is read from --file
// or stdin.
func newSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <key>",
		Short: "Store a payload in the cache",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ct, err := parseTypeFlag(cmd)
			if err != nil {
				return err
			}
			paramFlags, _ := cmd.Flags().GetStringArray("param")
			params, err := parseParams(paramFlags)
			if err != nil {
				return err
			}

			opts := cache.SetOptions{Params: params}
			opts.Tags, _ = cmd.Flags().GetStringSlice("tag")
			if ttlFlag, _ := cmd.Flags().GetString("ttl"); ttlFlag != "" {
				opts.TTLSeconds, err = cache.ParseTTL(ttlFlag)
				if err != nil {
					return err
				}
			}

			payload, err := readPayload(cmd)
			if err != nil {
				return err
			}

			store, err := openCache(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if setErr := store.Set(args[0], payload, ct, opts); setErr != nil {
				return setErr
			}
			cmd.Printf("cached %q (%s, %d bytes)\n", args[0], ct, len(payload))
			return nil
		},
	}

	cmd.Flags().String("type", "", "cache type")
	cmd.Flags().StringArray("param", nil, "request parameter as key=value (repeatable)")
	cmd.Flags().StringSlice("tag", nil, "tag for bulk purge (repeatable)")
	cmd.Flags().String("ttl", "", "entry TTL as seconds or duration (default: configured TTL)")
	cmd.Flags().String("file", "", "read the payload from a file instead of stdin")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

// newDeleteCmd creates the "delete" subcommand.
func newDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <key>",
		Short: "Remove a cached entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ct, err := parseTypeFlag(cmd)
			if err != nil {
				return err
			}
			paramFlags, _ := cmd.Flags().GetStringArray("param")
			params, err := parseParams(paramFlags)
			if err != nil {
				return err
			}

			store, err := openCache(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			removed, err := store.Delete(args[0], ct, params)
			if err != nil {
				return err
			}
			if removed {
				cmd.Printf("deleted %q (%s)\n", args[0], ct)
			} else {
				cmd.Printf("no entry for %q (%s)\n", args[0], ct)
			}
			return nil
		},
	}

	cmd.Flags().String("type", "", "cache type")
	cmd.Flags().StringArray("param", nil, "request parameter as key=value (repeatable)")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

// readPayload reads the payload from --file when given, otherwise stdin.
func readPayload(cmd *cobra.Command) ([]byte, error) {
	if file, _ := cmd.Flags().GetString("file"); file != "" {
		return os.ReadFile(file)
	}
	if isTerminal(os.Stdin) {
		return nil, fmt.Errorf("no payload: pass --file or pipe data on stdin")
	}
	return io.ReadAll(cmd.InOrStdin())
}
