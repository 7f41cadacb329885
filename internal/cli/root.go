// Package cli implements the quantcache command-line interface.
package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/quantbench/quantcache/internal/cache"
	"github.com/quantbench/quantcache/internal/config"
	"github.com/quantbench/quantcache/internal/logging"
)

// isTerminal checks if the given file is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// logger is the package-level logger for CLI operations.
var logger zerolog.Logger //nolint:gochecknoglobals // Required for zerolog context integration

// configKey carries the loaded configuration through the command context.
type configKey struct{}

// configFromContext returns the configuration loaded in PersistentPreRunE.
func configFromContext(cmd *cobra.Command) *config.Config {
	if cfg, ok := cmd.Context().Value(configKey{}).(*config.Config); ok {
		return cfg
	}
	return config.Default()
}

// NewRootCmd creates the root Cobra command for the quantcache CLI.
// It wires up logging, configuration loading, and the subcommands
// (get, set, delete, clear, stats).
func NewRootCmd(ver string) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "quantcache",
		Short:   "Local persistent cache for market data, model responses, and backtest results",
		Long:    "QuantCache: a typed, persistent cache with TTL expiry, tag- and age-based eviction, and hit/miss statistics",
		Version: ver,
		Example: rootCmdExample,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Validate cache-ttl before doing any work
			if ttlFlag, _ := cmd.Flags().GetString("cache-ttl"); ttlFlag != "" {
				if _, err := cache.ParseTTL(ttlFlag); err != nil {
					return err
				}
			}

			cfgPath, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}

			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				cfg.Logging.Level = "debug"
				cfg.Logging.Format = "console"
				cfg.Logging.File = ""
			}

			baseLogger, err := logging.New(cfg.Logging)
			if err != nil {
				return err
			}
			logger = logging.ComponentLogger(baseLogger, "cli")

			ctx := cmd.Context()
			traceID := logging.GetOrGenerateTraceID(ctx)
			ctx = logging.ContextWithTraceID(ctx, traceID)
			ctx = logging.WithContext(ctx, logger.With().Str("trace_id", traceID).Logger())
			ctx = context.WithValue(ctx, configKey{}, cfg)
			cmd.SetContext(ctx)

			logger.Debug().Str("command", cmd.Name()).Str("trace_id", traceID).Msg("command started")
			return nil
		},
	}

	cmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	cmd.PersistentFlags().String("config", config.DefaultPath(), "path to config file")
	cmd.PersistentFlags().String("cache-dir", "", "cache root directory (overrides config file and env var)")
	cmd.PersistentFlags().
		String("cache-ttl", "", "default cache TTL as seconds or duration (overrides config file and env var)")
	cmd.AddCommand(newGetCmd(), newSetCmd(), newDeleteCmd(), newClearCmd(), newStatsCmd())

	return cmd
}

// openCache opens the cache configured for this invocation, applying
// CLI flag overrides on top of config file and environment values.
func openCache(cmd *cobra.Command) (*cache.Cache, error) {
	cfg := configFromContext(cmd)

	dir := cfg.Cache.Dir
	if flagDir, _ := cmd.Flags().GetString("cache-dir"); flagDir != "" {
		dir = flagDir
	}

	ttl := cfg.Cache.TTLSeconds
	if ttlFlag, _ := cmd.Flags().GetString("cache-ttl"); ttlFlag != "" {
		parsed, err := cache.ParseTTL(ttlFlag)
		if err != nil {
			return nil, err
		}
		ttl = parsed
	}

	return cache.Open(dir,
		cache.WithEnabled(cfg.Cache.Enabled),
		cache.WithDefaultTTL(ttl),
		cache.WithLogger(logging.ComponentLogger(logging.FromContext(cmd.Context()), "cache")),
	)
}

// parseTypeFlag reads and validates the --type flag.
func parseTypeFlag(cmd *cobra.Command) (cache.Type, error) {
	raw, _ := cmd.Flags().GetString("type")
	return cache.ParseType(raw)
}

// parseParams converts repeated key=value flags into a parameter map.
func parseParams(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	params := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid parameter %q, expected key=value", pair)
		}
		params[key] = value
	}
	return params, nil
}

const rootCmdExample = `  # Cache a market-data payload for 5 minutes
  quantcache set AAPL_quote --type market-data --ttl 300 --param symbol=AAPL < quote.json

  # Read it back (exit code 1 on a miss)
  quantcache get AAPL_quote --type market-data --param symbol=AAPL

  # Purge everything tagged with an experiment
  quantcache clear --tags experiment-42

  # Drop entries idle for more than 30 days
  quantcache clear --older-than 30

  # Show hit/miss statistics and per-type sizes
  quantcache stats`
