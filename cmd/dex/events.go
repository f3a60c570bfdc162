package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	"liquidityCore/internal/aggregate"
	"liquidityCore/internal/config"
	"liquidityCore/internal/storage"
)

// eventFilter matches one event line by gjson path.
type eventFilter struct {
	path  string
	value string
}

func (f eventFilter) match(line []byte) bool {
	res := gjson.GetBytes(line, f.path)
	return res.Exists() && res.String() == f.value
}

func parseEventFilters(pool, eventType, sender string, where []string) ([]eventFilter, error) {
	var filters []eventFilter
	if pool != "" {
		filters = append(filters, eventFilter{path: "pool_hash", value: pool})
	}
	if eventType != "" {
		filters = append(filters, eventFilter{path: "event_name", value: eventType})
	}
	if sender != "" {
		filters = append(filters, eventFilter{path: "identity", value: sender})
	}
	for _, expr := range where {
		path, value, ok := strings.Cut(expr, "=")
		if !ok || path == "" {
			return nil, fmt.Errorf("invalid --where %q, expected path=value", expr)
		}
		filters = append(filters, eventFilter{path: path, value: value})
	}
	return filters, nil
}

// filterEvents returns the lines of the event log at path that match every filter.
func filterEvents(path string, filters []eventFilter, limit int) ([]json.RawMessage, error) {
	out := make([]json.RawMessage, 0)
	err := storage.ScanEvents(path, func(line []byte) error {
		if limit > 0 && len(out) >= limit {
			return nil
		}
		if !gjson.ValidBytes(line) {
			return fmt.Errorf("invalid event line: %.80s", line)
		}
		for _, f := range filters {
			if !f.match(line) {
				return nil
			}
		}
		out = append(out, append(json.RawMessage(nil), line...))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func newEventsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "List committed events from the event log",
	}
	cmd.Flags().String("pool", "", "only events of this pool hash")
	cmd.Flags().String("type", "", "only events of this name (Mint, Burn, Swap, ...)")
	cmd.Flags().String("sender", "", "only events signed by this identity")
	cmd.Flags().StringArray("where", nil, "extra path=value filter, e.g. data.zero_for_one=true")
	cmd.Flags().Int("limit", 0, "maximum number of events, 0 means all")
	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		cfgFile, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(cfgFile, cmd.Flags())
		if err != nil {
			return err
		}

		pool, _ := cmd.Flags().GetString("pool")
		eventType, _ := cmd.Flags().GetString("type")
		sender, _ := cmd.Flags().GetString("sender")
		where, _ := cmd.Flags().GetStringArray("where")
		limit, _ := cmd.Flags().GetInt("limit")

		filters, err := parseEventFilters(pool, eventType, sender, where)
		if err != nil {
			return err
		}
		events, err := filterEvents(cfg.EventsOut, filters, limit)
		if err != nil {
			return err
		}
		return printJSON(cmd, events)
	}
	return cmd
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Aggregate swap volume and fees per pool window from the event log",
	}
	cmd.Flags().Duration("window", 5*time.Minute, "aggregation window (e.g. 1m, 5m, 1h)")
	cmd.Flags().Int64("from", 0, "ignore swaps before this unix timestamp")
	cmd.Flags().String("pool", "", "only this pool hash")
	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		cfgFile, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(cfgFile, cmd.Flags())
		if err != nil {
			return err
		}

		logger, err := newLogger(cfg.LogLevel)
		if err != nil {
			return err
		}
		defer logger.Sync()

		window, _ := cmd.Flags().GetDuration("window")
		from, _ := cmd.Flags().GetInt64("from")
		pool, _ := cmd.Flags().GetString("pool")
		if window < time.Second {
			return fmt.Errorf("window must be at least 1s")
		}

		metrics, err := aggregate.NewAggregator(aggregate.Config{
			WindowSeconds: int64(window / time.Second),
			From:          from,
		}, logger).Run(cfg.EventsOut)
		if err != nil {
			return err
		}
		if pool != "" {
			kept := metrics[:0]
			for _, m := range metrics {
				if m.PoolHash == pool {
					kept = append(kept, m)
				}
			}
			metrics = kept
		}
		return printJSON(cmd, metrics)
	}
	return cmd
}
