package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/splice/internal/eventlog"
	"github.com/dropDatabas3/splice/internal/store/pg"
)

var (
	eventTags  []string
	eventAfter uint64
	eventLimit int
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Inspect the event log",
}

var eventsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print events as JSON lines",
	Long: `Print events as JSON lines, ordered by position.

Each --tag is key=value; several tags must all be present (AND).
Without tags the whole log is listed.`,
	Args: cobra.NoArgs,
	RunE: runEventsList,
}

func init() {
	eventsListCmd.Flags().StringArrayVarP(&eventTags, "tag", "t", nil, "tag filter key=value (repeatable)")
	eventsListCmd.Flags().Uint64Var(&eventAfter, "after", 0, "only events with position > after")
	eventsListCmd.Flags().IntVar(&eventLimit, "limit", 100, "max events (0 = no limit)")
	eventsCmd.AddCommand(eventsListCmd)
	rootCmd.AddCommand(eventsCmd)
}

func runEventsList(cmd *cobra.Command, _ []string) error {
	tags := make([]eventlog.Tag, 0, len(eventTags))
	for _, s := range eventTags {
		t, err := eventlog.ParseTag(s)
		if err != nil {
			return fmt.Errorf("--tag %q: %w", s, err)
		}
		tags = append(tags, t)
	}

	ctx := rootContext(cmd.Context())
	pool, err := openPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()
	log := pg.NewEventLog(pool)

	var evs []eventlog.Event
	if len(tags) > 0 {
		evs, err = log.ReadFrom(ctx, eventlog.Match(tags...), eventlog.Position(eventAfter), eventLimit)
	} else {
		evs, err = log.All(ctx)
		evs = window(evs, eventlog.Position(eventAfter), eventLimit)
	}
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	for _, ev := range evs {
		if err := enc.Encode(ev); err != nil {
			return err
		}
	}
	return nil
}

// window aplica after/limit sobre un listado completo ordenado por posición.
func window(evs []eventlog.Event, after eventlog.Position, limit int) []eventlog.Event {
	i := 0
	for i < len(evs) && evs[i].Position <= after {
		i++
	}
	evs = evs[i:]
	if limit > 0 && len(evs) > limit {
		evs = evs[:limit]
	}
	return evs
}
