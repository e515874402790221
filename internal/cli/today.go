package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/adhan-clock/internal/api"
	"github.com/smokyabdulrahman/adhan-clock/internal/cache"
	"github.com/smokyabdulrahman/adhan-clock/internal/config"
	"github.com/smokyabdulrahman/adhan-clock/internal/display"
	"github.com/smokyabdulrahman/adhan-clock/internal/geo"
	"github.com/smokyabdulrahman/adhan-clock/internal/hijri"
	"github.com/smokyabdulrahman/adhan-clock/internal/schedule"
)

func newTodayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "today",
		Short: "Print today's prayer times",
		Long:  "Fetches and prints today's prayer schedule as a table, highlighting the next prayer.",
		RunE:  runToday,
	}
}

func runToday(cmd *cobra.Command, args []string) error {
	cfg := effectiveConfig(cmd)

	store, err := cache.New(cfg.CacheDir)
	if err != nil {
		return err
	}

	resolver := &geo.Resolver{
		Fallback: geo.Location{
			Mode:    geo.ModeCity,
			City:    cfg.City,
			State:   cfg.State,
			Country: cfg.Country,
			Label:   cfg.City + ", " + cfg.Country,
		},
		Store: store,
	}
	if cfg.Latitude != 0 || cfg.Longitude != 0 {
		resolver.Manual = &geo.Location{
			Mode:      geo.ModeCoordinates,
			Latitude:  cfg.Latitude,
			Longitude: cfg.Longitude,
		}
	}

	ctx := cmd.Context()
	loc := resolver.Resolve(ctx)

	fetcher := schedule.NewFetcher(api.NewClient(), store)
	now := time.Now().Add(FlagTimeOffset)

	day, err := fetcher.Fetch(ctx, now, loc, schedule.CalcConfig{
		Method:   cfg.MethodOrDefault(config.DefaultMethod),
		School:   cfg.SchoolOrDefault(config.DefaultSchool),
		Timezone: cfg.Timezone,
	})
	if err != nil {
		return fmt.Errorf("failed to fetch prayer times: %w", err)
	}

	out := cmd.OutOrStdout()

	fmt.Fprintln(out, display.Bold(day.GregorianLabel))
	if day.HijriLabel != "" {
		fmt.Fprintln(out, display.Dim(day.HijriLabel))
	}
	if special := hijri.SpecialDay(day.HijriMonth, day.HijriDay); special != "" {
		fmt.Fprintln(out, display.Yellow(special))
	}
	if loc.Label != "" {
		fmt.Fprintln(out, display.Dim(loc.Label))
	}
	fmt.Fprintln(out)

	table := display.NewTable([]string{"Prayer", "Time"})
	next := -1
	for i, e := range day.Entries {
		t := e.LocalTime
		if cfg.TimeFormat == "12h" {
			t = e.At.Format("3:04 PM")
		}
		table.AddRow([]string{e.Name, t})
		if next == -1 && e.At.After(now) {
			next = i
		}
	}
	if next >= 0 {
		table.SetHighlightRow(next)
	}
	fmt.Fprint(out, table.Render())

	if next >= 0 {
		until := day.Entries[next].At.Sub(now).Round(time.Minute)
		fmt.Fprintf(out, "\n%s in %s\n", display.Accent(day.Entries[next].Name), until)
	} else {
		fmt.Fprintln(out, "\nAll prayers for today have passed.")
	}

	return nil
}
