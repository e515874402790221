package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/smokyabdulrahman/adhan-clock/internal/config"
)

// Global flags shared across all subcommands.
var (
	FlagCity       string
	FlagState      string
	FlagCountry    string
	FlagLatitude   float64
	FlagLongitude  float64
	FlagMethod     int
	FlagSchool     int
	FlagCacheDir   string
	FlagAddr       string
	FlagDebug      bool
	FlagTimeOffset time.Duration
)

// loadedConfig holds the config loaded during PersistentPreRunE.
// Available to all subcommand handlers.
var loadedConfig *config.Config

// NewRootCmd creates the root command for adhan-clock.
// The version parameter is set by the calling binary via ldflags.
func NewRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "adhan-clock",
		Short:   "Kiosk prayer-times clock",
		Long:    "A kiosk-style prayer times clock powered by the Al Adhan API:\na browser page, a schedule engine with adhan alerts, and a small CLI.",
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// .env is optional; real env vars still apply without it.
			_ = godotenv.Load()

			var (
				cfg *config.Config
				err error
			)
			if path := os.Getenv("CONFIG_PATH"); path != "" {
				cfg, err = config.LoadFrom(path)
			} else {
				cfg, err = config.Load()
			}
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			loadedConfig = cfg
			return nil
		},
		// Default action: run the kiosk.
		RunE:          runServe,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&FlagCity, "city", "", "Override fallback city")
	pf.StringVar(&FlagState, "state", "", "Override fallback state")
	pf.StringVar(&FlagCountry, "country", "", "Override fallback country")
	pf.Float64Var(&FlagLatitude, "latitude", 0, "Manual latitude (disables geolocation)")
	pf.Float64Var(&FlagLongitude, "longitude", 0, "Manual longitude (disables geolocation)")
	pf.IntVar(&FlagMethod, "method", -1, "Override calculation method (0-23)")
	pf.IntVar(&FlagSchool, "school", -1, "Override asr school (0=Standard, 1=Hanafi)")
	pf.StringVar(&FlagCacheDir, "cache-dir", "", "Cache directory (default: ~/.cache/adhan-clock/)")
	pf.StringVar(&FlagAddr, "addr", "", "Kiosk HTTP listen address (overrides config)")
	pf.BoolVar(&FlagDebug, "debug", false, "Enable debug endpoints and verbose logging")
	pf.DurationVar(&FlagTimeOffset, "time-offset", 0, "Debug clock offset, e.g. 2h30m")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newTodayCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

// effectiveConfig returns the merged configuration values,
// applying the priority: CLI flags > config file > defaults.
// It uses cobra's Changed() to detect whether a flag was explicitly set.
func effectiveConfig(cmd *cobra.Command) *config.Config {
	cfg := loadedConfig
	if cfg == nil {
		empty := config.Config{}
		cfg = &empty
	}

	defaults := config.Defaults()

	flags := cmd.Flags()
	root := cmd.Root().PersistentFlags()

	if flagWasSet(flags, root, "city") {
		cfg.City = FlagCity
	}
	if flagWasSet(flags, root, "state") {
		cfg.State = FlagState
	}
	if flagWasSet(flags, root, "country") {
		cfg.Country = FlagCountry
	}
	if flagWasSet(flags, root, "latitude") {
		cfg.Latitude = FlagLatitude
	}
	if flagWasSet(flags, root, "longitude") {
		cfg.Longitude = FlagLongitude
	}
	if flagWasSet(flags, root, "method") {
		cfg.Method = &FlagMethod
	} else if cfg.Method == nil {
		cfg.Method = defaults.Method
	}
	if flagWasSet(flags, root, "school") {
		cfg.School = &FlagSchool
	} else if cfg.School == nil {
		cfg.School = defaults.School
	}
	if flagWasSet(flags, root, "cache-dir") {
		cfg.CacheDir = FlagCacheDir
	}
	if flagWasSet(flags, root, "addr") {
		cfg.Addr = FlagAddr
	}

	if cfg.City == "" {
		cfg.City = defaults.City
		cfg.State = defaults.State
		cfg.Country = defaults.Country
	}
	if cfg.TimeFormat == "" {
		cfg.TimeFormat = defaults.TimeFormat
	}
	if cfg.Addr == "" {
		if addr := os.Getenv("ADHAN_CLOCK_ADDR"); addr != "" {
			cfg.Addr = addr
		} else {
			cfg.Addr = defaults.Addr
		}
	}

	return cfg
}

// flagWasSet checks if a flag was explicitly set on either the local or persistent flag set.
func flagWasSet(local, persistent *pflag.FlagSet, name string) bool {
	if f := local.Lookup(name); f != nil && f.Changed {
		return true
	}
	if f := persistent.Lookup(name); f != nil && f.Changed {
		return true
	}
	return false
}
