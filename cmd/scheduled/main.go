package main

import (
	"context"
	"database/sql"
	"log/slog"
	"time"
	"maischedule-backend/lib/configutil"
	"maischedule-backend/lib/pagecache"
	"maischedule-backend/lib/scrapers/mai"
	"maischedule-backend/lib/telemetry"
	"maischedule-backend/lib/util/serviceutil"
	"maischedule-backend/services/schedule"
	scheduledb "maischedule-backend/services/schedule/db"

	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "scheduled",
	Short: "scheduled ingests university schedule pages into a local database on a timer.",
	Run: func(cmd *cobra.Command, args []string) {
		runService(cmd.Context(), false)
	},
}

var onceCmd = &cobra.Command{
	Use:   "once",
	Short: "Run a single ingestion pass and exit.",
	Run: func(cmd *cobra.Command, args []string) {
		runService(cmd.Context(), true)
	},
}

func main() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging/instrumentation.")
	rootCmd.AddCommand(onceCmd)

	ctx := serviceutil.SignalContext()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		serviceutil.Fatal("command failed", err)
	}
}

func runService(ctx context.Context, once bool) {
	telemetry.InitSlog(verbose)

	t, err := telemetry.SetupFromEnv(ctx, "scheduled")
	if err != nil {
		serviceutil.Fatal("setup telemetry", err)
	}
	defer t.Shutdown(context.Background())
	telemetry.InstrumentPerfStats(ctx)

	config, err := configutil.ReadConfig[Config]("config.json5")
	if err != nil {
		serviceutil.Fatal("read config", err)
	}
	if len(config.Ingest.Groups) == 0 {
		slog.Warn("no groups configured, nothing to ingest")
		return
	}
	weeks := config.Ingest.Weeks
	if len(weeks) == 0 {
		weeks = []int{1}
	}

	slog.Info("opening database...", "file", config.Database.File)
	db, err := config.Database.OpenDB(scheduledb.Schema)
	if err != nil {
		serviceutil.Fatal("open database", err)
	}

	service := buildService(config, db)

	if once {
		reports := service.Run(ctx, config.Ingest.Groups, weeks)
		failed := 0
		for _, r := range reports {
			if r.Outcome != schedule.OutcomeSuccess {
				failed++
			}
		}
		slog.Info("ingestion pass finished", "units", len(reports), "failed", failed)
		return
	}

	interval := time.Duration(config.Ingest.IntervalMinutes) * time.Minute
	if interval <= 0 {
		interval = time.Minute * 30
	}
	slog.Info(
		"starting ingestion daemon",
		"groups", len(config.Ingest.Groups), "weeks", len(weeks), "interval", interval,
	)
	service.RunDaemon(ctx, interval, config.Ingest.Groups, weeks)
}

func buildService(config Config, db *sql.DB) schedule.Service {
	cacheEntries := config.Origin.CacheEntries
	if cacheEntries <= 0 {
		cacheEntries = mai.DefaultCacheEntries
	}
	cacheTtl := time.Duration(config.Origin.CacheTtl) * time.Second
	if cacheTtl <= 0 {
		cacheTtl = mai.DefaultCacheTtl
	}

	client := mai.NewClient(mai.ClientOptions{
		BaseUrl:   config.Origin.BaseUrl,
		UserAgent: config.Origin.UserAgent,
		Timeout:   time.Duration(config.Origin.TimeoutSeconds) * time.Second,
		Cache:     pagecache.New(cacheEntries, cacheTtl),
	})
	return schedule.NewService(client, schedule.NewStore(db), schedule.Options{
		MaxInflight: config.Ingest.MaxInflight,
	})
}
