// LifeLens daemon - daily analysis engine and API server
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/lifelens/lifelens/internal/api"
	"github.com/lifelens/lifelens/internal/cache"
	"github.com/lifelens/lifelens/internal/collectors"
	"github.com/lifelens/lifelens/internal/config"
	"github.com/lifelens/lifelens/internal/core"
	"github.com/lifelens/lifelens/internal/correlation"
	"github.com/lifelens/lifelens/internal/logging"
	"github.com/lifelens/lifelens/internal/narrative"
	"github.com/lifelens/lifelens/internal/storage"
	"github.com/lifelens/lifelens/internal/summary"
)

var (
	configPath string
	dataDir    string
	port       int
	verbose    bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "lifelens",
		Short: "LifeLens - personal daily analysis engine",
		RunE:  runServe,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Data directory (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable debug logging")
	rootCmd.Flags().IntVar(&port, "port", 0, "HTTP server port (overrides config)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the analysis engine and API server",
		RunE:  runServe,
	}
	serveCmd.Flags().IntVar(&port, "port", 0, "HTTP server port (overrides config)")

	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Write a demo day of records into the database",
		RunE:  runSeed,
	}

	rootCmd.AddCommand(serveCmd, seedCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if port != 0 {
		cfg.Server.Port = port
	}
	if verbose {
		logging.SetLevel(logging.DEBUG)
	}
	return cfg, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logging.Default()

	db, err := storage.Open(storage.Config{Path: cfg.DatabasePath()})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	recordStore := storage.NewRecordStore(db)
	summaryStore := storage.NewSummaryStore(db)
	collector := collectors.NewStoreCollector(recordStore)

	engine := correlation.NewEngine(correlation.Catalogue(correlation.WindowTiers{
		ImmediateMS: cfg.Engine.WindowImmediateMS,
		ShortMS:     cfg.Engine.WindowShortMS,
		MediumMS:    cfg.Engine.WindowMediumMS,
		LongMS:      cfg.Engine.WindowLongMS,
	}))

	var narrator summary.Narrator
	if cfg.Narrative.Enabled {
		client := narrative.NewClient(narrative.Config{
			BaseURL: cfg.Narrative.URL,
			Model:   cfg.Narrative.Model,
		})
		if client.IsConfigured() {
			log.WithField("model", client.Model()).Info("narrative model connected")
			narrator = client
		} else {
			log.Warn("narrative model unreachable at %s, narratives disabled", cfg.Narrative.URL)
		}
	}

	svc := summary.NewService(
		collector,
		engine,
		cache.New(cfg.Engine.CacheCapacity),
		narrator,
		summaryStore,
		summary.Config{
			SlotWidthMS: cfg.Engine.SlotWidthMS,
			DailyTTL:    time.Duration(cfg.Engine.DailyTTLMinutes) * time.Minute,
			WeeklyTTL:   time.Duration(cfg.Engine.WeeklyTTLMinutes) * time.Minute,
			InsightsTTL: time.Duration(cfg.Engine.InsightsTTLMinutes) * time.Minute,
			ExpectedSources: []string{
				core.SourceActivity, core.SourceLocation, core.SourceAppUsage,
			},
		},
		log,
	)

	server := api.New(api.Config{
		Host:      cfg.Server.Host,
		Port:      cfg.Server.Port,
		Summaries: svc,
		Logger:    log,
	})

	// Handle shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		<-sigCh

		log.Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		server.Stop(ctx)
	}()

	log.WithFields(map[string]any{
		"host": cfg.Server.Host,
		"port": cfg.Server.Port,
	}).Info("LifeLens ready")

	if err := server.Start(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logging.Default()

	db, err := storage.Open(storage.Config{Path: cfg.DatabasePath()})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	date := time.Now().UTC().Format(core.DateLayout)
	startMS, _, err := core.DayRange(date)
	if err != nil {
		return err
	}
	at := func(h, m int) int64 {
		return startMS + int64(h)*3_600_000 + int64(m)*60_000
	}

	record := func(source string, ts int64, fields map[string]core.FieldValue) core.SourceRecord {
		return core.SourceRecord{Source: source, Timestamp: ts, Fields: fields}
	}

	records := []core.SourceRecord{
		record(core.SourceActivity, at(8, 10), map[string]core.FieldValue{"steps": core.Number(1200)}),
		record(core.SourceActivity, at(12, 30), map[string]core.FieldValue{"steps": core.Number(2400)}),
		record(core.SourceActivity, at(18, 0), map[string]core.FieldValue{
			"type": core.Category("workout"), "duration_min": core.Number(40),
		}),
		record(core.SourceActivity, at(18, 45), map[string]core.FieldValue{"steps": core.Number(3100)}),
		record(core.SourceLocation, at(8, 55), map[string]core.FieldValue{"place_id": core.Category("office")}),
		record(core.SourceLocation, at(12, 40), map[string]core.FieldValue{"place_id": core.Category("cafe")}),
		record(core.SourceLocation, at(18, 3), map[string]core.FieldValue{"place_id": core.Category("gym")}),
		record(core.SourceLocation, at(19, 10), map[string]core.FieldValue{"place_id": core.Category("home")}),
		record(core.SourceCall, at(18, 50), map[string]core.FieldValue{
			"direction": core.Category("outgoing"), "duration_min": core.Number(14),
		}),
		record(core.SourceAppUsage, at(20, 0), map[string]core.FieldValue{
			"app": core.Category("mail"), "minutes": core.Number(25),
		}),
		record(core.SourceAppUsage, at(21, 15), map[string]core.FieldValue{
			"app": core.Category("reader"), "minutes": core.Number(35),
		}),
		record(core.SourceHealth, at(7, 0), map[string]core.FieldValue{
			"resting_hr": core.Number(58), "sleep_hrs": core.Number(7.2),
		}),
	}

	recordStore := storage.NewRecordStore(db)
	if err := recordStore.InsertBatch(context.Background(), records); err != nil {
		return fmt.Errorf("failed to seed records: %w", err)
	}

	log.WithFields(map[string]any{
		"date":    date,
		"records": len(records),
	}).Info("seeded demo day")
	return nil
}
