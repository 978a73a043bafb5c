package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"IbexFeed/internal/config"
	"IbexFeed/internal/parser"
	"IbexFeed/internal/recorder"
	"IbexFeed/internal/runner"
	"IbexFeed/internal/scheduler"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	var (
		cfgPath    = flag.String("config", "", "path to config file")
		filter     = flag.String("filter", "", "keep only records containing this stock name")
		fileStem   = flag.String("file-stem", "", "name prefix of the data files")
		fileExt    = flag.String("file-ext", "", "extension of the data files")
		targetDate = flag.String("target-date", "", "only parse data for this day, e.g. 23 or 23/01/2023")
		watch      = flag.Bool("watch", false, "keep running and sweep the directory on the configured cron schedule")
	)
	flag.Parse()

	// Config file: flag, then env, then the conventional location.
	path := *cfgPath
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = "configs/config.yaml"
	}
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}

	// Flag and positional overrides.
	if flag.NArg() > 0 {
		cfg.Data.Dir = flag.Arg(0)
	}
	if *fileStem != "" {
		cfg.Data.FileStem = *fileStem
	}
	if *fileExt != "" {
		cfg.Data.FileExt = *fileExt
	}
	if *targetDate != "" {
		cfg.Parser.TargetDate = *targetDate
	}
	if *filter != "" {
		cfg.Filters = append(cfg.Filters, *filter)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	// Init parser
	p := parser.NewWithConfig(parser.Config{
		HeaderSkip:   cfg.Parser.HeaderSkip,
		IndexLine:    cfg.Parser.IndexLine,
		TrailerSkip:  cfg.Parser.TrailerSkip,
		IndexColumns: cfg.Parser.IndexColumns,
		StockColumns: cfg.Parser.StockColumns,
		DateColumn:   cfg.Parser.DateColumn,
	})
	if cfg.Parser.TargetDate != "" {
		day := p.SetTargetDate(cfg.Parser.TargetDate)
		log.Printf("[INFO] target day set to %s", day)
	}

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Init runner
	run, err := runner.New(p, rec, os.Stdout, runner.Options{
		Dir:          cfg.Data.Dir,
		FileStem:     cfg.Data.FileStem,
		FileExt:      cfg.Data.FileExt,
		MinFileBytes: cfg.Data.MinFileBytes,
		Filters:      cfg.Filters,
		LedgerFile:   cfg.State.LedgerFile,
	})
	if err != nil {
		log.Fatalf("[FATAL] init runner: %v", err)
	}

	// One-shot mode: a single sweep, then exit.
	if !*watch {
		if err := run.Sweep(); err != nil {
			log.Fatalf("[FATAL] sweep: %v", err)
		}
		return
	}

	if cfg.Schedule.SweepCron == "" {
		log.Fatal("[FATAL] watch mode requires schedule.sweep_cron")
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := scheduler.NewScheduler(ctx, run)
	if err := sched.Register(cfg.Schedule.SweepCron); err != nil {
		log.Fatalf("[FATAL] register sweep task: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// First pass right away; later passes only emit what changed.
	if err := sched.RunNow(); err != nil {
		log.Printf("[ERROR] initial sweep: %v", err)
	}

	log.Println("[INFO] ibexfeed is watching. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
}
