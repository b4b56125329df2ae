package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"trainingdesk/internal/booking"
	"trainingdesk/internal/events"
	"trainingdesk/pkg/config"
	"trainingdesk/pkg/db"
)

// Operator tool: one pass of the booking status engine, the same pass the
// scheduler runs every quarter hour.
func main() {
	var (
		quiet = flag.Bool("quiet", false, "suppress success output")
		debug = flag.Bool("debug", false, "print diagnostic counts before running")
	)
	flag.Parse()

	cfg := config.Load()

	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load timezone %q: %v\n", cfg.TimeZone, err)
		os.Exit(1)
	}

	ctx := context.Background()

	pool, err := db.Open(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "db open: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	repo := booking.NewRepository(pool)

	if *debug {
		now := time.Now().In(loc)
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		nowT := booking.TimeOfDayAt(now)

		due, err := repo.CountInProgressDue(ctx, today, nowT)
		if err != nil {
			fmt.Fprintf(os.Stderr, "count candidates: %v\n", err)
			os.Exit(1)
		}
		open, err := repo.CountOpen(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "count open pool: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Now local: %s\n", now.Format(time.RFC3339))
		fmt.Printf("Candidates to go in_progress: %d\n", due)
		fmt.Printf("Pool for awaiting_closure (sched/in_prog): %d\n", open)
	}

	engine := booking.NewEngine(repo, events.NewRepository(pool), zap.NewNop(), loc)

	res, err := engine.AutoUpdateStatuses(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "update booking statuses: %v\n", err)
		os.Exit(1)
	}

	if !*quiet {
		fmt.Printf("[%s] Moved %d to in_progress, %d to awaiting_closure.\n",
			time.Now().Format(time.RFC3339), res.InProgress, res.AwaitingClosure)
	}
}
