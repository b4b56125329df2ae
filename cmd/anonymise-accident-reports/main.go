package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"trainingdesk/internal/accident"
	"trainingdesk/pkg/config"
	"trainingdesk/pkg/db"
)

// Operator tool: anonymise injured/reporter fields on accident reports after
// the following midnight, or everything still carrying data in test mode.
func main() {
	quiet := flag.Bool("quiet", false, "suppress success output")
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

	testMode := cfg.AccidentAnonTestIntervalMin > 0
	now := time.Now().In(loc)

	count, err := accident.NewRepository(pool).Anonymise(ctx, now, testMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "anonymise: %v\n", err)
		os.Exit(1)
	}

	if !*quiet {
		mode := "Nightly mode"
		if testMode {
			mode = "TEST MODE"
		}
		fmt.Printf("[Anonymiser] (%s) Anonymised %d report(s) at %s\n", mode, count, now.Format("2006-01-02 15:04:05 MST"))
	}
}
