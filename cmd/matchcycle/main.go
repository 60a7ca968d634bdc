// Command matchcycle runs one pipeline cycle from the command line, the
// "job" driving surface (§6) alongside the HTTP endpoint cmd/server exposes.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/coffeeisafruit/jv-matcher/internal/config"
	"github.com/coffeeisafruit/jv-matcher/internal/infrastructure/container"
)

func main() {
	cycleID := flag.String("cycle-id", "", "cycle identifier (generated if empty)")
	profileID := flag.String("profile-id", "", "run a single-profile refresh instead of a full cycle")
	ingestFlag := flag.Bool("ingest", false, "resolve pending candidate records instead of running a cycle")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	app, err := container.NewContainer(ctx, cfg)
	if err != nil {
		fmt.Printf("Failed to initialize application: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if err := app.Close(); err != nil {
			fmt.Printf("Error closing application: %v\n", err)
		}
	}()

	if *ingestFlag {
		report, err := app.IngestRunner.Run(ctx)
		if err != nil {
			app.Log.WithError(err).Error("ingestion resolution failed", nil)
			os.Exit(1)
		}
		emit(report)
		return
	}

	if *profileID != "" {
		suggestions, err := app.Runner.RunForProfile(ctx, *profileID, cfg.Matching)
		if err != nil {
			app.Log.WithError(err).Error("run_for_profile failed", map[string]interface{}{"profile_id": *profileID})
			os.Exit(1)
		}
		emit(suggestions)
		return
	}

	id := *cycleID
	if id == "" {
		id = uuid.NewString()
	}
	report, err := app.Runner.RunCycle(ctx, id, cfg.Matching)
	if err != nil {
		app.Log.WithError(err).Error("run_cycle failed", map[string]interface{}{"cycle_id": id})
		os.Exit(1)
	}
	emit(report)
}

func emit(v interface{}) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("Failed to encode result: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}
