package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/okian/mapty/internal/domain/workout"
	"github.com/okian/mapty/internal/seed"
	"github.com/okian/mapty/pkg/logger"
)

const defaultRunTimeout = 10 * time.Minute

func main() {
	var (
		baseURL    = flag.String("url", seed.DefaultBaseURL, "Base URL of the service")
		count      = flag.Int("count", seed.DefaultCount, "Number of workouts to submit")
		lat        = flag.Float64("lat", 50.0755, "Latitude of the center")
		lng        = flag.Float64("lng", 14.4378, "Longitude of the center")
		radius     = flag.Float64("radius", seed.DefaultRadiusKm, "Maximum distance from the center in km")
		invalid    = flag.Int("invalid", 0, "Percentage of deliberately invalid forms")
		seedValue  = flag.Uint64("seed", 0, "Generator seed; 0 picks one from the clock")
		timeout    = flag.Duration("timeout", seed.DefaultTimeout, "HTTP request timeout")
		outputFile = flag.String("output", "", "Write the generated entries to this JSON file")
		verbose    = flag.Bool("verbose", false, "Log every submission")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		seed.ShowHelp()
		return
	}

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	stats, err := seed.Run(ctx, &seed.Config{
		BaseURL:    *baseURL,
		Count:      *count,
		Center:     workout.Coords{*lat, *lng},
		RadiusKm:   *radius,
		InvalidPct: *invalid,
		Seed:       *seedValue,
		Timeout:    *timeout,
		OutputFile: *outputFile,
		Verbose:    *verbose,
	})
	if err != nil {
		os.Stderr.WriteString("Seed failed: " + err.Error() + "\n")
		cancel()
		os.Exit(1)
	}
	fmt.Printf("created %d, rejected %d, failed %d in %s (server now holds %d workouts)\n",
		stats.Created, stats.Rejected, stats.Failed, stats.Duration.Round(time.Millisecond), stats.After)
}
