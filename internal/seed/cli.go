package seed

import "os"

// ShowHelp prints usage information for the seed tool.
func ShowHelp() {
	os.Stdout.WriteString(`Mapty Seed Tool
===============

Fills a running mapty server with random workouts through its HTTP API.
The server's map must be ready (its position resolved) before seeding.

Usage:
  go run ./cmd/seed [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -count int
        Number of workouts to submit (default 50)
  -lat float, -lng float
        Center of the generated positions (default 50.0755, 14.4378)
  -radius float
        Maximum distance from the center in km (default 10)
  -invalid int
        Percentage of deliberately invalid forms (default 0)
  -seed uint
        Generator seed; 0 picks one from the clock
  -timeout duration
        HTTP request timeout (default 10s)
  -output string
        Write the generated entries to this JSON file
  -verbose
        Log every submission
  -help
        Show this help message

Examples:
  go run ./cmd/seed -count 200 -invalid 10
  go run ./cmd/seed -lat 48.8566 -lng 2.3522 -radius 5 -seed 42
`)
}
