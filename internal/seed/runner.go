package seed

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	json "github.com/goccy/go-json"

	"github.com/okian/mapty/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
	filePermission      = 0600
)

// Run executes a seed run against cfg.BaseURL. Entries are submitted one at
// a time: each submit consumes the click posted just before it.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	log := logger.Get().Named("seed")
	stats := &Stats{StartTime: time.Now()}

	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(stats.StartTime.UnixNano())
	}
	log.Info(ctx, "starting seed run",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("count", cfg.Count),
		logger.Float64("radiusKm", cfg.RadiusKm),
		logger.Any("seed", seed))

	client := NewHTTPClient(cfg.BaseURL, cfg.Timeout)

	if err := client.Get(ctx, "/healthz", nil); err != nil {
		return stats, fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}
	var before ServerStats
	if err := client.Get(ctx, "/stats", &before); err != nil {
		return stats, fmt.Errorf("read stats: %w", err)
	}
	if !before.MapReady {
		return stats, ErrMapNotReady
	}
	stats.Before = before.Workouts

	entries := NewGenerator(seed, cfg.Center, cfg.RadiusKm, cfg.InvalidPct).Generate(cfg.Count)
	stats.Generated = len(entries)

	for i, e := range entries {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		outcome, err := submit(ctx, client, e)
		switch outcome {
		case http.StatusCreated:
			stats.Created++
		case http.StatusUnprocessableEntity:
			stats.Rejected++
		default:
			stats.Failed++
			log.Warn(ctx, "submission failed", logger.Int("entry", i), logger.Int("status", outcome), logger.Error(err))
			continue
		}
		if cfg.Verbose {
			log.Info(ctx, "submitted workout",
				logger.Int("entry", i),
				logger.String("type", e.Form.Type),
				logger.Int("status", outcome))
		}
	}

	var after ServerStats
	if err := client.Get(ctx, "/stats", &after); err != nil {
		return stats, fmt.Errorf("read stats: %w", err)
	}
	stats.After = after.Workouts

	if cfg.OutputFile != "" {
		if err := saveEntries(cfg.OutputFile, entries); err != nil {
			log.Warn(ctx, "failed to save entries to file", logger.Error(err))
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	log.Info(ctx, "seed run finished",
		logger.Int("generated", stats.Generated),
		logger.Int("created", stats.Created),
		logger.Int("rejected", stats.Rejected),
		logger.Int("failed", stats.Failed),
		logger.Duration("duration", stats.Duration))

	if stats.After-stats.Before != stats.Created {
		return stats, fmt.Errorf("%w: created %d, server grew by %d", ErrMismatch, stats.Created, stats.After-stats.Before)
	}
	return stats, nil
}

// submit clicks the map at e.At and submits e.Form. It returns the submit
// status, or the click status when the click was refused.
func submit(ctx context.Context, client *HTTPClient, e Entry) (int, error) {
	status, body, err := client.Post(ctx, "/map/click", Click{Lat: e.At.Lat(), Lng: e.At.Lng()})
	if err != nil {
		return status, err
	}
	if status != http.StatusNoContent {
		return status, fmt.Errorf("map click: %w %d: %s", ErrStatus, status, body)
	}
	status, body, err = client.Post(ctx, "/workouts", e.Form)
	if err != nil {
		return status, err
	}
	if status != http.StatusCreated && status != http.StatusUnprocessableEntity {
		return status, fmt.Errorf("submit: %w %d: %s", ErrStatus, status, body)
	}
	return status, nil
}

func saveEntries(path string, entries []Entry) error {
	if len(entries) == 0 {
		return ErrNoEntries
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal entries: %w", err)
	}
	return os.WriteFile(path, data, filePermission)
}
