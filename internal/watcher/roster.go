package watcher

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"badgeclock/internal/codec"
	"badgeclock/internal/domain"
	"badgeclock/internal/service"
)

// RosterImporter upserts a parsed roster into the directory
type RosterImporter interface {
	ImportRoster(ctx context.Context, roster []domain.Employee) (*service.ImportResult, error)
}

// LoadRoster parses the roster file at path, picking the codec from
// its extension, and hands the entries to the importer.
func LoadRoster(ctx context.Context, path string, importer RosterImporter) (*service.ImportResult, error) {
	c, err := codec.ForPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open roster: %w", err)
	}
	defer f.Close()

	roster, err := c.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse roster %s: %w", path, err)
	}

	return importer.ImportRoster(ctx, roster)
}

// WatchRoster re-imports the roster file every time it changes.
// A broken edit is logged and the previous directory stays in place.
func WatchRoster(ctx context.Context, path string, importer RosterImporter, debounce time.Duration) error {
	w := New(path, func(ctx context.Context) {
		result, err := LoadRoster(ctx, path, importer)
		if err != nil {
			log.Printf("Roster reload failed: %v", err)
			return
		}
		logResult(path, result)
	})
	if debounce > 0 {
		w.WithDebounce(debounce)
	}
	return w.Watch(ctx)
}

func logResult(path string, result *service.ImportResult) {
	log.Printf("Roster %s: %d created, %d updated, %d skipped",
		path, result.Created, result.Updated, result.Skipped)
	for _, msg := range result.Errors {
		log.Printf("  %s", msg)
	}
}
