// Package pipeline runs one acquisition into the shared record store.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/KaramelBytes/speedatlas-cli/internal/dataset"
	"github.com/KaramelBytes/speedatlas-cli/internal/logging"
	"github.com/KaramelBytes/speedatlas-cli/internal/source"
	"github.com/KaramelBytes/speedatlas-cli/internal/state"
	"github.com/KaramelBytes/speedatlas-cli/internal/workspace"
)

// ErrSuperseded is returned when a newer load began while this one was
// acquiring; its records were discarded.
var ErrSuperseded = errors.New("load superseded by a newer one")

// Outcome describes a committed load.
type Outcome struct {
	Source     string `json:"source"`
	Rows       int    `json:"rows"`
	Dropped    int    `json:"dropped"`
	Records    int    `json:"records"`
	Manual     int    `json:"manual"`
	Generation uint64 `json:"generation"`
}

// Load acquires src, puts the workspace's manual entries in front when ws is
// not nil, and installs the result in store. The store is left untouched on
// error.
func Load(ctx context.Context, store *state.Store, src source.Source, opt dataset.Options, ws *workspace.Workspace) (Outcome, error) {
	logger := logging.FromContext(ctx)
	gen := store.Begin()
	start := time.Now()

	res, err := src.Load(ctx, opt)
	if err != nil {
		logging.LogError(logger, "load_failed", err,
			slog.String("source", src.Name()),
			slog.Uint64("generation", gen))
		return Outcome{}, err
	}
	records := res.Records
	manual := 0
	if ws != nil {
		manual = len(ws.Entries(opt.Policy))
		records = ws.Apply(records, opt.Policy)
	}
	if !store.Commit(gen, src.Name(), records) {
		logger.Warn("load_superseded", slog.String("source", src.Name()), slog.Uint64("generation", gen))
		return Outcome{}, ErrSuperseded
	}
	out := Outcome{
		Source:     src.Name(),
		Rows:       res.Rows,
		Dropped:    res.Dropped,
		Records:    len(records),
		Manual:     manual,
		Generation: gen,
	}
	logging.LogOperation(logger, "dataset_loaded",
		slog.String("source", out.Source),
		slog.Int("rows", out.Rows),
		slog.Int("dropped", out.Dropped),
		slog.Int("manual", out.Manual),
		slog.Uint64("generation", gen),
		slog.Duration("duration", time.Since(start)))
	return out, nil
}
