// Package flightrecorder keeps a rolling execution trace in memory and writes it to disk when a request misses its
// deadline.
package flightrecorder

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/trace"
	"sync/atomic"
	"time"

	"github.com/myrjola/habitapp/internal/errors"
)

const (
	defaultMinAge   = 5 * time.Minute
	defaultMaxBytes = 64 * 1024 * 1024
	// defaultCooldown is the minimum time between two captures.
	defaultCooldown = 30 * time.Minute
)

type Recorder struct {
	logger   *slog.Logger
	recorder *trace.FlightRecorder
	dir      string
	cooldown time.Duration
	now      func() time.Time
	// lastCapture is the Unix time of the last capture, 0 before the first one.
	lastCapture atomic.Int64
}

type Config struct {
	// Dir receives the trace files. It is created if missing.
	Dir string
	// MinAge and MaxBytes bound the in-memory trace window. Zero picks a default.
	MinAge   time.Duration
	MaxBytes uint64
	// Cooldown is the minimum time between captures. Zero picks a default.
	Cooldown time.Duration
}

func New(logger *slog.Logger, cfg Config) (*Recorder, error) {
	if cfg.Dir == "" {
		return nil, errors.New("traces directory is required")
	}
	if err := os.MkdirAll(cfg.Dir, 0o700); err != nil { //nolint:mnd // owner only.
		return nil, errors.Wrap(err, "create traces directory", slog.String("dir", cfg.Dir))
	}
	stat, err := os.Stat(cfg.Dir)
	if err != nil {
		return nil, errors.Wrap(err, "stat traces directory", slog.String("dir", cfg.Dir))
	}
	if !stat.IsDir() {
		return nil, errors.New("traces path is not a directory: " + cfg.Dir)
	}

	r := &Recorder{
		logger: logger,
		recorder: trace.NewFlightRecorder(trace.FlightRecorderConfig{
			MinAge:   cmp.Or(cfg.MinAge, defaultMinAge),
			MaxBytes: cmp.Or(cfg.MaxBytes, defaultMaxBytes),
		}),
		dir:         cfg.Dir,
		cooldown:    cmp.Or(cfg.Cooldown, defaultCooldown),
		now:         time.Now,
		lastCapture: atomic.Int64{},
	}
	return r, nil
}

// Start begins recording. It fails if another flight recorder or trace is already active.
func (r *Recorder) Start(ctx context.Context) error {
	if err := r.recorder.Start(); err != nil {
		return errors.Wrap(err, "start flight recorder")
	}
	r.logger.LogAttrs(ctx, slog.LevelInfo, "flight recorder started",
		slog.String("dir", r.dir), slog.Duration("cooldown", r.cooldown))
	return nil
}

func (r *Recorder) Stop(ctx context.Context) {
	r.recorder.Stop()
	r.logger.LogAttrs(ctx, slog.LevelInfo, "flight recorder stopped")
}

// Capture writes the recorded window to "<reason>-<timestamp>.trace". Captures within the cooldown of the previous
// one are skipped.
func (r *Recorder) Capture(ctx context.Context, reason string) {
	now := r.now()
	last := r.lastCapture.Load()
	if last > 0 && now.Sub(time.Unix(last, 0)) < r.cooldown {
		r.logger.LogAttrs(ctx, slog.LevelDebug, "skipping trace capture during cooldown",
			slog.Time("last_capture", time.Unix(last, 0)))
		return
	}
	if !r.lastCapture.CompareAndSwap(last, now.Unix()) {
		return
	}

	path := filepath.Join(r.dir, fmt.Sprintf("%s-%s.trace", reason, now.UTC().Format("20060102-150405")))
	n, err := r.writeTrace(path)
	if err != nil {
		r.logger.LogAttrs(ctx, slog.LevelError, "trace capture failed", errors.SlogError(err))
		return
	}
	r.logger.LogAttrs(ctx, slog.LevelWarn, "captured trace", slog.String("file", path), slog.Int64("bytes", n))
}

func (r *Recorder) writeTrace(path string) (_ int64, err error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, errors.Wrap(err, "create trace file", slog.String("file", path))
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()
	n, err := r.recorder.WriteTo(f)
	if err != nil {
		return n, errors.Wrap(err, "write trace", slog.String("file", path))
	}
	return n, nil
}
