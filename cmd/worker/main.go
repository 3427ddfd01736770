package main

// Credit sweeper: periodically removes expired and exhausted credit blocks.
//   go run ./cmd/worker [-once]

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sourabhsahu334/newsUserBackend/internal/bootstrap"
	"github.com/sourabhsahu334/newsUserBackend/internal/shared/config"
	"github.com/sourabhsahu334/newsUserBackend/internal/shared/storage/db"
	"github.com/sourabhsahu334/newsUserBackend/internal/shared/telemetry"
)

type pruner interface {
	PruneExpired(ctx context.Context, now time.Time) (int, error)
}

func main() {
	once := flag.Bool("once", false, "run a single sweep and exit")
	flag.Parse()

	cfg := config.Load()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sqlDB, err := bootstrap.OpenDB(ctx, cfg, db.OptionsFromEnv(db.DefaultWorkerOptions()))
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	if sqlDB == nil {
		log.Fatal("DATABASE_URL is required for the sweeper")
	}
	defer sqlDB.Close()

	ledger := bootstrap.Ledger(sqlDB)
	if *once {
		sweep(ctx, ledger, time.Now().UTC())
		return
	}

	log.Printf("sweeper started interval=%s", cfg.SweepInterval)
	run(ctx, ledger, cfg.SweepInterval, time.Now)
	log.Printf("sweeper stopped")
}

// run sweeps immediately and then on every tick until ctx is done.
func run(ctx context.Context, p pruner, interval time.Duration, now func() time.Time) {
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	sweep(ctx, p, now().UTC())
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sweep(ctx, p, now().UTC())
		}
	}
}

func sweep(ctx context.Context, p pruner, now time.Time) int {
	start := time.Now()
	n, err := p.PruneExpired(ctx, now)
	if err != nil {
		if ctx.Err() == nil {
			telemetry.Error("worker.sweep.failed", map[string]any{"error": err.Error()})
		}
		return 0
	}
	telemetry.Info("worker.sweep.completed", map[string]any{
		"pruned_blocks": n,
		"duration_ms":   time.Since(start).Milliseconds(),
	})
	return n
}
