package observability

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/shirou/gopsutil/process"
)

// Monitor aggregates realtime delivery counters and periodically reports
// them together with process health (RSS, CPU, goroutines). Counters are
// atomic so the hub and router can bump them from any goroutine.
type Monitor struct {
	log      *slog.Logger
	interval time.Duration

	Connects    atomic.Uint64
	Disconnects atomic.Uint64
	Evictions   atomic.Uint64
	Delivered   atomic.Uint64
	Dropped     atomic.Uint64
	Broadcasts  atomic.Uint64
}

func NewMonitor(log *slog.Logger, interval time.Duration) *Monitor {
	return &Monitor{log: log, interval: interval}
}

// Run reports stats on a fixed interval until ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			rss, cpu, err := selfStats(p)
			if err != nil {
				m.log.Error("Failed to collect self stats", "err", err)
				continue
			}

			var mem runtime.MemStats
			runtime.ReadMemStats(&mem)

			m.log.Info("Realtime stats",
				"connects", m.Connects.Load(),
				"disconnects", m.Disconnects.Load(),
				"evictions", m.Evictions.Load(),
				"delivered", m.Delivered.Load(),
				"dropped", m.Dropped.Load(),
				"broadcasts", m.Broadcasts.Load(),
				"goroutines", runtime.NumGoroutine(),
				"alloc_mb", mem.Alloc/1024/1024,
				"num_gc", mem.NumGC,
				"rss_mb", rss/1024/1024,
				"cpu_percent", cpu,
			)
		}
	}
}

// selfStats retrieves memory and CPU usage of this process.
func selfStats(p *process.Process) (uint64, float64, error) {
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return 0, 0, err
	}
	cpuPercent, err := p.CPUPercent()
	if err != nil {
		return 0, 0, err
	}
	return memInfo.RSS, cpuPercent, nil
}
