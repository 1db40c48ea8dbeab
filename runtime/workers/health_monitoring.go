package workers

import (
	"context"
	"log/slog"
	"os"
	"time"

	"chat-relay/contract"

	"github.com/shirou/gopsutil/process"
)

// HealthMonitoringWorker periodically logs the relay's own resource
// usage together with the live session gauge. Best-effort telemetry:
// a failed probe is logged and skipped, never fatal.
type HealthMonitoringWorker struct {
	log            *slog.Logger
	gauge          contract.SessionGauge
	metricInterval time.Duration
}

func NewHealthMonitoringWorker(log *slog.Logger, gauge contract.SessionGauge,
	metricInterval time.Duration) *HealthMonitoringWorker {
	return &HealthMonitoringWorker{
		log:            log,
		gauge:          gauge,
		metricInterval: metricInterval,
	}
}

// Run emits one health sample per tick until the context is canceled.
func (w *HealthMonitoringWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.metricInterval)
	defer ticker.Stop()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping health monitoring")
			return nil
		case <-ticker.C:
			rss, cpu, status, err := getSelfStats(p)
			if err != nil {
				w.log.Error("Failed to collect self stats", "err", err)
				continue
			}
			w.log.Info("Relay health",
				"status", status,
				"cpu_percent", cpu,
				"ram_bytes", rss,
				"sessions", w.gauge.SessionCount())
		}
	}
}

// getSelfStats retrieves technical metrics (Memory, CPU, and OS Status) for the given process.
func getSelfStats(p *process.Process) (uint64, float64, string, error) {
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return 0, 0, "", err
	}

	cpuPercent, err := p.CPUPercent()
	if err != nil {
		return 0, 0, "", err
	}

	status, err := p.Status()
	if err != nil {
		return 0, 0, "", err
	}
	return memInfo.RSS, cpuPercent, status, nil
}
