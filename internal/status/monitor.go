package status

import (
	"context"
	"time"

	"github.com/rzbill/ringlog/pkg/log"
)

// Monitor periodically logs a snapshot until ctx is cancelled. It is a
// background observer only; it never touches the device.
type Monitor struct {
	collector *Collector
	interval  time.Duration
	logger    log.Logger
}

// NewMonitor builds a monitor over the given collector.
func NewMonitor(collector *Collector, interval time.Duration, logger log.Logger) *Monitor {
	return &Monitor{collector: collector, interval: interval, logger: logger}
}

// Run blocks until ctx is cancelled, logging one snapshot per interval.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.collector.Collect().Log(m.logger)
		}
	}
}
