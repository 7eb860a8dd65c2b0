// Package status builds point-in-time snapshots of the daemon for the
// monitor loop and the status endpoint. Snapshots carry no logic and no
// memory of the past beyond the process start time.
package status

import (
	"runtime"
	"time"

	"github.com/rzbill/ringlog/internal/flash"
	"github.com/rzbill/ringlog/internal/ring"
	"github.com/rzbill/ringlog/pkg/log"
)

// Snapshot is one observation of the running system.
type Snapshot struct {
	UptimeSeconds int64      `json:"uptimeSeconds"`
	Goroutines    int        `json:"goroutines"`
	HeapBytes     uint64     `json:"heapBytes"`
	Cursor        uint32     `json:"cursor"`
	CursorBlock   uint32     `json:"cursorBlock"`
	Initialized   bool       `json:"initialized"`
	Paused        bool       `json:"paused"`
	Device        flash.Info `json:"device"`
}

// Collector produces snapshots for a single engine instance.
type Collector struct {
	engine  *ring.Engine
	started time.Time
}

// NewCollector returns a Collector anchored at the current time.
func NewCollector(engine *ring.Engine) *Collector {
	return &Collector{engine: engine, started: time.Now()}
}

// Collect takes one snapshot.
func (c *Collector) Collect() Snapshot {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	info := flash.InfoFor(c.engine.Device())
	cursor := c.engine.Position()
	return Snapshot{
		UptimeSeconds: int64(time.Since(c.started) / time.Second),
		Goroutines:    runtime.NumGoroutine(),
		HeapBytes:     mem.HeapAlloc,
		Cursor:        cursor,
		CursorBlock:   cursor / info.BlockSize,
		Initialized:   c.engine.Initialized(),
		Paused:        c.engine.Paused(),
		Device:        info,
	}
}

// Log writes a snapshot through the logger at info level.
func (s Snapshot) Log(logger log.Logger) {
	logger.Info("system status",
		log.Int64("uptime_s", s.UptimeSeconds),
		log.Int("goroutines", s.Goroutines),
		log.Int64("heap_bytes", int64(s.HeapBytes)),
		log.Uint32("cursor", s.Cursor),
		log.Uint32("cursor_block", s.CursorBlock),
		log.Bool("initialized", s.Initialized),
		log.Bool("paused", s.Paused),
	)
}
