package status

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rzbill/ringlog/internal/flash"
	"github.com/rzbill/ringlog/internal/ring"
	"github.com/rzbill/ringlog/pkg/log"
)

func newTestCollector(t *testing.T) (*Collector, *ring.Engine) {
	t.Helper()
	dev := flash.NewMem(flash.Geometry{Capacity: 16, BlockSize: 4})
	e, err := ring.New(dev, ring.Options{})
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	return NewCollector(e), e
}

func TestCollectReflectsEngineState(t *testing.T) {
	c, e := newTestCollector(t)

	s := c.Collect()
	if s.Initialized || s.Paused || s.Cursor != 0 {
		t.Fatalf("fresh snapshot: %+v", s)
	}
	if s.Device.Capacity != 16 || s.Device.Blocks != 4 {
		t.Fatalf("device info: %+v", s.Device)
	}

	e.Reset()
	if err := e.Append([]byte{1, 2, 3, 4}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := e.Append([]byte{5}); err != nil {
		t.Fatalf("append: %v", err)
	}
	e.Pause()

	s = c.Collect()
	if !s.Initialized || !s.Paused {
		t.Fatalf("snapshot flags: %+v", s)
	}
	if s.Cursor != 5 || s.CursorBlock != 1 {
		t.Fatalf("cursor fields: %+v", s)
	}
	if s.Goroutines <= 0 || s.HeapBytes == 0 {
		t.Fatalf("runtime fields: %+v", s)
	}
}

func TestMonitorLogsSnapshots(t *testing.T) {
	c, _ := newTestCollector(t)
	var buf bytes.Buffer
	logger := log.NewLogger(
		log.WithLevel(log.InfoLevel),
		log.WithFormatter(&log.TextFormatter{}),
		log.WithOutput(log.NewWriterOutput(&buf)),
	)
	m := NewMonitor(c, 10*time.Millisecond, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 80*time.Millisecond)
	defer cancel()
	m.Run(ctx)

	if !strings.Contains(buf.String(), "system status") {
		t.Fatalf("no status entries logged: %q", buf.String())
	}
}
