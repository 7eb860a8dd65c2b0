package telemetry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/rzbill/ringlog/internal/record"
	"github.com/rzbill/ringlog/internal/ring"
	"github.com/rzbill/ringlog/pkg/log"
)

// Source produces the fields of one telemetry record per sample.
type Source interface {
	Name() string
	Sample() []string
}

// Options configures a Producer.
type Options struct {
	Source   Source
	Interval time.Duration
	Logger   log.Logger
}

// Stats counts producer outcomes, mostly for tests and status.
type Stats struct {
	Appended int
	Skipped  int // paused ticks
	Failed   int // device or encoding failures
}

// Producer periodically samples a Source, frames the fields as a
// fixed-width record, and appends it to the ring. It is the single logical
// writer the engine is designed around.
//
// A paused engine is not an error: the tick is skipped and sampling
// resumes on the next one. Device failures are logged and dropped; the
// ring gives no durability promise for a record that failed to land, and
// retrying against block-erasable storage only adds wear.
type Producer struct {
	engine   *ring.Engine
	source   Source
	interval time.Duration
	logger   log.Logger

	mu    sync.Mutex
	stats Stats
}

// New builds a Producer over the engine.
func New(engine *ring.Engine, opts Options) (*Producer, error) {
	if opts.Source == nil {
		return nil, errors.New("telemetry: source required")
	}
	if opts.Interval <= 0 {
		return nil, errors.New("telemetry: interval must be > 0")
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.NewLogger(log.WithLevel(log.ErrorLevel))
	}
	return &Producer{
		engine:   engine,
		source:   opts.Source,
		interval: opts.Interval,
		logger:   logger,
	}, nil
}

// Run blocks until ctx is cancelled. It waits for the engine to become
// ready before the first sample rather than spinning on Initialized.
func (p *Producer) Run(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-p.engine.Ready():
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.tick()
		}
	}
}

func (p *Producer) tick() {
	fields := append([]string{p.source.Name()}, p.source.Sample()...)
	page, err := record.Encode(fields...)
	if err != nil {
		p.count(func(s *Stats) { s.Failed++ })
		p.logger.Error("encode record", log.Err(err))
		return
	}
	err = p.engine.Append(page)
	switch {
	case err == nil:
		p.count(func(s *Stats) { s.Appended++ })
	case errors.Is(err, ring.ErrPaused):
		p.count(func(s *Stats) { s.Skipped++ })
		p.logger.Debug("append skipped, ring paused")
	default:
		p.count(func(s *Stats) { s.Failed++ })
		p.logger.Error("append failed", log.Err(err))
	}
}

func (p *Producer) count(f func(*Stats)) {
	p.mu.Lock()
	f(&p.stats)
	p.mu.Unlock()
}

// Stats returns a snapshot of the producer counters.
func (p *Producer) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

// SimSource is the default telemetry source: a monotonically numbered
// reading with the sample time and a smoothly varying synthetic value.
// Payload content is irrelevant to the engine; this exists so a fresh
// deployment writes something inspectable.
type SimSource struct {
	name    string
	started time.Time
	seq     uint64
}

// NewSimSource returns a SimSource with the given record name.
func NewSimSource(name string) *SimSource {
	if name == "" {
		name = "telemetry"
	}
	return &SimSource{name: name, started: time.Now()}
}

// Name implements Source.
func (s *SimSource) Name() string { return s.name }

// Sample implements Source.
func (s *SimSource) Sample() []string {
	s.seq++
	elapsed := time.Since(s.started)
	value := 20.0 + 5.0*math.Sin(elapsed.Seconds()/30.0)
	return []string{
		strconv.FormatUint(s.seq, 10),
		strconv.FormatInt(elapsed.Milliseconds(), 10),
		fmt.Sprintf("%.3f", value),
	}
}
