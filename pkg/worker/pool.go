package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Hamza-spc/CountryCompare/metric"
)

// Pool runs a fixed number of goroutines that apply one processor to work
// items of type T taken from a bounded queue.
type Pool[T any] struct {
	name      string
	workers   int
	queueSize int
	processor func(context.Context, T) error
	logger    *slog.Logger

	workChan chan T
	metrics  *poolMetrics
	wg       sync.WaitGroup

	lifecycleMu sync.Mutex
	started     bool
	stopped     bool

	// sendMu is held for reading while a submitter sends and for writing
	// while Stop closes the queue.
	sendMu sync.RWMutex

	submitted int64
	processed int64
	failed    int64
	dropped   int64

	metricsRegistry *metric.MetricsRegistry
}

type poolMetrics struct {
	queueDepth     prometheus.Gauge
	submitted      prometheus.Counter
	processed      prometheus.Counter
	failed         prometheus.Counter
	dropped        prometheus.Counter
	processingTime *prometheus.HistogramVec
}

// Option configures a Pool.
type Option[T any] func(*Pool[T])

// WithName labels logs and metrics. Defaults to "worker".
func WithName[T any](name string) Option[T] {
	return func(p *Pool[T]) {
		if name != "" {
			p.name = name
		}
	}
}

// WithLogger sets the logger used for processor failures and panics.
func WithLogger[T any](logger *slog.Logger) Option[T] {
	return func(p *Pool[T]) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithMetricsRegistry exports pool metrics under the pool name.
func WithMetricsRegistry[T any](registry *metric.MetricsRegistry) Option[T] {
	return func(p *Pool[T]) {
		p.metricsRegistry = registry
	}
}

// NewPool creates a pool. Non-positive sizes fall back to 10 workers and a
// queue of 1000. It panics with ErrNilProcessor if processor is nil.
func NewPool[T any](workers, queueSize int, processor func(context.Context, T) error, opts ...Option[T]) *Pool[T] {
	if workers <= 0 {
		workers = 10
	}
	if queueSize <= 0 {
		queueSize = 1000
	}
	if processor == nil {
		panic(ErrNilProcessor)
	}

	pool := &Pool[T]{
		name:      "worker",
		workers:   workers,
		queueSize: queueSize,
		processor: processor,
		logger:    slog.Default(),
		workChan:  make(chan T, queueSize),
	}
	for _, opt := range opts {
		opt(pool)
	}
	pool.logger = pool.logger.With("component", "worker_pool", "pool", pool.name)

	if pool.metricsRegistry != nil {
		pool.initializeMetrics()
	}
	return pool
}

func (p *Pool[T]) initializeMetrics() {
	labels := prometheus.Labels{"pool": p.name}
	opts := func(name, help string) prometheus.Opts {
		return prometheus.Opts{
			Namespace:   metric.Namespace,
			Subsystem:   "worker",
			Name:        name,
			Help:        help,
			ConstLabels: labels,
		}
	}

	m := &poolMetrics{
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts(opts("queue_depth", "Current worker pool queue depth"))),
		submitted:  prometheus.NewCounter(prometheus.CounterOpts(opts("submitted_total", "Work items submitted"))),
		processed:  prometheus.NewCounter(prometheus.CounterOpts(opts("processed_total", "Work items processed"))),
		failed:     prometheus.NewCounter(prometheus.CounterOpts(opts("failed_total", "Work items that failed processing"))),
		dropped:    prometheus.NewCounter(prometheus.CounterOpts(opts("dropped_total", "Work items dropped due to full queue"))),
		processingTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   metric.Namespace,
			Subsystem:   "worker",
			Name:        "processing_duration_seconds",
			Help:        "Time spent processing work items",
			ConstLabels: labels,
			Buckets:     []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"status"}),
	}

	owner := p.metricsOwner()
	errs := []error{
		p.metricsRegistry.RegisterGauge(owner, "queue_depth", m.queueDepth),
		p.metricsRegistry.RegisterCounter(owner, "submitted_total", m.submitted),
		p.metricsRegistry.RegisterCounter(owner, "processed_total", m.processed),
		p.metricsRegistry.RegisterCounter(owner, "failed_total", m.failed),
		p.metricsRegistry.RegisterCounter(owner, "dropped_total", m.dropped),
		p.metricsRegistry.RegisterHistogramVec(owner, "processing_duration_seconds", m.processingTime),
	}
	for _, err := range errs {
		if err != nil {
			p.logger.Warn("Worker pool metrics registration failed", "error", err)
		}
	}
	p.metrics = m
}

func (p *Pool[T]) metricsOwner() string {
	return "worker_pool_" + p.name
}

var poolMetricNames = []string{
	"queue_depth", "submitted_total", "processed_total",
	"failed_total", "dropped_total", "processing_duration_seconds",
}

// unregisterMetrics frees the pool name so a later pool can reuse it.
func (p *Pool[T]) unregisterMetrics() {
	if p.metrics == nil {
		return
	}
	for _, name := range poolMetricNames {
		p.metricsRegistry.Unregister(p.metricsOwner(), name)
	}
}

func (p *Pool[T]) checkRunning() error {
	p.lifecycleMu.Lock()
	defer p.lifecycleMu.Unlock()

	if !p.started {
		return ErrPoolNotStarted
	}
	if p.stopped {
		return ErrPoolStopped
	}
	return nil
}

func (p *Pool[T]) accepted() {
	atomic.AddInt64(&p.submitted, 1)
	if p.metrics != nil {
		p.metrics.submitted.Inc()
		p.metrics.queueDepth.Set(float64(len(p.workChan)))
	}
}

// Submit queues work without blocking. It returns ErrQueueFull when the queue
// is at capacity.
func (p *Pool[T]) Submit(work T) error {
	p.sendMu.RLock()
	defer p.sendMu.RUnlock()

	if err := p.checkRunning(); err != nil {
		return err
	}

	select {
	case p.workChan <- work:
		p.accepted()
		return nil
	default:
		atomic.AddInt64(&p.dropped, 1)
		if p.metrics != nil {
			p.metrics.dropped.Inc()
		}
		return ErrQueueFull
	}
}

// SubmitWait queues work, blocking while the queue is full until ctx is done.
func (p *Pool[T]) SubmitWait(ctx context.Context, work T) error {
	p.sendMu.RLock()
	defer p.sendMu.RUnlock()

	if err := p.checkRunning(); err != nil {
		return err
	}

	select {
	case p.workChan <- work:
		p.accepted()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Start launches the workers. They exit when ctx is cancelled or Stop drains
// the queue.
func (p *Pool[T]) Start(ctx context.Context) error {
	p.lifecycleMu.Lock()
	defer p.lifecycleMu.Unlock()

	if p.started {
		return ErrPoolAlreadyStarted
	}

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(ctx)
	}
	p.started = true
	return nil
}

// Stop closes the queue and waits up to timeout for queued work to finish.
// Stopping an unstarted or stopped pool is a no-op.
func (p *Pool[T]) Stop(timeout time.Duration) error {
	p.lifecycleMu.Lock()
	if !p.started || p.stopped {
		p.lifecycleMu.Unlock()
		return nil
	}
	p.stopped = true
	p.lifecycleMu.Unlock()

	p.sendMu.Lock()
	close(p.workChan)
	p.sendMu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	defer p.unregisterMetrics()

	select {
	case <-done:
		return nil
	case <-timer.C:
		return ErrStopTimeout
	}
}

// Stats returns a snapshot of the pool counters.
func (p *Pool[T]) Stats() PoolStats {
	return PoolStats{
		Workers:    p.workers,
		QueueSize:  p.queueSize,
		QueueDepth: len(p.workChan),
		Submitted:  atomic.LoadInt64(&p.submitted),
		Processed:  atomic.LoadInt64(&p.processed),
		Failed:     atomic.LoadInt64(&p.failed),
		Dropped:    atomic.LoadInt64(&p.dropped),
	}
}

// PoolStats represents worker pool statistics
type PoolStats struct {
	Workers    int   `json:"workers"`
	QueueSize  int   `json:"queue_size"`
	QueueDepth int   `json:"queue_depth"`
	Submitted  int64 `json:"submitted"`
	Processed  int64 `json:"processed"`
	Failed     int64 `json:"failed"`
	Dropped    int64 `json:"dropped"`
}

func (p *Pool[T]) worker(ctx context.Context) {
	defer p.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case work, ok := <-p.workChan:
			if !ok {
				return
			}
			p.process(ctx, work)
		}
	}
}

func (p *Pool[T]) process(ctx context.Context, work T) {
	start := time.Now()
	err := p.safeProcess(ctx, work)
	duration := time.Since(start)

	atomic.AddInt64(&p.processed, 1)
	status := "success"
	if err != nil {
		atomic.AddInt64(&p.failed, 1)
		status = "error"
		p.logger.Debug("Work item failed", "error", err)
	}

	if p.metrics != nil {
		p.metrics.processed.Inc()
		if err != nil {
			p.metrics.failed.Inc()
		}
		p.metrics.processingTime.WithLabelValues(status).Observe(duration.Seconds())
		p.metrics.queueDepth.Set(float64(len(p.workChan)))
	}
}

func (p *Pool[T]) safeProcess(ctx context.Context, work T) (err error) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("Work item panicked", "panic", r)
			err = fmt.Errorf("%w: %v", ErrProcessorPanic, r)
		}
	}()
	return p.processor(ctx, work)
}

// Run starts a pool, feeds it every item and waits for all of them to be
// processed. Items are not processed once ctx is cancelled.
func Run[T any](ctx context.Context, workers int, items []T, processor func(context.Context, T) error, opts ...Option[T]) (PoolStats, error) {
	pool := NewPool(workers, workers, processor, opts...)
	if err := pool.Start(ctx); err != nil {
		return PoolStats{}, err
	}

	var submitErr error
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			submitErr = err
			break
		}
		if err := pool.SubmitWait(ctx, item); err != nil {
			submitErr = err
			break
		}
	}

	// Workers exit on their own once ctx is done, so no deadline is needed.
	if err := pool.Stop(24 * time.Hour); err != nil && submitErr == nil {
		submitErr = err
	}
	return pool.Stats(), submitErr
}
