// Package worker provides a generic, bounded worker pool.
//
// A Pool runs a fixed number of goroutines that apply one processor function
// to work items of any type taken from a buffered queue:
//
//	pool := worker.NewPool(4, 100, func(ctx context.Context, name string) error {
//		return refresh(ctx, name)
//	}, worker.WithName[string]("refresh"))
//	if err := pool.Start(ctx); err != nil {
//		return err
//	}
//	defer pool.Stop(5 * time.Second)
//
// Submit never blocks and reports ErrQueueFull when the queue is at capacity.
// SubmitWait blocks until there is room or its context is done. Stop closes
// the queue and waits for queued items to finish; items submitted afterwards
// are rejected with ErrPoolStopped.
//
// A panicking processor is recovered and counted as a failure wrapping
// ErrProcessorPanic, so one bad item cannot take down the process.
//
// Run is the one-shot form used by refresh fan-outs: it starts a pool, feeds
// every item and returns the final Stats.
//
// Statistics are always tracked with atomics. WithMetricsRegistry additionally
// exports them as Prometheus metrics labelled with the pool name while the
// pool runs. Stop unregisters them so the next pool can reuse the name.
package worker
