package queue

import (
	"context"
	"errors"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/thynetwork/timeclock/internal/api/metrics"
	"github.com/thynetwork/timeclock/internal/core/ports"
)

const (
	defaultWorkers = 8
	channelBuffer  = 256
)

// ErrStopped is returned by Do once the dispatcher's context is cancelled.
var ErrStopped = errors.New("dispatcher stopped")

var _ ports.KeyedSerializer = (*Dispatcher)(nil)

type job struct {
	ctx  context.Context
	key  string
	fn   func(ctx context.Context) error
	done chan error
}

// Dispatcher routes work to a fixed set of workers using consistent hashing on
// the key, so jobs sharing a key run one at a time in arrival order.
type Dispatcher struct {
	workers []chan job
	stopped chan struct{}
	stop    sync.Once
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan job, numWorkers),
		stopped: make(chan struct{}),
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan job, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
	go func() {
		<-ctx.Done()
		d.stop.Do(func() { close(d.stopped) })
	}()
}

// Do enqueues fn on the worker responsible for key and waits for its result.
// A job whose ctx is done before it is dequeued is skipped.
func (d *Dispatcher) Do(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	j := job{ctx: ctx, key: key, fn: fn, done: make(chan error, 1)}
	idx := d.shardIndex(key)

	select {
	case d.workers[idx] <- j:
		metrics.ClockQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	case <-ctx.Done():
		return ctx.Err()
	case <-d.stopped:
		return ErrStopped
	}

	select {
	case err := <-j.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-d.stopped:
		return ErrStopped
	}
}

// shardIndex maps a key deterministically to a worker index.
func (d *Dispatcher) shardIndex(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan job) {
	label := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case j, ok := <-ch:
			if !ok {
				return
			}
			metrics.ClockQueueDepth.WithLabelValues(label).Set(float64(len(ch)))

			if err := j.ctx.Err(); err != nil {
				j.done <- err
				continue
			}

			start := time.Now()
			err := d.run(j)
			metrics.ClockActionDuration.Observe(time.Since(start).Seconds())
			if err != nil {
				d.log.Debug().Err(err).
					Str("key", j.key).
					Int("worker_id", id).
					Msg("serialized job returned error")
			}
			j.done <- err
		}
	}
}

// run shields the worker from a panicking job.
func (d *Dispatcher) run(j job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error().Interface("panic", r).Str("key", j.key).Msg("serialized job panicked")
			err = errors.New("serialized job panicked")
		}
	}()
	return j.fn(j.ctx)
}
