package queue

import (
	"context"
	"hash/fnv"

	"github.com/rs/zerolog"

	"github.com/deliverly/marketplace-api/internal/api/metrics"
	"github.com/deliverly/marketplace-api/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Dispatcher fans security audit events out to a fixed set of workers,
// sharded by subject so one subject's events are persisted in the order
// they occurred. Enqueue never blocks the request path: when a worker's
// buffer is full the event is dropped and counted.
type Dispatcher struct {
	workers []chan ports.SecurityEvent
	service ports.AuditService
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, service ports.AuditService, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan ports.SecurityEvent, numWorkers),
		service: service,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.SecurityEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue hands an event to the worker responsible for its subject.
func (d *Dispatcher) Enqueue(event ports.SecurityEvent) {
	select {
	case d.workers[d.shardIndex(event.Subject)] <- event:
	default:
		metrics.AuditEventsTotal.WithLabelValues("dropped").Inc()
	}
}

// shardIndex maps a subject deterministically to a worker index.
func (d *Dispatcher) shardIndex(subject string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(subject))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.SecurityEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			if err := d.service.Process(ctx, event); err != nil {
				metrics.AuditEventsTotal.WithLabelValues("error").Inc()
				d.log.Error().Err(err).
					Str("action", event.Action).
					Int("worker_id", id).
					Msg("audit event processing failed")
			} else {
				metrics.AuditEventsTotal.WithLabelValues("stored").Inc()
			}
		}
	}
}
