package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskhub/task-service/internal/api/metrics"
	"github.com/taskhub/task-service/internal/core/domain"
	"github.com/taskhub/task-service/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Dispatcher routes notification jobs to a fixed set of workers using
// consistent hashing on the recipient address, guaranteeing per-recipient
// delivery ordering. Delivery is fire-and-forget: failures are logged and
// counted, never retried, never reported to the enqueuer.
type Dispatcher struct {
	workers []chan domain.EmailJob
	mailer  ports.Mailer
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, mailer ports.Mailer, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.EmailJob, numWorkers),
		mailer:  mailer,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.EmailJob, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue sends a job to the worker responsible for its recipient.
// The call is non-blocking up to channelBuffer capacity.
func (d *Dispatcher) Enqueue(job domain.EmailJob) {
	shard := d.shardIndex(job.To)
	d.workers[shard] <- job
	metrics.EmailQueueDepth.WithLabelValues(strconv.Itoa(shard)).Set(float64(len(d.workers[shard])))
}

// shardIndex maps a recipient address deterministically to a worker index.
func (d *Dispatcher) shardIndex(recipient string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(recipient))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.EmailJob) {
	worker := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-ch:
			if !ok {
				return
			}
			d.deliver(ctx, id, job)
			metrics.EmailQueueDepth.WithLabelValues(worker).Set(float64(len(ch)))
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, workerID int, job domain.EmailJob) {
	start := time.Now()
	err := d.mailer.Send(ctx, job)
	metrics.EmailSendDuration.WithLabelValues(string(job.Kind)).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.EmailsSentTotal.WithLabelValues(string(job.Kind), "failure").Inc()
		d.log.Error().Err(err).
			Str("email_id", job.ID).
			Str("kind", string(job.Kind)).
			Int("worker_id", workerID).
			Msg("notification delivery failed")
		return
	}
	metrics.EmailsSentTotal.WithLabelValues(string(job.Kind), "success").Inc()
	d.log.Debug().
		Str("email_id", job.ID).
		Str("kind", string(job.Kind)).
		Int("worker_id", workerID).
		Msg("notification delivered")
}
