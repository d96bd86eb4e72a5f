package stats

import (
	"context"
	"log"
	"time"
)

// AttemptWriter is the append side of an attempt log.
type AttemptWriter interface {
	Append(ctx context.Context, a Attempt) error
}

type job struct {
	player  string
	record  Record
	attempt *Attempt
	reset   bool
}

// Recorder writes stats off the game loop. Submissions never block: when the queue is
// full the write is dropped and logged, the same policy the websocket send buffer uses.
type Recorder struct {
	store    Store
	attempts AttemptWriter
	jobs     chan job
	timeout  time.Duration
}

// NewRecorder returns a recorder writing to store and, when attempts is non-nil, to the
// attempt log.
func NewRecorder(store Store, attempts AttemptWriter, buffer int) *Recorder {
	if buffer <= 0 {
		buffer = 256
	}
	return &Recorder{
		store:    store,
		attempts: attempts,
		jobs:     make(chan job, buffer),
		timeout:  3 * time.Second,
	}
}

func (r *Recorder) Store() Store {
	return r.store
}

// Run processes submissions until ctx is cancelled, then drains what is queued.
func (r *Recorder) Run(ctx context.Context) {
	for {
		select {
		case j := <-r.jobs:
			r.write(j)
		case <-ctx.Done():
			for {
				select {
				case j := <-r.jobs:
					r.write(j)
				default:
					return
				}
			}
		}
	}
}

// Record queues the player's updated record and, if given, the attempt behind it.
func (r *Recorder) Record(player string, rec Record, a *Attempt) {
	r.submit(job{player: player, record: rec, attempt: a})
}

// Reset queues removal of the player's record.
func (r *Recorder) Reset(player string) {
	r.submit(job{player: player, reset: true})
}

func (r *Recorder) submit(j job) {
	select {
	case r.jobs <- j:
	default:
		log.Printf("[STATS] queue full, dropping write for %s", j.player)
	}
}

func (r *Recorder) write(j job) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	if j.reset {
		if err := r.store.Reset(ctx, j.player); err != nil {
			log.Printf("[STATS] reset %s: %v", j.player, err)
		}
		return
	}
	if err := r.store.Save(ctx, j.player, j.record); err != nil {
		log.Printf("[STATS] save %s: %v", j.player, err)
	}
	if j.attempt != nil && r.attempts != nil {
		if err := r.attempts.Append(ctx, *j.attempt); err != nil {
			log.Printf("[STATS] append attempt for %s: %v", j.player, err)
		}
	}
}
