package journal

import (
	"context"
	"log"
	"sync"

	"github.com/openexch/marketd/internal/events"
)

// Recorder subscribes to a publisher and appends every event to a journal on
// its own goroutine, keeping journal latency off the ledger's path.
type Recorder struct {
	journal *Journal
	cancel  func()
	wg      sync.WaitGroup
}

// NewRecorder starts recording the publisher's events into the journal.
func NewRecorder(journal *Journal, pub *events.Publisher) *Recorder {
	ch, cancel := pub.Subscribe()
	r := &Recorder{journal: journal, cancel: cancel}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		for ev := range ch {
			if err := r.journal.Append(context.Background(), ev); err != nil {
				log.Printf("journal: failed to record %s event seq=%d: %v", ev.Type, ev.Seq, err)
			}
		}
	}()
	return r
}

// Close stops recording and waits for the in-flight append to finish. The
// journal itself stays open.
func (r *Recorder) Close() {
	r.cancel()
	r.wg.Wait()
}
