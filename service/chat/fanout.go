package chat

import (
	"sync"
)

type fanoutJob struct {
	conns   []*Client
	payload []byte
}

// Fanout delivers one payload to many connections through a small worker
// pool. Enqueue onto a client is non-blocking: a slow client misses the
// event rather than stalling everyone else.
type Fanout struct {
	jobs      chan fanoutJob
	closeOnce sync.Once
	wg        sync.WaitGroup
}

func NewFanout(workers, queue int) *Fanout {
	if workers <= 0 {
		workers = 1
	}
	f := &Fanout{jobs: make(chan fanoutJob, queue)}
	f.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer f.wg.Done()
			for job := range f.jobs {
				for _, c := range job.conns {
					c.Enqueue(job.payload)
				}
			}
		}()
	}
	return f
}

func (f *Fanout) Broadcast(conns []*Client, payload []byte) {
	if len(conns) == 0 || len(payload) == 0 {
		return
	}
	f.jobs <- fanoutJob{conns: conns, payload: payload}
}

// Close stops the workers after the queued jobs drain.
func (f *Fanout) Close() {
	f.closeOnce.Do(func() { close(f.jobs) })
	f.wg.Wait()
}
