package batch

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"breachsim/internal/logging"
)

// runPool feeds run indexes to a fixed set of goroutines. Each index is
// handed to exec exactly once unless ctx is cancelled first.
type runPool struct {
	ctx    context.Context
	exec   func(index int)
	jobs   chan int
	wg     sync.WaitGroup
	panics atomic.Int64
}

func startRunPool(ctx context.Context, workers int, exec func(index int)) *runPool {
	if workers <= 0 {
		workers = 1
	}
	p := &runPool{
		ctx:  ctx,
		exec: exec,
		jobs: make(chan int, workers),
	}
	p.wg.Add(workers)
	for w := 0; w < workers; w++ {
		go p.work()
	}
	return p
}

func (p *runPool) work() {
	defer p.wg.Done()
	for index := range p.jobs {
		if p.ctx.Err() != nil {
			continue
		}
		p.runOne(index)
	}
}

func (p *runPool) runOne(index int) {
	defer func() {
		if r := recover(); r != nil {
			p.panics.Add(1)
			logging.LogError("Batch run panicked", fmt.Errorf("%v", r), map[string]interface{}{
				"run_index": index,
			})
		}
	}()
	p.exec(index)
}

// schedule queues a run. It reports false once ctx is cancelled.
func (p *runPool) schedule(index int) bool {
	select {
	case <-p.ctx.Done():
		return false
	case p.jobs <- index:
		return true
	}
}

// drain stops accepting runs, waits for the queued ones and returns how many
// of them panicked. It must be called exactly once.
func (p *runPool) drain() int64 {
	close(p.jobs)
	p.wg.Wait()
	return p.panics.Load()
}
