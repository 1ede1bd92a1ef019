package container

import (
	"runtime"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
)

// Pool runs submitted functions on background goroutines.
type Pool interface {
	// Submit schedules fn. It may block while the pool's queue is full.
	Submit(fn func())
}

// workerPool is a Pool backed by a dynamic worker pool whose idle workers exit
// after a timeout.
type workerPool struct {
	pool   worker.DynamicWorkerPool
	nextID atomic.Int64
}

var _ Pool = &workerPool{}

// NewPool creates a Pool with up to workers goroutines. Values below 1 select
// runtime.NumCPU().
//
// Parameters:
//   - workers: the maximum number of concurrent workers
//
// Returns:
//   - Pool: the pool
func NewPool(workers int) Pool {
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	return &workerPool{
		pool: worker.NewDynamicWorkerPool(workers, 64, 1*time.Second),
	}
}

func (p *workerPool) Submit(fn func()) {
	id := int(p.nextID.Add(1))
	p.pool.SubmitTask(worker.Task{
		ID: id,
		Do: func() (any, error) {
			fn()
			return nil, nil
		},
	})
}
