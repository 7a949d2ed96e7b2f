package geometry

import (
	"context"
	"sync"
)

// PrepJob represents one bucket-preparation request: deduplicate positions,
// remap indices and derive edge indices when the bucket has none.
type PrepJob struct {
	Key    int
	Bucket Bucket
	// Result channel - will be sent the result when done
	ResultChan chan PrepResult
}

// PrepResult contains the result of a bucket-preparation job
type PrepResult struct {
	Key    int
	Bucket Bucket
}

// PrepPool manages goroutines preparing buckets before they enter a layer.
// Layers themselves are single-threaded; only this up-front geometry work
// is parallel.
type PrepPool struct {
	jobQueue chan PrepJob
	workers  int
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// NewPrepPool creates a new bucket-preparation pool
func NewPrepPool(workers int, queueSize int) *PrepPool {
	ctx, cancel := context.WithCancel(context.Background())

	pool := &PrepPool{
		jobQueue: make(chan PrepJob, queueSize),
		workers:  workers,
		ctx:      ctx,
		cancel:   cancel,
	}

	for i := 0; i < workers; i++ {
		pool.wg.Add(1)
		go pool.worker()
	}

	return pool
}

// SubmitJob submits a preparation job to the pool.
// Returns true if the job was queued, false if the queue is full.
func (p *PrepPool) SubmitJob(job PrepJob) bool {
	select {
	case p.jobQueue <- job:
		return true
	default:
		return false
	}
}

// SubmitJobBlocking submits a job and blocks until it's queued
func (p *PrepPool) SubmitJobBlocking(job PrepJob) {
	select {
	case p.jobQueue <- job:
	case <-p.ctx.Done():
	}
}

func (p *PrepPool) worker() {
	defer p.wg.Done()

	for {
		select {
		case job := <-p.jobQueue:
			prepared := PrepareBucket(job.Bucket)

			select {
			case job.ResultChan <- PrepResult{Key: job.Key, Bucket: prepared}:
			case <-p.ctx.Done():
				return
			}

		case <-p.ctx.Done():
			return
		}
	}
}

// Shutdown gracefully shuts down the pool
func (p *PrepPool) Shutdown() {
	p.cancel()
	close(p.jobQueue)
	p.wg.Wait()
}

// GetQueueLength returns the current number of jobs in the queue
func (p *PrepPool) GetQueueLength() int {
	return len(p.jobQueue)
}

// PrepareBucket runs the synchronous preparation pipeline for one bucket:
// position deduplication plus edge derivation for buckets without edges.
func PrepareBucket(b Bucket) Bucket {
	out := UniquifyBucket(b)
	if len(out.EdgeIndices) == 0 && len(out.Indices) > 0 {
		out.EdgeIndices = BuildEdgeIndices(out.Indices)
	}
	return out
}
