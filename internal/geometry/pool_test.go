package geometry

import (
	"testing"
	"time"
)

func TestPrepPoolProcessesJobs(t *testing.T) {
	pool := NewPrepPool(2, 16)
	defer pool.Shutdown()

	results := make(chan PrepResult, 8)
	for i := 0; i < 8; i++ {
		pool.SubmitJobBlocking(PrepJob{
			Key: i,
			Bucket: Bucket{
				PositionsCompressed: boxSoupQuantized(),
				Indices:             sequentialIndices(36),
			},
			ResultChan: results,
		})
	}

	seen := make(map[int]bool)
	deadline := time.After(5 * time.Second)
	for len(seen) < 8 {
		select {
		case r := <-results:
			if seen[r.Key] {
				t.Fatalf("duplicate result for key %d", r.Key)
			}
			seen[r.Key] = true
			if got := r.Bucket.NumVertices(); got != 8 {
				t.Errorf("key %d: expected 8 unique vertices, got %d", r.Key, got)
			}
			if len(r.Bucket.EdgeIndices) == 0 {
				t.Errorf("key %d: expected derived edge indices", r.Key)
			}
		case <-deadline:
			t.Fatalf("timed out waiting for results, got %d of 8", len(seen))
		}
	}
}

func TestPrepPoolQueueFull(t *testing.T) {
	// Zero workers: nothing drains the queue
	pool := NewPrepPool(0, 1)
	defer pool.Shutdown()

	results := make(chan PrepResult, 2)
	job := PrepJob{Bucket: Bucket{}, ResultChan: results}

	if !pool.SubmitJob(job) {
		t.Fatal("first submit should fit the queue")
	}
	if pool.SubmitJob(job) {
		t.Fatal("second submit should report a full queue")
	}
	if got := pool.GetQueueLength(); got != 1 {
		t.Fatalf("queue length %d, want 1", got)
	}
}

func TestPrepareBucketKeepsExistingEdges(t *testing.T) {
	b := Bucket{
		PositionsCompressed: []uint16{0, 0, 0, 10, 0, 0, 10, 10, 0},
		Indices:             []uint32{0, 1, 2},
		EdgeIndices:         []uint32{0, 1},
	}
	out := PrepareBucket(b)

	// Precomputed edges survive; nothing is derived on top of them
	if len(out.EdgeIndices) != 2 {
		t.Fatalf("edge indices changed: %v", out.EdgeIndices)
	}
}
