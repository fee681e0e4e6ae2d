package renderer

import (
	"runtime"
	"sync"
)

// rowPhase selects which half of a frame a row task performs
type rowPhase int

const (
	phaseTrace     rowPhase = iota // Trace one native sample row
	phaseDownscale                 // Reduce one output row from the native buffer
)

// RowTask represents one row of work for the worker pool
type RowTask struct {
	Job    *frameJob
	Phase  rowPhase
	Row    int
	TaskID int // For deterministic ordering
}

// RowResult contains the result from processing a row
type RowResult struct {
	TaskID  int
	Samples int // Primary rays traced, zero for downscale rows
}

// WorkerPool manages parallel row processing across frames
type WorkerPool struct {
	taskQueue   chan RowTask
	resultQueue chan RowResult
	workers     []*Worker
	numWorkers  int
	wg          sync.WaitGroup
	stopOnce    sync.Once
}

// Worker handles individual row tasks
type Worker struct {
	ID          int
	taskQueue   chan RowTask
	resultQueue chan RowResult
}

// DefaultWorkerCount leaves one CPU for the consumer of rendered frames
func DefaultWorkerCount() int {
	return max(1, runtime.NumCPU()-1)
}

// NewWorkerPool creates a worker pool with the specified number of workers.
// Non-positive counts use DefaultWorkerCount and no more than runtime.NumCPU workers are created.
func NewWorkerPool(numWorkers int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = DefaultWorkerCount()
	}
	numWorkers = min(numWorkers, runtime.NumCPU())

	wp := &WorkerPool{
		taskQueue:   make(chan RowTask, numWorkers*4),
		resultQueue: make(chan RowResult, numWorkers*4),
		numWorkers:  numWorkers,
	}

	for i := 0; i < numWorkers; i++ {
		worker := &Worker{
			ID:          i,
			taskQueue:   wp.taskQueue,
			resultQueue: wp.resultQueue,
		}
		wp.workers = append(wp.workers, worker)
	}

	return wp
}

// Start begins all workers
func (wp *WorkerPool) Start() {
	for _, worker := range wp.workers {
		wp.wg.Add(1)
		go worker.run(&wp.wg)
	}
}

// Stop gracefully shuts down all workers. It is safe to call more than once.
func (wp *WorkerPool) Stop() {
	wp.stopOnce.Do(func() {
		close(wp.taskQueue) // No more tasks
		wp.wg.Wait()        // Wait for workers to finish
		close(wp.resultQueue)
	})
}

// Execute runs every task and blocks until all results are in.
// Results are returned indexed by TaskID.
func (wp *WorkerPool) Execute(tasks []RowTask) []RowResult {
	results := make([]RowResult, len(tasks))

	// Submit from a separate goroutine so bounded queues cannot deadlock
	go func() {
		for _, task := range tasks {
			wp.taskQueue <- task
		}
	}()

	for range tasks {
		result := <-wp.resultQueue
		results[result.TaskID] = result
	}

	return results
}

// GetNumWorkers returns the number of workers in the pool
func (wp *WorkerPool) GetNumWorkers() int {
	return wp.numWorkers
}

// run is the main worker loop
func (w *Worker) run(wg *sync.WaitGroup) {
	defer wg.Done()

	for task := range w.taskQueue {
		// Rows write disjoint regions of the frame buffers
		result := RowResult{TaskID: task.TaskID}
		switch task.Phase {
		case phaseTrace:
			result.Samples = task.Job.traceRow(task.Row)
		case phaseDownscale:
			task.Job.downscaleRow(task.Row)
		}

		w.resultQueue <- result
	}
}
