// Package tasks runs checkout asynchronously. Clients get a task id back
// immediately and poll it; a per-key mutual-exclusion lock guarantees at most
// one in-flight task per user, so a double-clicked checkout cannot race
// itself past the stock check.
package tasks

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"stitchline/internal/metrics"
)

// ErrAlreadyQueued is returned when the key already has an in-flight task.
var ErrAlreadyQueued = errors.New("task already queued for this key")

// ErrSaturated is returned when the job buffer is full. The caller should
// retry; nothing was reserved for the key.
var ErrSaturated = errors.New("task queue is full")

const (
	StatePending = "pending"
	StateSuccess = "success"
	StateFailure = "failure"
)

// Result is what pollers see. Value holds the task's payload on success,
// Err its failure on failure.
type Result struct {
	State string
	Value any
	Err   error
	done  time.Time
}

type job struct {
	id  string
	key string
	fn  func() (any, error)
}

type Queue struct {
	mu       sync.Mutex
	inflight map[string]struct{} // keys with a queued or running task
	results  map[string]*Result
	jobs     chan job
	wg       sync.WaitGroup
	closed   bool
	met      *metrics.Registry
	retain   time.Duration
}

// New starts a queue with the given number of workers. met may be nil.
func New(workers int, met *metrics.Registry) *Queue {
	if workers <= 0 {
		workers = 1
	}
	q := &Queue{
		inflight: map[string]struct{}{},
		results:  map[string]*Result{},
		jobs:     make(chan job, 64),
		met:      met,
		retain:   time.Hour,
	}
	for i := 0; i < workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}
	return q
}

// Enqueue schedules fn under key. Only one task per key may be queued or
// running; a second attempt gets ErrAlreadyQueued. When the job buffer is
// full Enqueue fails fast with ErrSaturated instead of blocking, since the
// workers need the same mutex to finish a job and free a slot. The key is
// released when the task finishes, success or failure.
func (q *Queue) Enqueue(key string, fn func() (any, error)) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return "", errors.New("queue closed")
	}
	if _, busy := q.inflight[key]; busy {
		return "", ErrAlreadyQueued
	}

	q.pruneLocked()

	id := uuid.NewString()
	q.inflight[key] = struct{}{}
	q.results[id] = &Result{State: StatePending}
	select {
	case q.jobs <- job{id: id, key: key, fn: fn}:
	default:
		delete(q.inflight, key)
		delete(q.results, id)
		return "", ErrSaturated
	}
	return id, nil
}

// Get returns the result for a task id; ok is false for unknown ids.
func (q *Queue) Get(taskID string) (Result, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	r, ok := q.results[taskID]
	if !ok {
		return Result{}, false
	}
	return *r, true
}

// Close stops accepting work and waits for running tasks to finish.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.jobs)
	q.mu.Unlock()
	q.wg.Wait()
}

func (q *Queue) worker() {
	defer q.wg.Done()
	for j := range q.jobs {
		start := time.Now()
		val, err := j.fn()

		q.mu.Lock()
		delete(q.inflight, j.key)
		r := q.results[j.id]
		r.done = time.Now()
		if err != nil {
			r.State = StateFailure
			r.Err = err
		} else {
			r.State = StateSuccess
			r.Value = val
		}
		state := r.State
		q.mu.Unlock()

		if q.met != nil {
			q.met.CheckoutTasks.WithLabelValues(state).Inc()
			q.met.CheckoutSeconds.Observe(time.Since(start).Seconds())
		}
	}
}

// pruneLocked drops finished results past the retention window. Callers hold mu.
func (q *Queue) pruneLocked() {
	cutoff := time.Now().Add(-q.retain)
	for id, r := range q.results {
		if r.State != StatePending && r.done.Before(cutoff) {
			delete(q.results, id)
		}
	}
}
