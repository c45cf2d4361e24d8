package tasks_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"stitchline/internal/tasks"
)

func wait(t *testing.T, q *tasks.Queue, id string) tasks.Result {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		res, ok := q.Get(id)
		if !ok {
			t.Fatalf("task %s disappeared", id)
		}
		if res.State != tasks.StatePending {
			return res
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("task %s never finished", id)
	return tasks.Result{}
}

func TestQueue_RunsAndReportsResult(t *testing.T) {
	q := tasks.New(2, nil)
	defer q.Close()

	id, err := q.Enqueue("alice", func() (any, error) { return 42, nil })
	if err != nil {
		t.Fatal(err)
	}

	res := wait(t, q, id)
	if res.State != tasks.StateSuccess {
		t.Fatalf("want success, got %s (%v)", res.State, res.Err)
	}
	if v, _ := res.Value.(int); v != 42 {
		t.Fatalf("want value 42, got %v", res.Value)
	}
}

func TestQueue_OneInFlightPerKey(t *testing.T) {
	q := tasks.New(2, nil)
	defer q.Close()

	release := make(chan struct{})
	id1, err := q.Enqueue("alice", func() (any, error) {
		<-release
		return nil, nil
	})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := q.Enqueue("alice", func() (any, error) { return nil, nil }); !errors.Is(err, tasks.ErrAlreadyQueued) {
		t.Fatalf("want ErrAlreadyQueued for same key, got %v", err)
	}

	// a different key is not blocked
	id2, err := q.Enqueue("bob", func() (any, error) { return nil, nil })
	if err != nil {
		t.Fatal(err)
	}
	wait(t, q, id2)

	close(release)
	wait(t, q, id1)

	// the key is free again after completion
	if _, err := q.Enqueue("alice", func() (any, error) { return nil, nil }); err != nil {
		t.Fatalf("key should be released, got %v", err)
	}
}

func TestQueue_FailureReleasesKeyAndKeepsError(t *testing.T) {
	q := tasks.New(1, nil)
	defer q.Close()

	boom := errors.New("boom")
	id, err := q.Enqueue("alice", func() (any, error) { return nil, boom })
	if err != nil {
		t.Fatal(err)
	}

	res := wait(t, q, id)
	if res.State != tasks.StateFailure || !errors.Is(res.Err, boom) {
		t.Fatalf("want failure with cause, got %s (%v)", res.State, res.Err)
	}

	// a failed task must not wedge the key
	if _, err := q.Enqueue("alice", func() (any, error) { return nil, nil }); err != nil {
		t.Fatalf("key should be released after failure, got %v", err)
	}
}

func TestQueue_SaturationFailsFastAndStaysResponsive(t *testing.T) {
	q := tasks.New(1, nil)
	defer q.Close()

	release := make(chan struct{})
	first, err := q.Enqueue("worker-hog", func() (any, error) {
		<-release
		return nil, nil
	})
	if err != nil {
		t.Fatal(err)
	}

	// with the only worker parked, pile distinct keys onto the buffer until
	// the queue refuses one outright instead of blocking
	var ids []string
	saturatedKey := ""
	for i := 0; i < 1000; i++ {
		key := fmt.Sprintf("u-%03d", i)
		id, err := q.Enqueue(key, func() (any, error) { return nil, nil })
		if errors.Is(err, tasks.ErrSaturated) {
			saturatedKey = key
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, id)
	}
	if saturatedKey == "" {
		t.Fatal("queue never reported saturation")
	}

	// polling must not wedge while the buffer is full
	done := make(chan struct{})
	go func() {
		defer close(done)
		if res, ok := q.Get(first); !ok || res.State != tasks.StatePending {
			t.Errorf("want pending first task, got ok=%v state=%q", ok, res.State)
		}
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Get blocked while the queue was saturated")
	}

	close(release)
	wait(t, q, first)
	for _, id := range ids {
		wait(t, q, id)
	}

	// the rejected key reserved nothing and may try again once slots free up
	id, err := q.Enqueue(saturatedKey, func() (any, error) { return nil, nil })
	if err != nil {
		t.Fatal(err)
	}
	wait(t, q, id)
}

func TestQueue_UnknownTaskID(t *testing.T) {
	q := tasks.New(1, nil)
	defer q.Close()

	if _, ok := q.Get("nope"); ok {
		t.Fatal("unknown task id should not resolve")
	}
}
