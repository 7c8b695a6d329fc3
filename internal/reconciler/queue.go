package reconciler

import (
	"context"
	"sync"
	"time"

	"sigs.k8s.io/controller-runtime/pkg/client"
)

// Queue is a de-duplicating work queue of object keys.
type Queue interface {
	// Add adds a key to the queue. A key that is already queued is not
	// added twice; a key that is being processed is queued again once
	// Done is called for it.
	Add(key client.ObjectKey)

	// Get retrieves the next key from the queue.
	// Blocks until a key is available, the queue shuts down or the context is cancelled.
	Get(ctx context.Context) (client.ObjectKey, bool)

	// Done marks a key as processed.
	Done(key client.ObjectKey)

	// Len returns the current queue length.
	Len() int

	// Shutdown signals the queue to stop accepting new items.
	Shutdown()
}

// workQueue implements Queue with deduplication.
type workQueue struct {
	mu sync.Mutex

	// queue holds keys in FIFO order
	queue []client.ObjectKey

	// queued mirrors queue for constant time lookups
	queued map[client.ObjectKey]bool

	// processing tracks keys currently being processed
	processing map[client.ObjectKey]bool

	// dirty tracks keys that need reprocessing
	dirty map[client.ObjectKey]bool

	// cond is used for blocking Get operations
	cond *sync.Cond

	// shuttingDown indicates the queue is stopping
	shuttingDown bool
}

// NewQueue creates a new reconciliation queue.
func NewQueue() Queue {
	q := &workQueue{
		queue:      make([]client.ObjectKey, 0),
		queued:     make(map[client.ObjectKey]bool),
		processing: make(map[client.ObjectKey]bool),
		dirty:      make(map[client.ObjectKey]bool),
	}
	q.cond = sync.NewCond(&q.mu)
	return q
}

func (q *workQueue) Add(key client.ObjectKey) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.shuttingDown {
		return
	}

	// If already being processed, mark as dirty for reprocessing
	if q.processing[key] {
		q.dirty[key] = true
		return
	}

	if q.queued[key] {
		return
	}

	q.queue = append(q.queue, key)
	q.queued[key] = true
	q.cond.Signal()
}

func (q *workQueue) Get(ctx context.Context) (client.ObjectKey, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.queue) == 0 && !q.shuttingDown {
		select {
		case <-ctx.Done():
			return client.ObjectKey{}, false
		default:
		}

		// Wake the waiter when the context is cancelled. Closing done
		// releases the goroutine after a normal wakeup.
		done := make(chan struct{})
		go func() {
			select {
			case <-ctx.Done():
				q.mu.Lock()
				q.cond.Broadcast()
				q.mu.Unlock()
			case <-done:
			}
		}()

		q.cond.Wait()
		close(done)

		select {
		case <-ctx.Done():
			return client.ObjectKey{}, false
		default:
		}
	}

	if q.shuttingDown && len(q.queue) == 0 {
		return client.ObjectKey{}, false
	}

	key := q.queue[0]
	q.queue = q.queue[1:]
	delete(q.queued, key)
	q.processing[key] = true

	return key, true
}

func (q *workQueue) Done(key client.ObjectKey) {
	q.mu.Lock()
	defer q.mu.Unlock()

	delete(q.processing, key)

	if q.dirty[key] {
		delete(q.dirty, key)
		if q.shuttingDown || q.queued[key] {
			return
		}
		q.queue = append(q.queue, key)
		q.queued[key] = true
		q.cond.Signal()
	}
}

func (q *workQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.queue)
}

func (q *workQueue) Shutdown() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.shuttingDown = true
	q.cond.Broadcast()
}

// delayedQueue wraps a queue with delayed requeue support.
//
// At most one timer exists per key. AddAfter replaces a pending timer and Add
// cancels it, so the latest scheduling decision for a key always wins.
type delayedQueue struct {
	queue      Queue
	mu         sync.Mutex
	delayedMap map[client.ObjectKey]*time.Timer
	stopCh     chan struct{}
	stopOnce   sync.Once
}

// NewDelayedQueue creates a queue that supports delayed requeuing.
func NewDelayedQueue() *delayedQueue {
	return &delayedQueue{
		queue:      NewQueue(),
		delayedMap: make(map[client.ObjectKey]*time.Timer),
		stopCh:     make(chan struct{}),
	}
}

// Add adds a key immediately and drops any pending delayed add for it.
func (d *delayedQueue) Add(key client.ObjectKey) {
	d.mu.Lock()
	if timer, ok := d.delayedMap[key]; ok {
		timer.Stop()
		delete(d.delayedMap, key)
	}
	d.mu.Unlock()

	d.queue.Add(key)
}

// AddAfter adds a key after a delay.
func (d *delayedQueue) AddAfter(key client.ObjectKey, delay time.Duration) {
	if delay <= 0 {
		d.Add(key)
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	select {
	case <-d.stopCh:
		return
	default:
	}

	if timer, ok := d.delayedMap[key]; ok {
		timer.Stop()
	}

	var timer *time.Timer
	timer = time.AfterFunc(delay, func() {
		d.mu.Lock()
		// A timer that lost the race with Stop must not fire nor remove
		// its successor.
		if d.delayedMap[key] != timer {
			d.mu.Unlock()
			return
		}
		delete(d.delayedMap, key)
		d.mu.Unlock()

		select {
		case <-d.stopCh:
			return
		default:
			d.queue.Add(key)
		}
	})
	d.delayedMap[key] = timer
}

// Pending reports whether a delayed add is scheduled for key.
func (d *delayedQueue) Pending(key client.ObjectKey) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.delayedMap[key]
	return ok
}

func (d *delayedQueue) Get(ctx context.Context) (client.ObjectKey, bool) {
	return d.queue.Get(ctx)
}

func (d *delayedQueue) Done(key client.ObjectKey) {
	d.queue.Done(key)
}

func (d *delayedQueue) Len() int {
	return d.queue.Len()
}

// Shutdown stops the queue and cancels pending timers.
func (d *delayedQueue) Shutdown() {
	d.stopOnce.Do(func() {
		close(d.stopCh)
	})

	d.mu.Lock()
	for _, timer := range d.delayedMap {
		timer.Stop()
	}
	d.delayedMap = make(map[client.ObjectKey]*time.Timer)
	d.mu.Unlock()

	d.queue.Shutdown()
}
