package commands

import "sync"

// Record is one received chunk of bytes from one connection.
type Record struct {
	ConnID string
	Data   []byte
}

// Queue hands received byte chunks from the network readers to the single
// command processor. Producers never block; the consumer blocks until data
// arrives. The queue is unbounded: overload grows the backlog instead of
// dropping commands.
type Queue struct {
	mu      sync.Mutex
	cond    *sync.Cond
	records []Record
	closed  bool
}

func NewQueue() *Queue {
	q := &Queue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Enqueue copies the payload (the caller's buffer may be reused immediately)
// and appends it in arrival order, waking the consumer.
func (q *Queue) Enqueue(connID string, data []byte) {
	buf := make([]byte, len(data))
	copy(buf, data)

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}

	q.records = append(q.records, Record{ConnID: connID, Data: buf})
	q.cond.Signal()
}

// Dequeue blocks until a record is available and removes it FIFO. It returns
// ok=false once the queue has been closed and drained.
func (q *Queue) Dequeue() (Record, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.records) == 0 && !q.closed {
		q.cond.Wait()
	}

	if len(q.records) == 0 {
		return Record{}, false
	}

	rec := q.records[0]
	q.records = q.records[1:]
	return rec, true
}

// Close wakes the consumer for shutdown. Already-queued records still drain.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.closed = true
	q.cond.Broadcast()
}

// Len returns the current backlog size.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.records)
}
