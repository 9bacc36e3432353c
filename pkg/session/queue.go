package session

import "sync"

// writeQueue is an unbounded FIFO of pending writes. Producers never block;
// only the pump pops.
type writeQueue struct {
	mu      sync.Mutex
	entries [][]byte
	bytes   int
}

// push appends a copy of data
func (q *writeQueue) push(data []byte) {
	if len(data) == 0 {
		return
	}
	entry := make([]byte, len(data))
	copy(entry, data)

	q.mu.Lock()
	q.entries = append(q.entries, entry)
	q.bytes += len(entry)
	q.mu.Unlock()
}

// pop removes the oldest entry
func (q *writeQueue) pop() ([]byte, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.entries) == 0 {
		return nil, false
	}
	entry := q.entries[0]
	q.entries[0] = nil
	q.entries = q.entries[1:]
	q.bytes -= len(entry)
	return entry, true
}

// pushFront puts back the unwritten rest of an entry
func (q *writeQueue) pushFront(data []byte) {
	if len(data) == 0 {
		return
	}
	q.mu.Lock()
	q.entries = append([][]byte{data}, q.entries...)
	q.bytes += len(data)
	q.mu.Unlock()
}

// len returns the number of pending entries and bytes
func (q *writeQueue) len() (entries, bytes int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries), q.bytes
}

// reset drops all pending entries
func (q *writeQueue) reset() {
	q.mu.Lock()
	q.entries = nil
	q.bytes = 0
	q.mu.Unlock()
}
