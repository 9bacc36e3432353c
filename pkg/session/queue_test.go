package session

import (
	"fmt"
	"io"
	"os"
	"sync"
	"syscall"
	"testing"
	"time"
)

func TestWriteQueue_FIFO(t *testing.T) {
	var q writeQueue

	q.push([]byte("one"))
	q.push(nil)
	q.push([]byte("two"))

	if entries, bytes := q.len(); entries != 2 || bytes != 6 {
		t.Fatalf("len() = %d, %d, want 2, 6", entries, bytes)
	}

	for _, want := range []string{"one", "two"} {
		got, ok := q.pop()
		if !ok || string(got) != want {
			t.Fatalf("pop() = %q, %v, want %q", got, ok, want)
		}
	}
	if _, ok := q.pop(); ok {
		t.Error("pop() on an empty queue returned an entry")
	}
}

func TestWriteQueue_PushCopies(t *testing.T) {
	var q writeQueue
	data := []byte("abc")
	q.push(data)
	data[0] = 'X'

	got, _ := q.pop()
	if string(got) != "abc" {
		t.Errorf("pop() = %q, queued data was aliased", got)
	}
}

func TestWriteQueue_PushFront(t *testing.T) {
	var q writeQueue
	q.push([]byte("second"))
	q.pushFront([]byte("first"))

	got, _ := q.pop()
	if string(got) != "first" {
		t.Errorf("pop() = %q, want first", got)
	}
}

func TestWriteQueue_ConcurrentProducers(t *testing.T) {
	var q writeQueue
	var wg sync.WaitGroup

	for p := 0; p < 8; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				q.push([]byte(fmt.Sprintf("%d-%d", p, i)))
			}
		}(p)
	}
	wg.Wait()

	if entries, _ := q.len(); entries != 800 {
		t.Errorf("len() = %d, want 800", entries)
	}
	q.reset()
	if entries, bytes := q.len(); entries != 0 || bytes != 0 {
		t.Errorf("len() after reset = %d, %d", entries, bytes)
	}
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		interrupted bool
		endOfStream bool
	}{
		{"eintr", syscall.EINTR, true, false},
		{"eagain", syscall.EAGAIN, true, false},
		{"eio", syscall.EIO, false, true},
		{"wrapped eio", &os.PathError{Op: "read", Path: "/dev/ptmx", Err: syscall.EIO}, false, true},
		{"eof", io.EOF, false, true},
		{"closed", os.ErrClosed, false, true},
		{"other", syscall.EBADF, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isInterrupted(tt.err); got != tt.interrupted {
				t.Errorf("isInterrupted() = %v, want %v", got, tt.interrupted)
			}
			if got := isEndOfStream(tt.err); got != tt.endOfStream {
				t.Errorf("isEndOfStream() = %v, want %v", got, tt.endOfStream)
			}
		})
	}
}

func TestWaitExited(t *testing.T) {
	exited := make(chan struct{})

	if waitExited(exited, 0) {
		t.Error("waitExited() = true on an open channel")
	}
	if waitExited(exited, 20*time.Millisecond) {
		t.Error("waitExited() = true after timeout")
	}

	close(exited)
	if !waitExited(exited, time.Second) {
		t.Error("waitExited() = false on a closed channel")
	}
}
