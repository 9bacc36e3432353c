package session

import (
	"errors"
	"io"
	"os"
	"syscall"
)

// largest slice of a queued entry written per iteration, so that a child
// that stops reading its input cannot block the pump for long
const writeChunk = 512

// pump moves bytes between the master end and the session until the child
// goes away or the session is stopped
func (s *Session) pump(master *os.File) {
	fd := master.Fd()
	defer s.finish(master)

	buf := make([]byte, s.config.ChunkSize)

	for s.running.Load() {
		pending, _ := s.queue.len()

		readable, writable, err := waitReady(fd, s.config.PollInterval, pending > 0)
		if err != nil {
			if isInterrupted(err) {
				continue
			}
			s.logger.Warnf("session %s: waiting for pseudoterminal: %v", s.id, err)
			return
		}

		if readable {
			n, err := master.Read(buf)
			if n > 0 {
				s.consume(buf[:n])
			}
			switch {
			case err == nil && n == 0:
				s.logger.Debugf("session %s: end of output", s.id)
				return
			case err == nil, isInterrupted(err):
			case isEndOfStream(err):
				s.logger.Debugf("session %s: end of output: %v", s.id, err)
				return
			default:
				s.logger.Warnf("session %s: reading pseudoterminal: %v", s.id, err)
				return
			}
		}

		if writable {
			if err := s.drainOne(master); err != nil {
				if isEndOfStream(err) {
					s.logger.Debugf("session %s: input closed: %v", s.id, err)
				} else {
					s.logger.Warnf("session %s: writing pseudoterminal: %v", s.id, err)
				}
				return
			}
		}
	}

	s.logger.Debugf("session %s: pump stopped", s.id)
}

// drainOne writes the oldest queued entry, or its first writeChunk bytes
// with the rest put back at the head of the queue
func (s *Session) drainOne(master *os.File) error {
	data, ok := s.queue.pop()
	if !ok {
		return nil
	}
	if len(data) > writeChunk {
		s.queue.pushFront(data[writeChunk:])
		data = data[:writeChunk]
	}

	n, err := master.Write(data)
	s.bytesSent.Add(int64(n))
	if err != nil {
		if isInterrupted(err) {
			s.queue.pushFront(data[n:])
			return nil
		}
		return err
	}
	return nil
}

// isInterrupted reports errors after which the operation can simply be retried
func isInterrupted(err error) bool {
	return errors.Is(err, syscall.EINTR) || errors.Is(err, syscall.EAGAIN)
}

// isEndOfStream reports errors meaning the subordinate side is gone.
// Linux reports this as EIO on the master.
func isEndOfStream(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, syscall.EIO) || errors.Is(err, os.ErrClosed)
}
