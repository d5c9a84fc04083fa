// Package telemetry adapts OpenTelemetry spans to the renderer that presents build progress.
package telemetry

import (
	"bytes"
	"errors"
	"sync"
	"time"
)

const (
	// DefaultSizeLimit is the buffered byte count that forces a flush.
	DefaultSizeLimit = 4096
	// DefaultTimeLimit is the longest output is held before it is flushed.
	DefaultTimeLimit = 50 * time.Millisecond
)

// errBatcherClosed is returned by writes after Close.
var errBatcherClosed = errors.New("batch processor is closed")

// BatchProcessor coalesces small writes of build output.
// It flushes once sizeLimit bytes are buffered, every timeLimit, and on Close.
// It is safe for concurrent use.
type BatchProcessor struct {
	sizeLimit int
	timeLimit time.Duration
	onFlush   func([]byte)

	mu     sync.Mutex
	buffer bytes.Buffer
	ticker *time.Ticker
	stopCh chan struct{}
	done   chan struct{}
	closed bool
}

// NewBatchProcessor starts a BatchProcessor. Non-positive limits select the defaults.
// Close must be called to stop its background flusher.
func NewBatchProcessor(sizeLimit int, timeLimit time.Duration, onFlush func([]byte)) *BatchProcessor {
	if sizeLimit <= 0 {
		sizeLimit = DefaultSizeLimit
	}
	if timeLimit <= 0 {
		timeLimit = DefaultTimeLimit
	}

	bp := &BatchProcessor{
		sizeLimit: sizeLimit,
		timeLimit: timeLimit,
		onFlush:   onFlush,
		ticker:    time.NewTicker(timeLimit),
		stopCh:    make(chan struct{}),
		done:      make(chan struct{}),
	}
	go bp.run()

	return bp
}

// Write buffers p, flushing when the size limit is reached.
func (bp *BatchProcessor) Write(p []byte) (int, error) {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	if bp.closed {
		return 0, errBatcherClosed
	}

	n, _ := bp.buffer.Write(p)
	if bp.buffer.Len() >= bp.sizeLimit {
		bp.flushLocked()
		bp.ticker.Reset(bp.timeLimit)
	}

	return n, nil
}

// Flush hands any buffered data to the callback.
func (bp *BatchProcessor) Flush() {
	bp.mu.Lock()
	defer bp.mu.Unlock()
	if bp.closed {
		return
	}
	bp.flushLocked()
}

// Close stops the background flusher and performs a final flush.
// It returns once the flusher goroutine has exited.
func (bp *BatchProcessor) Close() error {
	bp.mu.Lock()
	if bp.closed {
		bp.mu.Unlock()
		return nil
	}
	bp.closed = true
	close(bp.stopCh)
	bp.flushLocked()
	bp.mu.Unlock()

	<-bp.done
	return nil
}

func (bp *BatchProcessor) run() {
	defer close(bp.done)
	defer bp.ticker.Stop()

	for {
		select {
		case <-bp.ticker.C:
			bp.Flush()
		case <-bp.stopCh:
			return
		}
	}
}

// flushLocked must be called with mu held.
// The callback runs under the lock so flushes stay ordered.
func (bp *BatchProcessor) flushLocked() {
	if bp.buffer.Len() == 0 {
		return
	}

	data := bytes.Clone(bp.buffer.Bytes())
	bp.buffer.Reset()

	if bp.onFlush != nil {
		bp.onFlush(data)
	}
}
