package sync

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/vcs-python/vcspull-sub001/internal/syncer"
)

const progressInterval = 500 * time.Millisecond

// progressReporter periodically prints run progress to w while the pool is
// busy. Outcome callbacks arrive from worker goroutines.
type progressReporter struct {
	enabled bool
	w       io.Writer
	total   int

	mu     sync.Mutex
	done   int
	failed int

	stop chan struct{}
	wg   sync.WaitGroup
}

func newProgressReporter(enabled bool, w io.Writer, total int) *progressReporter {
	return &progressReporter{enabled: enabled, w: w, total: total, stop: make(chan struct{})}
}

func (p *progressReporter) onOutcome(o syncer.Outcome) {
	if !p.enabled {
		return
	}
	p.mu.Lock()
	p.done++
	if o.Action == syncer.ActionFailed {
		p.failed++
	}
	p.mu.Unlock()
}

func (p *progressReporter) start() {
	if !p.enabled {
		return
	}
	p.emit()
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ticker := time.NewTicker(progressInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				p.emit()
			case <-p.stop:
				return
			}
		}
	}()
}

func (p *progressReporter) finish() {
	if !p.enabled {
		return
	}
	close(p.stop)
	p.wg.Wait()
	p.emit()
}

func (p *progressReporter) emit() {
	p.mu.Lock()
	done := p.done
	failed := p.failed
	p.mu.Unlock()
	_, _ = fmt.Fprintf(p.w, "progress synced=%d failed=%d total=%d\n", done-failed, failed, p.total)
}
