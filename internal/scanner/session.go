package scanner

import (
	"context"
	"errors"
	"sync"

	apperrors "github.com/ironsheep/docscan-mcp/internal/errors"
	"github.com/ironsheep/docscan-mcp/internal/logger"
)

// ErrSuperseded is returned to the caller of a capture that was replaced
// by a newer one before it finished.
var ErrSuperseded = errors.New("capture superseded by a newer capture")

// Session serializes captures from one user: only the latest capture
// produces a result.
//
// Each capture is offloaded to the worker pool. Starting a new capture
// cancels the one in flight; if the old run still completes its result is
// discarded.
type Session struct {
	service *Service
	pool    *WorkerPool

	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
}

// NewSession returns a session running captures on pool. The pool must be
// started.
func NewSession(service *Service, pool *WorkerPool) *Session {
	return &Session{service: service, pool: pool}
}

// Capture acquires a frame from src and scans it.
//
// It blocks until the scan finishes, ctx is done, or a newer capture
// supersedes this one. A superseded capture returns an error for which
// errors.Is(err, ErrSuperseded) holds.
func (s *Session) Capture(ctx context.Context, src FrameSource, req ScanRequest) (*Scan, error) {
	runCtx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.seq++
	id := s.seq
	s.cancel = cancel
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		if s.seq == id {
			s.cancel = nil
		}
		s.mu.Unlock()
		cancel()
	}()

	type outcome struct {
		scan *Scan
		err  error
	}
	done := make(chan outcome, 1)

	submitted := s.pool.Submit(func() {
		frame, err := src.Capture(runCtx)
		if err != nil {
			done <- outcome{nil, err}
			return
		}
		scan, err := s.service.Scan(runCtx, frame, req)
		done <- outcome{scan, err}
	})
	if !submitted {
		return nil, apperrors.NewInternalError("worker pool is closed", nil)
	}

	select {
	case o := <-done:
		if s.superseded(id) {
			logger.WithField("capture", id).Debug("discarding superseded capture result")
			return nil, apperrors.NewCancelledError("capture superseded", ErrSuperseded)
		}
		if o.err != nil && runCtx.Err() != nil && !apperrors.IsType(o.err, apperrors.ErrorTypeCancelled) {
			return nil, apperrors.NewCancelledError("capture cancelled", runCtx.Err())
		}
		return o.scan, o.err
	case <-runCtx.Done():
		if s.superseded(id) {
			return nil, apperrors.NewCancelledError("capture superseded", ErrSuperseded)
		}
		return nil, apperrors.NewCancelledError("capture cancelled", runCtx.Err())
	}
}

// Cancel aborts the capture in flight, if any.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *Session) superseded(id uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq != id
}
