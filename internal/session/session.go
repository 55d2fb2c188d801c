// Package session owns the living resume documents. Each session serializes
// every document mutation through a single-writer task queue: pipeline runs
// for chat turns, imports, resets, and the automatic follow-up all apply in
// call-completion order, never interleaving their read-modify-write.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/resume-chat-builder/internal/pipeline"
	"github.com/jonathan/resume-chat-builder/internal/types"
)

// ErrClosed is returned when a task is submitted to a closed session.
var ErrClosed = errors.New("session closed")

// task is one serialized document transition. run receives the current
// document and returns the outcome carrying the next one.
type task struct {
	run   func(doc *types.ResumeDocument) pipeline.Outcome
	reply chan pipeline.Outcome
}

// Session holds one resume document and its apply queue.
type Session struct {
	ID        uuid.UUID
	CreatedAt time.Time

	tasks chan task
	quit  chan struct{}

	mu  sync.RWMutex
	doc *types.ResumeDocument

	// askedForName is touched only by the worker goroutine.
	askedForName bool
}

func newSession(id uuid.UUID, doc *types.ResumeDocument, onApplied func(*Session, pipeline.Outcome)) *Session {
	if doc == nil {
		doc = types.NewResumeDocument()
	}
	s := &Session{
		ID:        id,
		CreatedAt: time.Now().UTC(),
		tasks:     make(chan task, 16),
		quit:      make(chan struct{}),
		doc:       doc,
	}
	go s.loop(onApplied)
	return s
}

// Document returns a snapshot of the current document.
func (s *Session) Document() *types.ResumeDocument {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.Clone()
}

// submit enqueues a document transition and waits for it to apply. A task
// accepted by the queue applies even if the caller's context expires while
// waiting; last-applied-wins is the only ordering guarantee.
func (s *Session) submit(ctx context.Context, run func(*types.ResumeDocument) pipeline.Outcome) (pipeline.Outcome, error) {
	t := task{run: run, reply: make(chan pipeline.Outcome, 1)}
	select {
	case s.tasks <- t:
	case <-s.quit:
		return pipeline.Outcome{}, ErrClosed
	case <-ctx.Done():
		return pipeline.Outcome{}, ctx.Err()
	}

	select {
	case outcome := <-t.reply:
		return outcome, nil
	case <-ctx.Done():
		return pipeline.Outcome{}, ctx.Err()
	}
}

// loop is the session's single writer. No other goroutine assigns s.doc.
func (s *Session) loop(onApplied func(*Session, pipeline.Outcome)) {
	for {
		select {
		case t := <-s.tasks:
			outcome := t.run(s.doc)
			s.mu.Lock()
			s.doc = outcome.Document
			s.mu.Unlock()
			if outcome.Applied() && onApplied != nil {
				onApplied(s, outcome)
			}
			t.reply <- outcome
		case <-s.quit:
			return
		}
	}
}

func (s *Session) close() {
	close(s.quit)
}
