package session

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/resume-chat-builder/internal/extract"
	"github.com/jonathan/resume-chat-builder/internal/merge"
	"github.com/jonathan/resume-chat-builder/internal/pipeline"
	"github.com/jonathan/resume-chat-builder/internal/types"
)

// ErrNotFound is returned when no session exists for an ID.
var ErrNotFound = errors.New("session not found")

// Store is the optional durability collaborator. A nil-returning Load means
// the session has no persisted document.
type Store interface {
	SaveDocument(ctx context.Context, sessionID uuid.UUID, doc *types.ResumeDocument) error
	LoadDocument(ctx context.Context, sessionID uuid.UUID) (*types.ResumeDocument, error)
}

// Manager is the registry of live sessions. All document mutations funnel
// through each session's single-writer queue; the manager never touches a
// document outside a queued task.
type Manager struct {
	chat   *pipeline.Chat
	store  Store // nil when running without durability
	logger *zap.Logger

	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
}

// NewManager creates a session manager. store may be nil.
func NewManager(chat *pipeline.Chat, store Store, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		chat:     chat,
		store:    store,
		logger:   logger,
		sessions: make(map[uuid.UUID]*Session),
	}
}

// Create starts a new session with an empty document.
func (m *Manager) Create(ctx context.Context) (*Session, error) {
	sess := newSession(uuid.New(), types.NewResumeDocument(), m.onApplied)

	if m.store != nil {
		if err := m.store.SaveDocument(ctx, sess.ID, sess.Document()); err != nil {
			sess.close()
			return nil, err
		}
	}

	m.mu.Lock()
	m.sessions[sess.ID] = sess
	m.mu.Unlock()

	m.logger.Info("session created", zap.String("session_id", sess.ID.String()))
	return sess, nil
}

// Get returns a live session, restoring it from the store when a persisted
// document exists for the ID.
func (m *Manager) Get(ctx context.Context, id uuid.UUID) (*Session, error) {
	m.mu.RLock()
	sess, ok := m.sessions[id]
	m.mu.RUnlock()
	if ok {
		return sess, nil
	}

	if m.store == nil {
		return nil, ErrNotFound
	}
	doc, err := m.store.LoadDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, ErrNotFound
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.sessions[id]; ok {
		return existing, nil
	}
	sess = newSession(id, doc, m.onApplied)
	m.sessions[id] = sess
	return sess, nil
}

// HandleMessage runs one chat turn: the model call is awaited outside the
// critical section, then the response is applied through the session's
// serialized queue against whatever document is current at apply time.
func (m *Manager) HandleMessage(ctx context.Context, id uuid.UUID, message string) (pipeline.TurnResult, error) {
	sess, err := m.Get(ctx, id)
	if err != nil {
		return pipeline.TurnResult{}, err
	}

	raw, err := m.chat.GenerateTurn(ctx, sess.Document(), message)
	if err != nil {
		return pipeline.TurnResult{
			Outcome: pipeline.Outcome{Document: sess.Document(), Code: pipeline.CodeNoBlockFound},
		}, err
	}

	return m.applyRaw(ctx, sess, raw)
}

// ImportText feeds extracted resume text through the replace flow. The
// returned response text flows through the identical pipeline; there is no
// separate apply path for imports.
func (m *Manager) ImportText(ctx context.Context, id uuid.UUID, resumeText string) (pipeline.TurnResult, error) {
	sess, err := m.Get(ctx, id)
	if err != nil {
		return pipeline.TurnResult{}, err
	}

	raw, err := m.chat.GenerateImport(ctx, resumeText)
	if err != nil {
		return pipeline.TurnResult{
			Outcome: pipeline.Outcome{Document: sess.Document(), Code: pipeline.CodeNoBlockFound},
		}, err
	}

	return m.applyRaw(ctx, sess, raw)
}

// Reset returns the session's document to the empty state via a reset patch.
func (m *Manager) Reset(ctx context.Context, id uuid.UUID) (*types.ResumeDocument, error) {
	sess, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	outcome, err := sess.submit(ctx, func(doc *types.ResumeDocument) pipeline.Outcome {
		return pipeline.Outcome{
			Document: merge.Apply(doc, &types.Patch{Operation: types.OperationReset}),
			Code:     pipeline.CodeApplied,
		}
	})
	if err != nil {
		return nil, err
	}
	return outcome.Document, nil
}

// Close stops every session worker.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, sess := range m.sessions {
		sess.close()
	}
	m.sessions = make(map[uuid.UUID]*Session)
}

func (m *Manager) applyRaw(ctx context.Context, sess *Session, raw string) (pipeline.TurnResult, error) {
	outcome, err := sess.submit(ctx, func(doc *types.ResumeDocument) pipeline.Outcome {
		return pipeline.Process(raw, doc)
	})
	if err != nil {
		return pipeline.TurnResult{}, err
	}
	return pipeline.TurnResult{Outcome: outcome, Reply: extract.StripBlock(raw)}, nil
}

// onApplied runs on the session worker after every applied transition: it
// persists the new document and, once per session, fires the follow-up that
// asks for a missing contact name.
func (m *Manager) onApplied(sess *Session, outcome pipeline.Outcome) {
	if m.store != nil {
		if err := m.store.SaveDocument(context.Background(), sess.ID, outcome.Document); err != nil {
			m.logger.Error("failed to persist document",
				zap.String("session_id", sess.ID.String()), zap.Error(err))
		}
	}

	if pipeline.NeedsContactName(outcome.Document) && !sess.askedForName {
		sess.askedForName = true
		go m.followUpName(sess)
	}
}

// followUpName is fire-and-forget relative to its originating turn, but its
// result still serializes through the session queue before touching the
// document.
func (m *Manager) followUpName(sess *Session) {
	raw, err := m.chat.GenerateFollowUpName(context.Background())
	if err != nil {
		m.logger.Warn("follow-up call failed",
			zap.String("session_id", sess.ID.String()), zap.Error(err))
		return
	}

	result, err := m.applyRaw(context.Background(), sess, raw)
	if err != nil {
		m.logger.Warn("follow-up apply failed",
			zap.String("session_id", sess.ID.String()), zap.Error(err))
		return
	}
	if result.Reply != "" {
		m.logger.Info("follow-up question generated",
			zap.String("session_id", sess.ID.String()), zap.String("question", result.Reply))
	}
}
