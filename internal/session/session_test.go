package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-chat-builder/internal/llm"
	"github.com/jonathan/resume-chat-builder/internal/pipeline"
	"github.com/jonathan/resume-chat-builder/internal/types"
)

// scriptedClient maps a substring of the prompt to a canned response.
type scriptedClient struct {
	mu        sync.Mutex
	responses map[string]string
	fallback  string
	calls     []string
}

func (s *scriptedClient) GenerateContent(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, prompt)
	for needle, resp := range s.responses {
		if needle != "" && strings.Contains(prompt, needle) {
			return resp, nil
		}
	}
	if s.fallback != "" {
		return s.fallback, nil
	}
	return "", fmt.Errorf("no scripted response")
}

// memStore is an in-memory Store for tests.
type memStore struct {
	mu   sync.Mutex
	docs map[uuid.UUID]*types.ResumeDocument
}

func newMemStore() *memStore {
	return &memStore{docs: make(map[uuid.UUID]*types.ResumeDocument)}
}

func (s *memStore) SaveDocument(_ context.Context, id uuid.UUID, doc *types.ResumeDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[id] = doc.Clone()
	return nil
}

func (s *memStore) LoadDocument(_ context.Context, id uuid.UUID) (*types.ResumeDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[id]
	if !ok {
		return nil, nil
	}
	return doc.Clone(), nil
}

func newTestManager(client pipeline.Generator, store Store) *Manager {
	return NewManager(pipeline.NewChat(client, nil), store, nil)
}

func TestManagerCreateAndGet(t *testing.T) {
	m := newTestManager(&scriptedClient{}, nil)
	defer m.Close()

	sess, err := m.Create(context.Background())
	require.NoError(t, err)
	assert.True(t, sess.Document().IsEmpty())

	got, err := m.Get(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, got.ID)

	_, err = m.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestManagerHandleMessageAppliesPatch(t *testing.T) {
	client := &scriptedClient{
		responses: map[string]string{
			"add Go": `Added! [RESUME_DATA]{"skills": ["Go"], "contact": {"fullName": "Ada"}}[/RESUME_DATA]`,
		},
	}
	m := newTestManager(client, nil)
	defer m.Close()

	sess, err := m.Create(context.Background())
	require.NoError(t, err)

	result, err := m.HandleMessage(context.Background(), sess.ID, "add Go")
	require.NoError(t, err)
	require.True(t, result.Applied())
	assert.Equal(t, []string{"Go"}, result.Document.Skills)
	assert.Equal(t, "Added!", result.Reply)

	assert.Equal(t, []string{"Go"}, sess.Document().Skills)
}

func TestManagerModelFailureLeavesDocumentUnchanged(t *testing.T) {
	m := newTestManager(&scriptedClient{}, nil) // no scripted response: every call errors
	defer m.Close()

	sess, err := m.Create(context.Background())
	require.NoError(t, err)

	result, err := m.HandleMessage(context.Background(), sess.ID, "hello")
	require.Error(t, err)
	assert.Equal(t, pipeline.CodeNoBlockFound, result.Code)
	assert.True(t, sess.Document().IsEmpty())
}

func TestManagerReset(t *testing.T) {
	client := &scriptedClient{
		fallback: `[RESUME_DATA]{"skills": ["Go"], "contact": {"fullName": "Ada"}}[/RESUME_DATA]`,
	}
	m := newTestManager(client, nil)
	defer m.Close()

	sess, err := m.Create(context.Background())
	require.NoError(t, err)
	_, err = m.HandleMessage(context.Background(), sess.ID, "add Go")
	require.NoError(t, err)

	doc, err := m.Reset(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.True(t, doc.IsEmpty())
	assert.True(t, sess.Document().IsEmpty())
}

func TestManagerSerializesConcurrentApplies(t *testing.T) {
	// Each turn adds one distinct skill; all applies must survive, which
	// only holds when read-modify-write transitions never interleave.
	client := &scriptedClient{responses: map[string]string{}}
	const turns = 20
	for i := 0; i < turns; i++ {
		msg := fmt.Sprintf("add skill-%02d", i)
		client.responses[msg] = fmt.Sprintf(
			`[RESUME_DATA]{"skills": ["skill-%02d"], "contact": {"fullName": "Ada"}}[/RESUME_DATA]`, i)
	}
	m := newTestManager(client, nil)
	defer m.Close()

	sess, err := m.Create(context.Background())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < turns; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := m.HandleMessage(context.Background(), sess.ID, fmt.Sprintf("add skill-%02d", i))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.Len(t, sess.Document().Skills, turns)
}

func TestManagerPersistsAppliedDocuments(t *testing.T) {
	store := newMemStore()
	client := &scriptedClient{
		fallback: `[RESUME_DATA]{"skills": ["Go"], "contact": {"fullName": "Ada"}}[/RESUME_DATA]`,
	}
	m := newTestManager(client, store)
	defer m.Close()

	sess, err := m.Create(context.Background())
	require.NoError(t, err)
	_, err = m.HandleMessage(context.Background(), sess.ID, "add Go")
	require.NoError(t, err)

	// Persistence happens on the worker after the apply; poll briefly.
	require.Eventually(t, func() bool {
		doc, _ := store.LoadDocument(context.Background(), sess.ID)
		return doc != nil && len(doc.Skills) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestManagerRestoresSessionFromStore(t *testing.T) {
	store := newMemStore()
	id := uuid.New()
	doc := types.NewResumeDocument()
	doc.Skills = []string{"Go"}
	require.NoError(t, store.SaveDocument(context.Background(), id, doc))

	m := newTestManager(&scriptedClient{}, store)
	defer m.Close()

	sess, err := m.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, []string{"Go"}, sess.Document().Skills)
}

func TestManagerFollowUpAsksForMissingName(t *testing.T) {
	client := &scriptedClient{
		responses: map[string]string{
			"add Go":    `[RESUME_DATA]{"skills": ["Go"]}[/RESUME_DATA]`,
			"full name": "What is your full name?",
		},
	}
	m := newTestManager(client, nil)
	defer m.Close()

	sess, err := m.Create(context.Background())
	require.NoError(t, err)

	result, err := m.HandleMessage(context.Background(), sess.ID, "add Go")
	require.NoError(t, err)
	require.True(t, result.Applied())

	// The fire-and-forget follow-up issues a second model call.
	require.Eventually(t, func() bool {
		client.mu.Lock()
		defer client.mu.Unlock()
		return len(client.calls) == 2
	}, time.Second, 10*time.Millisecond)

	// The follow-up reply has no block, so the document is unchanged.
	assert.Equal(t, []string{"Go"}, sess.Document().Skills)
	assert.Empty(t, sess.Document().Contact.FullName)
}

func TestSessionSubmitAfterClose(t *testing.T) {
	m := newTestManager(&scriptedClient{}, nil)
	sess, err := m.Create(context.Background())
	require.NoError(t, err)
	m.Close()

	_, err = sess.submit(context.Background(), func(doc *types.ResumeDocument) pipeline.Outcome {
		return pipeline.Outcome{Document: doc, Code: pipeline.CodeApplied}
	})
	assert.ErrorIs(t, err, ErrClosed)
}
