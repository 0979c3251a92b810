package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mshailja29/revisionAI/internal/models"
)

var (
	ErrNotFound     = errors.New("session not found")
	ErrNoQuestion   = errors.New("no quiz question at that index")
	ErrNotProcessed = errors.New("session has no study materials yet")
)

// State is the explicit per-document session: the generated materials, a
// processed flag, and the quiz verdicts keyed by question index. Sessions are
// in-memory only and independent of each other.
type State struct {
	ID        string                 `json:"sessionId"`
	Title     string                 `json:"title"`
	Processed bool                   `json:"processed"`
	Materials models.StudyMaterials  `json:"materials"`
	Results   map[int]models.Verdict `json:"results"`
	CreatedAt time.Time              `json:"createdAt"`
	UpdatedAt time.Time              `json:"updatedAt"`
}

// Answer is the graded outcome returned to the UI for one quiz submission.
// CorrectAnswer carries the stated answer whenever the verdict is wrong.
type Answer struct {
	QuestionIndex int            `json:"questionIndex"`
	Selected      string         `json:"selected"`
	Verdict       models.Verdict `json:"verdict"`
	CorrectAnswer string         `json:"correctAnswer,omitempty"`
}

// Manager holds the live sessions behind a mutex. There is one logical user
// per session, so a plain map with clone-on-read is enough.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*State
}

func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*State),
	}
}

// Create registers a new processed session holding the given materials.
func (m *Manager) Create(title string, materials models.StudyMaterials) *State {
	now := time.Now().UTC()
	state := &State{
		ID:        uuid.NewString(),
		Title:     title,
		Processed: true,
		Materials: materials,
		Results:   make(map[int]models.Verdict),
		CreatedAt: now,
		UpdatedAt: now,
	}

	m.mu.Lock()
	m.sessions[state.ID] = state
	m.mu.Unlock()

	return state.clone()
}

// Get returns a snapshot of the session, or ErrNotFound.
func (m *Manager) Get(id string) (*State, error) {
	m.mu.RLock()
	state, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return state.clone(), nil
}

// RecordAnswer grades a quiz selection against the stated answer and stores
// the verdict. The comparison is byte-exact: a selection that differs from
// the answer only by trailing whitespace is still reported as wrong, with the
// stated correct answer surfaced alongside.
func (m *Manager) RecordAnswer(id string, questionIndex int, selected string) (*Answer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	if !state.Processed {
		return nil, ErrNotProcessed
	}
	if questionIndex < 0 || questionIndex >= len(state.Materials.Quizzes) {
		return nil, ErrNoQuestion
	}

	quiz := state.Materials.Quizzes[questionIndex]
	answer := &Answer{
		QuestionIndex: questionIndex,
		Selected:      selected,
	}
	if selected == quiz.Answer {
		answer.Verdict = models.VerdictCorrect
	} else {
		answer.Verdict = models.VerdictWrong
		answer.CorrectAnswer = quiz.Answer
	}

	state.Results[questionIndex] = answer.Verdict
	state.UpdatedAt = time.Now().UTC()

	return answer, nil
}

// Delete discards a session. Submitting a new document simply creates a new
// session, so this only matters for callers that want to free state early.
func (m *Manager) Delete(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

func (s *State) clone() *State {
	if s == nil {
		return nil
	}
	copyState := &State{
		ID:        s.ID,
		Title:     s.Title,
		Processed: s.Processed,
		Materials: s.Materials,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
	copyState.Results = make(map[int]models.Verdict, len(s.Results))
	for idx, verdict := range s.Results {
		copyState.Results[idx] = verdict
	}
	return copyState
}
