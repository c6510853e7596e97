package server

import (
	"sync"

	"github.com/google/uuid"

	"github.com/driftview/driftview/pkg/scene"
	"github.com/driftview/driftview/pkg/sceneio"
)

// session is one independent viewport over the shared scene graph. The graph
// is read-only while the server runs, so sessions only need to serialize
// access to their own navigator state.
type session struct {
	id  string
	mu  sync.Mutex
	nav *scene.Navigator[sceneio.Payload]
}

// do runs fn with the session's navigator under its lock.
func (s *session) do(fn func(nav *scene.Navigator[sceneio.Payload])) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.nav)
}

// sessionManager tracks live sessions by ID.
type sessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*session
}

func newSessionManager() *sessionManager {
	return &sessionManager{sessions: make(map[string]*session)}
}

// create builds a navigator over the graph and registers it under a fresh
// UUID. referenceID may be empty to start at the graph's first node.
func (m *sessionManager) create(g *scene.Graph[sceneio.Payload], referenceID string) (*session, error) {
	var (
		nav *scene.Navigator[sceneio.Payload]
		err error
	)
	if referenceID != "" {
		nav, err = scene.NewNavigatorAt(g, referenceID)
	} else {
		nav, err = scene.NewNavigator(g)
	}
	if err != nil {
		return nil, err
	}

	sess := &session{id: uuid.NewString(), nav: nav}
	m.mu.Lock()
	m.sessions[sess.id] = sess
	m.mu.Unlock()
	return sess, nil
}

// get returns the session with the given ID, or nil.
func (m *sessionManager) get(id string) *session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[id]
}

// remove drops a session. Removing an absent session is a no-op.
func (m *sessionManager) remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

// count returns the number of live sessions.
func (m *sessionManager) count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
