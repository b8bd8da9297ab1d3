package core

import (
	"sync"

	"github.com/dkeye/Huddle/internal/domain"
)

// memberSession implements MemberSession by pairing meta + transport.
type memberSession struct {
	sid  SessionID
	conn SignalConnection

	mu   sync.RWMutex
	user *domain.User
}

func NewMemberSession(sid SessionID, conn SignalConnection) MemberSession {
	return &memberSession{sid: sid, conn: conn}
}

func (m *memberSession) SID() SessionID           { return m.sid }
func (m *memberSession) Signal() SignalConnection { return m.conn }

func (m *memberSession) User() *domain.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return nil
	}
	u := *m.user
	return &u
}

func (m *memberSession) Identify(user domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.user = &user
}
