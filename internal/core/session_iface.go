package core

import "github.com/dkeye/Huddle/internal/domain"

type SessionID string

// MemberSession binds the announced identity of a connection and its
// transport endpoint. This is what the registry stores and fans out to.
type MemberSession interface {
	SID() SessionID
	User() *domain.User
	Signal() SignalConnection
	// Identify records the identity announced by the first voice or presence
	// message of the connection.
	Identify(user domain.User)
}
