package app

import "github.com/dkeye/Huddle/internal/core"

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	DropFrame
	KickMember
)

// Policy decides what happens to a session whose send queue is full.
type Policy interface {
	OnBackPressure(member core.MemberSession) BackpressureAction
}

// SimplePolicy kicks slow consumers. A kicked client reconnects and
// receives voice:sync, which is cheaper than replaying dropped frames.
type SimplePolicy struct{}

func (SimplePolicy) OnBackPressure(member core.MemberSession) BackpressureAction {
	return KickMember
}

// LenientPolicy drops the frame and keeps the session.
type LenientPolicy struct{}

func (LenientPolicy) OnBackPressure(member core.MemberSession) BackpressureAction {
	return DropFrame
}
