package app

import "github.com/dkeye/Scribe/internal/domain"

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	DropFrame
	KickMember
)

// Policy decides what happens to a connection whose send buffer is full.
type Policy interface {
	OnBackPressure(id domain.ConnID) BackpressureAction
}

type SimplePolicy struct {
	Action BackpressureAction
}

func (p SimplePolicy) OnBackPressure(domain.ConnID) BackpressureAction {
	return p.Action
}

// ParseBackpressure maps the config value to an action; anything but
// "kick" drops the frame.
func ParseBackpressure(s string) BackpressureAction {
	if s == "kick" {
		return KickMember
	}
	return DropFrame
}
