// Shared leaf types, extracted to break import cycles.
package types

import (
	"context"
	"fmt"
)

type TaskFunc func(context.Context) error

// AppID identifies a launchable application in the dispatch registry.
type AppID string

// Apper is the lifecycle capability set every registered application
// provides. IsRunning must be side-effect free; Update is called only
// while the application reports running.
type Apper interface {
	Show(context.Context) error
	Hide(context.Context)
	Update(context.Context) error
	IsRunning() bool
}

type InputKey uint16

// Logical buttons. Edge-triggered "pressed" only, no hold/multi-click.
const (
	KeyInvalid InputKey = iota
	KeyPower
	KeyBoot
)

type InputEvent struct {
	Source string
	Key    InputKey
	Up     bool
}

func (e *InputEvent) IsZero() bool { return e.Key == KeyInvalid }

func (e *InputEvent) String() string {
	return fmt.Sprintf("InputEvent(source=%s key=%d up=%t)", e.Source, e.Key, e.Up)
}

//go:generate stringer -type=EventKind -trimprefix=Event
type EventKind uint8

const (
	EventInvalid EventKind = iota
	EventInput
	EventTime
	EventStop
)

type Event struct {
	Input InputEvent
	Kind  EventKind
}
