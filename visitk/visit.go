package visitk

import (
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v4"
)

// VisitState is the lifecycle state of a visit
type VisitState int8

const (
	// VisitInitialized visit was created but not started
	VisitInitialized VisitState = iota + 1
	// VisitStarted visit is in progress
	VisitStarted
	// VisitCanceled visit was canceled by the host
	VisitCanceled
	// VisitFailed visit failed with a network or http failure
	VisitFailed
	// VisitCompleted visit rendered and completed
	VisitCompleted
)

// VisitStateMap for printing
var VisitStateMap = map[VisitState]string{
	VisitInitialized: "initialized",
	VisitStarted:     "started",
	VisitCanceled:    "canceled",
	VisitFailed:      "failed",
	VisitCompleted:   "completed",
}

func (s VisitState) String() string {
	if str, ok := VisitStateMap[s]; ok {
		return str
	}
	return fmt.Sprintf("unknown(%d)", int8(s))
}

// Terminal returns true for canceled, failed and completed
func (s VisitState) Terminal() bool {
	return s == VisitCanceled || s == VisitFailed || s == VisitCompleted
}

// Action is the navigation intent passed through to the page script
type Action string

const (
	// ActionAdvance pushes a new history entry
	ActionAdvance Action = "advance"
	// ActionReplace replaces the current history entry
	ActionReplace Action = "replace"
	// ActionRestore restores a previously recorded history entry
	ActionRestore Action = "restore"
)

// ParseAction returns the action for s, defaulting to advance
func ParseAction(s string) Action {
	switch Action(s) {
	case ActionReplace:
		return ActionReplace
	case ActionRestore:
		return ActionRestore
	}
	return ActionAdvance
}

// VisitRecord is what we store about a visit once it reached a terminal state
type VisitRecord struct {
	ID                    []byte     `msgpack:"id"`
	Location              string     `msgpack:"location"`
	Action                Action     `msgpack:"action"`
	Strategy              string     `msgpack:"strategy"`
	State                 VisitState `msgpack:"state"`
	RestorationIdentifier string     `msgpack:"restoration_id"`
	HasCachedSnapshot     bool       `msgpack:"cached_snapshot"`
	Error                 string     `msgpack:"error"`
	StartedTime           time.Time  `msgpack:"started"`
	EndedTime             time.Time  `msgpack:"ended"`
}

// Copy the record
func (r *VisitRecord) Copy() *VisitRecord {
	if r == nil {
		return nil
	}
	d, err := msgpack.Marshal(r)
	if err != nil {
		panic("failed to copy VisitRecord: " + err.Error())
	}

	c := &VisitRecord{}
	if err = msgpack.Unmarshal(d, c); err != nil {
		panic("failed to copy VisitRecord: " + err.Error())
	}
	return c
}

func (r *VisitRecord) String() string {
	return fmt.Sprintf("%s %s %s (%s)", r.Strategy, r.Action, r.Location, r.State)
}
