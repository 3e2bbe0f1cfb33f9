package domain

import (
	"errors"
	"fmt"
	"strings"
)

type ErrorKind string

const (
	ErrKindInvalidTransition      ErrorKind = "InvalidTransition"
	ErrKindGateNotSatisfied       ErrorKind = "GateNotSatisfied"
	ErrKindConcurrentModification ErrorKind = "ConcurrentModification"
	ErrKindNotApplicable          ErrorKind = "NotApplicable"
)

var (
	ErrNotFound               = errors.New("record not found")
	ErrInvalidTransition      = errors.New("invalid status transition")
	ErrGateNotSatisfied       = errors.New("gate not satisfied")
	ErrConcurrentModification = errors.New("record was modified concurrently")
	ErrNotApplicable          = errors.New("evaluation not applicable")
)

// TransitionError describes a denied status change. It matches ErrInvalidTransition or
// ErrGateNotSatisfied through errors.Is depending on Kind.
type TransitionError struct {
	Kind    ErrorKind
	From    CandidateStatus
	To      CandidateStatus
	Missing []string
}

func (e *TransitionError) Error() string {
	msg := fmt.Sprintf("%s: %s -> %s", e.Kind, e.From, e.To)
	if len(e.Missing) > 0 {
		msg += " (" + strings.Join(e.Missing, "; ") + ")"
	}
	return msg
}

func (e *TransitionError) Is(target error) bool {
	switch target {
	case ErrInvalidTransition:
		return e.Kind == ErrKindInvalidTransition
	case ErrGateNotSatisfied:
		return e.Kind == ErrKindGateNotSatisfied
	case ErrConcurrentModification:
		return e.Kind == ErrKindConcurrentModification
	}
	return false
}

// KindOf classifies an error into the engine's error taxonomy. Unknown errors return "".
func KindOf(err error) ErrorKind {
	var te *TransitionError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &te):
		return te.Kind
	case errors.Is(err, ErrConcurrentModification):
		return ErrKindConcurrentModification
	case errors.Is(err, ErrNotApplicable):
		return ErrKindNotApplicable
	case errors.Is(err, ErrInvalidTransition):
		return ErrKindInvalidTransition
	case errors.Is(err, ErrGateNotSatisfied):
		return ErrKindGateNotSatisfied
	}
	return ""
}
