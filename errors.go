package bml

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingSchema rejects a component definition that declares no schema.
	ErrMissingSchema = errors.New("bml: component definition has no schema")
	// ErrXRUnavailable means no immersive-session system was configured.
	ErrXRUnavailable = errors.New("bml: immersive sessions unavailable")
	// ErrXRUnsupported means the configured system refused the session mode.
	ErrXRUnsupported = errors.New("bml: immersive session mode unsupported")
)

// Phase names the lifecycle callback that failed.
type Phase string

const (
	PhaseInit   Phase = "init"
	PhaseUpdate Phase = "update"
	PhaseRemove Phase = "remove"
	PhaseTick   Phase = "tick"
)

// CallbackError wraps an error returned, or a panic raised, by a component
// lifecycle callback.
type CallbackError struct {
	Component string
	Phase     Phase
	Err       error
}

func (e *CallbackError) Error() string {
	return fmt.Sprintf("bml: component %q %s: %v", e.Component, e.Phase, e.Err)
}

func (e *CallbackError) Unwrap() error { return e.Err }

// safeCall runs fn and converts both a returned error and a panic into a
// *CallbackError.
func safeCall(name string, phase Phase, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			perr, ok := r.(error)
			if !ok {
				perr = fmt.Errorf("panic: %v", r)
			}
			err = &CallbackError{Component: name, Phase: phase, Err: perr}
		}
	}()
	if e := fn(); e != nil {
		return &CallbackError{Component: name, Phase: phase, Err: e}
	}
	return nil
}
