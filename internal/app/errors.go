package app

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"tedep/internal/reconciler"
)

// Side tells which half of a composed app failed to start.
type Side string

const (
	SideLeft  Side = "left"
	SideRight Side = "right"
	SideBoth  Side = "both"
)

// RegistrationError is the startup failure of a single registered controller.
type RegistrationError struct {
	// Index is the registration order of the controller, starting at 0.
	Index int
	Err   *reconciler.ControllerError
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("controller #%d: %v", e.Index, e.Err)
}

func (e *RegistrationError) Unwrap() error {
	return e.Err
}

// StartupError is returned by App.Run when at least one controller failed
// its preflight. Left holds the failure of the most recent registration,
// Right the failure of the previously composed app; either may itself be a
// *StartupError.
type StartupError struct {
	Left  error
	Right error
}

// Side reports which half failed.
func (e *StartupError) Side() Side {
	switch {
	case e.Left != nil && e.Right != nil:
		return SideBoth
	case e.Left != nil:
		return SideLeft
	default:
		return SideRight
	}
}

func (e *StartupError) Error() string {
	failures := e.Failures()
	msgs := make([]string, 0, len(failures))
	for _, f := range failures {
		msgs = append(msgs, f.Error())
	}
	return fmt.Sprintf("%d controller(s) failed to start: %s", len(failures), strings.Join(msgs, "; "))
}

// Unwrap returns the failed halves for errors.Is and errors.As.
func (e *StartupError) Unwrap() []error {
	var errs []error
	if e.Left != nil {
		errs = append(errs, e.Left)
	}
	if e.Right != nil {
		errs = append(errs, e.Right)
	}
	return errs
}

// Failures flattens the error tree into the failing controllers, ordered by
// registration.
func (e *StartupError) Failures() []*RegistrationError {
	var out []*RegistrationError
	collectFailures(e, &out)
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

func collectFailures(err error, out *[]*RegistrationError) {
	if err == nil {
		return
	}

	var se *StartupError
	if errors.As(err, &se) {
		collectFailures(se.Left, out)
		collectFailures(se.Right, out)
		return
	}

	var re *RegistrationError
	if errors.As(err, &re) {
		*out = append(*out, re)
	}
}
