package wizard

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-formwizard/pkg/widget"
)

var (
	// ErrBusy is returned by mutating calls while another operation is in
	// flight on the same controller.
	ErrBusy = errors.New("wizard: operation in progress")
	// ErrAPIRequired is returned by New when no API is given.
	ErrAPIRequired = errors.New("wizard: api is required")
	// ErrNoPreviousStep is returned by Backward at the first step.
	ErrNoPreviousStep = errors.New("wizard: no previous step")
	// ErrUnknownArea is returned when a widget names an area the form does
	// not declare.
	ErrUnknownArea = errors.New("wizard: unknown form area")
	// ErrWidgetNotFound is returned for lookups of unregistered widgets.
	ErrWidgetNotFound = widget.ErrNotFound
	// ErrNoForms is returned by ParseForms when a page holds no wizard form.
	ErrNoForms = errors.New("wizard: no forms found")
)

// ValidationError reports a step the server rejected. Messages maps widget
// uids, as the server sent them, to their messages.
type ValidationError struct {
	Step     int
	Messages map[string][]string
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "wizard: validation failed"
	}
	if len(e.Messages) == 0 {
		return fmt.Sprintf("wizard: step %d failed validation", e.Step)
	}
	uids := make([]string, 0, len(e.Messages))
	for uid := range e.Messages {
		uids = append(uids, uid)
	}
	sort.Strings(uids)
	return fmt.Sprintf("wizard: step %d failed validation: %s", e.Step, strings.Join(uids, ", "))
}

// WidgetCountError reports a step whose registered widgets do not match the
// fragments the server returned, usually because a fragment reused a uid.
type WidgetCountError struct {
	Step     int
	Expected int
	Loaded   int
}

func (e *WidgetCountError) Error() string {
	if e == nil {
		return "wizard: widget count mismatch"
	}
	return fmt.Sprintf("wizard: step %d expected %d widgets, registered %d", e.Step, e.Expected, e.Loaded)
}
