package widget

import (
	"errors"

	"github.com/goliatone/go-formwizard/pkg/formdata"
)

// Message severities understood by widgets and the form message area.
const (
	SeverityInfo    = "info"
	SeveritySuccess = "success"
	SeverityWarning = "warning"
	SeverityDanger  = "danger"
)

// StateError marks a widget that failed validation.
const StateError = "error"

// DefaultArea is used when a fragment does not name its form area.
const DefaultArea = "body"

var (
	// ErrMissingUID is returned when a fragment root carries no data-uid.
	ErrMissingUID = errors.New("widget: fragment root has no data-uid")
	// ErrNotFound is returned when a widget uid is not registered.
	ErrNotFound = errors.New("widget: not found")
	// ErrUnsupportedChild is returned when a widget cannot host the child.
	ErrUnsupportedChild = errors.New("widget: unsupported child widget")
)

// Message is a text notice attached to a widget or to the form.
type Message struct {
	Text     string
	Severity string
}

// Widget is the contract between the form controller and the widget toolkit.
// A widget is a rendered block of form fields with an identity, a form step
// and an optional parent used for nested composition.
type Widget interface {
	UID() string
	SetUID(uid string)
	ParentUID() string
	SetParentUID(uid string)
	// Replaces names the uid of a widget this one supersedes, if any.
	Replaces() string
	FormArea() string
	FormStep() int
	SetFormStep(step int)
	// AlwaysHidden widgets never become visible, so their validation
	// messages are routed to the form instead.
	AlwaysHidden() bool

	Show()
	Hide()
	Visible() bool

	State() string
	SetState(state string)
	ClearState()

	Messages() []Message
	AddMessage(text, severity string)
	ClearMessages()

	AppendChild(child Widget) error
	Children() []Widget
	// Remove detaches the widget from its parent or area.
	Remove()

	// Fields lists the named controls of the widget and its children in
	// document order.
	Fields() []formdata.Field
	// SetValue assigns value to every control named name and reports whether
	// any control matched.
	SetValue(name string, value any) bool
	// Reset restores every control to its initial value.
	Reset()

	HTML() (string, error)
}

// Factory builds a widget from one markup fragment returned by the server.
type Factory func(markup string) (Widget, error)
