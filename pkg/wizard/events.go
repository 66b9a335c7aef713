package wizard

import (
	"github.com/goliatone/go-formwizard/pkg/httpapi"
)

// EventType names a controller event.
type EventType string

const (
	EventForward         EventType = "forward"
	EventBackward        EventType = "backward"
	EventPreSubmit       EventType = "preSubmit"
	EventSubmit          EventType = "submit"
	EventSubmitError     EventType = "submitError"
	EventValidationError EventType = "validationError"
)

// Event is delivered to observers after the controller state changed.
// Response is set for EventSubmit of a POST form and Err for the error
// events.
type Event struct {
	Type     EventType
	FormUID  string
	Step     int
	Response *httpapi.SubmitResult
	Err      error
}

// Handler observes controller events. Handlers run synchronously on the
// goroutine that drives the controller; mutating calls from a handler
// return ErrBusy.
type Handler func(Event)

type subscription struct {
	id uint64
	fn Handler
}

// On registers fn for event and returns a func that removes it.
func (c *Controller) On(event EventType, fn Handler) func() {
	if fn == nil {
		return func() {}
	}
	c.mu.Lock()
	c.nextSub++
	id := c.nextSub
	c.observers[event] = append(c.observers[event], subscription{id: id, fn: fn})
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		subs := c.observers[event]
		for i, sub := range subs {
			if sub.id == id {
				c.observers[event] = append(subs[:i:i], subs[i+1:]...)
				return
			}
		}
	}
}

func (c *Controller) emit(evt Event) {
	c.mu.Lock()
	evt.FormUID = c.form.UID
	if evt.Step == 0 {
		evt.Step = c.currentStep
	}
	subs := append([]subscription(nil), c.observers[evt.Type]...)
	c.mu.Unlock()

	c.logger.Debug("wizard event", "form", evt.FormUID, "event", string(evt.Type), "step", evt.Step)
	for _, sub := range subs {
		sub.fn(evt)
	}
}
