package wizard

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"strings"

	"github.com/goliatone/go-formwizard/pkg/formdata"
	"github.com/goliatone/go-formwizard/pkg/httpapi"
	"github.com/goliatone/go-formwizard/pkg/widget"
)

// Start loads the first step, then walks forward to the step mirrored in the
// location hash, stopping at the first step that does not validate.
func (c *Controller) Start(ctx context.Context) error {
	if err := c.begin(); err != nil {
		return err
	}
	defer c.end()

	target := c.requestedStep()
	if target > c.form.Steps {
		target = c.form.Steps
	}
	for {
		if err := c.forward(ctx); err != nil {
			return err
		}
		if c.CurrentStep() >= target {
			return nil
		}
	}
}

// Forward validates the current step and moves to the next one. At the last
// step it marks the form ready and submits it instead of loading widgets.
func (c *Controller) Forward(ctx context.Context) error {
	if err := c.begin(); err != nil {
		return err
	}
	defer c.end()
	return c.forward(ctx)
}

func (c *Controller) forward(ctx context.Context) error {
	c.surface.SetSubmitEnabled(false)
	defer c.surface.SetSubmitEnabled(true)

	if err := c.validate(ctx); err != nil {
		return err
	}

	c.mu.Lock()
	previous := c.currentStep
	if previous >= c.form.Steps {
		c.ready = true
		c.mu.Unlock()
		return c.submit(ctx)
	}
	c.hideStepLocked(previous)
	c.currentStep = previous + 1
	c.phase = PhaseLoading
	c.mirrorStepLocked()
	next := c.currentStep
	c.mu.Unlock()

	if err := c.loadWidgets(ctx, next); err != nil {
		var countErr *WidgetCountError
		if errors.As(err, &countErr) {
			c.setPhase(PhaseShowing)
			return err
		}
		c.mu.Lock()
		c.removeStepLocked(next)
		c.currentStep = previous
		c.showStepLocked(previous)
		c.mirrorStepLocked()
		c.addMessageLocked(errorText(err), widget.SeverityDanger)
		c.phase = PhaseShowing
		c.mu.Unlock()
		c.surface.ScrollTo(ScrollTarget{Kind: ScrollTop})
		return err
	}

	c.mu.Lock()
	c.validated = false
	c.showStepLocked(next)
	c.phase = PhaseShowing
	c.mu.Unlock()

	c.emit(Event{Type: EventForward, Step: next})
	if next > 1 {
		c.surface.ScrollTo(ScrollTarget{Kind: ScrollForm})
	}
	return nil
}

// Backward drops the current step's widgets and shows the previous step.
func (c *Controller) Backward() error {
	if err := c.begin(); err != nil {
		return err
	}
	defer c.end()

	c.mu.Lock()
	if c.currentStep <= 1 {
		c.mu.Unlock()
		return ErrNoPreviousStep
	}
	c.removeStepLocked(c.currentStep)
	c.currentStep--
	c.ready = false
	c.validated = false
	c.showStepLocked(c.currentStep)
	c.mirrorStepLocked()
	c.phase = PhaseShowing
	step := c.currentStep
	c.mu.Unlock()

	c.surface.ScrollTo(ScrollTarget{Kind: ScrollForm})
	c.emit(Event{Type: EventBackward, Step: step})
	return nil
}

// Validate asks the server to validate the current step and routes the
// returned messages to their widgets. It returns *ValidationError when the
// server rejects the step.
func (c *Controller) Validate(ctx context.Context) error {
	if err := c.begin(); err != nil {
		return err
	}
	defer c.end()
	return c.validate(ctx)
}

func (c *Controller) validate(ctx context.Context) error {
	c.mu.Lock()
	step := c.currentStep
	if step == 0 {
		c.mu.Unlock()
		return nil
	}
	c.clearMessagesLocked()
	for _, w := range c.widgets.All() {
		w.ClearState()
		w.ClearMessages()
	}
	c.phase = PhaseValidating
	data := c.payloadLocked()
	c.mu.Unlock()

	result, err := c.api.Validate(ctx, c.form.ValidationEP, c.form.UID, step, data)
	if err != nil {
		c.logger.Error("wizard validate failed", "form", c.form.UID, "step", step, "error", err)
		c.mu.Lock()
		c.addMessageLocked(errorText(err), widget.SeverityDanger)
		c.phase = PhaseShowing
		c.mu.Unlock()
		c.surface.ScrollTo(ScrollTarget{Kind: ScrollTop})
		return err
	}

	c.mu.Lock()
	c.phase = PhaseShowing
	if result.Status {
		c.validated = true
		c.mu.Unlock()
		return nil
	}
	c.validated = false

	uids := make([]string, 0, len(result.Messages))
	for uid := range result.Messages {
		uids = append(uids, uid)
	}
	sort.Strings(uids)
	for _, uid := range uids {
		w, ok := c.lookupLocked(uid)
		for _, text := range result.Messages[uid] {
			if !ok || w.AlwaysHidden() {
				c.addMessageLocked(uid+": "+text, widget.SeverityDanger)
				continue
			}
			w.SetState(widget.StateError)
			w.AddMessage(text, widget.SeverityDanger)
		}
	}
	target := ScrollTarget{Kind: ScrollMessages}
	for _, w := range c.orderedLocked() {
		if w.State() == widget.StateError {
			target = ScrollTarget{Kind: ScrollWidget, WidgetUID: w.UID()}
			break
		}
	}
	c.mu.Unlock()

	c.surface.ScrollTo(target)
	verr := &ValidationError{Step: step, Messages: result.Messages}
	c.emit(Event{Type: EventValidationError, Step: step, Err: verr})
	return verr
}

// Submit is the form's submit handler. Until the last step validated it moves
// forward; once ready it sends the serialized form to the form action.
func (c *Controller) Submit(ctx context.Context) error {
	if err := c.begin(); err != nil {
		return err
	}
	defer c.end()

	c.mu.Lock()
	ready := c.ready
	c.mu.Unlock()
	if !ready {
		c.ClearMessages()
		return c.forward(ctx)
	}
	return c.submit(ctx)
}

func (c *Controller) submit(ctx context.Context) error {
	c.mu.Lock()
	c.clearMessagesLocked()
	c.mu.Unlock()

	c.emit(Event{Type: EventPreSubmit})
	c.surface.SetSubmitEnabled(false)

	if c.form.Method != http.MethodPost {
		return c.navigateSubmit()
	}

	c.mu.Lock()
	c.phase = PhaseSubmitting
	data := c.serializeLocked()
	c.mu.Unlock()

	result, err := c.api.Submit(ctx, c.form.Method, c.form.Action, data)
	if err != nil {
		c.logger.Error("wizard submit failed", "form", c.form.UID, "error", err)
		c.mu.Lock()
		c.phase = PhaseShowing
		var apiErr *httpapi.Error
		if errors.As(err, &apiErr) && (apiErr.Warning != "" || apiErr.Message != "") {
			if apiErr.Warning != "" {
				c.addMessageLocked(apiErr.Warning, widget.SeverityWarning)
			}
			if apiErr.Message != "" {
				c.addMessageLocked(apiErr.Message, widget.SeverityDanger)
			}
		} else {
			c.addMessageLocked(errorText(err), widget.SeverityDanger)
		}
		c.mu.Unlock()

		c.emit(Event{Type: EventSubmitError, Err: err})
		c.surface.ScrollTo(ScrollTarget{Kind: ScrollMessages})
		c.surface.SetSubmitEnabled(true)
		return err
	}

	c.setPhase(PhaseReady)
	c.logger.Info("wizard form submitted", "form", c.form.UID)
	c.emit(Event{Type: EventSubmit, Response: &result})

	if result.Alert != "" {
		c.surface.Alert(result.Alert)
	}
	if result.Reset {
		c.Reset()
		c.surface.SetSubmitEnabled(true)
	}
	if result.Redirect != "" {
		c.surface.Navigate(result.Redirect)
	}
	return nil
}

// navigateSubmit sends a non-POST form the way a browser does: the page
// moves to the action with the fields in its query.
func (c *Controller) navigateSubmit() error {
	c.mu.Lock()
	data := c.serializeWithLocked(formdata.WithSkipNames(FormNameField))
	c.phase = PhaseReady
	c.mu.Unlock()

	target := c.form.Action
	if query := formdata.Encode(data).Encode(); query != "" {
		sep := "?"
		if strings.Contains(target, "?") {
			sep = "&"
		}
		target += sep + query
	}
	c.logger.Info("wizard form submitted", "form", c.form.UID, "method", c.form.Method, "target", target)
	c.emit(Event{Type: EventSubmit})
	c.surface.Navigate(target)
	return nil
}
