package wizard

import (
	"context"
	"fmt"

	xhtml "golang.org/x/net/html"

	"github.com/goliatone/go-formwizard/pkg/markup"
	"github.com/goliatone/go-formwizard/pkg/widget"
)

// nodeHolder is implemented by widgets that render into the form tree.
type nodeHolder interface {
	Node() *xhtml.Node
}

// Widget returns the widget registered under uid. Both the registered uid
// and the uid as the server sent it (without the form prefix) are accepted.
func (c *Controller) Widget(uid string) (widget.Widget, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lookupLocked(uid)
}

// Widgets returns every registered widget in load order.
func (c *Controller) Widgets() []widget.Widget {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.widgets.All()
}

// CountWidgets reports how many widgets belong to step.
func (c *Controller) CountWidgets(step int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.widgets.Count(step)
}

// AddWidget builds a widget from a server fragment and places it into the
// form, hidden. The widget is not assigned a step.
func (c *Controller) AddWidget(raw string) (widget.Widget, error) {
	if err := c.begin(); err != nil {
		return nil, err
	}
	defer c.end()
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.addWidgetLocked(raw)
}

// RemoveWidget removes the widget and the widgets nested in it.
func (c *Controller) RemoveWidget(uid string) error {
	if err := c.begin(); err != nil {
		return err
	}
	defer c.end()
	c.mu.Lock()
	defer c.mu.Unlock()
	w, ok := c.lookupLocked(uid)
	if !ok {
		return fmt.Errorf("%w: %q", ErrWidgetNotFound, uid)
	}
	c.removeWidgetLocked(w.UID())
	return nil
}

// ShowWidgets shows the widgets of step.
func (c *Controller) ShowWidgets(step int) error {
	if err := c.begin(); err != nil {
		return err
	}
	defer c.end()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.showStepLocked(step)
	return nil
}

// HideWidgets hides the widgets of step.
func (c *Controller) HideWidgets(step int) error {
	if err := c.begin(); err != nil {
		return err
	}
	defer c.end()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hideStepLocked(step)
	return nil
}

// RemoveWidgets removes the widgets of step.
func (c *Controller) RemoveWidgets(step int) error {
	if err := c.begin(); err != nil {
		return err
	}
	defer c.end()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.removeStepLocked(step)
	return nil
}

// LoadWidgets fetches the widgets of step and registers them, hidden.
func (c *Controller) LoadWidgets(ctx context.Context, step int) error {
	if err := c.begin(); err != nil {
		return err
	}
	defer c.end()
	return c.loadWidgets(ctx, step)
}

func (c *Controller) loadWidgets(ctx context.Context, step int) error {
	c.mu.Lock()
	data := c.payloadLocked()
	c.mu.Unlock()

	fragments, err := c.api.GetWidgets(ctx, c.form.GetWidgetsEP, c.form.UID, step, data)
	if err != nil {
		c.logger.Error("wizard load widgets failed", "form", c.form.UID, "step", step, "error", err)
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, raw := range fragments {
		w, err := c.addWidgetLocked(raw)
		if err != nil {
			return fmt.Errorf("wizard: step %d: %w", step, err)
		}
		w.SetFormStep(step)
	}
	if loaded := c.widgets.Count(step); loaded != len(fragments) {
		return &WidgetCountError{Step: step, Expected: len(fragments), Loaded: loaded}
	}
	c.logger.Debug("wizard widgets loaded", "form", c.form.UID, "step", step, "count", len(fragments))
	return nil
}

func (c *Controller) prefixed(uid string) string {
	return c.form.UID + "_" + uid
}

func (c *Controller) lookupLocked(uid string) (widget.Widget, bool) {
	if w, ok := c.widgets.Get(uid); ok {
		return w, true
	}
	return c.widgets.Get(c.prefixed(uid))
}

func (c *Controller) addWidgetLocked(raw string) (widget.Widget, error) {
	w, err := c.factory(raw)
	if err != nil {
		return nil, err
	}
	w.SetUID(c.prefixed(w.UID()))
	if parentUID := w.ParentUID(); parentUID != "" {
		w.SetParentUID(c.prefixed(parentUID))
	}
	w.Hide()

	if replaces := w.Replaces(); replaces != "" {
		if old, ok := c.lookupLocked(replaces); ok {
			c.removeWidgetLocked(old.UID())
		}
	}
	if _, exists := c.widgets.Get(w.UID()); exists {
		c.removeWidgetLocked(w.UID())
	}

	if parentUID := w.ParentUID(); parentUID != "" {
		parent, ok := c.widgets.Get(parentUID)
		if !ok {
			return nil, fmt.Errorf("%w: parent %q of %q", ErrWidgetNotFound, parentUID, w.UID())
		}
		if err := parent.AppendChild(w); err != nil {
			return nil, err
		}
	} else {
		area := w.FormArea()
		if !c.form.HasArea(area) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownArea, area)
		}
		if holder, ok := w.(nodeHolder); ok {
			if node := c.form.areas[area]; node != nil {
				markup.Detach(holder.Node())
				node.AppendChild(holder.Node())
			}
		}
	}

	c.widgets.Add(w)
	return w, nil
}

func (c *Controller) removeWidgetLocked(uid string) {
	w, ok := c.widgets.Remove(uid)
	if !ok {
		return
	}
	w.Remove()
	for _, other := range c.widgets.All() {
		if other.ParentUID() == uid {
			c.removeWidgetLocked(other.UID())
		}
	}
}

func (c *Controller) showStepLocked(step int) {
	for _, w := range c.widgets.ByStep(step) {
		w.Show()
	}
}

func (c *Controller) hideStepLocked(step int) {
	for _, w := range c.widgets.ByStep(step) {
		w.Hide()
	}
}

func (c *Controller) removeStepLocked(step int) {
	for _, w := range c.widgets.ByStep(step) {
		c.removeWidgetLocked(w.UID())
	}
}
