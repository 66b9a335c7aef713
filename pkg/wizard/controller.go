package wizard

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/goliatone/go-formwizard/pkg/formdata"
	"github.com/goliatone/go-formwizard/pkg/httpapi"
	"github.com/goliatone/go-formwizard/pkg/markup"
	"github.com/goliatone/go-formwizard/pkg/widget"
)

// API is the server side of a form. *httpapi.Client implements it.
type API interface {
	GetWidgets(ctx context.Context, ep, uid string, step int, data map[string]any) ([]string, error)
	Validate(ctx context.Context, ep, uid string, step int, data map[string]any) (httpapi.ValidationResult, error)
	Submit(ctx context.Context, method, action string, data map[string]any) (httpapi.SubmitResult, error)
}

var _ API = (*httpapi.Client)(nil)

// Phase is the controller's position in a step transition.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseLoading    Phase = "loading"
	PhaseShowing    Phase = "showing"
	PhaseValidating Phase = "validating"
	PhaseSubmitting Phase = "submitting"
	PhaseReady      Phase = "ready"
)

// Option configures a Controller.
type Option func(*Controller)

// WithFactory sets the widget factory. Defaults to sanitized Markup widgets.
func WithFactory(factory widget.Factory) Option {
	return func(c *Controller) {
		if factory != nil {
			c.factory = factory
		}
	}
}

// WithSurface sets the presentation surface.
func WithSurface(surface Surface) Option {
	return func(c *Controller) {
		if surface != nil {
			c.surface = surface
		}
	}
}

// WithLocation sets the location used for the hash mirror and the query
// merged into request payloads.
func WithLocation(location Location) Option {
	return func(c *Controller) {
		if location != nil {
			c.location = location
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithSkipTags excludes fields with the given tag names from every payload.
func WithSkipTags(tags ...string) Option {
	return func(c *Controller) {
		c.skipTags = append(c.skipTags, tags...)
	}
}

// Controller drives one multi-step form: it loads each step's widgets from
// the server, validates steps before moving on and submits the completed
// form. Operations run one at a time; a call made while another is in
// flight returns ErrBusy.
type Controller struct {
	// op serializes operations, mu guards state and the form tree.
	op sync.Mutex
	mu sync.Mutex

	form     Form
	api      API
	factory  widget.Factory
	surface  Surface
	location Location
	logger   *slog.Logger
	skipTags []string
	widgets  *widget.Registry

	currentStep int
	ready       bool
	validated   bool
	phase       Phase
	title       string
	messages    []Message

	observers map[EventType][]subscription
	nextSub   uint64
}

// New builds a controller for form. The form's uid is adopted from the
// location hash when the form mirrors its state there.
func New(form Form, api API, opts ...Option) (*Controller, error) {
	if api == nil {
		return nil, ErrAPIRequired
	}
	if err := form.normalize(); err != nil {
		return nil, err
	}
	c := &Controller{
		form:      form,
		api:       api,
		factory:   widget.MarkupFactory(),
		surface:   NopSurface{},
		logger:    slog.New(slog.DiscardHandler),
		widgets:   widget.NewRegistry(),
		phase:     PhaseIdle,
		observers: make(map[EventType][]subscription),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.form.title != nil {
		c.title = strings.TrimSpace(markup.Text(c.form.title))
	}
	c.adoptLocation()
	c.logger.Debug("wizard form ready", "form", c.form.UID, "steps", c.form.Steps)
	return c, nil
}

// Form returns the form attributes.
func (c *Controller) Form() Form {
	c.mu.Lock()
	defer c.mu.Unlock()
	form := c.form
	form.Areas = append([]string(nil), c.form.Areas...)
	form.Assets = append([]string(nil), c.form.Assets...)
	return form
}

// UID returns the form uid.
func (c *Controller) UID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form.UID
}

// CurrentStep returns the step whose widgets are shown; 0 before the first
// Forward.
func (c *Controller) CurrentStep() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentStep
}

// ReadyToSubmit reports whether the last step validated and the form is
// being or has been submitted.
func (c *Controller) ReadyToSubmit() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ready
}

// WidgetState is the visible state of one registered widget.
type WidgetState struct {
	UID       string
	ParentUID string
	Area      string
	Step      int
	Visible   bool
	State     string
}

// State is a snapshot of the controller.
type State struct {
	UID           string
	TotalSteps    int
	CurrentStep   int
	ReadyToSubmit bool
	Validated     bool
	Phase         Phase
	Widgets       []WidgetState
}

// State returns a snapshot of the controller state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	state := State{
		UID:           c.form.UID,
		TotalSteps:    c.form.Steps,
		CurrentStep:   c.currentStep,
		ReadyToSubmit: c.ready,
		Validated:     c.validated,
		Phase:         c.phase,
	}
	for _, w := range c.widgets.All() {
		state.Widgets = append(state.Widgets, WidgetState{
			UID:       w.UID(),
			ParentUID: w.ParentUID(),
			Area:      w.FormArea(),
			Step:      w.FormStep(),
			Visible:   w.Visible(),
			State:     w.State(),
		})
	}
	return state
}

// HTML renders the form with its current widgets, title and messages.
func (c *Controller) HTML() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return markup.Render(c.form.node)
}

// Serialize folds the fields of every widget into the payload sent to the
// server. Extra skipTags are excluded on top of the controller's own.
func (c *Controller) Serialize(skipTags ...string) map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.serializeLocked(skipTags...)
}

// Fill sets field values by control name and returns the names that matched
// no control, sorted.
func (c *Controller) Fill(values map[string]any) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var unmatched []string
	roots := c.rootsLocked()
	for name, value := range values {
		matched := false
		for _, w := range roots {
			if w.SetValue(name, value) {
				matched = true
			}
		}
		if !matched {
			unmatched = append(unmatched, name)
		}
	}
	sort.Strings(unmatched)
	return unmatched
}

// Reset restores every field to the value it was loaded with.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, w := range c.rootsLocked() {
		w.Reset()
	}
}

func (c *Controller) begin() error {
	if !c.op.TryLock() {
		return ErrBusy
	}
	return nil
}

func (c *Controller) end() { c.op.Unlock() }

func (c *Controller) setPhase(phase Phase) {
	c.mu.Lock()
	c.phase = phase
	c.mu.Unlock()
}

func (c *Controller) serializeLocked(skipTags ...string) map[string]any {
	return c.serializeWithLocked(formdata.WithSkipTags(skipTags...))
}

func (c *Controller) serializeWithLocked(opts ...formdata.Option) map[string]any {
	var fields []formdata.Field
	for _, w := range c.rootsLocked() {
		fields = append(fields, w.Fields()...)
	}
	opts = append([]formdata.Option{formdata.WithSkipTags(c.skipTags...)}, opts...)
	return formdata.Serialize(fields, opts...)
}

// payloadLocked is the serialized form with the page address and referer,
// then the location query merged over both.
func (c *Controller) payloadLocked() map[string]any {
	data := c.serializeLocked()
	if c.location == nil {
		return data
	}
	data = formdata.Merge(data, map[string]any{
		PayloadLocation: c.location.Href(),
		PayloadReferer:  c.location.Referer(),
	})
	return formdata.Merge(data, formdata.FromValues(c.location.Query()))
}

// rootsLocked returns the widgets not nested in another registered widget,
// in area order then load order. Nested widgets contribute through their
// parents.
func (c *Controller) rootsLocked() []widget.Widget {
	var roots []widget.Widget
	for _, w := range c.widgets.All() {
		if parent := w.ParentUID(); parent != "" {
			if _, ok := c.widgets.Get(parent); ok {
				continue
			}
		}
		roots = append(roots, w)
	}
	sort.SliceStable(roots, func(i, j int) bool {
		return c.form.areaIndex(roots[i].FormArea()) < c.form.areaIndex(roots[j].FormArea())
	})
	return roots
}

// orderedLocked returns every widget in area order then load order.
func (c *Controller) orderedLocked() []widget.Widget {
	all := c.widgets.All()
	sort.SliceStable(all, func(i, j int) bool {
		return c.form.areaIndex(all[i].FormArea()) < c.form.areaIndex(all[j].FormArea())
	})
	return all
}

func (c *Controller) adoptLocation() {
	if c.location == nil || !c.form.UpdateLocationHash {
		return
	}
	hash := c.location.Hash()
	if uid := strings.TrimSpace(hash.Get(HashFormUID)); uid != "" {
		c.form.UID = uid
		markup.SetAttr(c.form.node, "id", uid)
		return
	}
	hash.Set(HashFormUID, c.form.UID)
	c.location.SetHash(hash)
}

func (c *Controller) mirrorStepLocked() {
	if c.location == nil || !c.form.UpdateLocationHash || c.form.Steps <= 1 {
		return
	}
	hash := c.location.Hash()
	hash.Set(HashFormUID, c.form.UID)
	hash.Set(HashFormStep, strconv.Itoa(c.currentStep))
	c.location.SetHash(hash)
}

// requestedStep reads the step mirrored in the location hash.
func (c *Controller) requestedStep() int {
	if c.location == nil || !c.form.UpdateLocationHash {
		return 1
	}
	step, err := strconv.Atoi(c.location.Hash().Get(HashFormStep))
	if err != nil || step < 1 {
		return 1
	}
	return step
}

func errorText(err error) string {
	var apiErr *httpapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Text()
	}
	return err.Error()
}
