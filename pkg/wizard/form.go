package wizard

import (
	"fmt"
	"html"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	xhtml "golang.org/x/net/html"

	"github.com/goliatone/go-formwizard/pkg/markup"
)

// Default endpoints and areas used when a form element does not declare
// its own.
const (
	DefaultGetWidgetsEP = "form/widgets"
	DefaultValidationEP = "form/validate"
	DefaultMethod       = "POST"
	DefaultEnctype      = "application/x-www-form-urlencoded"
)

// FormNameField is the hidden field naming the form. It is left out of the
// query when a non-POST form navigates to its action.
const FormNameField = "__form_name"

// DefaultAreas lists the areas widgets can be placed in, in document order.
var DefaultAreas = []string{"hidden", "header", "body", "footer"}

const (
	classFormArea     = "form-area"
	classFormTitle    = "form-title"
	classFormMessages = "form-messages"
)

// Form holds the attributes of one form element.
type Form struct {
	UID     string
	Name    string
	Action  string
	Method  string
	Enctype string
	Weight  int
	// GetWidgetsEP and ValidationEP are the step endpoint prefixes; the
	// controller appends "/{uid}/{step}".
	GetWidgetsEP string
	ValidationEP string
	Steps        int
	// UpdateLocationHash mirrors the form uid and current step into the
	// location hash.
	UpdateLocationHash bool
	// Assets lists the asset references the form declared. They are exposed
	// for embedders and never loaded by the controller.
	Assets []string
	Areas  []string

	node     *xhtml.Node
	areas    map[string]*xhtml.Node
	title    *xhtml.Node
	messages *xhtml.Node
}

// normalize fills defaults and, for forms built in code, a skeleton tree the
// controller can place widgets into.
func (f *Form) normalize() error {
	f.UID = strings.TrimSpace(f.UID)
	if f.UID == "" {
		f.UID = uuid.NewString()
	}
	if f.Name == "" {
		f.Name = f.UID
	}
	if f.Method == "" {
		f.Method = DefaultMethod
	}
	f.Method = strings.ToUpper(f.Method)
	if f.Enctype == "" {
		f.Enctype = DefaultEnctype
	}
	if f.GetWidgetsEP == "" {
		f.GetWidgetsEP = DefaultGetWidgetsEP
	}
	if f.ValidationEP == "" {
		f.ValidationEP = DefaultValidationEP
	}
	if f.Steps < 1 {
		f.Steps = 1
	}
	if len(f.Areas) == 0 {
		f.Areas = append([]string(nil), DefaultAreas...)
	}
	if f.node == nil {
		return f.buildSkeleton()
	}
	return nil
}

// HasArea reports whether the form declares area.
func (f Form) HasArea(area string) bool {
	for _, candidate := range f.Areas {
		if candidate == area {
			return true
		}
	}
	return false
}

func (f Form) areaIndex(area string) int {
	for i, candidate := range f.Areas {
		if candidate == area {
			return i
		}
	}
	return len(f.Areas)
}

func (f *Form) buildSkeleton() error {
	var b strings.Builder
	fmt.Fprintf(&b, `<form id="%s" name="%s" action="%s" method="%s" enctype="%s" data-steps="%d">`,
		html.EscapeString(f.UID), html.EscapeString(f.Name), html.EscapeString(f.Action),
		html.EscapeString(f.Method), html.EscapeString(f.Enctype), f.Steps)
	fmt.Fprintf(&b, `<div class="%s"></div><div class="%s"></div>`, classFormTitle, classFormMessages)
	for _, area := range f.Areas {
		fmt.Fprintf(&b, `<div class="%s" data-form-area="%s"></div>`, classFormArea, html.EscapeString(area))
	}
	b.WriteString(`</form>`)

	nodes, err := markup.ParseFragment(b.String())
	if err != nil {
		return fmt.Errorf("wizard: build form skeleton: %w", err)
	}
	f.bind(nodes[0])
	return nil
}

// bind records the nodes the controller writes into.
func (f *Form) bind(node *xhtml.Node) {
	f.node = node
	f.areas = make(map[string]*xhtml.Node)
	for _, area := range markup.FindAll(node, markup.ByClass(classFormArea)) {
		name := markup.AttrOr(area, "data-form-area", "")
		if name == "" {
			continue
		}
		if _, exists := f.areas[name]; !exists {
			f.areas[name] = area
		}
	}
	f.title = markup.FindFirst(node, markup.ByClass(classFormTitle))
	f.messages = markup.FindFirst(node, markup.ByClass(classFormMessages))
}

// ParseForms finds every wizard form in a page: <form> elements carrying
// data-steps or data-get-widgets-ep.
func ParseForms(page string) ([]Form, error) {
	doc, err := markup.ParseDocument(page)
	if err != nil {
		return nil, fmt.Errorf("wizard: parse page: %w", err)
	}
	nodes := markup.FindAll(doc, func(node *xhtml.Node) bool {
		if !strings.EqualFold(node.Data, "form") {
			return false
		}
		return markup.HasAttr(node, "data-steps") || markup.HasAttr(node, "data-get-widgets-ep")
	})
	if len(nodes) == 0 {
		return nil, ErrNoForms
	}
	forms := make([]Form, 0, len(nodes))
	for _, node := range nodes {
		form, err := formFromNode(node)
		if err != nil {
			return nil, err
		}
		forms = append(forms, form)
	}
	return forms, nil
}

func formFromNode(node *xhtml.Node) (Form, error) {
	form := Form{
		UID:                markup.AttrOr(node, "data-uid", markup.AttrOr(node, "id", "")),
		Name:               markup.AttrOr(node, "name", ""),
		Action:             markup.AttrOr(node, "action", ""),
		Method:             markup.AttrOr(node, "method", DefaultMethod),
		Enctype:            markup.AttrOr(node, "enctype", ""),
		GetWidgetsEP:       markup.AttrOr(node, "data-get-widgets-ep", ""),
		ValidationEP:       markup.AttrOr(node, "data-validation-ep", ""),
		UpdateLocationHash: markup.IsTrue(markup.AttrOr(node, "data-update-location-hash", "")),
		Areas:              append([]string(nil), DefaultAreas...),
	}

	var err error
	if form.Steps, err = intAttr(node, "data-steps", 1); err != nil {
		return Form{}, err
	}
	if form.Weight, err = intAttr(node, "data-weight", 0); err != nil {
		return Form{}, err
	}
	for _, asset := range strings.Split(markup.AttrOr(node, "data-assets", ""), ",") {
		if trimmed := strings.TrimSpace(asset); trimmed != "" {
			form.Assets = append(form.Assets, trimmed)
		}
	}

	form.bind(node)
	for _, area := range markup.FindAll(node, markup.ByClass(classFormArea)) {
		if name := markup.AttrOr(area, "data-form-area", ""); name != "" && !form.HasArea(name) {
			form.Areas = append(form.Areas, name)
		}
	}
	if form.UID == "" {
		form.UID = uuid.NewString()
		markup.SetAttr(node, "id", form.UID)
	}
	return form, nil
}

func intAttr(node *xhtml.Node, key string, fallback int) (int, error) {
	raw := markup.AttrOr(node, key, "")
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("wizard: invalid %s %q: %w", key, raw, err)
	}
	return value, nil
}

// Discover builds a controller for every wizard form in page, ordered by
// weight. The controllers share api and opts.
func Discover(page string, api API, opts ...Option) ([]*Controller, error) {
	forms, err := ParseForms(page)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(forms, func(i, j int) bool {
		return forms[i].Weight < forms[j].Weight
	})
	controllers := make([]*Controller, 0, len(forms))
	for _, form := range forms {
		controller, err := New(form, api, opts...)
		if err != nil {
			return nil, fmt.Errorf("wizard: form %q: %w", form.UID, err)
		}
		controllers = append(controllers, controller)
	}
	return controllers, nil
}
