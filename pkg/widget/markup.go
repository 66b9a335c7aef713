package widget

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/goliatone/go-formwizard/pkg/formdata"
	"github.com/goliatone/go-formwizard/pkg/markup"
)

const (
	attrUID               = "data-uid"
	attrParentUID         = "data-parent-uid"
	attrReplaces          = "data-replaces"
	attrFormArea          = "data-form-area"
	attrFormStep          = "data-form-step"
	attrHidden            = "data-hidden"
	attrSkipSerialization = "data-skip-serialization"

	classHidden   = "hidden"
	classMessages = "widget-messages"
	classChildren = "widget-children"
)

var stateClasses = map[string]string{
	StateError: "has-error",
	"warning":  "has-warning",
	"success":  "has-success",
}

// MarkupOption configures markup backed widgets.
type MarkupOption func(*markupConfig)

type markupConfig struct {
	sanitize bool
}

// WithoutSanitizer keeps fragments verbatim. Only use it for markup from a
// trusted source.
func WithoutSanitizer() MarkupOption {
	return func(cfg *markupConfig) {
		cfg.sanitize = false
	}
}

// MarkupFactory returns a Factory producing Markup widgets.
func MarkupFactory(opts ...MarkupOption) Factory {
	return func(raw string) (Widget, error) {
		return NewMarkup(raw, opts...)
	}
}

type control struct {
	value    string
	hasValue bool
	checked  bool
	text     string
	selected []bool
}

// Markup is a Widget backed by a parsed HTML fragment. Visibility, state and
// messages are reflected in the fragment so HTML always renders the current
// widget.
type Markup struct {
	root *html.Node

	uid          string
	parentUID    string
	replaces     string
	area         string
	step         int
	alwaysHidden bool

	visible  bool
	state    string
	messages []Message
	msgNode  *html.Node

	parent   *Markup
	children []Widget

	initial map[*html.Node]control
}

// NewMarkup parses a server fragment into a widget. The first element of the
// fragment is the widget root and must carry data-uid.
func NewMarkup(raw string, opts ...MarkupOption) (*Markup, error) {
	cfg := markupConfig{sanitize: true}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.sanitize {
		raw = markup.SanitizeFragment(raw)
	}
	nodes, err := markup.ParseFragment(raw)
	if err != nil {
		return nil, fmt.Errorf("widget: parse fragment: %w", err)
	}
	root := nodes[0]

	uid := markup.AttrOr(root, attrUID, "")
	if uid == "" {
		return nil, ErrMissingUID
	}

	w := &Markup{
		root:         root,
		uid:          uid,
		parentUID:    markup.AttrOr(root, attrParentUID, ""),
		replaces:     markup.AttrOr(root, attrReplaces, ""),
		area:         markup.AttrOr(root, attrFormArea, DefaultArea),
		alwaysHidden: markup.IsTrue(markup.AttrOr(root, attrHidden, "")),
		visible:      !markup.HasClass(root, classHidden),
	}
	if stepAttr := markup.AttrOr(root, attrFormStep, ""); stepAttr != "" {
		step, err := strconv.Atoi(stepAttr)
		if err != nil {
			return nil, fmt.Errorf("widget: invalid %s %q: %w", attrFormStep, stepAttr, err)
		}
		w.step = step
	}
	if w.alwaysHidden {
		w.visible = false
		markup.AddClass(root, classHidden)
	}
	w.snapshot()
	return w, nil
}

// Node exposes the widget root so a form can place it into its own tree.
func (w *Markup) Node() *html.Node { return w.root }

func (w *Markup) UID() string { return w.uid }

func (w *Markup) SetUID(uid string) {
	w.uid = uid
	markup.SetAttr(w.root, attrUID, uid)
}

func (w *Markup) ParentUID() string { return w.parentUID }

func (w *Markup) SetParentUID(uid string) {
	w.parentUID = uid
	if uid == "" {
		markup.RemoveAttr(w.root, attrParentUID)
		return
	}
	markup.SetAttr(w.root, attrParentUID, uid)
}

func (w *Markup) Replaces() string { return w.replaces }

func (w *Markup) FormArea() string { return w.area }

func (w *Markup) FormStep() int { return w.step }

func (w *Markup) SetFormStep(step int) {
	w.step = step
	markup.SetAttr(w.root, attrFormStep, strconv.Itoa(step))
}

func (w *Markup) AlwaysHidden() bool { return w.alwaysHidden }

// Show makes the widget visible unless it is always hidden.
func (w *Markup) Show() {
	if w.alwaysHidden {
		return
	}
	w.visible = true
	markup.RemoveClass(w.root, classHidden)
}

func (w *Markup) Hide() {
	w.visible = false
	markup.AddClass(w.root, classHidden)
}

func (w *Markup) Visible() bool { return w.visible }

func (w *Markup) State() string { return w.state }

func (w *Markup) SetState(state string) {
	w.ClearState()
	w.state = state
	if class, ok := stateClasses[state]; ok {
		markup.AddClass(w.root, class)
	}
}

func (w *Markup) ClearState() {
	w.state = ""
	for _, class := range stateClasses {
		markup.RemoveClass(w.root, class)
	}
}

func (w *Markup) Messages() []Message {
	return append([]Message(nil), w.messages...)
}

// AddMessage appends a help block to the widget. Text is stored verbatim and
// escaped when rendered.
func (w *Markup) AddMessage(text, severity string) {
	if severity == "" {
		severity = SeverityInfo
	}
	w.messages = append(w.messages, Message{Text: text, Severity: severity})

	if w.msgNode == nil {
		w.msgNode = &html.Node{
			Type:     html.ElementNode,
			Data:     "div",
			DataAtom: atom.Div,
			Attr:     []html.Attribute{{Key: "class", Val: classMessages}},
		}
		w.root.AppendChild(w.msgNode)
	}
	block := &html.Node{
		Type:     html.ElementNode,
		Data:     "span",
		DataAtom: atom.Span,
		Attr:     []html.Attribute{{Key: "class", Val: "help-block text-" + severity}},
	}
	block.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	w.msgNode.AppendChild(block)
}

func (w *Markup) ClearMessages() {
	w.messages = nil
	if w.msgNode != nil {
		markup.Detach(w.msgNode)
		w.msgNode = nil
	}
}

// AppendChild nests child inside this widget. Markup children are placed into
// the first ".widget-children" element, or the widget root.
func (w *Markup) AppendChild(child Widget) error {
	if child == nil {
		return ErrUnsupportedChild
	}
	if typed, ok := child.(*Markup); ok {
		container := markup.FindFirst(w.root, markup.ByClass(classChildren))
		if container == nil {
			container = w.root
		}
		markup.Detach(typed.root)
		if w.msgNode != nil && container == w.root {
			container.InsertBefore(typed.root, w.msgNode)
		} else {
			container.AppendChild(typed.root)
		}
		typed.parent = w
	}
	w.children = append(w.children, child)
	return nil
}

func (w *Markup) Children() []Widget {
	return append([]Widget(nil), w.children...)
}

func (w *Markup) Remove() {
	markup.Detach(w.root)
	if w.parent != nil {
		w.parent.dropChild(w)
		w.parent = nil
	}
}

func (w *Markup) dropChild(child Widget) {
	kept := w.children[:0]
	for _, existing := range w.children {
		if existing != child {
			kept = append(kept, existing)
		}
	}
	w.children = kept
}

// Fields returns the widget's own controls followed by its children's.
func (w *Markup) Fields() []formdata.Field {
	var fields []formdata.Field
	w.eachControl(func(node *html.Node) {
		fields = append(fields, fieldsOf(node)...)
	})
	for _, child := range w.children {
		fields = append(fields, child.Fields()...)
	}
	return fields
}

func (w *Markup) SetValue(name string, value any) bool {
	values := stringValues(value)
	matched := false
	w.eachControl(func(node *html.Node) {
		if markup.AttrOr(node, "name", "") != name {
			return
		}
		matched = true
		assign(node, values)
	})
	for _, child := range w.children {
		if child.SetValue(name, value) {
			matched = true
		}
	}
	return matched
}

func (w *Markup) Reset() {
	for node, initial := range w.initial {
		restore(node, initial)
	}
	for _, child := range w.children {
		child.Reset()
	}
}

func (w *Markup) HTML() (string, error) {
	return markup.Render(w.root)
}

// eachControl visits named controls owned by this widget, skipping the
// subtrees of nested Markup children.
func (w *Markup) eachControl(fn func(*html.Node)) {
	nested := make(map[*html.Node]struct{}, len(w.children))
	for _, child := range w.children {
		if typed, ok := child.(*Markup); ok {
			nested[typed.root] = struct{}{}
		}
	}
	markup.Walk(w.root, func(node *html.Node) bool {
		if _, skip := nested[node]; skip {
			return false
		}
		if node.Type == html.ElementNode && isControl(node) && markup.HasAttr(node, "name") {
			fn(node)
		}
		return true
	})
}

func (w *Markup) snapshot() {
	w.initial = make(map[*html.Node]control)
	w.eachControl(func(node *html.Node) {
		w.initial[node] = capture(node)
	})
}

func isControl(node *html.Node) bool {
	switch node.DataAtom {
	case atom.Input, atom.Select, atom.Textarea, atom.Button:
		return true
	default:
		return false
	}
}

func fieldsOf(node *html.Node) []formdata.Field {
	base := formdata.Field{
		Name:              markup.AttrOr(node, "name", ""),
		Tag:               node.Data,
		SkipSerialization: markup.IsTrue(markup.AttrOr(node, attrSkipSerialization, "")),
	}

	switch node.DataAtom {
	case atom.Input:
		base.Type = strings.ToLower(markup.AttrOr(node, "type", "text"))
		base.Checked = markup.HasAttr(node, "checked")
		value, ok := markup.Attr(node, "value")
		if !ok && base.Checkable() {
			value = "on"
		}
		base.Value = value
		return []formdata.Field{base}

	case atom.Textarea:
		base.Value = markup.Text(node)
		return []formdata.Field{base}

	case atom.Select:
		options := markup.FindAll(node, markup.ByTag("option"))
		if markup.HasAttr(node, "multiple") {
			var out []formdata.Field
			for _, option := range options {
				if markup.HasAttr(option, "selected") {
					field := base
					field.Value = optionValue(option)
					out = append(out, field)
				}
			}
			return out
		}
		for _, option := range options {
			if markup.HasAttr(option, "selected") {
				base.Value = optionValue(option)
				return []formdata.Field{base}
			}
		}
		if len(options) > 0 {
			base.Value = optionValue(options[0])
		}
		return []formdata.Field{base}

	default:
		base.Value, _ = markup.Attr(node, "value")
		return []formdata.Field{base}
	}
}

func optionValue(option *html.Node) string {
	if value, ok := markup.Attr(option, "value"); ok {
		return value
	}
	return strings.TrimSpace(markup.Text(option))
}

func stringValues(value any) []string {
	switch typed := value.(type) {
	case nil:
		return nil
	case string:
		return []string{typed}
	case []string:
		return typed
	case []any:
		out := make([]string, 0, len(typed))
		for _, item := range typed {
			out = append(out, fmt.Sprint(item))
		}
		return out
	default:
		return []string{fmt.Sprint(typed)}
	}
}

func assign(node *html.Node, values []string) {
	first := ""
	if len(values) > 0 {
		first = values[0]
	}
	switch node.DataAtom {
	case atom.Input:
		kind := strings.ToLower(markup.AttrOr(node, "type", "text"))
		if kind == "checkbox" || kind == "radio" {
			own := markup.AttrOr(node, "value", "on")
			setBoolAttr(node, "checked", contains(values, own))
			return
		}
		markup.SetAttr(node, "value", first)
	case atom.Textarea:
		markup.SetText(node, first)
	case atom.Select:
		for _, option := range markup.FindAll(node, markup.ByTag("option")) {
			setBoolAttr(option, "selected", contains(values, optionValue(option)))
		}
	default:
		markup.SetAttr(node, "value", first)
	}
}

func capture(node *html.Node) control {
	state := control{checked: markup.HasAttr(node, "checked")}
	state.value, state.hasValue = markup.Attr(node, "value")
	switch node.DataAtom {
	case atom.Textarea:
		state.text = markup.Text(node)
	case atom.Select:
		for _, option := range markup.FindAll(node, markup.ByTag("option")) {
			state.selected = append(state.selected, markup.HasAttr(option, "selected"))
		}
	}
	return state
}

func restore(node *html.Node, state control) {
	switch node.DataAtom {
	case atom.Textarea:
		markup.SetText(node, state.text)
	case atom.Select:
		for i, option := range markup.FindAll(node, markup.ByTag("option")) {
			setBoolAttr(option, "selected", i < len(state.selected) && state.selected[i])
		}
	default:
		if state.hasValue {
			markup.SetAttr(node, "value", state.value)
		} else {
			markup.RemoveAttr(node, "value")
		}
		setBoolAttr(node, "checked", state.checked)
	}
}

func setBoolAttr(node *html.Node, key string, on bool) {
	if on {
		markup.SetAttr(node, key, "")
		return
	}
	markup.RemoveAttr(node, key)
}

func contains(values []string, target string) bool {
	for _, value := range values {
		if value == target {
			return true
		}
	}
	return false
}
