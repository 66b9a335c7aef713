package cli

import (
	"strings"

	xhtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/goliatone/go-formwizard/internal/prompt"
	"github.com/goliatone/go-formwizard/pkg/markup"
	"github.com/goliatone/go-formwizard/pkg/widget"
	"github.com/goliatone/go-formwizard/pkg/wizard"
)

type nodeWidget interface {
	Node() *xhtml.Node
}

// stepField is a promptable control together with the widget holding it.
type stepField struct {
	prompt.Field
	WidgetUID string
}

// describeStep lists the promptable controls of the visible root widgets of
// the current step, one entry per control name. Nested widgets are covered by
// their parent's markup.
func describeStep(c *wizard.Controller) []stepField {
	state := c.State()
	seen := make(map[string]int)
	var fields []stepField
	for _, ws := range state.Widgets {
		if !ws.Visible || ws.ParentUID != "" || ws.Step != state.CurrentStep {
			continue
		}
		w, ok := c.Widget(ws.UID)
		if !ok {
			continue
		}
		holder, ok := w.(nodeWidget)
		if !ok {
			continue
		}
		for _, field := range describeNode(holder.Node()) {
			if idx, dup := seen[field.Name]; dup {
				fields[idx].Options = appendOptions(fields[idx].Options, field.Options)
				fields[idx].Default = appendMissing(fields[idx].Default, field.Default)
				fields[idx].Kind = mergeKinds(fields[idx].Kind, field.Kind, field.Name)
				if fields[idx].Kind == prompt.KindMultiSelect {
					fields[idx].Label = field.Name
				}
				continue
			}
			seen[field.Name] = len(fields)
			fields = append(fields, stepField{Field: field, WidgetUID: ws.UID})
		}
	}
	return fields
}

// erroredWidgets returns the uids of widgets currently in error.
func erroredWidgets(c *wizard.Controller) map[string]bool {
	out := make(map[string]bool)
	for _, ws := range c.State().Widgets {
		if ws.State == widget.StateError {
			out[ws.UID] = true
		}
	}
	return out
}

func describeNode(root *xhtml.Node) []prompt.Field {
	labels := make(map[string]string)
	for _, label := range markup.FindAll(root, markup.ByTag("label")) {
		if target := markup.AttrOr(label, "for", ""); target != "" {
			labels[target] = strings.TrimSpace(markup.Text(label))
		}
	}

	var fields []prompt.Field
	markup.Walk(root, func(node *xhtml.Node) bool {
		if node.Type != xhtml.ElementNode {
			return true
		}
		name := markup.AttrOr(node, "name", "")
		if name == "" || markup.IsTrue(markup.AttrOr(node, "data-skip-serialization", "")) {
			return true
		}
		field := prompt.Field{
			Name:     name,
			Label:    labelFor(node, labels),
			Help:     markup.AttrOr(node, "title", ""),
			Required: markup.HasAttr(node, "required"),
		}
		switch node.DataAtom {
		case atom.Input:
			kind := strings.ToLower(markup.AttrOr(node, "type", "text"))
			switch kind {
			case "hidden", "submit", "button", "reset", "image", "file":
				return true
			case "password":
				field.Kind = prompt.KindPassword
			case "checkbox":
				field.Kind = prompt.KindCheckbox
				if strings.HasSuffix(name, "[]") {
					field.Kind = prompt.KindMultiSelect
				}
				value := markup.AttrOr(node, "value", "on")
				field.Options = []prompt.Option{{Value: value, Label: labelFor(node, labels)}}
				if markup.HasAttr(node, "checked") {
					field.Default = []string{value}
				}
				if field.Kind == prompt.KindMultiSelect || field.Label == "" {
					field.Label = name
				}
			case "radio":
				field.Kind = prompt.KindSelect
				value := markup.AttrOr(node, "value", "on")
				field.Options = []prompt.Option{{Value: value, Label: labelFor(node, labels)}}
				if markup.HasAttr(node, "checked") {
					field.Default = []string{value}
				}
				field.Label = name
			default:
				field.Kind = prompt.KindText
				if value, ok := markup.Attr(node, "value"); ok {
					field.Default = []string{value}
				}
			}
		case atom.Textarea:
			field.Kind = prompt.KindTextArea
			if text := markup.Text(node); text != "" {
				field.Default = []string{text}
			}
		case atom.Select:
			field.Kind = prompt.KindSelect
			if markup.HasAttr(node, "multiple") {
				field.Kind = prompt.KindMultiSelect
			}
			for _, option := range markup.FindAll(node, markup.ByTag("option")) {
				value, ok := markup.Attr(option, "value")
				text := strings.TrimSpace(markup.Text(option))
				if !ok {
					value = text
				}
				field.Options = append(field.Options, prompt.Option{Value: value, Label: text})
				if markup.HasAttr(option, "selected") {
					field.Default = append(field.Default, value)
				}
			}
			return false
		default:
			return true
		}
		fields = append(fields, field)
		return true
	})
	return fields
}

func labelFor(node *xhtml.Node, labels map[string]string) string {
	if id := markup.AttrOr(node, "id", ""); id != "" {
		if label := labels[id]; label != "" {
			return label
		}
	}
	if placeholder := markup.AttrOr(node, "placeholder", ""); placeholder != "" {
		return placeholder
	}
	return ""
}

// mergeKinds widens a checkbox repeated under one name into a multi-select.
func mergeKinds(current, next prompt.Kind, name string) prompt.Kind {
	if current == prompt.KindCheckbox && next == prompt.KindCheckbox {
		return prompt.KindMultiSelect
	}
	if current == prompt.KindSelect || current == prompt.KindMultiSelect {
		return current
	}
	if strings.HasSuffix(name, "[]") {
		return prompt.KindMultiSelect
	}
	return next
}

func appendOptions(dst, src []prompt.Option) []prompt.Option {
	for _, option := range src {
		found := false
		for _, existing := range dst {
			if existing.Value == option.Value {
				found = true
				break
			}
		}
		if !found {
			dst = append(dst, option)
		}
	}
	return dst
}

func appendMissing(dst, src []string) []string {
	for _, value := range src {
		found := false
		for _, existing := range dst {
			if existing == value {
				found = true
				break
			}
		}
		if !found {
			dst = append(dst, value)
		}
	}
	return dst
}
