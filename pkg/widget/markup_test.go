package widget

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formwizard/pkg/formdata"
)

const profileFragment = `<div class="form-group" data-uid="profile" data-form-area="body" data-replaces="old_profile">
	<input type="text" name="title" value="Hello">
	<input type="checkbox" name="agree">
	<input type="checkbox" name="tags[]" value="go" checked>
	<input type="checkbox" name="tags[]" value="rust">
	<select name="color"><option value="red">Red</option><option value="blue" selected>Blue</option></select>
	<select name="sizes[]" multiple><option selected>s</option><option>m</option><option selected>l</option></select>
	<textarea name="body">Text</textarea>
	<input type="hidden" name="token" value="t" data-skip-serialization="True">
</div>`

func TestNewMarkup_Attributes(t *testing.T) {
	w := mustMarkup(t, `<div data-uid="title" data-parent-uid="group" data-form-area="header" data-form-step="2" data-hidden="True"></div>`)

	if w.UID() != "title" || w.ParentUID() != "group" || w.FormArea() != "header" || w.FormStep() != 2 {
		t.Fatalf("unexpected attributes: uid=%q parent=%q area=%q step=%d", w.UID(), w.ParentUID(), w.FormArea(), w.FormStep())
	}
	if !w.AlwaysHidden() || w.Visible() {
		t.Fatalf("expected always hidden widget")
	}
	w.Show()
	if w.Visible() {
		t.Fatalf("always hidden widget must not become visible")
	}
}

func TestNewMarkup_Errors(t *testing.T) {
	if _, err := NewMarkup(`<div class="no-uid"></div>`); !errors.Is(err, ErrMissingUID) {
		t.Fatalf("expected ErrMissingUID, got %v", err)
	}
	if _, err := NewMarkup(`<div data-uid="a" data-form-step="two"></div>`); err == nil {
		t.Fatalf("expected invalid step error")
	}
	if _, err := NewMarkup(`plain text`); err == nil {
		t.Fatalf("expected parse error for fragment without elements")
	}
}

func TestMarkup_DefaultsAndReplaces(t *testing.T) {
	w := mustMarkup(t, profileFragment)
	if w.FormArea() != DefaultArea {
		t.Fatalf("expected default area, got %q", w.FormArea())
	}
	if w.Replaces() != "old_profile" {
		t.Fatalf("replaces = %q", w.Replaces())
	}
}

func TestMarkup_FieldsSerialize(t *testing.T) {
	w := mustMarkup(t, profileFragment)

	got := formdata.Serialize(w.Fields())
	want := map[string]any{
		"title":   "Hello",
		"tags[]":  "go",
		"color":   "blue",
		"sizes[]": []any{"s", "l"},
		"body":    "Text",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("serialize mismatch (-want +got):\n%s", diff)
	}
}

func TestMarkup_SetValueAndReset(t *testing.T) {
	w := mustMarkup(t, profileFragment)

	for name, value := range map[string]any{
		"title":  "Changed",
		"agree":  "on",
		"tags[]": []any{"rust"},
		"color":  "red",
		"body":   "New body",
	} {
		if !w.SetValue(name, value) {
			t.Fatalf("expected %q to match a control", name)
		}
	}
	if w.SetValue("missing", "x") {
		t.Fatalf("expected unknown control to report false")
	}

	got := formdata.Serialize(w.Fields())
	want := map[string]any{
		"title":   "Changed",
		"agree":   "on",
		"tags[]":  "rust",
		"color":   "red",
		"sizes[]": []any{"s", "l"},
		"body":    "New body",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("after fill (-want +got):\n%s", diff)
	}

	w.Reset()
	got = formdata.Serialize(w.Fields())
	want = map[string]any{
		"title":   "Hello",
		"tags[]":  "go",
		"color":   "blue",
		"sizes[]": []any{"s", "l"},
		"body":    "Text",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("after reset (-want +got):\n%s", diff)
	}
}

func TestMarkup_VisibilityStateAndMessages(t *testing.T) {
	w := mustMarkup(t, `<div data-uid="a"><input name="x"></div>`)

	w.Hide()
	out, _ := w.HTML()
	if w.Visible() || !strings.Contains(out, `class="hidden"`) {
		t.Fatalf("expected hidden widget, got %s", out)
	}
	w.Show()
	if !w.Visible() {
		t.Fatalf("expected visible widget")
	}

	w.SetState(StateError)
	w.AddMessage("<b>required</b>", SeverityDanger)
	out, _ = w.HTML()
	if w.State() != StateError || !strings.Contains(out, "has-error") {
		t.Fatalf("expected error state in %s", out)
	}
	if !strings.Contains(out, "&lt;b&gt;required&lt;/b&gt;") {
		t.Fatalf("expected escaped message in %s", out)
	}
	if diff := cmp.Diff([]Message{{Text: "<b>required</b>", Severity: SeverityDanger}}, w.Messages()); diff != "" {
		t.Fatalf("messages mismatch (-want +got):\n%s", diff)
	}

	w.ClearState()
	w.ClearMessages()
	out, _ = w.HTML()
	if w.State() != "" || strings.Contains(out, "has-error") || strings.Contains(out, "required") {
		t.Fatalf("expected cleared widget, got %s", out)
	}
}

func TestMarkup_NestedChildren(t *testing.T) {
	parent := mustMarkup(t, `<div data-uid="group"><input name="outer" value="1"><div class="widget-children"></div></div>`)
	child := mustMarkup(t, `<div data-uid="item" data-parent-uid="group"><input name="inner" value="2"></div>`)

	if err := parent.AppendChild(child); err != nil {
		t.Fatalf("append child: %v", err)
	}
	if err := parent.AppendChild(nil); !errors.Is(err, ErrUnsupportedChild) {
		t.Fatalf("expected ErrUnsupportedChild, got %v", err)
	}

	var names []string
	for _, field := range parent.Fields() {
		names = append(names, field.Name)
	}
	if diff := cmp.Diff([]string{"outer", "inner"}, names); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}

	out, _ := parent.HTML()
	if !strings.Contains(out, `<div class="widget-children"><div data-uid="item"`) {
		t.Fatalf("expected child inside children container, got %s", out)
	}

	child.Remove()
	if len(parent.Children()) != 0 {
		t.Fatalf("expected child to be dropped")
	}
	out, _ = parent.HTML()
	if strings.Contains(out, "inner") {
		t.Fatalf("expected child markup to be detached, got %s", out)
	}
}

func TestMarkup_Sanitized(t *testing.T) {
	w := mustMarkup(t, `<div data-uid="a" onclick="x()"><script>alert(1)</script><input name="x"></div>`)
	out, _ := w.HTML()
	if strings.Contains(out, "script") || strings.Contains(out, "onclick") {
		t.Fatalf("expected sanitized markup, got %s", out)
	}

	raw, err := NewMarkup(`<div data-uid="a" onclick="x()"></div>`, WithoutSanitizer())
	if err != nil {
		t.Fatalf("new markup: %v", err)
	}
	out, _ = raw.HTML()
	if !strings.Contains(out, "onclick") {
		t.Fatalf("expected verbatim markup, got %s", out)
	}
}

func TestMarkupFactory(t *testing.T) {
	factory := MarkupFactory()
	w, err := factory(`<div data-uid="a"></div>`)
	if err != nil {
		t.Fatalf("factory: %v", err)
	}
	if w.UID() != "a" {
		t.Fatalf("uid = %q", w.UID())
	}
	w.SetUID("form_a")
	w.SetParentUID("form_p")
	out, _ := w.HTML()
	if !strings.Contains(out, `data-uid="form_a"`) || !strings.Contains(out, `data-parent-uid="form_p"`) {
		t.Fatalf("expected updated attributes, got %s", out)
	}
}
