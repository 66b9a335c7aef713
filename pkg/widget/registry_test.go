package widget

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func mustMarkup(t *testing.T, raw string) *Markup {
	t.Helper()
	w, err := NewMarkup(raw)
	if err != nil {
		t.Fatalf("new markup: %v", err)
	}
	return w
}

func TestRegistry_AddReplacesSameUID(t *testing.T) {
	reg := NewRegistry()
	first := mustMarkup(t, `<div data-uid="a"></div>`)
	second := mustMarkup(t, `<div data-uid="b"></div>`)
	replacement := mustMarkup(t, `<div data-uid="a"></div>`)

	if prev := reg.Add(first); prev != nil {
		t.Fatalf("expected no previous widget, got %v", prev.UID())
	}
	reg.Add(second)
	if prev := reg.Add(replacement); prev != Widget(first) {
		t.Fatalf("expected first widget to be replaced")
	}

	if reg.Len() != 2 {
		t.Fatalf("expected 2 widgets, got %d", reg.Len())
	}
	if diff := cmp.Diff([]string{"b", "a"}, reg.UIDs()); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
	got, ok := reg.Get("a")
	if !ok || got != Widget(replacement) {
		t.Fatalf("expected replacement to be registered under a")
	}
}

func TestRegistry_ByStepAndCount(t *testing.T) {
	reg := NewRegistry()
	for _, tc := range []struct {
		uid  string
		step int
	}{{"a", 1}, {"b", 2}, {"c", 1}} {
		w := mustMarkup(t, `<div data-uid="`+tc.uid+`"></div>`)
		w.SetFormStep(tc.step)
		reg.Add(w)
	}

	var uids []string
	for _, w := range reg.ByStep(1) {
		uids = append(uids, w.UID())
	}
	if diff := cmp.Diff([]string{"a", "c"}, uids); diff != "" {
		t.Fatalf("step 1 widgets mismatch (-want +got):\n%s", diff)
	}
	if reg.Count(2) != 1 || reg.Count(3) != 0 {
		t.Fatalf("unexpected counts: step2=%d step3=%d", reg.Count(2), reg.Count(3))
	}
}

func TestRegistry_Remove(t *testing.T) {
	reg := NewRegistry()
	reg.Add(mustMarkup(t, `<div data-uid="a"></div>`))

	if _, ok := reg.Remove("missing"); ok {
		t.Fatalf("expected missing uid removal to report false")
	}
	if _, ok := reg.Remove("a"); !ok {
		t.Fatalf("expected removal of a")
	}
	if reg.Len() != 0 || len(reg.All()) != 0 {
		t.Fatalf("expected empty registry")
	}
}

func TestRegistry_NilSafe(t *testing.T) {
	var reg *Registry
	if reg.Add(nil) != nil || reg.Len() != 0 || reg.All() != nil {
		t.Fatalf("nil registry should be inert")
	}
	if _, ok := reg.Get("a"); ok {
		t.Fatalf("nil registry should not resolve widgets")
	}
}
