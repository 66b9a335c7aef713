package formdata_test

import (
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formwizard/pkg/formdata"
)

func TestSerialize_MapOfLists(t *testing.T) {
	got := formdata.Serialize([]formdata.Field{
		{Name: "a[b][]", Value: "v1", Tag: "input", Type: "text"},
		{Name: "a[b][]", Value: "v2", Tag: "input", Type: "text"},
	})

	want := map[string]any{
		"a": map[string]any{"b": []any{"v1", "v2"}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("serialize mismatch (-want +got):\n%s", diff)
	}
}

func TestSerialize_SingleValueListCollapses(t *testing.T) {
	got := formdata.Serialize([]formdata.Field{
		{Name: "tags[]", Value: "go", Tag: "input", Type: "text"},
		{Name: "langs[]", Value: "en", Tag: "input", Type: "text"},
		{Name: "langs[]", Value: "uk", Tag: "input", Type: "text"},
	})

	want := map[string]any{
		"tags[]":  "go",
		"langs[]": []any{"en", "uk"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("serialize mismatch (-want +got):\n%s", diff)
	}
}

func TestSerialize_NestedListsDoNotCollapse(t *testing.T) {
	got := formdata.Serialize([]formdata.Field{
		{Name: "opts[color][]", Value: "red", Tag: "select"},
	})

	want := map[string]any{
		"opts": map[string]any{"color": []any{"red"}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("serialize mismatch (-want +got):\n%s", diff)
	}
}

func TestSerialize_SkipsFields(t *testing.T) {
	fields := []formdata.Field{
		{Name: "title", Value: "first", Tag: "input", Type: "text"},
		{Name: "title", Value: "second", Tag: "input", Type: "text"},
		{Name: "agree", Value: "on", Tag: "input", Type: "checkbox"},
		{Name: "newsletter", Value: "yes", Tag: "input", Type: "checkbox", Checked: true},
		{Name: "color", Value: "red", Tag: "input", Type: "radio"},
		{Name: "color", Value: "blue", Tag: "input", Type: "radio", Checked: true},
		{Name: "token", Value: "secret", Tag: "input", Type: "hidden", SkipSerialization: true},
		{Name: "body", Value: "long text", Tag: "textarea"},
		{Name: "action", Value: "go", Tag: "button"},
		{Name: "", Value: "nameless", Tag: "input"},
	}

	got := formdata.Serialize(fields, formdata.WithSkipTags("BUTTON", " "))

	want := map[string]any{
		"title":      "second",
		"newsletter": "yes",
		"color":      "blue",
		"body":       "long text",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("serialize mismatch (-want +got):\n%s", diff)
	}
}

func TestSerialize_ConflictingShapesLaterWins(t *testing.T) {
	got := formdata.Serialize([]formdata.Field{
		{Name: "a", Value: "plain", Tag: "input"},
		{Name: "a[k][]", Value: "x", Tag: "input"},
		{Name: "b[]", Value: "1", Tag: "input"},
		{Name: "b", Value: "2", Tag: "input"},
	})

	want := map[string]any{
		"a":   map[string]any{"k": []any{"x"}},
		"b[]": "1",
		"b":   "2",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("serialize mismatch (-want +got):\n%s", diff)
	}
}

func TestSerialize_SkipNames(t *testing.T) {
	fields := []formdata.Field{
		{Name: "__form_name", Value: "signup", Tag: "input", Type: "hidden"},
		{Name: "title", Value: "Hello", Tag: "input", Type: "text"},
		{Name: "tags[]", Value: "go", Tag: "input", Type: "text"},
	}

	got := formdata.Serialize(fields, formdata.WithSkipNames("__form_name", "tags[]", ""))

	want := map[string]any{"title": "Hello"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("serialize mismatch (-want +got):\n%s", diff)
	}
}

func TestEncode_ListGroupsKeepOneKey(t *testing.T) {
	one := formdata.Encode(formdata.Serialize([]formdata.Field{
		{Name: "tags[]", Value: "go", Tag: "input", Type: "checkbox", Checked: true},
		{Name: "tags[]", Value: "rust", Tag: "input", Type: "checkbox"},
	}))
	two := formdata.Encode(formdata.Serialize([]formdata.Field{
		{Name: "tags[]", Value: "go", Tag: "input", Type: "checkbox", Checked: true},
		{Name: "tags[]", Value: "rust", Tag: "input", Type: "checkbox", Checked: true},
	}))

	if diff := cmp.Diff(url.Values{"tags[]": {"go"}}, one); diff != "" {
		t.Fatalf("one value mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(url.Values{"tags[]": {"go", "rust"}}, two); diff != "" {
		t.Fatalf("two values mismatch (-want +got):\n%s", diff)
	}
}

func TestEncode_BracketStyle(t *testing.T) {
	values := map[string]any{
		"title": "Hello",
		"tags":  []any{"a", "b"},
		"ids[]": []string{"1", "2"},
		"opts":  map[string]any{"color": []any{"red", "blue"}, "size": "xl"},
		"count": 3,
		"none":  nil,
	}

	got := formdata.Encode(values)

	want := url.Values{
		"title":         {"Hello"},
		"tags[]":        {"a", "b"},
		"ids[]":         {"1", "2"},
		"opts[color][]": {"red", "blue"},
		"opts[size]":    {"xl"},
		"count":         {"3"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("encode mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeAndFromValues(t *testing.T) {
	query := url.Values{
		"ref":  {"home"},
		"tags": {"a", "b"},
		"void": {},
	}
	fromQuery := formdata.FromValues(query)
	want := map[string]any{"ref": "home", "tags": []any{"a", "b"}}
	if diff := cmp.Diff(want, fromQuery); diff != "" {
		t.Fatalf("from values mismatch (-want +got):\n%s", diff)
	}

	merged := formdata.Merge(map[string]any{"ref": "form", "title": "x"}, fromQuery)
	wantMerged := map[string]any{"ref": "home", "title": "x", "tags": []any{"a", "b"}}
	if diff := cmp.Diff(wantMerged, merged); diff != "" {
		t.Fatalf("merge mismatch (-want +got):\n%s", diff)
	}

	if got := formdata.Merge(nil, nil); got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil map, got %#v", got)
	}
	if formdata.FromValues(nil) != nil {
		t.Fatalf("expected nil for empty values")
	}
}
