package markup

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	fragmentPolicyOnce sync.Once
	fragmentPolicy     *bluemonday.Policy
)

// SanitizeFragment strips scripts, event handlers and unknown elements from
// server supplied widget markup while keeping form controls and data-*
// attributes intact.
func SanitizeFragment(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	return strings.TrimSpace(FragmentPolicy().Sanitize(trimmed))
}

// FragmentPolicy returns the shared policy used by SanitizeFragment.
func FragmentPolicy() *bluemonday.Policy {
	fragmentPolicyOnce.Do(func() {
		policy := bluemonday.UGCPolicy()
		policy.AllowDataAttributes()
		policy.AllowElements(
			"form", "fieldset", "legend", "label",
			"input", "select", "option", "optgroup", "textarea", "button",
			"div", "span", "small", "p", "ul", "ol", "li",
		)
		policy.AllowAttrs(
			"id", "class", "role", "title", "aria-label", "aria-describedby", "aria-hidden",
		).Globally()
		policy.AllowAttrs(
			"name", "type", "value", "checked", "disabled", "readonly", "required",
			"placeholder", "min", "max", "step", "minlength", "maxlength", "pattern",
			"autocomplete", "size",
		).OnElements("input")
		policy.AllowAttrs("name", "multiple", "disabled", "required", "size").OnElements("select")
		policy.AllowAttrs("value", "selected", "disabled", "label").OnElements("option")
		policy.AllowAttrs("label", "disabled").OnElements("optgroup")
		policy.AllowAttrs(
			"name", "rows", "cols", "disabled", "readonly", "required", "placeholder",
			"minlength", "maxlength",
		).OnElements("textarea")
		policy.AllowAttrs("name", "type", "value", "disabled").OnElements("button")
		policy.AllowAttrs("for").OnElements("label")

		fragmentPolicy = policy
	})
	return fragmentPolicy
}
