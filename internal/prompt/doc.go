// Package prompt asks for form field values on a terminal. Driver wraps the
// survey prompts; Ask maps a Field description onto the matching prompt.
package prompt
