// Package markup wraps golang.org/x/net/html with the handful of helpers the
// widget toolkit and the form controller need: fragment parsing, attribute
// and class manipulation, tree search and rendering. SanitizeFragment applies
// a bluemonday policy tuned for server rendered form widgets: it keeps form
// controls, ids, classes and data-* attributes and drops scripts and inline
// event handlers.
package markup
