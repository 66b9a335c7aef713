// Package cli implements the formwizard command: it loads a page, walks one
// of its wizard forms step by step against the server, fills each step from
// an answers file or interactive prompts and submits the result.
//
// Commands return *ExitError instead of exiting so the exit code can be
// asserted in tests; Execute maps errors to codes.
package cli
