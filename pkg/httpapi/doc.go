// Package httpapi is the client side of the server framework's form API:
//
//	POST {getWidgetsEp}/{uid}/{step}  -> ["<div data-uid=...>", ...]
//	POST {validationEp}/{uid}/{step}  -> {"status": false, "messages": {"uid": "msg" | ["msg", ...]}}
//	POST {action}                     -> {"__alert": "...", "__reset": true, "__redirect": "..."}
//
// Request bodies are form-encoded with bracket-style names produced by
// formdata.Encode. Every request runs inside an OpenTelemetry span; failures
// surface as *Error.
package httpapi
