package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// ValidationResult is the validate endpoint response. Messages maps widget
// uids to their error messages; the server may send either a single string or
// a list per uid.
type ValidationResult struct {
	Status   bool
	Messages map[string][]string
}

// UnmarshalJSON accepts `messages` values as string or list of strings.
func (r *ValidationResult) UnmarshalJSON(data []byte) error {
	var raw struct {
		Status   bool                       `json:"status"`
		Messages map[string]json.RawMessage `json:"messages"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.Status = raw.Status
	r.Messages = nil
	if len(raw.Messages) == 0 {
		return nil
	}
	r.Messages = make(map[string][]string, len(raw.Messages))
	for uid, value := range raw.Messages {
		messages, err := decodeMessages(value)
		if err != nil {
			return fmt.Errorf("httpapi: messages[%q]: %w", uid, err)
		}
		r.Messages[uid] = messages
	}
	return nil
}

func decodeMessages(value json.RawMessage) ([]string, error) {
	var single string
	if err := json.Unmarshal(value, &single); err == nil {
		return []string{single}, nil
	}
	var list []string
	if err := json.Unmarshal(value, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// SubmitResult is the decoded submit response. The reserved keys drive the
// controller; Body keeps the whole response for observers.
type SubmitResult struct {
	Alert    string
	Reset    bool
	Redirect string
	Body     map[string]any
}

// UnmarshalJSON reads the reserved __alert, __reset and __redirect keys.
func (r *SubmitResult) UnmarshalJSON(data []byte) error {
	var body map[string]any
	if err := json.Unmarshal(data, &body); err != nil {
		return err
	}
	r.Body = body
	if alert, ok := body["__alert"]; ok && alert != nil {
		r.Alert = fmt.Sprint(alert)
	}
	if reset, ok := body["__reset"].(bool); ok {
		r.Reset = reset
	}
	if redirect, ok := body["__redirect"].(string); ok {
		r.Redirect = redirect
	}
	return nil
}

// Error reports a failed request: either a transport failure (Status is 0) or
// a non-2xx response. Message and Warning come from the JSON body's "error"
// and "warning" keys when present.
type Error struct {
	Status     int
	StatusText string
	Message    string
	Warning    string
	Err        error
}

func (e *Error) Error() string {
	if e == nil {
		return "httpapi: <nil>"
	}
	if e.Message != "" {
		return "httpapi: " + e.Message
	}
	if e.Status == 0 {
		return "httpapi: " + e.StatusText
	}
	return fmt.Sprintf("httpapi: unexpected status %d %s", e.Status, e.StatusText)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Transport reports whether the request never produced a response.
func (e *Error) Transport() bool {
	return e != nil && e.Status == 0
}

// Text returns the message to show users: the server error when present,
// otherwise the status text.
func (e *Error) Text() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	return e.StatusText
}

func newResponseError(resp *http.Response, payload []byte) *Error {
	apiErr := &Error{
		Status:     resp.StatusCode,
		StatusText: statusText(resp),
	}
	var body map[string]any
	if err := json.Unmarshal(payload, &body); err == nil {
		if msg, ok := body["error"]; ok && msg != nil {
			apiErr.Message = fmt.Sprint(msg)
		}
		if warning, ok := body["warning"]; ok && warning != nil {
			apiErr.Warning = fmt.Sprint(warning)
		}
	}
	return apiErr
}

func statusText(resp *http.Response) string {
	if text := http.StatusText(resp.StatusCode); text != "" {
		return text
	}
	return strings.TrimSpace(resp.Status)
}
