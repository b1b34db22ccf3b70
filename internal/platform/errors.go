package platform

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Kind classifies a failed platform call. Every failure maps to exactly one
// kind and one user-visible notification class.
type Kind string

const (
	// KindNetwork: no response was received (connection failure or timeout).
	KindNetwork Kind = "network"
	// KindSessionExpired: the platform rejected the session (401).
	KindSessionExpired Kind = "session_expired"
	// KindValidation: per-field validation failure (422 with array detail),
	// or an input rejected client-side before any request was issued.
	KindValidation Kind = "validation"
	// KindClient: any other 4xx.
	KindClient Kind = "client"
	// KindServer: 5xx upstream failure.
	KindServer Kind = "server"
)

// FieldError is one element of a structured 422 detail array.
type FieldError struct {
	Loc  []any  `json:"loc"`
	Msg  string `json:"msg"`
	Type string `json:"type"`
}

// Path joins the error location with dots, e.g. "body.amount".
func (f FieldError) Path() string {
	parts := make([]string, len(f.Loc))
	for i, l := range f.Loc {
		parts[i] = fmt.Sprint(l)
	}
	return strings.Join(parts, ".")
}

// Error is the typed failure returned by every platform call. It wraps the
// underlying transport error (if any) and carries the classified kind, so
// callers can branch on it after the notification has already been emitted.
type Error struct {
	Kind       Kind
	StatusCode int // 0 when no response was received
	Message    string
	Fields     []FieldError
	cause      error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("platform: %s (status %d): %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("platform: %s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying transport error, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

// NewValidationError builds a client-side validation failure. It is used for
// inputs rejected before any network call is issued.
func NewValidationError(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// errorBody is the wire shape of upstream error responses:
// {detail: string | []FieldError} or {message: string}.
type errorBody struct {
	Detail  json.RawMessage `json:"detail"`
	Message string          `json:"message"`
}

// classify maps an HTTP failure to a typed Error per the portal taxonomy.
func classify(status int, body []byte) *Error {
	e := &Error{StatusCode: status}

	var parsed errorBody
	_ = json.Unmarshal(body, &parsed)

	detailText, fields := parseDetail(parsed.Detail)

	switch {
	case status == 401:
		e.Kind = KindSessionExpired
		e.Message = firstNonEmpty(detailText, "Your session has expired. Please sign in again.")
	case status == 422 && len(fields) > 0:
		e.Kind = KindValidation
		e.Fields = fields
		e.Message = FlattenFields(fields)
	case status >= 400 && status < 500:
		e.Kind = KindClient
		e.Message = firstNonEmpty(detailText, parsed.Message, "Request failed. Please try again.")
	default:
		// Upstream internals are never surfaced to the user
		e.Kind = KindServer
		e.Message = "Something went wrong on our side. Please try again later."
	}

	return e
}

// parseDetail decodes the polymorphic detail field: either a plain string or
// a structured array of field errors.
func parseDetail(raw json.RawMessage) (string, []FieldError) {
	if len(raw) == 0 {
		return "", nil
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text, nil
	}

	var fields []FieldError
	if err := json.Unmarshal(raw, &fields); err == nil {
		return "", fields
	}

	return "", nil
}

// FlattenFields renders a structured detail array as one multi-line message,
// "<loc joined by '.'>: <msg>" per element, in array order. Pure formatting.
func FlattenFields(fields []FieldError) string {
	lines := make([]string, len(fields))
	for i, f := range fields {
		lines[i] = f.Path() + ": " + f.Msg
	}
	return strings.Join(lines, "\n")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
