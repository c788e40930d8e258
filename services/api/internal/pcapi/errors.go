package pcapi

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// GlobalErrorKey is the key the backend uses for errors not tied to a field.
const GlobalErrorKey = "global"

// APIError is a non-2xx backend answer. Fields holds the first message of
// each erroneous field when the body was a JSON error object.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Fields     map[string]string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s: backend returned HTTP %d", e.Method, e.Path, e.StatusCode)
}

// Global returns the message not tied to any field, if any.
func (e *APIError) Global() string {
	return e.Fields[GlobalErrorKey]
}

// AsAPIError unwraps err into an *APIError.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// The backend answers errors as {"field": ["message", ...], ...}; some
// older routes use {"field": "message"}.
func newAPIError(method, path string, status int, body []byte) *APIError {
	apiErr := &APIError{Method: method, Path: path, StatusCode: status}
	if !gjson.ValidBytes(body) {
		return apiErr
	}
	parsed := gjson.ParseBytes(body)
	if !parsed.IsObject() {
		return apiErr
	}
	fields := map[string]string{}
	parsed.ForEach(func(key, value gjson.Result) bool {
		var msg string
		switch {
		case value.IsArray():
			msg = value.Get("0").String()
		case value.Type == gjson.String:
			msg = value.String()
		}
		if msg != "" {
			fields[key.String()] = msg
		}
		return true
	})
	if len(fields) > 0 {
		apiErr.Fields = fields
	}
	return apiErr
}
