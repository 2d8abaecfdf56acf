package sdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// APIError is returned for any non-2xx response. Body holds the raw payload;
// ErrorBody decodes it when it is a JSON object keyed by field name.
type APIError struct {
	Method string
	Path   string
	Status int
	Body   []byte
}

func (e *APIError) Error() string {
	if len(e.Body) == 0 {
		return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("%s %s: %d %s: %s", e.Method, e.Path, e.Status, http.StatusText(e.Status), e.Body)
}

// ErrorBody decodes the payload as a field-keyed error object.
// ok is false for empty or non-object bodies.
func (e *APIError) ErrorBody() (body map[string]any, ok bool) {
	if len(e.Body) == 0 {
		return nil, false
	}
	if err := json.Unmarshal(e.Body, &body); err != nil || body == nil {
		return nil, false
	}
	return body, true
}

// Detail returns the generic "detail" message, if the body carries one.
func (e *APIError) Detail() string {
	body, ok := e.ErrorBody()
	if !ok {
		return ""
	}
	detail, _ := body["detail"].(string)
	return detail
}

// AsAPIError unwraps err into an *APIError.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsUnauthorized reports an authentication failure (missing or bad token).
func IsUnauthorized(err error) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.Status == http.StatusUnauthorized
}

// IsForbidden reports a permission failure for an authenticated caller.
func IsForbidden(err error) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.Status == http.StatusForbidden
}

// IsNotFound reports a missing resource.
func IsNotFound(err error) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.Status == http.StatusNotFound
}

// IsValidation reports a 400 response, which the API uses for field errors.
func IsValidation(err error) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.Status == http.StatusBadRequest
}
