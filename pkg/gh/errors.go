package gh

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// APIError is a logical error reported by the API: a decoded JSON object
// carrying a "message" key, regardless of the HTTP status.
type APIError struct {
	StatusCode       int
	Message          string
	DocumentationURL string
	Payload          interface{}
}

// Error returns the full payload pretty-printed with two-space indentation.
func (e *APIError) Error() string {
	raw, err := json.MarshalIndent(e.Payload, "", "  ")
	if err != nil {
		return e.Message
	}

	return string(raw)
}

// NewAPIError builds an APIError from a decoded payload.
func NewAPIError(statusCode int, payload map[string]interface{}) *APIError {
	apiErr := &APIError{
		StatusCode: statusCode,
		Payload:    payload,
	}

	if msg, ok := payload["message"].(string); ok {
		apiErr.Message = msg
	} else if payload["message"] != nil {
		apiErr.Message = fmt.Sprint(payload["message"])
	}

	if doc, ok := payload["documentation_url"].(string); ok {
		apiErr.DocumentationURL = doc
	}

	return apiErr
}

// Static errors for err113 compliance.
var (
	ErrConfigRequired           = errors.New("config is required")
	ErrEmptyPath                = errors.New("resource path is empty")
	ErrUnknownVerb              = errors.New("unknown verb")
	ErrVerbNotTerminal          = errors.New("verb must be the last path element")
	ErrDownloadURLRequired      = errors.New("download URL is required")
	ErrDownloadFilenameRequired = errors.New("download filename is required")
	ErrDownloadFailed           = errors.New("download failed")
	ErrReleaseNotFound          = errors.New("release not found")
	ErrAssetNotFound            = errors.New("asset not found")
	ErrInvalidRepository        = errors.New("repository must be in owner/name form")
	ErrTokenRequired            = errors.New("access token is required")
	ErrSkipTLSOnlyInDev         = errors.New("skipping TLS verification is only allowed in development mode")
)

// AsAPIError returns the APIError wrapped in err, if any.
func AsAPIError(err error) (*APIError, bool) {
	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr, true
	}

	return nil, false
}

// IsNotFound checks if the error is a not found error.
func IsNotFound(err error) bool {
	apiErr, ok := AsAPIError(err)
	if !ok {
		return false
	}

	return apiErr.StatusCode == http.StatusNotFound || strings.EqualFold(apiErr.Message, "Not Found")
}

// IsUnauthorized checks if the error is an authentication failure.
func IsUnauthorized(err error) bool {
	apiErr, ok := AsAPIError(err)
	if !ok {
		return false
	}

	return apiErr.StatusCode == http.StatusUnauthorized || strings.EqualFold(apiErr.Message, "Bad credentials")
}
