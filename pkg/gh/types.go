package gh

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// Credential is an opaque access token.
type Credential string

// Authorization returns the Authorization header value for the credential.
func (c Credential) Authorization() string {
	return "token " + string(c)
}

// IsZero reports whether no credential is configured.
func (c Credential) IsZero() bool {
	return c == ""
}

// String redacts the token so it never ends up in logs.
func (c Credential) String() string {
	if c == "" {
		return ""
	}

	return "[REDACTED]"
}

// ProgressFunc receives the number of bytes written so far and the total
// reported by the server (-1 when unknown).
type ProgressFunc func(written, total int64)

// CallOptions carries the keyword-style parameters of a terminal call.
type CallOptions struct {
	// Headers are merged into the request; Authorization is always overridden.
	Headers map[string]string
	// Query is appended to the request URL.
	Query url.Values
	// Data is JSON-encoded for requests to the API domain.
	Data interface{}
	// Body is sent unmodified, used for asset uploads.
	Body io.Reader
	// ContentType of Body. Defaults to application/octet-stream.
	ContentType string
	// URL is the explicit download location (e.g. browser_download_url).
	URL string
	// Filename is the download destination.
	Filename string
	// Progress is called after every chunk written during a download.
	Progress ProgressFunc
}

// RequestDescriptor is the fully resolved description of one exchange.
type RequestDescriptor struct {
	Verb        Verb
	Path        ResourcePath
	Headers     map[string]string
	Query       url.Values
	Data        interface{}
	Body        io.Reader
	ContentType string
	DownloadURL string
	Filename    string
	Progress    ProgressFunc
}

// NewRequestDescriptor builds a descriptor for verb and path from opts.
// The caller's header map is copied.
func NewRequestDescriptor(verb Verb, path ResourcePath, opts *CallOptions) *RequestDescriptor {
	desc := &RequestDescriptor{
		Verb:    verb,
		Path:    path,
		Headers: make(map[string]string),
	}

	if opts == nil {
		return desc
	}

	for key, value := range opts.Headers {
		desc.Headers[key] = value
	}

	desc.Query = opts.Query
	desc.Data = opts.Data
	desc.Body = opts.Body
	desc.ContentType = opts.ContentType
	desc.DownloadURL = opts.URL
	desc.Filename = opts.Filename
	desc.Progress = opts.Progress

	return desc
}

// Result is a decoded JSON response value. A body that was not valid JSON
// decodes to an empty mapping.
type Result struct {
	Value interface{}
}

// EmptyResult returns the result used for empty or unparseable bodies.
func EmptyResult() Result {
	return Result{Value: map[string]interface{}{}}
}

// Map returns the value as a mapping, or nil if it is not one.
func (r Result) Map() map[string]interface{} {
	m, _ := r.Value.(map[string]interface{})

	return m
}

// Slice returns the value as an array, or nil if it is not one.
func (r Result) Slice() []interface{} {
	s, _ := r.Value.([]interface{})

	return s
}

// Get returns the value stored under key when the result is a mapping.
func (r Result) Get(key string) interface{} {
	return r.Map()[key]
}

// IsEmpty reports whether the result is an empty mapping. Callers cannot
// tell an empty JSON object apart from an unparseable body.
func (r Result) IsEmpty() bool {
	m, ok := r.Value.(map[string]interface{})

	return ok && len(m) == 0
}

// Decode re-encodes the value into target, e.g. a typed struct.
func (r Result) Decode(target interface{}) error {
	raw, err := json.Marshal(r.Value)
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}

	err = json.Unmarshal(raw, target)
	if err != nil {
		return fmt.Errorf("decoding result: %w", err)
	}

	return nil
}

// MarshalJSON encodes the underlying value.
func (r Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Value)
}

// MarshalYAML encodes the underlying value.
func (r Result) MarshalYAML() (interface{}, error) {
	return r.Value, nil
}

// DownloadResult describes a completed streamed download.
type DownloadResult struct {
	StatusCode    int         `json:"status_code"    yaml:"status_code"`
	Header        http.Header `json:"header"         yaml:"header"`
	ContentLength int64       `json:"content_length" yaml:"content_length"`
	BytesWritten  int64       `json:"bytes_written"  yaml:"bytes_written"`
	Filename      string      `json:"filename"       yaml:"filename"`
}

// Response is what a Terminal returns: a decoded Result for ordinary verbs
// or a DownloadResult for the download verb.
type Response struct {
	Verb     Verb
	Result   Result
	Download *DownloadResult
}
