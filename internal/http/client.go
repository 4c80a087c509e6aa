package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/fivetwenty-io/ghclient/internal/constants"
	"github.com/fivetwenty-io/ghclient/pkg/gh"
	"github.com/hashicorp/go-retryablehttp"
)

// Static errors for err113 compliance.
var (
	ErrRawBodyRequired = errors.New("upload requests take a raw body ([]byte, string or io.Reader)")
)

// uploadPathPattern matches the release asset upload endpoint, which is served
// from the upload host instead of the API host.
var uploadPathPattern = regexp.MustCompile(`^/repos/[^/]+/[^/]+/releases/[0-9]+/assets$`)

// Logger is the logging interface used by the transport.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Client executes single HTTP exchanges against the API and upload hosts.
type Client struct {
	baseURL       string
	uploadBaseURL string
	credential    gh.Credential
	httpClient    *retryablehttp.Client
	logger        Logger
	debug         bool
	userAgent     string
	timeout       time.Duration
	interceptors  *gh.InterceptorChain
	createFile    func(name string) (io.WriteCloser, error)
}

// Option configures a Client.
type Option func(*Client)

// WithUploadBaseURL sets the host used for release asset uploads.
func WithUploadBaseURL(uploadBaseURL string) Option {
	return func(c *Client) {
		c.uploadBaseURL = strings.TrimSuffix(uploadBaseURL, "/")
	}
}

// WithLogger sets the logger.
func WithLogger(logger Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables request/response logging.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithTimeout sets the overall timeout of the underlying http.Client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithHTTPClient replaces the underlying http.Client. The client is copied,
// so later options never modify the caller's value.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			copied := *httpClient
			c.httpClient.HTTPClient = &copied
		}
	}
}

// WithInterceptors installs request/response interceptors.
func WithInterceptors(chain *gh.InterceptorChain) Option {
	return func(c *Client) {
		c.interceptors = chain
	}
}

// WithRetryConfig opts in to retries of transient failures. The client
// makes a single attempt unless this is set.
func WithRetryConfig(retryMax int, retryWaitMin, retryWaitMax time.Duration) Option {
	return func(c *Client) {
		c.httpClient.RetryMax = retryMax
		c.httpClient.RetryWaitMin = retryWaitMin
		c.httpClient.RetryWaitMax = retryWaitMax
	}
}

// NewClient creates a transport for baseURL authenticating with credential.
// An empty credential sends no Authorization header.
func NewClient(baseURL string, credential gh.Credential, opts ...Option) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 0
	retryClient.Logger = nil
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	client := &Client{
		baseURL:       strings.TrimSuffix(baseURL, "/"),
		uploadBaseURL: constants.DefaultUploadBaseURL,
		credential:    credential,
		httpClient:    retryClient,
		logger:        gh.NopLogger{},
		userAgent:     constants.DefaultUserAgent,
		createFile:    createDownloadFile,
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.timeout > 0 {
		client.httpClient.HTTPClient.Timeout = client.timeout
	}

	if client.httpClient.RetryMax > 0 {
		client.httpClient.Logger = &leveledLogger{logger: client.logger}
	}

	return client
}

// Request represents an API request.
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Body    interface{}
	Headers map[string]string
	// ContentType of a raw body. JSON bodies always use application/json.
	ContentType string
}

// Response represents an API response.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	Result     gh.Result
}

// DownloadRequest describes a streamed download of an explicit URL.
type DownloadRequest struct {
	URL      string
	Filename string
	Headers  map[string]string
	Progress gh.ProgressFunc
}

// IsUploadPath reports whether path is served by the upload host.
func IsUploadPath(path string) bool {
	return uploadPathPattern.MatchString(path)
}

// SelectBaseURL returns the host that serves path.
func (c *Client) SelectBaseURL(path string) string {
	if IsUploadPath(path) {
		return c.uploadBaseURL
	}

	return c.baseURL
}

// Do executes one request and normalizes the response. A JSON object with a
// "message" key is returned as *gh.APIError alongside the response.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	upload := IsUploadPath(req.Path)

	fullURL := c.SelectBaseURL(req.Path) + escapePath(req.Path)
	if len(req.Query) > 0 {
		fullURL += "?" + req.Query.Encode()
	}

	body, contentType, err := encodeBody(req, upload)
	if err != nil {
		return nil, err
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, fullURL, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	httpReq.Header.Set("Accept", constants.AcceptGitHubJSON)
	httpReq.Header.Set("User-Agent", c.userAgent)

	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	intercepted, err := c.prepareHeaders(ctx, httpReq, req.Path, req.Headers)
	if err != nil {
		return nil, err
	}

	c.logRequest(req.Method, fullURL, upload)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.afterResponse(ctx, intercepted, &gh.InterceptedResponse{Error: err})

		return nil, fmt.Errorf("executing request: %w", err)
	}

	defer func() {
		_ = httpResp.Body.Close()
	}()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       respBody,
		Result:     DecodeResult(respBody),
	}

	c.logResponse(resp)

	var apiErr error
	if payload := resp.Result.Map(); payload != nil {
		if _, ok := payload["message"]; ok {
			apiErr = gh.NewAPIError(resp.StatusCode, payload)
		}
	}

	c.afterResponse(ctx, intercepted, &gh.InterceptedResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Headers,
		Body:       resp.Body,
		Error:      apiErr,
	})

	if apiErr != nil {
		return resp, apiErr
	}

	return resp, nil
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodGet, Path: path, Query: query})
}

// Post performs a POST request.
func (c *Client) Post(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPost, Path: path, Body: body})
}

// Put performs a PUT request.
func (c *Client) Put(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPut, Path: path, Body: body})
}

// Patch performs a PATCH request.
func (c *Client) Patch(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPatch, Path: path, Body: body})
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodDelete, Path: path})
}

// Download streams req.URL into req.Filename in fixed-size chunks. The file
// is closed on every return path; a partially written file is left behind
// on failure.
func (c *Client) Download(ctx context.Context, req *DownloadRequest) (result *gh.DownloadResult, err error) {
	if req.URL == "" {
		return nil, gh.ErrDownloadURLRequired
	}

	if req.Filename == "" {
		return nil, gh.ErrDownloadFilenameRequired
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating download request: %w", err)
	}

	httpReq.Header.Set("User-Agent", c.userAgent)

	intercepted, err := c.prepareHeaders(ctx, httpReq, httpReq.URL.Path, req.Headers)
	if err != nil {
		return nil, err
	}

	c.logRequest(http.MethodGet, req.URL, false)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.afterResponse(ctx, intercepted, &gh.InterceptedResponse{Error: err})

		return nil, fmt.Errorf("executing download: %w", err)
	}

	defer func() {
		_ = httpResp.Body.Close()
	}()

	result = &gh.DownloadResult{
		StatusCode:    httpResp.StatusCode,
		Header:        httpResp.Header,
		ContentLength: httpResp.ContentLength,
		Filename:      req.Filename,
	}

	if httpResp.StatusCode >= http.StatusBadRequest {
		err = fmt.Errorf("%w: %s returned status %d", gh.ErrDownloadFailed, req.URL, httpResp.StatusCode)
		c.afterResponse(ctx, intercepted, &gh.InterceptedResponse{StatusCode: httpResp.StatusCode, Headers: httpResp.Header, Error: err})

		return result, err
	}

	file, err := c.createFile(req.Filename)
	if err != nil {
		return result, fmt.Errorf("creating %s: %w", req.Filename, err)
	}

	defer func() {
		closeErr := file.Close()
		if closeErr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", req.Filename, closeErr)
		}
	}()

	result.BytesWritten, err = copyChunks(file, httpResp.Body, httpResp.ContentLength, req.Progress)

	c.afterResponse(ctx, intercepted, &gh.InterceptedResponse{StatusCode: httpResp.StatusCode, Headers: httpResp.Header, Error: err})

	if err != nil {
		return result, fmt.Errorf("writing %s: %w", req.Filename, err)
	}

	if c.debug {
		c.logger.Debug("Download complete", map[string]interface{}{
			"url":      req.URL,
			"filename": req.Filename,
			"bytes":    result.BytesWritten,
		})
	}

	return result, nil
}

// DecodeResult parses body as JSON. Empty or invalid bodies decode to an
// empty mapping.
func DecodeResult(body []byte) gh.Result {
	if len(bytes.TrimSpace(body)) == 0 {
		return gh.EmptyResult()
	}

	var value interface{}

	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()

	err := decoder.Decode(&value)
	if err != nil {
		return gh.EmptyResult()
	}

	// Trailing data after the first value makes the whole body invalid.
	_, err = decoder.Token()
	if !errors.Is(err, io.EOF) {
		return gh.EmptyResult()
	}

	return gh.Result{Value: value}
}

// prepareHeaders applies caller headers, then interceptors, then the
// Authorization header so that nothing can replace it.
func (c *Client) prepareHeaders(ctx context.Context, httpReq *retryablehttp.Request, path string, headers map[string]string) (*gh.Request, error) {
	for key, value := range headers {
		httpReq.Header.Set(key, value)
	}

	intercepted := &gh.Request{
		Method:  httpReq.Method,
		URL:     httpReq.URL.String(),
		Path:    path,
		Headers: httpReq.Header,
	}

	err := c.interceptors.ExecuteRequestInterceptors(ctx, intercepted)
	if err != nil {
		return nil, err
	}

	if intercepted.Headers != nil {
		httpReq.Header = intercepted.Headers
	}

	if !c.credential.IsZero() {
		httpReq.Header.Set("Authorization", c.credential.Authorization())
	}

	return intercepted, nil
}

func (c *Client) afterResponse(ctx context.Context, req *gh.Request, resp *gh.InterceptedResponse) {
	err := c.interceptors.ExecuteResponseInterceptors(ctx, req, resp)
	if err != nil {
		c.logger.Warn("response interceptor failed", map[string]interface{}{"error": err.Error()})
	}
}

func (c *Client) logRequest(method, fullURL string, upload bool) {
	if !c.debug {
		return
	}

	c.logger.Debug("HTTP Request", map[string]interface{}{
		"method": method,
		"url":    fullURL,
		"upload": upload,
	})
}

func (c *Client) logResponse(resp *Response) {
	if !c.debug {
		return
	}

	c.logger.Debug("HTTP Response", map[string]interface{}{
		"status_code": resp.StatusCode,
		"body_size":   len(resp.Body),
	})
}

// encodeBody returns the request body and its content type. API-host bodies
// are JSON-encoded; upload-host bodies are passed through unchanged.
func encodeBody(req *Request, upload bool) (interface{}, string, error) {
	if req.Body == nil {
		return nil, "", nil
	}

	contentType := req.ContentType
	if contentType == "" {
		contentType = constants.ContentTypeOctetStream
	}

	switch body := req.Body.(type) {
	case io.Reader:
		return body, contentType, nil
	case []byte:
		if upload || req.ContentType != "" {
			return body, contentType, nil
		}
	case string:
		if upload || req.ContentType != "" {
			return []byte(body), contentType, nil
		}
	}

	if upload {
		return nil, "", ErrRawBodyRequired
	}

	raw, err := json.Marshal(req.Body)
	if err != nil {
		return nil, "", fmt.Errorf("encoding request body: %w", err)
	}

	return raw, constants.ContentTypeJSON, nil
}

func escapePath(path string) string {
	segments := strings.Split(path, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}

	return strings.Join(segments, "/")
}

func copyChunks(dst io.Writer, src io.Reader, total int64, progress gh.ProgressFunc) (int64, error) {
	buf := make([]byte, constants.DownloadChunkSize)

	var written int64

	for {
		n, readErr := src.Read(buf)
		if n > 0 {
			w, err := dst.Write(buf[:n])
			written += int64(w)

			if err != nil {
				return written, err
			}

			if w != n {
				return written, io.ErrShortWrite
			}

			if progress != nil {
				progress(written, total)
			}
		}

		if errors.Is(readErr, io.EOF) {
			return written, nil
		}

		if readErr != nil {
			return written, readErr
		}
	}
}

func createDownloadFile(name string) (io.WriteCloser, error) {
	// #nosec G304 -- the destination is chosen by the caller.
	return os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, constants.DownloadFilePerm)
}

// leveledLogger adapts Logger to retryablehttp.LeveledLogger.
type leveledLogger struct {
	logger Logger
}

func (l *leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, toFields(keysAndValues))
}

func (l *leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Info(msg, toFields(keysAndValues))
}

func (l *leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, toFields(keysAndValues))
}

func (l *leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn(msg, toFields(keysAndValues))
}

func toFields(keysAndValues []interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, len(keysAndValues)/2)

	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}

	return fields
}
