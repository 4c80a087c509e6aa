package client

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/ghclient/internal/constants"
	"github.com/fivetwenty-io/ghclient/internal/http"
	"github.com/fivetwenty-io/ghclient/pkg/gh"
)

// Client implements the gh.Client interface.
type Client struct {
	httpClient *http.Client
	logger     gh.Logger
}

// createHTTPClientOptions builds HTTP client options from config.
func createHTTPClientOptions(config *gh.Config) []http.Option {
	var httpOpts []http.Option

	if config.Logger != nil {
		httpOpts = append(httpOpts, http.WithLogger(config.Logger))
	}

	if config.Debug {
		httpOpts = append(httpOpts, http.WithDebug(true))
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, http.WithUserAgent(config.UserAgent))
	}

	if config.UploadBaseURL != "" {
		httpOpts = append(httpOpts, http.WithUploadBaseURL(config.UploadBaseURL))
	}

	if config.HTTPClient != nil {
		httpOpts = append(httpOpts, http.WithHTTPClient(config.HTTPClient))
	}

	if config.HTTPTimeout > 0 {
		httpOpts = append(httpOpts, http.WithTimeout(config.HTTPTimeout))
	}

	if config.Interceptors != nil {
		httpOpts = append(httpOpts, http.WithInterceptors(config.Interceptors))
	}

	if config.RetryMax > 0 {
		retryWaitMin := constants.DefaultRetryWaitMin
		retryWaitMax := constants.DefaultRetryWaitMax

		if config.RetryWaitMin > 0 {
			retryWaitMin = config.RetryWaitMin
		}

		if config.RetryWaitMax > 0 {
			retryWaitMax = config.RetryWaitMax
		}

		httpOpts = append(httpOpts, http.WithRetryConfig(config.RetryMax, retryWaitMin, retryWaitMax))
	}

	return httpOpts
}

// New creates a client from an already normalized config.
func New(ctx context.Context, config *gh.Config) (*Client, error) {
	if config == nil {
		return nil, gh.ErrConfigRequired
	}

	baseURL := config.APIBaseURL
	if baseURL == "" {
		baseURL = constants.DefaultAPIBaseURL
	}

	logger := config.Logger
	if logger == nil {
		logger = gh.NopLogger{}
	}

	httpClient := http.NewClient(baseURL, gh.Credential(config.AccessToken), createHTTPClientOptions(config)...)

	return &Client{
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// NewWithHTTPClient wraps an existing transport.
func NewWithHTTPClient(httpClient *http.Client) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     gh.NopLogger{},
	}
}

// Root implements gh.Client.Root.
func (c *Client) Root() gh.Resource {
	return Resource{client: c}
}

// Repo implements gh.Client.Repo.
func (c *Client) Repo(owner, name string) gh.Resource {
	return c.Root().Child("repos").ChildMany(owner, name)
}

// DownloadFile implements gh.Client.DownloadFile.
func (c *Client) DownloadFile(ctx context.Context, opts *gh.CallOptions) (*gh.DownloadResult, error) {
	desc := gh.NewRequestDescriptor(gh.VerbDownload, gh.ResourcePath{}, opts)

	return c.download(ctx, desc)
}

// dispatch turns a descriptor into exactly one transport exchange.
func (c *Client) dispatch(ctx context.Context, desc *gh.RequestDescriptor) (*gh.Response, error) {
	if desc.Path.IsEmpty() {
		return nil, gh.ErrEmptyPath
	}

	if desc.Verb == gh.VerbDownload {
		result, err := c.download(ctx, desc)
		if err != nil {
			return &gh.Response{Verb: desc.Verb, Download: result}, err
		}

		return &gh.Response{Verb: desc.Verb, Download: result}, nil
	}

	method := desc.Verb.Method()
	if method == "" {
		return nil, fmt.Errorf("%w: %d", gh.ErrUnknownVerb, desc.Verb)
	}

	req := &http.Request{
		Method:      method,
		Path:        desc.Path.String(),
		Query:       desc.Query,
		Headers:     desc.Headers,
		ContentType: desc.ContentType,
	}

	if desc.Body != nil {
		req.Body = desc.Body
	} else if desc.Data != nil {
		req.Body = desc.Data
	}

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		if resp != nil {
			return &gh.Response{Verb: desc.Verb, Result: resp.Result}, err
		}

		return nil, err
	}

	return &gh.Response{Verb: desc.Verb, Result: resp.Result}, nil
}

func (c *Client) download(ctx context.Context, desc *gh.RequestDescriptor) (*gh.DownloadResult, error) {
	return c.httpClient.Download(ctx, &http.DownloadRequest{
		URL:      desc.DownloadURL,
		Filename: desc.Filename,
		Headers:  desc.Headers,
		Progress: desc.Progress,
	})
}
