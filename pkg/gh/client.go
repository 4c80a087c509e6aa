package gh

import (
	"context"
	"net/http"
	"time"
)

// Resource addresses one node of the API hierarchy. Every method that
// extends the path returns a new Resource; the receiver is never changed,
// so a Resource can be branched to reach sibling resources.
type Resource interface {
	// Child appends name as one path segment.
	Child(name string) Resource
	// ChildMany appends the string form of each id, in order. With no ids
	// it returns the receiver unchanged.
	ChildMany(ids ...interface{}) Resource
	// Access resolves a symbolic name: a terminal verb name yields a bound
	// Terminal and the unchanged receiver, any other name extends the path.
	Access(name string) (Resource, Terminal)
	// Path returns the accumulated path.
	Path() ResourcePath
	// Terminal binds verb to the current path.
	Terminal(verb Verb) Terminal

	Read(ctx context.Context, opts *CallOptions) (Result, error)
	Create(ctx context.Context, opts *CallOptions) (Result, error)
	Replace(ctx context.Context, opts *CallOptions) (Result, error)
	PartialUpdate(ctx context.Context, opts *CallOptions) (Result, error)
	Delete(ctx context.Context, opts *CallOptions) (Result, error)
	Download(ctx context.Context, opts *CallOptions) (*DownloadResult, error)
}

// Terminal is a verb bound to a path. Invoke performs exactly one exchange.
type Terminal interface {
	Verb() Verb
	Path() ResourcePath
	Invoke(ctx context.Context, opts *CallOptions) (*Response, error)
}

// Client is the root handle of the API.
type Client interface {
	// Root returns the builder bound to the empty path.
	Root() Resource
	// Repo is shorthand for Root().Child("repos").ChildMany(owner, name).
	Repo(owner, name string) Resource
	// DownloadFile streams opts.URL into opts.Filename without a resource path.
	DownloadFile(ctx context.Context, opts *CallOptions) (*DownloadResult, error)
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// NopLogger discards everything. It is the default Logger.
type NopLogger struct{}

func (NopLogger) Debug(string, map[string]interface{}) {}
func (NopLogger) Info(string, map[string]interface{})  {}
func (NopLogger) Warn(string, map[string]interface{})  {}
func (NopLogger) Error(string, map[string]interface{}) {}

// Config represents client configuration for building a gh.Client.
//
// # Base URLs
//
// APIBaseURL serves metadata operations and UploadBaseURL serves release
// asset uploads. Both default to the public github.com hosts and are
// normalized by ghclient.New (trailing slash trimmed, "https://" added when
// no scheme is present).
//
// # Retries
//
// The client does not retry. RetryMax defaults to 0; callers that want the
// transport to retry transient failures (>=500, 429, connection errors) opt
// in by setting it, otherwise they wrap calls themselves.
type Config struct {
	// APIBaseURL: base URL for metadata calls (e.g., "https://api.github.com").
	APIBaseURL string
	// UploadBaseURL: base URL for release asset uploads.
	UploadBaseURL string
	// AccessToken: sent as "Authorization: token <AccessToken>" on every request.
	// When empty the header is omitted and requests are anonymous.
	AccessToken string

	// HTTPTimeout: overall timeout of the underlying http.Client. Zero means none.
	HTTPTimeout time.Duration
	// RetryMax: retries after the first attempt. Zero disables retries.
	RetryMax int
	// RetryWaitMin: minimum backoff between retries.
	RetryWaitMin time.Duration
	// RetryWaitMax: maximum backoff between retries.
	RetryWaitMax time.Duration
	// Debug: enables request/response logging through Logger.
	Debug bool
	// Logger: optional structured logger. Defaults to NopLogger.
	Logger Logger
	// UserAgent: overrides the default User-Agent header.
	UserAgent string
	// HTTPClient: optional base http.Client (custom transport, proxies).
	HTTPClient *http.Client
	// SkipTLSVerify: disables certificate checks. Only honoured when
	// GHC_DEV_MODE is "true" or "1".
	SkipTLSVerify bool
	// Interceptors: optional request/response hooks run on every exchange.
	Interceptors *InterceptorChain
}
