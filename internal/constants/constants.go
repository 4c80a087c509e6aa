package constants

import "time"

// API hosts.
const (
	// DefaultAPIBaseURL serves metadata operations.
	DefaultAPIBaseURL = "https://api.github.com"

	// DefaultUploadBaseURL serves release asset uploads.
	DefaultUploadBaseURL = "https://uploads.github.com"

	// DefaultUserAgent is sent unless the caller overrides it.
	DefaultUserAgent = "ghclient/1.0"
)

// Content types.
const (
	// ContentTypeJSON is used for encoded request bodies.
	ContentTypeJSON = "application/json"

	// ContentTypeOctetStream is the default for raw upload bodies.
	ContentTypeOctetStream = "application/octet-stream"

	// AcceptGitHubJSON is the default Accept header.
	AcceptGitHubJSON = "application/vnd.github+json"
)

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600

	// DownloadFilePerm is the permission for downloaded files.
	DownloadFilePerm = 0644
)

// Streaming.
const (
	// DownloadChunkSize is the size of each chunk written during a download.
	DownloadChunkSize = 1024
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for CLI requests.
	DefaultHTTPTimeout = 30 * time.Second

	// DownloadHTTPTimeout is used by the CLI for asset transfers.
	DownloadHTTPTimeout = 10 * time.Minute
)

// Retry limits.
const (
	// LowRetryMax is used by callers that retry whole operations.
	LowRetryMax = 3

	// DefaultRetryWaitMin is the minimum wait time between retries.
	DefaultRetryWaitMin = 1 * time.Second

	// DefaultRetryWaitMax is the maximum wait time between retries.
	DefaultRetryWaitMax = 10 * time.Second
)

// Validation and limits.
const (
	// MinimumArgumentCount is the minimum number of command line arguments.
	MinimumArgumentCount = 2

	// RepositoryParts is the number of parts in "owner/name".
	RepositoryParts = 2
)

// UI and display constants.
const (
	// NotAvailable is used when information is not available.
	NotAvailable = "N/A"

	// MaskedSecret is used to hide sensitive information.
	MaskedSecret = "***"
)

// Format constants.
const (
	// FormatJSON for JSON output format.
	FormatJSON = "json"

	// FormatYAML for YAML output format.
	FormatYAML = "yaml"

	// FormatTable for table output format.
	FormatTable = "table"
)

// Event subjects.
const (
	// DefaultEventSubjectPrefix prefixes every published asset event.
	DefaultEventSubjectPrefix = "ghc.releases"
)
