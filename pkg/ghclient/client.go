package ghclient

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/fivetwenty-io/ghclient/internal/client"
	"github.com/fivetwenty-io/ghclient/internal/constants"
	"github.com/fivetwenty-io/ghclient/pkg/gh"
)

// New creates a new client. Zero-valued base URLs fall back to the public
// github.com hosts; the config is normalized in place.
func New(ctx context.Context, config *gh.Config) (gh.Client, error) {
	if config == nil {
		return nil, gh.ErrConfigRequired
	}

	config.APIBaseURL = normalizeBaseURL(config.APIBaseURL, constants.DefaultAPIBaseURL)
	config.UploadBaseURL = normalizeBaseURL(config.UploadBaseURL, constants.DefaultUploadBaseURL)

	if config.SkipTLSVerify {
		httpClient, err := createInsecureHTTPClient(config.HTTPClient)
		if err != nil {
			return nil, err
		}

		config.HTTPClient = httpClient
	}

	// Use the internal client implementation
	client, err := client.New(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return client, nil
}

// normalizeBaseURL trims a trailing slash and adds https:// when no scheme
// is given.
func normalizeBaseURL(raw, fallback string) string {
	endpoint := strings.TrimSpace(raw)
	if endpoint == "" {
		return fallback
	}

	endpoint = strings.TrimSuffix(endpoint, "/")
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "https://" + endpoint
	}

	return endpoint
}

// isDevelopmentEnvironment checks if we're in a development environment.
func isDevelopmentEnvironment() bool {
	devMode := os.Getenv("GHC_DEV_MODE")

	return devMode == "true" || devMode == "1"
}

// createInsecureHTTPClient returns a client that skips certificate checks,
// for self-signed GitHub Enterprise test instances.
func createInsecureHTTPClient(base *http.Client) (*http.Client, error) {
	if !isDevelopmentEnvironment() {
		return nil, fmt.Errorf("%w (set GHC_DEV_MODE=true)", gh.ErrSkipTLSOnlyInDev)
	}

	httpClient := &http.Client{}
	if base != nil {
		*httpClient = *base
	}

	transport := insecureTransport(httpClient.Transport)
	if transport.TLSClientConfig == nil {
		transport.TLSClientConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	transport.TLSClientConfig.InsecureSkipVerify = true // #nosec G402 -- Protected by development environment check above
	httpClient.Transport = transport

	return httpClient, nil
}

// insecureTransport clones base when it is an *http.Transport. Any other
// round tripper is replaced by a clone of the default transport.
func insecureTransport(base http.RoundTripper) *http.Transport {
	if transport, ok := base.(*http.Transport); ok && transport != nil {
		return transport.Clone()
	}

	if transport, ok := http.DefaultTransport.(*http.Transport); ok {
		return transport.Clone()
	}

	return &http.Transport{Proxy: http.ProxyFromEnvironment}
}

// NewWithToken creates a client for the public github.com hosts.
func NewWithToken(ctx context.Context, token string) (gh.Client, error) {
	return New(ctx, &gh.Config{
		AccessToken: token,
	})
}

// NewWithEndpoints creates a client for explicit API and upload hosts, as
// used by GitHub Enterprise Server.
func NewWithEndpoints(ctx context.Context, apiBaseURL, uploadBaseURL, token string) (gh.Client, error) {
	return New(ctx, &gh.Config{
		APIBaseURL:    apiBaseURL,
		UploadBaseURL: uploadBaseURL,
		AccessToken:   token,
	})
}
