package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/fivetwenty-io/ghclient/internal/auth"
	"github.com/fivetwenty-io/ghclient/internal/constants"
	"github.com/fivetwenty-io/ghclient/internal/events"
	"github.com/fivetwenty-io/ghclient/pkg/gh"
	"github.com/fivetwenty-io/ghclient/pkg/ghclient"
	"github.com/spf13/viper"
)

// tokenSources returns the token lookup chain: flag or config value, the
// environment, then an interactive prompt whose answer is persisted.
func tokenSources() []auth.Source {
	return []auth.Source{
		auth.StaticSource{Label: "--token/config", Value: viper.GetString("token")},
		auth.NewEnvSource("GHC_TOKEN", "GITHUB_TOKEN"),
		auth.NewPromptSource(NewConfigPersister()),
	}
}

func buildClientConfig(ctx context.Context, timeout time.Duration, logger gh.Logger) (*gh.Config, error) {
	resolved, err := auth.Resolve(ctx, tokenSources()...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", constants.ErrNoToken, err)
	}

	logger.Debug("using token", map[string]interface{}{"source": resolved.Source})

	if configured := viper.GetString("timeout"); configured != "" {
		parsed, err := time.ParseDuration(configured)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout %q: %w", configured, err)
		}

		timeout = parsed
	}

	return &gh.Config{
		APIBaseURL:    viper.GetString("api"),
		UploadBaseURL: viper.GetString("upload_api"),
		AccessToken:   string(resolved.Credential),
		HTTPTimeout:   timeout,
		Debug:         viper.GetBool("verbose"),
		Logger:        logger,
		SkipTLSVerify: viper.GetBool("skip_ssl_validation"),
		Interceptors:  newInterceptors(logger),
	}, nil
}

func newInterceptors(logger gh.Logger) *gh.InterceptorChain {
	chain := gh.NewInterceptorChain()

	if viper.GetBool("verbose") {
		chain.AddRequestInterceptor(gh.LoggingInterceptor(logger))
		chain.AddResponseInterceptor(gh.LoggingResponseInterceptor(logger))
	}

	return chain
}

// CreateClient builds a client from flags, environment and config file.
func CreateClient(ctx context.Context, timeout time.Duration) (gh.Client, gh.Logger, error) {
	logger := newLogger()

	config, err := buildClientConfig(ctx, timeout, logger)
	if err != nil {
		return nil, nil, err
	}

	client, err := ghclient.New(ctx, config)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create client: %w", err)
	}

	return client, logger, nil
}

// createPublisher connects to NATS when nats_url is configured. Without it,
// --verbose logs events instead.
func createPublisher(logger gh.Logger) (events.Publisher, error) {
	url := viper.GetString("nats_url")
	if url == "" {
		publisherType := events.PublisherTypeNone
		if viper.GetBool("verbose") {
			publisherType = events.PublisherTypeLog
		}

		return events.NewPublisherFromConfig(&events.PublisherConfig{Type: publisherType, Logger: logger})
	}

	prefix := viper.GetString("nats_subject_prefix")
	if prefix == "" {
		prefix = constants.DefaultEventSubjectPrefix
	}

	publisher, err := events.NewPublisherFromConfig(&events.PublisherConfig{
		Type: events.PublisherTypeNATS,
		NATS: &events.NATSConfig{
			URL:           url,
			SubjectPrefix: prefix,
			ClientName:    "ghc",
			Timeout:       constants.DefaultHTTPTimeout,
		},
		Logger: logger,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", constants.ErrEventsUnavailable, err)
	}

	return publisher, nil
}
