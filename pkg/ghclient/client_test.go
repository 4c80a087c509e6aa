package ghclient_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fivetwenty-io/ghclient/pkg/gh"
	"github.com/fivetwenty-io/ghclient/pkg/ghclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Parallel()
	t.Run("requires config", func(t *testing.T) {
		t.Parallel()

		_, err := ghclient.New(context.Background(), nil)
		require.ErrorIs(t, err, gh.ErrConfigRequired)
	})

	t.Run("fills in default hosts", func(t *testing.T) {
		t.Parallel()

		config := &gh.Config{}

		client, err := ghclient.New(context.Background(), config)
		require.NoError(t, err)
		assert.NotNil(t, client)
		assert.Equal(t, "https://api.github.com", config.APIBaseURL)
		assert.Equal(t, "https://uploads.github.com", config.UploadBaseURL)
	})

	t.Run("normalizes endpoints", func(t *testing.T) {
		t.Parallel()

		config := &gh.Config{
			APIBaseURL:    "ghe.example.com/api/v3/",
			UploadBaseURL: "http://ghe.example.com/api/uploads/",
		}

		_, err := ghclient.New(context.Background(), config)
		require.NoError(t, err)
		assert.Equal(t, "https://ghe.example.com/api/v3", config.APIBaseURL)
		assert.Equal(t, "http://ghe.example.com/api/uploads", config.UploadBaseURL)
	})

	t.Run("refuses to skip TLS outside development mode", func(t *testing.T) {
		t.Parallel()

		_, err := ghclient.New(context.Background(), &gh.Config{SkipTLSVerify: true})
		require.ErrorIs(t, err, gh.ErrSkipTLSOnlyInDev)
	})
}

func TestNew_SkipTLSVerifyInDevelopment(t *testing.T) {
	t.Setenv("GHC_DEV_MODE", "true")

	baseTransport := &http.Transport{MaxIdleConns: 7}
	base := &http.Client{Transport: baseTransport}
	config := &gh.Config{SkipTLSVerify: true, HTTPClient: base}

	_, err := ghclient.New(context.Background(), config)
	require.NoError(t, err)

	assert.Same(t, baseTransport, base.Transport)
	assert.Nil(t, baseTransport.TLSClientConfig)

	require.NotSame(t, base, config.HTTPClient)
	transport, ok := config.HTTPClient.Transport.(*http.Transport)
	require.True(t, ok)
	assert.NotSame(t, baseTransport, transport)
	assert.Equal(t, 7, transport.MaxIdleConns)
	require.NotNil(t, transport.TLSClientConfig)
	assert.True(t, transport.TLSClientConfig.InsecureSkipVerify)
}

func TestNewWithToken(t *testing.T) {
	t.Parallel()

	client, err := ghclient.NewWithToken(context.Background(), "test-token")
	require.NoError(t, err)
	assert.Equal(t, "/repos/octo/hello-world", client.Repo("octo", "hello-world").Path().String())
}

func TestClientIntegration(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "token test-token", request.Header.Get("Authorization"))

		switch request.URL.Path {
		case "/repos/octo/hello-world/releases/latest":
			_, _ = writer.Write([]byte(`{"id": 3, "tag_name": "v1.2.0"}`))
		default:
			writer.WriteHeader(http.StatusNotFound)
			_, _ = writer.Write([]byte(`{"message": "Not Found"}`))
		}
	}))
	defer server.Close()

	client, err := ghclient.NewWithEndpoints(context.Background(), server.URL, server.URL, "test-token")
	require.NoError(t, err)

	release, err := client.Repo("octo", "hello-world").Child("releases").Child("latest").Read(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "v1.2.0", release.Get("tag_name"))

	_, err = client.Repo("octo", "missing").Read(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, gh.IsNotFound(err))
}
