package client_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	. "github.com/fivetwenty-io/ghclient/internal/client"
	"github.com/fivetwenty-io/ghclient/pkg/gh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := New(context.Background(), &gh.Config{
		APIBaseURL:    server.URL,
		UploadBaseURL: server.URL,
		AccessToken:   "abc123",
	})
	require.NoError(t, err)

	return client, server
}

func TestNew(t *testing.T) {
	t.Parallel()
	t.Run("requires config", func(t *testing.T) {
		t.Parallel()

		_, err := New(context.Background(), nil)
		require.ErrorIs(t, err, gh.ErrConfigRequired)
	})

	t.Run("creates client without authentication", func(t *testing.T) {
		t.Parallel()

		client, err := New(context.Background(), &gh.Config{})
		require.NoError(t, err)
		assert.NotNil(t, client)
		assert.True(t, client.Root().Path().IsEmpty())
	})
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestResource_PathBuilding(t *testing.T) {
	t.Parallel()

	client, err := New(context.Background(), &gh.Config{AccessToken: "abc123"})
	require.NoError(t, err)

	t.Run("segments are appended in call order", func(t *testing.T) {
		t.Parallel()

		resource := client.Root().Child("repos").ChildMany("octo", "hello-world").Child("releases").ChildMany(123)
		assert.Equal(t, "/repos/octo/hello-world/releases/123", resource.Path().String())
		assert.Equal(t, []string{"repos", "octo", "hello-world", "releases", "123"}, resource.Path().Segments())
	})

	t.Run("Repo shorthand", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "/repos/octo/hello-world", client.Repo("octo", "hello-world").Path().String())
	})

	t.Run("no arguments leaves the path unchanged", func(t *testing.T) {
		t.Parallel()

		resource := client.Root().Child("repos")
		assert.Equal(t, resource.Path(), resource.ChildMany().Path())

		call, ok := resource.(Resource)
		require.True(t, ok)
		assert.Equal(t, "/repos", call.Call().Path().String())
		assert.Equal(t, "/repos/octo", call.Call("octo").Path().String())
	})

	t.Run("branching does not leak between siblings", func(t *testing.T) {
		t.Parallel()

		repo := client.Repo("octo", "hello-world")
		releases := repo.Child("releases")
		issues := repo.Child("issues")
		tags := repo.ChildMany("git", "refs", "tags")

		assert.Equal(t, "/repos/octo/hello-world", repo.Path().String())
		assert.Equal(t, "/repos/octo/hello-world/releases", releases.Path().String())
		assert.Equal(t, "/repos/octo/hello-world/issues", issues.Path().String())
		assert.Equal(t, "/repos/octo/hello-world/git/refs/tags", tags.Path().String())
	})

	t.Run("verb names do not extend the path", func(t *testing.T) {
		t.Parallel()

		repo := client.Repo("octo", "hello-world")

		for _, name := range []string{"get", "read", "post", "create", "put", "replace", "patch", "partial_update", "delete", "download"} {
			next, terminal := repo.Access(name)
			require.NotNil(t, terminal, name)
			assert.Equal(t, repo.Path(), next.Path(), name)
			assert.Equal(t, repo.Path(), terminal.Path(), name)
		}

		next, terminal := repo.Access("releases")
		assert.Nil(t, terminal)
		assert.Equal(t, "/repos/octo/hello-world/releases", next.Path().String())
	})

	t.Run("access binds the verb", func(t *testing.T) {
		t.Parallel()

		_, terminal := client.Root().Child("user").Access("patch")
		require.NotNil(t, terminal)
		assert.Equal(t, gh.VerbPartialUpdate, terminal.Verb())
	})
}

func TestWalk(t *testing.T) {
	t.Parallel()

	client, err := New(context.Background(), &gh.Config{})
	require.NoError(t, err)

	t.Run("segments then verb", func(t *testing.T) {
		t.Parallel()

		resource, terminal, err := Walk(client.Root(), "repos", "octo", "hello-world", "releases", "get")
		require.NoError(t, err)
		require.NotNil(t, terminal)
		assert.Equal(t, gh.VerbRead, terminal.Verb())
		assert.Equal(t, "/repos/octo/hello-world/releases", resource.Path().String())
	})

	t.Run("segments only", func(t *testing.T) {
		t.Parallel()

		resource, terminal, err := Walk(client.Root(), "user", "repos")
		require.NoError(t, err)
		assert.Nil(t, terminal)
		assert.Equal(t, "/user/repos", resource.Path().String())
	})

	t.Run("verb in the middle", func(t *testing.T) {
		t.Parallel()

		_, _, err := Walk(client.Root(), "repos", "delete", "octo")
		require.ErrorIs(t, err, gh.ErrVerbNotTerminal)
	})
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestResource_Dispatch(t *testing.T) {
	t.Parallel()
	t.Run("lists releases", func(t *testing.T) {
		t.Parallel()

		var requests atomic.Int32

		client, _ := newTestClient(t, func(writer http.ResponseWriter, request *http.Request) {
			requests.Add(1)

			assert.Equal(t, "GET", request.Method)
			assert.Equal(t, "/repos/octo/hello-world/releases", request.URL.Path)
			assert.Equal(t, "token abc123", request.Header.Get("Authorization"))

			body, _ := io.ReadAll(request.Body)
			assert.Empty(t, body)

			_, _ = writer.Write([]byte(`[{"id": 1, "tag_name": "v1.0.0"}]`))
		})

		result, err := client.Root().Child("repos").ChildMany("octo", "hello-world").Child("releases").Read(context.Background(), nil)
		require.NoError(t, err)
		require.Len(t, result.Slice(), 1)
		assert.Equal(t, int32(1), requests.Load())
	})

	t.Run("empty path is rejected without I/O", func(t *testing.T) {
		t.Parallel()

		client, _ := newTestClient(t, func(writer http.ResponseWriter, request *http.Request) {
			t.Errorf("unexpected request %s", request.URL.Path)
		})

		_, err := client.Root().Read(context.Background(), nil)
		require.ErrorIs(t, err, gh.ErrEmptyPath)

		_, err = client.Root().Download(context.Background(), &gh.CallOptions{URL: "http://example.invalid/x", Filename: "x"})
		require.ErrorIs(t, err, gh.ErrEmptyPath)

		_, terminal := client.Root().Access("delete")
		_, err = terminal.Invoke(context.Background(), nil)
		require.ErrorIs(t, err, gh.ErrEmptyPath)
	})

	t.Run("verbs map to methods", func(t *testing.T) {
		t.Parallel()

		var (
			mutex   sync.Mutex
			methods []string
		)

		client, _ := newTestClient(t, func(writer http.ResponseWriter, request *http.Request) {
			mutex.Lock()
			methods = append(methods, request.Method)
			mutex.Unlock()

			assert.Equal(t, "token abc123", request.Header.Get("Authorization"))
			_, _ = writer.Write([]byte(`{"id": 42}`))
		})

		ctx := context.Background()
		repo := client.Repo("octo", "hello-world")

		_, err := repo.Read(ctx, nil)
		require.NoError(t, err)
		_, err = repo.Create(ctx, nil)
		require.NoError(t, err)
		_, err = repo.Replace(ctx, nil)
		require.NoError(t, err)
		_, err = repo.PartialUpdate(ctx, nil)
		require.NoError(t, err)
		_, err = repo.Delete(ctx, nil)
		require.NoError(t, err)

		mutex.Lock()
		defer mutex.Unlock()

		assert.Equal(t, []string{"GET", "POST", "PUT", "PATCH", "DELETE"}, methods)
	})

	t.Run("data is sent as JSON with query and headers", func(t *testing.T) {
		t.Parallel()

		client, _ := newTestClient(t, func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "PATCH", request.Method)
			assert.Equal(t, "/repos/octo/hello-world/releases/7", request.URL.Path)
			assert.Equal(t, "yes", request.URL.Query().Get("draft"))
			assert.Equal(t, "trace", request.Header.Get("X-Request-Id"))
			assert.Equal(t, "token abc123", request.Header.Get("Authorization"))

			var body map[string]interface{}

			assert.NoError(t, json.NewDecoder(request.Body).Decode(&body))
			assert.Equal(t, "Release 7", body["name"])

			_, _ = writer.Write([]byte(`{"id": 7, "name": "Release 7"}`))
		})

		result, err := client.Repo("octo", "hello-world").Child("releases").ChildMany(7).PartialUpdate(context.Background(), &gh.CallOptions{
			Data:    map[string]string{"name": "Release 7"},
			Query:   map[string][]string{"draft": {"yes"}},
			Headers: map[string]string{"X-Request-Id": "trace", "Authorization": "token other"},
		})
		require.NoError(t, err)
		assert.Equal(t, "Release 7", result.Get("name"))
	})

	t.Run("message becomes an error carrying the payload", func(t *testing.T) {
		t.Parallel()

		client, _ := newTestClient(t, func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusNotFound)
			_, _ = writer.Write([]byte(`{"message": "Not Found"}`))
		})

		result, err := client.Repo("octo", "missing").Read(context.Background(), nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Not Found")
		assert.Equal(t, "Not Found", result.Get("message"))
		assert.True(t, gh.IsNotFound(err))
	})

	t.Run("malformed body yields empty mapping", func(t *testing.T) {
		t.Parallel()

		client, _ := newTestClient(t, func(writer http.ResponseWriter, request *http.Request) {
			_, _ = writer.Write([]byte("not json"))
		})

		result, err := client.Repo("octo", "hello-world").Read(context.Background(), nil)
		require.NoError(t, err)
		assert.True(t, result.IsEmpty())
	})

	t.Run("asset upload goes to the upload host with a raw body", func(t *testing.T) {
		t.Parallel()

		apiServer := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			t.Errorf("unexpected API request %s", request.URL.Path)
		}))
		defer apiServer.Close()

		uploadServer := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "/repos/octo/hello-world/releases/123/assets", request.URL.Path)
			assert.Equal(t, "token abc123", request.Header.Get("Authorization"))
			assert.Equal(t, "text/plain", request.Header.Get("Content-Type"))

			body, _ := io.ReadAll(request.Body)
			assert.Equal(t, "hello", string(body))

			_, _ = writer.Write([]byte(`{"id": 9}`))
		}))
		defer uploadServer.Close()

		client, err := New(context.Background(), &gh.Config{
			APIBaseURL:    apiServer.URL,
			UploadBaseURL: uploadServer.URL,
			AccessToken:   "abc123",
		})
		require.NoError(t, err)

		result, err := client.Repo("octo", "hello-world").Child("releases").ChildMany(123).Child("assets").Create(context.Background(), &gh.CallOptions{
			Query:       map[string][]string{"name": {"hello.txt"}},
			Body:        strings.NewReader("hello"),
			ContentType: "text/plain",
		})
		require.NoError(t, err)
		assert.Equal(t, json.Number("9"), result.Get("id"))
	})
}

func TestResource_Download(t *testing.T) {
	t.Parallel()

	payload := strings.Repeat("asset-bytes ", 500)

	client, server := newTestClient(t, func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "/download/hello.tar.gz", request.URL.Path)
		assert.Equal(t, "application/octet-stream", request.Header.Get("Accept"))
		assert.Equal(t, "token abc123", request.Header.Get("Authorization"))
		writer.Header().Set("Content-Length", strconv.Itoa(len(payload)))
		_, _ = writer.Write([]byte(payload))
	})

	target := filepath.Join(t.TempDir(), "hello.tar.gz")

	_, terminal := client.Repo("octo", "hello-world").Child("releases").Child("assets").Access("download")
	require.NotNil(t, terminal)

	resp, err := terminal.Invoke(context.Background(), &gh.CallOptions{
		URL:      server.URL + "/download/hello.tar.gz",
		Filename: target,
		Headers:  map[string]string{"Accept": "application/octet-stream"},
	})
	require.NoError(t, err)
	require.NotNil(t, resp.Download)
	assert.Equal(t, int64(len(payload)), resp.Download.BytesWritten)
	assert.Equal(t, int64(len(payload)), resp.Download.ContentLength)
	assert.Equal(t, resp.Download.ContentLength, resp.Download.BytesWritten)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, payload, string(data))

	t.Run("download without a path", func(t *testing.T) {
		t.Parallel()

		other := filepath.Join(t.TempDir(), "copy.tar.gz")

		result, err := client.DownloadFile(context.Background(), &gh.CallOptions{
			URL:      server.URL + "/download/hello.tar.gz",
			Filename: other,
			Headers:  map[string]string{"Accept": "application/octet-stream"},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(len(payload)), result.BytesWritten)
	})
}
