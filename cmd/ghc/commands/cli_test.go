package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/fivetwenty-io/ghclient/internal/constants"
	"github.com/fivetwenty-io/ghclient/pkg/gh"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// setupViper points the CLI at a temporary config file and, when given, a
// test server. These tests share viper's global state and must not run in
// parallel.
func setupViper(t *testing.T, serverURL string) string {
	t.Helper()

	viper.Reset()
	t.Cleanup(viper.Reset)

	configFile := filepath.Join(t.TempDir(), "config.yml")
	viper.SetConfigFile(configFile)
	viper.Set("output", constants.FormatJSON)

	if serverURL != "" {
		viper.Set("api", serverURL)
		viper.Set("upload_api", serverURL)
		viper.Set("token", "t0k3n")
	}

	return configFile
}

func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()

	var out, errOut bytes.Buffer

	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	err := cmd.Execute()

	return out.String(), err
}

func TestConfigCommands(t *testing.T) {
	configFile := setupViper(t, "")

	t.Run("set persists the value", func(t *testing.T) {
		_, err := execute(t, NewConfigCommand(), "set", "api", "https://ghe.example.com/api/v3")
		require.NoError(t, err)

		_, err = execute(t, NewConfigCommand(), "set", "nats_url", "nats://127.0.0.1:4222")
		require.NoError(t, err)

		raw, err := os.ReadFile(configFile)
		require.NoError(t, err)

		var saved Config

		require.NoError(t, yaml.Unmarshal(raw, &saved))
		assert.Equal(t, "https://ghe.example.com/api/v3", saved.API)
		assert.Equal(t, "nats://127.0.0.1:4222", saved.NATSURL)
	})

	t.Run("unknown key", func(t *testing.T) {
		_, err := execute(t, NewConfigCommand(), "set", "colour", "blue")
		require.ErrorIs(t, err, constants.ErrUnknownConfigKey)

		_, err = execute(t, NewConfigCommand(), "unset", "colour")
		require.ErrorIs(t, err, constants.ErrUnknownConfigKey)
	})

	t.Run("invalid output", func(t *testing.T) {
		_, err := execute(t, NewConfigCommand(), "set", "output", "xml")
		require.ErrorIs(t, err, constants.ErrInvalidOutput)
	})

	t.Run("show masks the token", func(t *testing.T) {
		_, err := execute(t, NewConfigCommand(), "set", "token", "ghp_secret")
		require.NoError(t, err)

		out, err := execute(t, NewConfigCommand(), "show")
		require.NoError(t, err)
		assert.NotContains(t, out, "ghp_secret")

		var shown Config

		require.NoError(t, json.Unmarshal([]byte(out), &shown))
		assert.Equal(t, constants.MaskedSecret, shown.Token)
		assert.Equal(t, "https://ghe.example.com/api/v3", shown.API)
	})

	t.Run("unset clears the value", func(t *testing.T) {
		_, err := execute(t, NewConfigCommand(), "unset", "api")
		require.NoError(t, err)

		raw, err := os.ReadFile(configFile)
		require.NoError(t, err)
		assert.NotContains(t, string(raw), "ghe.example.com")
	})
}

func TestConfigPersister(t *testing.T) {
	configFile := setupViper(t, "")

	require.NoError(t, NewConfigPersister().SaveToken("ghp_prompted"))

	raw, err := os.ReadFile(configFile)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "token: ghp_prompted")
	assert.Equal(t, "ghp_prompted", viper.GetString("token"))
}

func TestVersionCommand(t *testing.T) {
	setupViper(t, "")

	out, err := execute(t, NewVersionCommand("1.2.3", "abc123", "2025-01-01"))
	require.NoError(t, err)

	var info VersionInfo

	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, "1.2.3", info.Version)
	assert.Equal(t, "abc123", info.Commit)
	assert.NotEmpty(t, info.GoVersion)

	viper.Set("output", "xml")

	_, err = execute(t, NewVersionCommand("1.2.3", "abc123", "2025-01-01"))
	require.ErrorIs(t, err, constants.ErrInvalidOutput)
}

func TestAPICommand(t *testing.T) {
	var lastBody map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "token t0k3n", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")

		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/repos/octo/hello/releases":
			_, _ = w.Write([]byte(`[{"id":1,"tag_name":"v1.0.0"},{"id":2,"tag_name":"v1.1.0"}]`))
		case r.Method == http.MethodPost && r.URL.Path == "/repos/octo/hello/issues":
			lastBody = nil
			_ = json.NewDecoder(r.Body).Decode(&lastBody)

			w.WriteHeader(http.StatusCreated)
			_, _ = fmt.Fprintf(w, `{"number":7,"state":%q}`, r.URL.Query().Get("state"))
		case r.URL.Path == "/repos/octo/hello/releases/assets/9":
			_, _ = w.Write([]byte("asset-bytes"))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"Not Found","documentation_url":"https://docs.github.com/rest"}`))
		}
	}))
	defer server.Close()

	setupViper(t, server.URL)

	t.Run("read is the default verb", func(t *testing.T) {
		out, err := execute(t, NewAPICommand(), "repos", "octo", "hello", "releases")
		require.NoError(t, err)

		var releases []map[string]interface{}

		require.NoError(t, json.Unmarshal([]byte(out), &releases))
		require.Len(t, releases, 2)
		assert.Equal(t, "v1.1.0", releases[1]["tag_name"])
	})

	t.Run("create with data and query", func(t *testing.T) {
		out, err := execute(t, NewAPICommand(), "repos", "octo", "hello", "issues", "post",
			"-d", `{"title":"bug"}`, "-q", "state=open")
		require.NoError(t, err)
		assert.Equal(t, map[string]interface{}{"title": "bug"}, lastBody)
		assert.Contains(t, out, `"state": "open"`)
	})

	t.Run("API errors are returned", func(t *testing.T) {
		_, err := execute(t, NewAPICommand(), "repos", "octo", "missing", "get")
		require.Error(t, err)
		assert.True(t, gh.IsNotFound(err))
		assert.Contains(t, err.Error(), `"message": "Not Found"`)
	})

	t.Run("verb must be last", func(t *testing.T) {
		_, err := execute(t, NewAPICommand(), "repos", "get", "octo")
		require.ErrorIs(t, err, gh.ErrVerbNotTerminal)
	})

	t.Run("download verb", func(t *testing.T) {
		target := filepath.Join(t.TempDir(), "asset.bin")

		out, err := execute(t, NewAPICommand(), "repos", "octo", "hello", "releases", "assets", "9", "download",
			"--url", server.URL+"/repos/octo/hello/releases/assets/9", "--file", target)
		require.NoError(t, err)
		assert.Contains(t, out, `"bytes_written": 11`)

		content, err := os.ReadFile(target)
		require.NoError(t, err)
		assert.Equal(t, "asset-bytes", string(content))
	})

	t.Run("invalid header flag", func(t *testing.T) {
		_, err := execute(t, NewAPICommand(), "repos", "-H", "broken")
		require.ErrorIs(t, err, constants.ErrInvalidHeader)
	})
}

func TestReleasesCommands(t *testing.T) {
	var (
		server   *httptest.Server
		uploaded []byte
		deleted  string
	)

	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/repos/octo/hello/releases":
			_, _ = fmt.Fprintf(w, `[
				{"id":1,"tag_name":"v1.0.0","assets":[
					{"id":11,"name":"hello-linux.tar.gz","size":5,"browser_download_url":"%[1]s/dl/hello-linux.tar.gz"},
					{"id":12,"name":"hello-darwin.tar.gz","size":5,"browser_download_url":"%[1]s/dl/hello-darwin.tar.gz"}
				]},
				{"id":2,"tag_name":"v2.0.0-rc.1","prerelease":true,"assets":[]},
				{"id":3,"tag_name":"v1.5.0","assets":[]}
			]`, server.URL)
		case r.URL.Path == "/dl/hello-linux.tar.gz":
			_, _ = w.Write([]byte("linux"))
		case r.URL.Path == "/dl/hello-darwin.tar.gz":
			_, _ = w.Write([]byte("macos"))
		case r.Method == http.MethodPost && r.URL.Path == "/repos/octo/hello/releases/1/assets":
			uploaded, _ = io.ReadAll(r.Body)

			w.WriteHeader(http.StatusCreated)
			_, _ = fmt.Fprintf(w, `{"id":99,"name":%q,"size":%d}`, r.URL.Query().Get("name"), len(uploaded))
		case r.Method == http.MethodDelete:
			deleted = r.URL.Path

			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"Not Found"}`))
		}
	}))
	defer server.Close()

	setupViper(t, server.URL)

	t.Run("list", func(t *testing.T) {
		out, err := execute(t, NewReleasesCommand(), "list", "octo/hello", "--sort")
		require.NoError(t, err)

		var list []map[string]interface{}

		require.NoError(t, json.Unmarshal([]byte(out), &list))
		require.Len(t, list, 3)
		assert.Equal(t, "v2.0.0-rc.1", list[0]["tag_name"])
		assert.Equal(t, "v1.5.0", list[1]["tag_name"])
	})

	t.Run("show latest skips prereleases", func(t *testing.T) {
		out, err := execute(t, NewReleasesCommand(), "show", "octo/hello", "--latest")
		require.NoError(t, err)
		assert.Contains(t, out, `"tag_name": "v1.5.0"`)
	})

	t.Run("show requires a selector", func(t *testing.T) {
		_, err := execute(t, NewReleasesCommand(), "show", "octo/hello")
		require.ErrorIs(t, err, constants.ErrTagOrLatest)
	})

	t.Run("invalid repository", func(t *testing.T) {
		_, err := execute(t, NewReleasesCommand(), "list", "octo")
		require.ErrorIs(t, err, gh.ErrInvalidRepository)
	})

	t.Run("download matching assets", func(t *testing.T) {
		dir := t.TempDir()

		_, err := execute(t, NewReleasesCommand(), "download", "octo/hello", "--tag", "v1.0.0",
			"--pattern", "*-linux.*", "--dir", dir)
		require.NoError(t, err)

		content, err := os.ReadFile(filepath.Join(dir, "hello-linux.tar.gz"))
		require.NoError(t, err)
		assert.Equal(t, "linux", string(content))
		assert.NoFileExists(t, filepath.Join(dir, "hello-darwin.tar.gz"))
	})

	t.Run("download with no match", func(t *testing.T) {
		_, err := execute(t, NewReleasesCommand(), "download", "octo/hello", "--tag", "v1.0.0",
			"--pattern", "*.exe", "--dir", t.TempDir())
		require.ErrorIs(t, err, constants.ErrNoAssetsMatched)
	})

	t.Run("upload", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "notes.txt")
		require.NoError(t, os.WriteFile(path, []byte("release notes"), 0o600))

		out, err := execute(t, NewReleasesCommand(), "upload", "octo/hello", path, "--tag", "v1.0.0")
		require.NoError(t, err)
		assert.Equal(t, "release notes", string(uploaded))
		assert.Contains(t, out, `"name": "notes.txt"`)
	})

	t.Run("delete asset by name", func(t *testing.T) {
		_, err := execute(t, NewReleasesCommand(), "delete-asset", "octo/hello", "hello-darwin.tar.gz", "--tag", "v1.0.0")
		require.NoError(t, err)
		assert.Equal(t, "/repos/octo/hello/releases/assets/12", deleted)
	})

	t.Run("delete asset by id", func(t *testing.T) {
		_, err := execute(t, NewReleasesCommand(), "delete-asset", "octo/hello", "11")
		require.NoError(t, err)
		assert.Equal(t, "/repos/octo/hello/releases/assets/11", deleted)
	})
}
