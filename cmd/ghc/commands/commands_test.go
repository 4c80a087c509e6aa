package commands_test

import (
	"testing"

	"github.com/fivetwenty-io/ghclient/cmd/ghc/commands"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReleasesCommand(t *testing.T) {
	t.Parallel()

	cmd := commands.NewReleasesCommand()
	assert.Equal(t, "releases", cmd.Use)
	assert.Equal(t, []string{"release", "rel"}, cmd.Aliases)
	assert.Equal(t, "Manage repository releases", cmd.Short)

	subcommands := cmd.Commands()
	assert.Len(t, subcommands, 5)

	for _, name := range []string{"list", "show", "download", "upload", "delete-asset"} {
		assert.NotNil(t, findSubcommand(cmd, name), "subcommand %s should exist", name)
	}

	t.Run("download flags", func(t *testing.T) {
		t.Parallel()

		download := findSubcommand(cmd, "download")
		require.NotNil(t, download)
		assert.Equal(t, "download OWNER/REPO", download.Use)
		assert.NotNil(t, download.RunE)

		for _, flagName := range []string{"tag", "latest", "prerelease", "pattern", "dir", "retries"} {
			assert.NotNil(t, download.Flags().Lookup(flagName), "Flag %s should exist", flagName)
		}

		assert.Equal(t, "3", download.Flags().Lookup("retries").DefValue)
		assert.Equal(t, ".", download.Flags().Lookup("dir").DefValue)
	})

	t.Run("upload flags", func(t *testing.T) {
		t.Parallel()

		upload := findSubcommand(cmd, "upload")
		require.NotNil(t, upload)
		assert.Equal(t, "upload OWNER/REPO FILE...", upload.Use)

		for _, flagName := range []string{"tag", "name", "label", "content-type"} {
			assert.NotNil(t, upload.Flags().Lookup(flagName), "Flag %s should exist", flagName)
		}
	})

	t.Run("argument counts", func(t *testing.T) {
		t.Parallel()

		list := findSubcommand(cmd, "list")
		require.NotNil(t, list)
		require.Error(t, list.Args(list, []string{}))
		require.NoError(t, list.Args(list, []string{"octo/hello"}))

		deleteAsset := findSubcommand(cmd, "delete-asset")
		require.NotNil(t, deleteAsset)
		require.Error(t, deleteAsset.Args(deleteAsset, []string{"octo/hello"}))
		require.NoError(t, deleteAsset.Args(deleteAsset, []string{"octo/hello", "42"}))
	})
}

func TestNewAPICommand(t *testing.T) {
	t.Parallel()

	cmd := commands.NewAPICommand()
	assert.Equal(t, "api SEGMENT... [VERB]", cmd.Use)
	assert.Equal(t, "Call any API path", cmd.Short)
	assert.NotNil(t, cmd.RunE)
	require.Error(t, cmd.Args(cmd, []string{}))

	for _, flagName := range []string{"data", "header", "query", "body-file", "content-type", "url", "file"} {
		assert.NotNil(t, cmd.Flags().Lookup(flagName), "Flag %s should exist", flagName)
	}

	assert.Equal(t, "d", cmd.Flags().Lookup("data").Shorthand)
	assert.Equal(t, "H", cmd.Flags().Lookup("header").Shorthand)
	assert.Equal(t, "q", cmd.Flags().Lookup("query").Shorthand)
}

func TestNewDownloadCommand(t *testing.T) {
	t.Parallel()

	cmd := commands.NewDownloadCommand()
	assert.Equal(t, "download URL FILE", cmd.Use)
	assert.Equal(t, "Download a URL to a file", cmd.Short)
	require.Error(t, cmd.Args(cmd, []string{"https://example.com/a.zip"}))
	require.NoError(t, cmd.Args(cmd, []string{"https://example.com/a.zip", "a.zip"}))
	assert.NotNil(t, cmd.Flags().Lookup("header"))
}

func TestNewConfigCommand(t *testing.T) {
	t.Parallel()

	cmd := commands.NewConfigCommand()
	assert.Equal(t, "config", cmd.Use)
	assert.Equal(t, "Manage CLI configuration", cmd.Short)

	subcommands := cmd.Commands()
	assert.Len(t, subcommands, 3)

	set := findSubcommand(cmd, "set")
	require.NotNil(t, set)
	assert.Equal(t, "set KEY VALUE", set.Use)
	require.Error(t, set.Args(set, []string{"api"}))

	assert.NotNil(t, findSubcommand(cmd, "show"))
	assert.NotNil(t, findSubcommand(cmd, "unset"))
}

func TestNewVersionCommand(t *testing.T) {
	t.Parallel()

	cmd := commands.NewVersionCommand("1.2.3", "abc123", "2025-01-01")
	assert.Equal(t, "version", cmd.Use)
	assert.Equal(t, "Display version information", cmd.Short)
	assert.NotNil(t, cmd.RunE)
}
