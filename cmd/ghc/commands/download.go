package commands

import (
	"github.com/fivetwenty-io/ghclient/internal/constants"
	"github.com/fivetwenty-io/ghclient/pkg/gh"
	"github.com/spf13/cobra"
)

// NewDownloadCommand creates the command that streams a URL to a file.
func NewDownloadCommand() *cobra.Command {
	var headers []string

	cmd := &cobra.Command{
		Use:   "download URL FILE",
		Short: "Download a URL to a file",
		Long:  "Stream any URL to a local file with the configured credentials, showing progress",
		Args:  cobra.ExactArgs(constants.MinimumArgumentCount),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := outputFormat()
			if err != nil {
				return err
			}

			parsed, err := parseHeaders(headers)
			if err != nil {
				return err
			}

			ctx := cmd.Context()

			ghClient, _, err := CreateClient(ctx, constants.DownloadHTTPTimeout)
			if err != nil {
				return err
			}

			progress := newProgressLines(cmd.ErrOrStderr())

			result, err := ghClient.DownloadFile(ctx, &gh.CallOptions{
				URL:      args[0],
				Filename: args[1],
				Headers:  parsed,
				Progress: progress.Func(args[1]),
			})
			if err != nil {
				return err
			}

			return renderDownload(cmd.OutOrStdout(), result, format)
		},
	}

	cmd.Flags().StringArrayVarP(&headers, "header", "H", nil, "extra request header (Name: Value)")

	return cmd
}
