package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/fivetwenty-io/ghclient/internal/client"
	"github.com/fivetwenty-io/ghclient/internal/constants"
	"github.com/fivetwenty-io/ghclient/pkg/gh"
	"github.com/spf13/cobra"
)

type apiOptions struct {
	data        string
	headers     []string
	query       []string
	bodyFile    string
	contentType string
	url         string
	filename    string
}

// NewAPICommand creates the generic path-addressed request command.
func NewAPICommand() *cobra.Command {
	opts := &apiOptions{}

	cmd := &cobra.Command{
		Use:   "api SEGMENT... [VERB]",
		Short: "Call any API path",
		Long: `Build a resource path from the given segments and invoke a verb on it.

The last argument may be one of get/read, post/create, put/replace,
patch/partial_update, delete or download; read is used when it is omitted.

Examples:
  ghc api repos octo hello-world releases
  ghc api repos octo hello-world releases 42 assets post --body-file dist.zip -q name=dist.zip
  ghc api repos octo hello-world issues post -d '{"title":"bug"}'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAPI(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.data, "data", "d", "", "JSON request body, inline or @file")
	cmd.Flags().StringArrayVarP(&opts.headers, "header", "H", nil, "extra request header (Name: Value)")
	cmd.Flags().StringArrayVarP(&opts.query, "query", "q", nil, "query parameter (key=value)")
	cmd.Flags().StringVar(&opts.bodyFile, "body-file", "", "send the file as the raw request body")
	cmd.Flags().StringVar(&opts.contentType, "content-type", "", "content type of --body-file")
	cmd.Flags().StringVar(&opts.url, "url", "", "explicit download URL for the download verb")
	cmd.Flags().StringVarP(&opts.filename, "file", "f", "", "destination file for the download verb")

	return cmd
}

func runAPI(cmd *cobra.Command, args []string, opts *apiOptions) error {
	format, err := outputFormat()
	if err != nil {
		return err
	}

	callOpts, err := opts.callOptions()
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	ghClient, _, err := CreateClient(ctx, constants.DownloadHTTPTimeout)
	if err != nil {
		return err
	}

	resource, terminal, err := client.Walk(ghClient.Root(), args...)
	if err != nil {
		return err
	}

	if terminal == nil {
		terminal = resource.Terminal(gh.VerbRead)
	}

	if terminal.Path().IsEmpty() {
		return constants.ErrNoPathGiven
	}

	if terminal.Verb() == gh.VerbDownload {
		progress := newProgressLines(cmd.ErrOrStderr())
		callOpts.Progress = progress.Func(callOpts.Filename)
	}

	response, err := terminal.Invoke(ctx, callOpts)
	if err != nil {
		return err
	}

	if response.Download != nil {
		return renderDownload(cmd.OutOrStdout(), response.Download, format)
	}

	return renderResult(cmd.OutOrStdout(), response.Result, format)
}

func (o *apiOptions) callOptions() (*gh.CallOptions, error) {
	headers, err := parseHeaders(o.headers)
	if err != nil {
		return nil, err
	}

	query, err := parseQuery(o.query)
	if err != nil {
		return nil, err
	}

	data, err := parseData(o.data)
	if err != nil {
		return nil, err
	}

	callOpts := &gh.CallOptions{
		Headers:     headers,
		Query:       query,
		Data:        data,
		ContentType: o.contentType,
		URL:         o.url,
		Filename:    o.filename,
	}

	if o.bodyFile != "" {
		// #nosec G304 -- the file is named by the user on the command line.
		content, err := os.ReadFile(o.bodyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read body file: %w", err)
		}

		callOpts.Body = bytes.NewReader(content)
	}

	return callOpts, nil
}

func renderResult(w io.Writer, result gh.Result, format string) error {
	renderer := newRenderer(w, func(result gh.Result) error {
		return resultTable(w, result)
	})

	return renderer.Render(result, format)
}

// resultTable prints a mapping as key/value rows and an array as one row
// per element. Nested values are shown as compact JSON.
func resultTable(w io.Writer, result gh.Result) error {
	if items := result.Slice(); items != nil {
		rows := make([][]string, 0, len(items))
		for i, item := range items {
			rows = append(rows, []string{strconv.Itoa(i), summarize(item)})
		}

		return renderTable(w, []string{"#", "Value"}, rows)
	}

	fields := result.Map()
	if fields == nil {
		return renderTable(w, []string{"Value"}, [][]string{{summarize(result.Value)}})
	}

	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	rows := make([][]string, 0, len(keys))
	for _, key := range keys {
		rows = append(rows, []string{key, summarize(fields[key])})
	}

	return renderTable(w, []string{"Field", "Value"}, rows)
}

// summarize renders one value for a table cell. Objects with a name-like
// key show that key; everything else is compact JSON.
func summarize(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case map[string]interface{}:
		for _, key := range []string{"full_name", "tag_name", "name", "login", "id"} {
			if inner, ok := v[key]; ok {
				return fmt.Sprint(inner)
			}
		}
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Sprint(value)
	}

	return string(raw)
}

func renderDownload(w io.Writer, result *gh.DownloadResult, format string) error {
	renderer := newRenderer(w, func(result *gh.DownloadResult) error {
		printSuccess(w, "Downloaded %s to %s", formatBytes(result.BytesWritten), result.Filename)

		return nil
	})

	return renderer.Render(result, format)
}
