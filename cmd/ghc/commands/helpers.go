package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/fivetwenty-io/ghclient/internal/constants"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Output format constants.
const (
	OutputFormatJSON  = constants.FormatJSON
	OutputFormatYAML  = constants.FormatYAML
	OutputFormatTable = constants.FormatTable
)

// OutputRenderer handles different output formats.
type OutputRenderer[T any] struct {
	RenderJSON  func(data T) error
	RenderYAML  func(data T) error
	RenderTable func(data T) error
}

// Render outputs data in the specified format.
func (o *OutputRenderer[T]) Render(data T, format string) error {
	switch format {
	case OutputFormatJSON:
		return o.RenderJSON(data)
	case OutputFormatYAML:
		return o.RenderYAML(data)
	default:
		return o.RenderTable(data)
	}
}

// newRenderer returns a renderer writing json and yaml to w and delegating
// tables to table.
func newRenderer[T any](w io.Writer, table func(data T) error) *OutputRenderer[T] {
	return &OutputRenderer[T]{
		RenderJSON: func(data T) error {
			return encodeJSON(w, data)
		},
		RenderYAML: func(data T) error {
			return encodeYAML(w, data)
		},
		RenderTable: table,
	}
}

func outputFormat() (string, error) {
	format := viper.GetString("output")
	switch format {
	case "", OutputFormatTable:
		return OutputFormatTable, nil
	case OutputFormatJSON, OutputFormatYAML:
		return format, nil
	default:
		return "", fmt.Errorf("%w: %s (use table, json or yaml)", constants.ErrInvalidOutput, format)
	}
}

func encodeJSON(w io.Writer, data interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	err := encoder.Encode(data)
	if err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}

func encodeYAML(w io.Writer, data interface{}) error {
	encoder := yaml.NewEncoder(w)
	defer func() { _ = encoder.Close() }()

	err := encoder.Encode(data)
	if err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}

	return nil
}

func renderTable(w io.Writer, header []string, rows [][]string) error {
	table := tablewriter.NewWriter(w)
	table.Header(toAny(header)...)

	for _, row := range rows {
		_ = table.Append(toAny(row)...)
	}

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}

	return out
}

func printSuccess(w io.Writer, format string, args ...interface{}) {
	green := color.New(color.FgGreen).SprintFunc()
	_, _ = fmt.Fprintf(w, "%s %s\n", green("✓"), fmt.Sprintf(format, args...))
}

func printWarning(w io.Writer, format string, args ...interface{}) {
	yellow := color.New(color.FgYellow).SprintFunc()
	_, _ = fmt.Fprintf(w, "%s %s\n", yellow("!"), fmt.Sprintf(format, args...))
}

// parseHeaders turns repeated "Name: Value" flags into a header map.
func parseHeaders(values []string) (map[string]string, error) {
	headers := make(map[string]string, len(values))

	for _, value := range values {
		name, content, found := strings.Cut(value, ":")
		name = strings.TrimSpace(name)

		if !found || name == "" {
			return nil, fmt.Errorf("%w: %q", constants.ErrInvalidHeader, value)
		}

		headers[name] = strings.TrimSpace(content)
	}

	return headers, nil
}

// parseQuery turns repeated "key=value" flags into query values. Repeated
// keys accumulate.
func parseQuery(values []string) (url.Values, error) {
	query := url.Values{}

	for _, value := range values {
		key, content, found := strings.Cut(value, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("%w: %q", constants.ErrInvalidQuery, value)
		}

		query.Add(key, content)
	}

	return query, nil
}

// parseData decodes a JSON document given inline or as @file.
func parseData(value string) (interface{}, error) {
	if value == "" {
		return nil, nil
	}

	raw := []byte(value)

	if strings.HasPrefix(value, "@") {
		// #nosec G304 -- the file is named by the user on the command line.
		content, err := os.ReadFile(strings.TrimPrefix(value, "@"))
		if err != nil {
			return nil, fmt.Errorf("failed to read data file: %w", err)
		}

		raw = content
	}

	var data interface{}

	err := json.Unmarshal(raw, &data)
	if err != nil {
		return nil, fmt.Errorf("data must be valid JSON: %w", err)
	}

	return data, nil
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}

	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}

	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

func valueOrNA(value string) string {
	if value == "" {
		return constants.NotAvailable
	}

	return value
}
