package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/fivetwenty-io/ghclient/internal/constants"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config represents the CLI configuration.
type Config struct {
	API               string `json:"api,omitempty"                 yaml:"api,omitempty"`
	UploadAPI         string `json:"upload_api,omitempty"          yaml:"upload_api,omitempty"`
	Token             string `json:"token,omitempty"               yaml:"token,omitempty"`
	Output            string `json:"output,omitempty"              yaml:"output,omitempty"`
	NoColor           bool   `json:"no_color"                      yaml:"no_color"`
	LogLevel          string `json:"log_level,omitempty"           yaml:"log_level,omitempty"`
	Timeout           string `json:"timeout,omitempty"             yaml:"timeout,omitempty"`
	SkipSSLValidation bool   `json:"skip_ssl_validation"           yaml:"skip_ssl_validation"`
	NATSURL           string `json:"nats_url,omitempty"            yaml:"nats_url,omitempty"`
	NATSSubjectPrefix string `json:"nats_subject_prefix,omitempty" yaml:"nats_subject_prefix,omitempty"`
}

// configKeys lists the keys accepted by config set and unset.
var configKeys = []string{
	"api", "upload_api", "token", "output", "no_color", "log_level",
	"timeout", "skip_ssl_validation", "nats_url", "nats_subject_prefix",
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Manage ghc configuration stored in $HOME/.ghc/config.yml",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetCommand())
	cmd.AddCommand(newConfigUnsetCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the current CLI configuration with the token masked",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := outputFormat()
			if err != nil {
				return err
			}

			config := loadConfig()
			if config.Token != "" {
				config.Token = constants.MaskedSecret
			}

			renderer := newRenderer(cmd.OutOrStdout(), func(config *Config) error {
				return displayConfigTable(cmd.OutOrStdout(), config)
			})

			return renderer.Render(config, format)
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Long:  "Set a configuration value. Keys: " + fmt.Sprint(configKeys),
		Args:  cobra.ExactArgs(constants.MinimumArgumentCount),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			value := args[1]

			config := loadConfig()

			err := setConfigValue(config, key, value)
			if err != nil {
				return err
			}

			err = saveConfigStruct(config)
			if err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			if key == "token" {
				value = constants.MaskedSecret
			}

			printSuccess(cmd.OutOrStdout(), "Set %s = %s", key, value)

			return nil
		},
	}
}

func newConfigUnsetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unset KEY",
		Short: "Unset a configuration value",
		Long:  "Remove a configuration value so its default applies again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			config := loadConfig()

			err := unsetConfigValue(config, key)
			if err != nil {
				return err
			}

			err = saveConfigStruct(config)
			if err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			printSuccess(cmd.OutOrStdout(), "Unset %s", key)

			return nil
		},
	}
}

func loadConfig() *Config {
	return &Config{
		API:               viper.GetString("api"),
		UploadAPI:         viper.GetString("upload_api"),
		Token:             viper.GetString("token"),
		Output:            viper.GetString("output"),
		NoColor:           viper.GetBool("no_color"),
		LogLevel:          viper.GetString("log_level"),
		Timeout:           viper.GetString("timeout"),
		SkipSSLValidation: viper.GetBool("skip_ssl_validation"),
		NATSURL:           viper.GetString("nats_url"),
		NATSSubjectPrefix: viper.GetString("nats_subject_prefix"),
	}
}

func setConfigValue(config *Config, key, value string) error {
	switch key {
	case "api":
		config.API = value
	case "upload_api":
		config.UploadAPI = value
	case "token":
		config.Token = value
	case "output":
		switch value {
		case OutputFormatTable, OutputFormatJSON, OutputFormatYAML:
			config.Output = value
		default:
			return fmt.Errorf("%w: %s", constants.ErrInvalidOutput, value)
		}
	case "no_color":
		config.NoColor = parseBool(value)
	case "log_level":
		config.LogLevel = value
	case "timeout":
		config.Timeout = value
	case "skip_ssl_validation":
		config.SkipSSLValidation = parseBool(value)
	case "nats_url":
		config.NATSURL = value
	case "nats_subject_prefix":
		config.NATSSubjectPrefix = value
	default:
		return fmt.Errorf("%w: %s", constants.ErrUnknownConfigKey, key)
	}

	viper.Set(key, value)

	return nil
}

func unsetConfigValue(config *Config, key string) error {
	switch key {
	case "api":
		config.API = ""
	case "upload_api":
		config.UploadAPI = ""
	case "token":
		config.Token = ""
	case "output":
		config.Output = ""
	case "no_color":
		config.NoColor = false
	case "log_level":
		config.LogLevel = ""
	case "timeout":
		config.Timeout = ""
	case "skip_ssl_validation":
		config.SkipSSLValidation = false
	case "nats_url":
		config.NATSURL = ""
	case "nats_subject_prefix":
		config.NATSSubjectPrefix = ""
	default:
		return fmt.Errorf("%w: %s", constants.ErrUnknownConfigKey, key)
	}

	viper.Set(key, "")

	return nil
}

func parseBool(value string) bool {
	parsed, err := strconv.ParseBool(value)

	return err == nil && parsed
}

func configFilePath() (string, error) {
	configFile := viper.ConfigFileUsed()
	if configFile != "" {
		return configFile, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(home, ".ghc", "config.yml"), nil
}

func saveConfigStruct(config *Config) error {
	configFile, err := configFilePath()
	if err != nil {
		return err
	}

	err = os.MkdirAll(filepath.Dir(configFile), constants.ConfigDirPerm)
	if err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	err = os.WriteFile(configFile, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func displayConfigTable(w io.Writer, config *Config) error {
	values := map[string]string{
		"api":                 config.API,
		"upload_api":          config.UploadAPI,
		"token":               config.Token,
		"output":              config.Output,
		"no_color":            strconv.FormatBool(config.NoColor),
		"log_level":           config.LogLevel,
		"timeout":             config.Timeout,
		"skip_ssl_validation": strconv.FormatBool(config.SkipSSLValidation),
		"nats_url":            config.NATSURL,
		"nats_subject_prefix": config.NATSSubjectPrefix,
	}

	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	rows := make([][]string, 0, len(keys))
	for _, key := range keys {
		rows = append(rows, []string{key, valueOrNA(values[key])})
	}

	return renderTable(w, []string{"Setting", "Value"}, rows)
}
