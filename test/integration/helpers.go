//go:build integration

package integration

import (
	"bytes"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

// TestConfig holds configuration for integration tests
type TestConfig struct {
	Token     string
	GhcPath   string
	Verbose   bool
	ReadRepo  string
	WriteRepo string
	WriteTag  string
}

// LoadTestConfig loads configuration from environment variables
func LoadTestConfig() *TestConfig {
	readRepo := os.Getenv("GHC_INTEGRATION_REPO")
	if readRepo == "" {
		readRepo = "cli/cli"
	}

	return &TestConfig{
		Token:     os.Getenv("GHC_INTEGRATION_TOKEN"),
		GhcPath:   getGhcPath(),
		Verbose:   os.Getenv("GHC_VERBOSE") == "true",
		ReadRepo:  readRepo,
		WriteRepo: os.Getenv("GHC_INTEGRATION_WRITE_REPO"),
		WriteTag:  os.Getenv("GHC_INTEGRATION_WRITE_TAG"),
	}
}

// getGhcPath determines the path to the ghc binary
func getGhcPath() string {
	if path := os.Getenv("GHC_BINARY_PATH"); path != "" {
		return path
	}

	for _, candidate := range []string{"../../ghc", "./ghc", "../ghc"} {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return "ghc"
}

// SkipIfMissingConfig skips test if required config is missing
func (config *TestConfig) SkipIfMissingConfig(t *testing.T) {
	t.Helper()

	if config.Token == "" {
		t.Skip("GHC_INTEGRATION_TOKEN not set, skipping integration test")
	}

	if _, err := exec.LookPath(config.GhcPath); err != nil {
		t.Skipf("ghc binary not found at %s, skipping integration test", config.GhcPath)
	}
}

// SkipIfReadOnly skips tests that modify a release.
func (config *TestConfig) SkipIfReadOnly(t *testing.T) {
	t.Helper()

	if config.WriteRepo == "" || config.WriteTag == "" {
		t.Skip("GHC_INTEGRATION_WRITE_REPO/GHC_INTEGRATION_WRITE_TAG not set, skipping write test")
	}
}

// CommandRunner runs ghc against an isolated config file.
type CommandRunner struct {
	config     *TestConfig
	configFile string
	t          *testing.T
}

// NewCommandRunner creates a new command runner
func NewCommandRunner(config *TestConfig, t *testing.T) *CommandRunner {
	t.Helper()

	return &CommandRunner{
		config:     config,
		configFile: filepath.Join(t.TempDir(), "config.yml"),
		t:          t,
	}
}

// Run executes a ghc command and returns output
func (runner *CommandRunner) Run(args ...string) (string, string, error) {
	args = append([]string{"--config", runner.configFile}, args...)

	// #nosec G204 -- the binary path comes from the test environment.
	cmd := exec.Command(runner.config.GhcPath, args...)
	cmd.Env = append(os.Environ(), "GHC_TOKEN="+runner.config.Token)

	var stdoutBuf, stderrBuf bytes.Buffer

	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	if runner.config.Verbose {
		runner.t.Logf("Running: %s %s", runner.config.GhcPath, strings.Join(args, " "))
	}

	err := cmd.Run()
	stdout := stdoutBuf.String()
	stderr := stderrBuf.String()

	if runner.config.Verbose && err != nil {
		runner.t.Logf("Command failed: %v\nStdout: %s\nStderr: %s", err, stdout, stderr)
	}

	return stdout, stderr, err
}

// AssertJSONOutput verifies command output is valid JSON
func AssertJSONOutput(t *testing.T, output string) {
	t.Helper()

	if !json.Valid([]byte(strings.TrimSpace(output))) {
		t.Errorf("Output is not JSON: %s", output)
	}
}

// AssertYAMLOutput verifies command output is valid YAML
func AssertYAMLOutput(t *testing.T, output string) {
	t.Helper()

	var decoded interface{}
	if err := yaml.Unmarshal([]byte(output), &decoded); err != nil || decoded == nil {
		t.Errorf("Output is not YAML: %s", output)
	}
}
