//go:build integration

package integration

import (
	"bytes"
	"encoding/json"
	"os"
	"os/exec"
	"strings"
	"testing"

	"github.com/fivetwenty-io/tevo/pkg/tevo"
	"github.com/fivetwenty-io/tevo/pkg/tevoclient"
	"github.com/stretchr/testify/require"
)

// TestConfig holds configuration for integration tests.
type TestConfig struct {
	Token    string
	Secret   string
	APIURL   string
	TevoPath string
	Verbose  bool
}

// LoadTestConfig loads configuration from environment variables.
func LoadTestConfig() *TestConfig {
	return &TestConfig{
		Token:    os.Getenv("TEVO_SANDBOX_TOKEN"),
		Secret:   os.Getenv("TEVO_SANDBOX_SECRET"),
		APIURL:   os.Getenv("TEVO_SANDBOX_API_URL"),
		TevoPath: getTevoPath(),
		Verbose:  os.Getenv("TEVO_VERBOSE") == "true",
	}
}

func getTevoPath() string {
	if path := os.Getenv("TEVO_BINARY_PATH"); path != "" {
		return path
	}

	for _, candidate := range []string{"../../tevo", "./tevo", "../tevo"} {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return "tevo"
}

// SkipIfMissingCredentials skips the test without sandbox credentials.
func (config *TestConfig) SkipIfMissingCredentials(t *testing.T) {
	t.Helper()

	if config.Token == "" || config.Secret == "" {
		t.Skip("TEVO_SANDBOX_TOKEN/TEVO_SANDBOX_SECRET not set, skipping integration test")
	}
}

// SkipIfMissingBinary skips the test when the CLI binary is unavailable.
func (config *TestConfig) SkipIfMissingBinary(t *testing.T) {
	t.Helper()

	if _, err := exec.LookPath(config.TevoPath); err != nil {
		t.Skipf("tevo binary not found at %s, skipping integration test", config.TevoPath)
	}
}

// Connection builds a sandbox connection.
func (config *TestConfig) Connection(t *testing.T) *tevo.Connection {
	t.Helper()

	conn, err := tevoclient.New(&tevo.Config{
		Token:       config.Token,
		Secret:      config.Secret,
		Environment: "sandbox",
		APIURL:      config.APIURL,
		RateLimit:   2,
	})
	require.NoError(t, err)

	return conn
}

// CommandRunner runs the tevo binary with the sandbox credentials.
type CommandRunner struct {
	config *TestConfig
	t      *testing.T
}

// NewCommandRunner creates a new command runner.
func NewCommandRunner(config *TestConfig, t *testing.T) *CommandRunner {
	return &CommandRunner{config: config, t: t}
}

// Run executes a tevo command and returns its output.
func (runner *CommandRunner) Run(args ...string) (stdout, stderr string, err error) {
	full := append([]string{"--env", "sandbox", "--token", runner.config.Token, "--secret", runner.config.Secret}, args...)
	if runner.config.APIURL != "" {
		full = append([]string{"--api-url", runner.config.APIURL}, full...)
	}

	cmd := exec.Command(runner.config.TevoPath, full...) //nolint:gosec // test binary path

	var stdoutBuf, stderrBuf bytes.Buffer

	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	if runner.config.Verbose {
		runner.t.Logf("Running: %s %s", runner.config.TevoPath, strings.Join(args, " "))
	}

	err = cmd.Run()
	stdout = stdoutBuf.String()
	stderr = stderrBuf.String()

	if runner.config.Verbose && err != nil {
		runner.t.Logf("Command failed: %v\nStdout: %s\nStderr: %s", err, stdout, stderr)
	}

	return stdout, stderr, err
}

// AssertJSONOutput checks that output is valid JSON.
func AssertJSONOutput(t *testing.T, output string) {
	t.Helper()

	var v interface{}
	require.NoError(t, json.Unmarshal([]byte(output), &v), "output is not valid JSON: %s", output)
}
