// Package cmd contains testing utilities shared between command tests.
// This file provides common functions for setting up a throwaway Refuge
// home, feeding stdin and capturing output.
package cmd

import (
	"bytes"
	"io"
	"log"
	"net"
	"os"
	"testing"
	"time"

	"github.com/PolarWolf314/refuge/internal/configs"
	"github.com/spf13/cobra"
)

// setupTestEnvironment points REFUGE_HOME at a temp directory and writes
// settings with fast hashing and unreachable network endpoints.
func setupTestEnvironment(t *testing.T) configs.Paths {
	t.Helper()

	t.Setenv("REFUGE_HOME", t.TempDir())
	t.Setenv("NO_COLOR", "1")

	paths, err := configs.DefaultPaths()
	if err != nil {
		t.Fatalf("Failed to resolve paths: %v", err)
	}

	settings := configs.DefaultSettings()
	settings.Guard.MaxFailedAttempts = 3
	settings.Guard.Argon2Time = 1
	settings.Guard.Argon2MemoryKiB = 64
	settings.Guard.Argon2Threads = 1
	settings.Network.DirectURL = "http://" + closedAddr(t)
	settings.Network.ControlURL = "http://" + closedAddr(t)
	settings.Network.TorSOCKSAddr = closedAddr(t)
	settings.Network.LocalProbeTimeout = 200 * time.Millisecond
	settings.Network.RemoteProbeTimeout = 500 * time.Millisecond
	settings.Session.CoverURL = ""

	if err := configs.SaveSettings(paths.SettingsFile, settings); err != nil {
		t.Fatalf("Failed to write settings: %v", err)
	}

	ResetGlobalState()
	t.Cleanup(ResetGlobalState)

	return paths
}

// closedAddr returns a loopback address with nothing listening.
func closedAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to listen: %v", err)
	}
	addr := l.Addr().String()
	l.Close()
	return addr
}

// withStdin replaces os.Stdin with a pipe holding input until the test ends.
func withStdin(t *testing.T, input string) {
	t.Helper()

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("Failed to create pipe: %v", err)
	}
	if _, err := w.WriteString(input); err != nil {
		t.Fatalf("Failed to write stdin: %v", err)
	}
	w.Close()

	original := os.Stdin
	os.Stdin = r
	t.Cleanup(func() {
		os.Stdin = original
		r.Close()
	})
}

// captureOutput captures both stdout and stderr during function execution.
func captureOutput(fn func() error) (string, error) {
	originalStdout := os.Stdout
	originalStderr := os.Stderr

	stdoutReader, stdoutWriter, _ := os.Pipe()
	stderrReader, stderrWriter, _ := os.Pipe()

	os.Stdout = stdoutWriter
	os.Stderr = stderrWriter

	outputChan := make(chan string, 2)

	collect := func(r io.Reader) {
		var buf bytes.Buffer
		if _, err := io.Copy(&buf, r); err != nil {
			log.Fatalf("Failed to run copy command: %s", err)
		}
		outputChan <- buf.String()
	}
	go collect(stdoutReader)
	go collect(stderrReader)

	err := fn()

	stdoutWriter.Close()
	stderrWriter.Close()

	os.Stdout = originalStdout
	os.Stderr = originalStderr

	stdout := <-outputChan
	stderr := <-outputChan

	return stdout + stderr, err
}

// createTestCLI creates a root command carrying every command group.
func createTestCLI(args ...string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "refuge",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	for _, c := range Commands() {
		rootCmd.AddCommand(c)
	}
	rootCmd.SetArgs(args)
	return rootCmd
}

// runCLI executes args with stdin and returns the combined output.
func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	withStdin(t, stdin)
	ResetGlobalState()

	return captureOutput(func() error {
		return createTestCLI(args...).Execute()
	})
}
