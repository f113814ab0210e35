package logger

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestInfofGatedByVerbosity(t *testing.T) {
	var out bytes.Buffer

	Logger{Out: &out}.Infof("hidden %d", 1)
	if out.Len() != 0 {
		t.Errorf("Expected no output without verbose, got %q", out.String())
	}

	Logger{Verbose: true, Out: &out}.Infof("shown %d", 2)
	if !strings.Contains(out.String(), "shown 2") {
		t.Errorf("Expected info line, got %q", out.String())
	}
}

func TestDebugfRequiresDebug(t *testing.T) {
	var out bytes.Buffer

	Logger{Verbose: true, Out: &out}.Debugf("trace")
	if out.Len() != 0 {
		t.Errorf("Expected no debug output in verbose mode, got %q", out.String())
	}

	Logger{Debug: true, Out: &out}.Debugf("trace")
	if !strings.Contains(out.String(), "trace") {
		t.Errorf("Expected debug line, got %q", out.String())
	}
}

func TestWarnAndErrorAlwaysWriteToErr(t *testing.T) {
	var out, errOut bytes.Buffer
	l := Logger{Out: &out, Err: &errOut}

	l.Warnf("careful")
	l.Errorf("broken")

	if out.Len() != 0 {
		t.Errorf("Expected nothing on Out, got %q", out.String())
	}
	if !strings.Contains(errOut.String(), "careful") || !strings.Contains(errOut.String(), "broken") {
		t.Errorf("Expected both lines on Err, got %q", errOut.String())
	}
}

func TestErrorfAndReturnWraps(t *testing.T) {
	var errOut bytes.Buffer
	sentinel := errors.New("sentinel")

	err := Logger{Err: &errOut}.ErrorfAndReturn("step failed: %w", sentinel)
	if !errors.Is(err, sentinel) {
		t.Errorf("Expected returned error to wrap sentinel, got %v", err)
	}
	if !strings.Contains(errOut.String(), "step failed") {
		t.Errorf("Expected logged message, got %q", errOut.String())
	}
}
