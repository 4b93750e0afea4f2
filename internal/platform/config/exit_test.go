package config_test

import (
	"errors"
	"os"
	"os/exec"
	"strings"
	"testing"

	"github.com/louisbranch/dnaforge/internal/platform/config"
	apperrors "github.com/louisbranch/dnaforge/internal/platform/errors"
)

// exitStatus reruns the named test in a subprocess, since os.Exit cannot be
// intercepted in-process.
func exitStatus(t *testing.T, name string) (int, string) {
	t.Helper()
	cmd := exec.Command(os.Args[0], "-test.run=^"+name+"$")
	cmd.Env = append(os.Environ(), "TEST_EXIT_SUBPROCESS=1")

	out, err := cmd.CombinedOutput()
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected *exec.ExitError, got %T: %v", err, err)
	}
	return exitErr.ExitCode(), string(out)
}

func TestExitfExitsWithCode1(t *testing.T) {
	if os.Getenv("TEST_EXIT_SUBPROCESS") == "1" {
		config.Exitf("fatal: %s", "something broke")
		return
	}

	code, out := exitStatus(t, "TestExitfExitsWithCode1")
	if code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
	if !strings.Contains(out, "fatal: something broke") {
		t.Fatalf("expected stderr to contain %q, got %q", "fatal: something broke", out)
	}
}

func TestExitErrUsesErrorCode(t *testing.T) {
	if os.Getenv("TEST_EXIT_SUBPROCESS") == "1" {
		config.ExitErr(apperrors.New(apperrors.CodeUniquenessExhausted, "out of combinations"))
		return
	}

	code, out := exitStatus(t, "TestExitErrUsesErrorCode")
	if code != apperrors.ExitExhausted {
		t.Fatalf("expected exit code %d, got %d", apperrors.ExitExhausted, code)
	}
	if !strings.Contains(out, "Error: out of combinations") {
		t.Fatalf("expected stderr to contain the error, got %q", out)
	}
}
