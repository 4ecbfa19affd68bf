package version

import (
	"context"
	"os"
	"os/exec"
	"strings"
	"testing"
)

// TestHelperProcess isn't a real test. It stands in for git when
// execCommand is pointed at the test binary.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	defer os.Exit(0)

	args := os.Args
	for len(args) > 0 {
		if args[0] == "--" {
			args = args[1:]
			break
		}
		args = args[1:]
	}
	if len(args) < 3 || args[0] != "git" {
		os.Exit(0)
	}

	switch args[2] {
	case "--always":
		if os.Getenv("MOCK_GIT_FAIL") == "1" {
			os.Exit(1)
		}
		os.Stdout.WriteString("abc1234")
	case "--tags":
		if os.Getenv("MOCK_GIT_FAIL") == "1" {
			os.Exit(1)
		}
		os.Stdout.WriteString("v1.2.0")
	}
}

func useMockGit(t *testing.T, fail bool) {
	t.Helper()

	orig := execCommand
	t.Cleanup(func() { execCommand = orig })

	execCommand = func(ctx context.Context, name string, arg ...string) *exec.Cmd {
		cs := append([]string{"-test.run=TestHelperProcess", "--", name}, arg...)
		cmd := exec.Command(os.Args[0], cs...)
		cmd.Env = []string{"GO_WANT_HELPER_PROCESS=1"}
		if fail {
			cmd.Env = append(cmd.Env, "MOCK_GIT_FAIL=1")
		}
		return cmd
	}
}

func TestInfo(t *testing.T) {
	useMockGit(t, false)
	Reset()

	if got := GetVersion(); got != "v1.2.0" {
		t.Errorf("GetVersion() = %q, want %q", got, "v1.2.0")
	}
	if got := GetCommit(); got != "abc1234" {
		t.Errorf("GetCommit() = %q, want %q", got, "abc1234")
	}

	info := Info()
	if !strings.Contains(info, "modpay-tui") || !strings.Contains(info, "v1.2.0") {
		t.Errorf("Info() = %q, missing expected fields", info)
	}
}

func TestInfo_GitUnavailable(t *testing.T) {
	useMockGit(t, true)
	Reset()

	if got := GetVersion(); got != "dev" {
		t.Errorf("GetVersion() = %q, want %q", got, "dev")
	}
	if got := GetCommit(); got != "unknown" {
		t.Errorf("GetCommit() = %q, want %q", got, "unknown")
	}
}

func TestGetDate(t *testing.T) {
	useMockGit(t, false)
	Reset()

	if GetDate() == "" {
		t.Error("GetDate() returned empty string")
	}
}
