package cli_test

import (
	"bytes"
	"os"
	"strings"
	"syscall"
	"testing"

	"github.com/calvinalkan/slots/internal/cli"
)

func Test_Run_Prints_Usage_When_Help_Flag_Given(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stdout := c.MustRun("--help")

	cli.AssertContains(t, stdout, "slotsctl - fixed-capacity slot allocator shell")
	cli.AssertContains(t, stdout, "--capacity")
	cli.AssertContains(t, stdout, "--mode")
	cli.AssertContains(t, stdout, "--exec")
	cli.AssertContains(t, stdout, "--no-checks")
}

func Test_Run_Fails_When_Flag_Unknown(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stdout, stderr, code := c.Run("--invalid-flag")

	if got, want := code, 1; got != want {
		t.Errorf("exitCode=%d, want=%d", got, want)
	}

	if stdout != "" {
		t.Errorf("stdout=%q, want empty", stdout)
	}

	cli.AssertContains(t, stderr, "unknown flag")
	cli.AssertContains(t, stderr, "--invalid-flag")
	cli.AssertContains(t, stderr, "Global flags:")
}

func Test_Run_Fails_When_Command_Unknown(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stderr := c.MustFail("frobnicate")

	cli.AssertContains(t, stderr, "unknown command: frobnicate")
}

func Test_Run_Fails_When_Mode_Flag_Invalid(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stderr := c.MustFail("-m", "loose", "-e", "count")

	cli.AssertContains(t, stderr, "mode must be strict, relaxed or unrestricted")
}

func Test_Run_Does_Nothing_When_Stdin_Nil(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer

	code := cli.Run(nil, &stdout, &stderr, []string{"slotsctl", "--cwd", t.TempDir()}, map[string]string{}, nil)

	if code != 0 || stdout.Len() != 0 || stderr.Len() != 0 {
		t.Fatalf("code=%d stdout=%q stderr=%q", code, stdout.String(), stderr.String())
	}
}

func Test_Run_Stops_Script_When_Signal_Pending(t *testing.T) {
	t.Parallel()

	sigCh := make(chan os.Signal, 1)
	sigCh <- syscall.SIGTERM

	var stdout, stderr bytes.Buffer

	code := cli.Run(strings.NewReader(""), &stdout, &stderr,
		[]string{"slotsctl", "--cwd", t.TempDir(), "-e", "store a"}, map[string]string{}, sigCh)

	if got, want := code, 130; got != want {
		t.Fatalf("exitCode=%d, want=%d", got, want)
	}

	if stdout.Len() != 0 {
		t.Fatalf("stdout=%q, want nothing executed", stdout.String())
	}

	cli.AssertContains(t, stderr.String(), "interrupted")
}
