package shell

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/starford/kfmt/internal/apperr"
)

func TestExec_CapturesAndEchoes(t *testing.T) {
	var out, errOut bytes.Buffer
	r := &Exec{Stdout: &out, Stderr: &errOut}

	res, err := r.Run(context.Background(), Command{Name: "sh", Args: []string{"-c", "echo hello; echo warning >&2"}})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.ExitCode != 0 {
		t.Errorf("exit code = %d", res.ExitCode)
	}
	if res.Stdout != "hello\n" || res.Stderr != "warning\n" {
		t.Errorf("result = %+v", res)
	}
	if out.String() != "hello\n" || errOut.String() != "warning\n" {
		t.Errorf("echo stdout=%q stderr=%q", out.String(), errOut.String())
	}
}

func TestExec_NonZeroExitIsNotAnError(t *testing.T) {
	r := &Exec{}
	res, err := r.Run(context.Background(), Command{Name: "sh", Args: []string{"-c", "echo oops >&2; exit 3"}})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.ExitCode != 3 {
		t.Errorf("exit code = %d, want 3", res.ExitCode)
	}
	if res.Stderr != "oops\n" {
		t.Errorf("stderr = %q", res.Stderr)
	}
}

func TestExec_DirAndEnv(t *testing.T) {
	dir := t.TempDir()
	r := &Exec{}
	res, err := r.Run(context.Background(), Command{
		Name: "sh",
		Args: []string{"-c", `pwd; echo "$KFMT_TEST"`},
		Dir:  dir,
		Env:  []string{"KFMT_TEST=on"},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !bytes.Contains([]byte(res.Stdout), []byte("on\n")) {
		t.Errorf("stdout = %q", res.Stdout)
	}
}

func TestExec_MissingBinary(t *testing.T) {
	r := &Exec{}
	_, err := r.Run(context.Background(), Command{Name: "kfmt-definitely-missing-binary"})
	if err == nil {
		t.Fatal("expected start error")
	}
}

func TestExec_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := &Exec{}
	if _, err := r.Run(ctx, Command{Name: "sleep", Args: []string{"5"}}); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestCheck(t *testing.T) {
	if err := Check("black", Result{}); err != nil {
		t.Errorf("Check(success) = %v", err)
	}
	err := Check("black", Result{ExitCode: 123, Stdout: "out", Stderr: "cannot parse"})
	var te *apperr.ToolError
	if !errors.As(err, &te) {
		t.Fatalf("err = %v, want ToolError", err)
	}
	if te.Tool != "black" || te.ExitCode != 123 || te.Stderr != "cannot parse" {
		t.Errorf("ToolError = %+v", te)
	}
	if apperr.ExitCode(err) != 123 {
		t.Errorf("ExitCode = %d", apperr.ExitCode(err))
	}
}

func TestRunChecked(t *testing.T) {
	_, err := RunChecked(context.Background(), &Exec{}, Command{Name: "sh", Args: []string{"-c", "exit 2"}})
	if apperr.ExitCode(err) != 2 {
		t.Errorf("err = %v", err)
	}
}

func TestSplit(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"black", []string{"black"}},
		{"python -m black", []string{"python", "-m", "black"}},
		{`"/opt/my tools/kaggle" --verbose`, []string{"/opt/my tools/kaggle", "--verbose"}},
		{"black $HOME", []string{"black", "$HOME"}},
	}
	for _, tt := range tests {
		got, err := Split(tt.in)
		if err != nil {
			t.Fatalf("Split(%q): %v", tt.in, err)
		}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("Split(%q) mismatch (-want +got):\n%s", tt.in, diff)
		}
	}
}

func TestSplit_Empty(t *testing.T) {
	if _, err := Split("   "); err == nil {
		t.Error("expected error for empty command")
	}
	if _, err := Split(`"unterminated`); err == nil {
		t.Error("expected error for unterminated quote")
	}
}

func TestFromLine(t *testing.T) {
	cmd, err := FromLine("python -m black", "-q", "k.py")
	if err != nil {
		t.Fatal(err)
	}
	if cmd.Name != "python" {
		t.Errorf("name = %q", cmd.Name)
	}
	if diff := cmp.Diff([]string{"-m", "black", "-q", "k.py"}, cmd.Args); diff != "" {
		t.Errorf("args mismatch (-want +got):\n%s", diff)
	}
	if cmd.String() != "python -m black -q k.py" {
		t.Errorf("String() = %q", cmd.String())
	}
}
