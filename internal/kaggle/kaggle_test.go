package kaggle

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/starford/kfmt/internal/apperr"
	"github.com/starford/kfmt/internal/kernel"
	"github.com/starford/kfmt/internal/shell"
	"github.com/starford/kfmt/internal/testutil"
)

var ref = kernel.Ref{Owner: "harupy", Name: "format-kaggle-kernel"}

func TestClient_Invocations(t *testing.T) {
	runner := testutil.NewFakeRunner()
	runner.Handlers["kaggle"] = func(cmd shell.Command) (shell.Result, error) {
		if cmd.Args[1] == "status" {
			return shell.Result{Stdout: `harupy/format-kaggle-kernel has status "queued"` + "\n"}, nil
		}
		return shell.Result{}, nil
	}
	c := NewClient(runner, "kaggle", nil)
	ctx := context.Background()

	if err := c.Pull(ctx, ref, "/tmp/stage"); err != nil {
		t.Fatalf("Pull: %v", err)
	}
	if err := c.Push(ctx, "/tmp/stage"); err != nil {
		t.Fatalf("Push: %v", err)
	}
	status, err := c.Status(ctx, ref)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if status != "queued" {
		t.Errorf("status = %q, want queued", status)
	}

	want := []string{
		"kaggle kernels pull -m -p /tmp/stage harupy/format-kaggle-kernel",
		"kaggle kernels push -p /tmp/stage",
		"kaggle kernels status harupy/format-kaggle-kernel",
	}
	if diff := cmp.Diff(want, runner.Invocations()); diff != "" {
		t.Errorf("invocations mismatch (-want +got):\n%s", diff)
	}
}

func TestClient_FailureIsToolError(t *testing.T) {
	runner := testutil.NewFakeRunner()
	runner.Handlers["kaggle"] = func(shell.Command) (shell.Result, error) {
		return shell.Result{ExitCode: 1, Stderr: "401 - Unauthorized"}, nil
	}
	c := NewClient(runner, "kaggle", nil)

	err := c.Pull(context.Background(), ref, t.TempDir())
	var te *apperr.ToolError
	if !errors.As(err, &te) {
		t.Fatalf("err = %v, want ToolError", err)
	}
	if te.Stderr != "401 - Unauthorized" {
		t.Errorf("stderr = %q", te.Stderr)
	}
}

func TestClient_CustomCommand(t *testing.T) {
	runner := testutil.NewFakeRunner()
	c := NewClient(runner, "python -m kaggle", nil)
	if err := c.Push(context.Background(), "d"); err != nil {
		t.Fatal(err)
	}
	if got := runner.Invocations()[0]; got != "python -m kaggle kernels push -p d" {
		t.Errorf("invocation = %q", got)
	}
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`me/k has status "queued"`, "queued"},
		{"me/k has status \"running\"\n", "running"},
		{"  something unexpected  \n", "something unexpected"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := ParseStatus(tt.in); got != tt.want {
			t.Errorf("ParseStatus(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
