package kernel

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/kfmt/internal/apperr"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		path string
		want Kind
	}{
		{"test.py", Script},
		{"/tmp/stage/solution.py", Script},
		{"test.ipynb", Notebook},
		{"dir.v2/solution.ipynb", Notebook},
		{"test.md", Unknown},
		{"kernel-metadata.json", Unknown},
		{"test.pyc", Unknown},
		{"", Unknown},
	}
	for _, tt := range tests {
		if got := Classify(tt.path); got != tt.want {
			t.Errorf("Classify(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestIsKernel(t *testing.T) {
	if !IsKernel("test.py") || !IsKernel("test.ipynb") {
		t.Error("scripts and notebooks should be kernels")
	}
	if IsKernel("test.md") {
		t.Error("markdown should not be a kernel")
	}
}

func writeFile(t *testing.T, dir, name string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestFindKernel(t *testing.T) {
	for _, ext := range []string{".py", ".ipynb"} {
		t.Run(ext, func(t *testing.T) {
			dir := t.TempDir()
			want := writeFile(t, dir, "test"+ext)
			writeFile(t, dir, "kernel-metadata.json")

			got, err := FindKernel(dir)
			if err != nil {
				t.Fatalf("FindKernel: %v", err)
			}
			if got != want {
				t.Errorf("FindKernel = %q, want %q", got, want)
			}
		})
	}
}

func TestFindKernel_OnlyNotebook(t *testing.T) {
	dir := t.TempDir()
	want := writeFile(t, dir, "solution.ipynb")
	got, err := FindKernel(dir)
	if err != nil {
		t.Fatalf("FindKernel: %v", err)
	}
	if got != want {
		t.Errorf("FindKernel = %q, want %q", got, want)
	}
}

func TestFindKernel_NotFound(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "kernel-metadata.json")
	writeFile(t, dir, "readme.md")
	if err := os.Mkdir(filepath.Join(dir, "nested.py"), 0o755); err != nil {
		t.Fatal(err)
	}

	_, err := FindKernel(dir)
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestFindKernel_MissingDir(t *testing.T) {
	_, err := FindKernel(filepath.Join(t.TempDir(), "missing"))
	if err == nil {
		t.Fatal("expected error for missing dir")
	}
	if errors.Is(err, apperr.ErrNotFound) {
		t.Error("listing failure should not be reported as ErrNotFound")
	}
}

func TestCandidates_ListingOrder(t *testing.T) {
	dir := t.TempDir()
	b := writeFile(t, dir, "b.py")
	a := writeFile(t, dir, "a.ipynb")

	got, err := Candidates(dir)
	if err != nil {
		t.Fatalf("Candidates: %v", err)
	}
	if len(got) != 2 || got[0] != a || got[1] != b {
		t.Errorf("Candidates = %v, want [%s %s]", got, a, b)
	}
}

func TestReplaceExt(t *testing.T) {
	tests := []struct {
		path, ext, want string
	}{
		{"test.py", ".ipynb", "test.ipynb"},
		{"test.py", "ipynb", "test.ipynb"},
		{"/a/b/test.ipynb", "py", "/a/b/test.py"},
		{"archive.tar.gz", ".zip", "archive.tar.zip"},
		{"noext", "py", "noext.py"},
	}
	for _, tt := range tests {
		if got := ReplaceExt(tt.path, tt.ext); got != tt.want {
			t.Errorf("ReplaceExt(%q, %q) = %q, want %q", tt.path, tt.ext, got, tt.want)
		}
	}
}
