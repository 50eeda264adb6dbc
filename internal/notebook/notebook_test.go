package notebook

import (
	"bytes"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"

	"github.com/starford/kfmt/internal/testutil"
)

func TestRead_HelloNotebook(t *testing.T) {
	nb, err := Read(strings.NewReader(testutil.HelloNotebook))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(nb.Cells) != 1 {
		t.Fatalf("cells = %d, want 1", len(nb.Cells))
	}
	c := nb.Cells[0]
	if c.Type != Code || c.Source != `print("hello world")` {
		t.Errorf("cell = %+v", c)
	}
	if nb.NBFormat != 4 || nb.NBFormatMinor != 2 {
		t.Errorf("format = %d.%d", nb.NBFormat, nb.NBFormatMinor)
	}
}

func TestRead_SourceAsString(t *testing.T) {
	src := `{"cells":[{"cell_type":"markdown","metadata":{},"source":"# Title\ntext"}],"metadata":{},"nbformat":4,"nbformat_minor":4}`
	nb, err := Read(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if nb.Cells[0].Source != "# Title\ntext" {
		t.Errorf("source = %q", nb.Cells[0].Source)
	}
}

func TestRead_Rejects(t *testing.T) {
	cases := map[string]string{
		"not json":     "{",
		"nbformat 3":   `{"cells":[],"metadata":{},"nbformat":3,"nbformat_minor":0}`,
		"no cell type": `{"cells":[{"source":""}],"metadata":{},"nbformat":4,"nbformat_minor":4}`,
		"bad source":   `{"cells":[{"cell_type":"code","source":[1]}],"metadata":{},"nbformat":4,"nbformat_minor":4}`,
	}
	for name, src := range cases {
		if _, err := Read(strings.NewReader(src)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestWrite_Layout(t *testing.T) {
	nb := New()
	nb.Cells = []*Cell{{Type: Code, Source: "a = 1\nb = '<b>'"}}

	var buf bytes.Buffer
	if err := Write(&buf, nb); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out := buf.String()
	if !strings.HasSuffix(out, "}\n") {
		t.Errorf("missing trailing newline: %q", out)
	}
	if !strings.Contains(out, "\n \"cells\": [") {
		t.Errorf("expected one-space indent:\n%s", out)
	}
	if !strings.Contains(out, "'<b>'") {
		t.Errorf("HTML should not be escaped:\n%s", out)
	}

	var doc map[string]any
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatal(err)
	}
	cell := doc["cells"].([]any)[0].(map[string]any)
	want := []any{"a = 1\n", "b = '<b>'"}
	if diff := cmp.Diff(want, cell["source"]); diff != "" {
		t.Errorf("source mismatch (-want +got):\n%s", diff)
	}
	if cell["execution_count"] != nil {
		t.Errorf("execution_count = %v, want null", cell["execution_count"])
	}
	if outputs, ok := cell["outputs"].([]any); !ok || len(outputs) != 0 {
		t.Errorf("outputs = %v, want []", cell["outputs"])
	}
}

func TestReadWrite_PreservesUnknownFields(t *testing.T) {
	src := `{
 "cells": [
  {
   "attachments": {"a.png": {"image/png": "AAAA"}},
   "cell_type": "markdown",
   "id": "c1",
   "metadata": {"tags": ["intro"]},
   "source": ["hi"],
   "x_custom": 12345678901234567890
  },
  {
   "cell_type": "code",
   "execution_count": 7,
   "id": "c2",
   "metadata": {"trusted": true},
   "outputs": [{"name": "stdout", "output_type": "stream", "text": ["1.50\n"]}],
   "source": ["print(1.50)"]
  }
 ],
 "metadata": {"kernelspec": {"display_name": "Python 3", "language": "python", "name": "python3"}},
 "nbformat": 4,
 "nbformat_minor": 5
}`
	nb, err := Read(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	out := mustWrite(t, nb)

	var want, got any
	if err := json.Unmarshal([]byte(src), &want); err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(out, &got); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
	if !bytes.Contains(out, []byte("12345678901234567890")) {
		t.Error("large integer lost precision")
	}
}

func mustWrite(t *testing.T, nb *Notebook) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := Write(&buf, nb); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestSourceLines(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{}},
		{"a", []string{"a"}},
		{"a\nb", []string{"a\n", "b"}},
		{"a\n", []string{"a\n"}},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, sourceLines(tt.in)); diff != "" {
			t.Errorf("sourceLines(%q) mismatch (-want +got):\n%s", tt.in, diff)
		}
	}
}
