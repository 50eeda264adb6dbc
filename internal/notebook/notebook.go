// Package notebook reads and writes nbformat 4 notebooks and converts them
// to and from percent-format Python scripts.
package notebook

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/starford/kfmt/internal/storage"
)

// CellType is the nbformat cell_type.
type CellType string

const (
	Code     CellType = "code"
	Markdown CellType = "markdown"
	Raw      CellType = "raw"
)

// Cell is one notebook cell. Keys the codec does not know about are kept in
// Extra and written back unchanged.
type Cell struct {
	Type           CellType
	ID             string
	Source         string
	Metadata       map[string]any
	ExecutionCount any // nil or json.Number
	Outputs        []any
	Attachments    map[string]any
	Extra          map[string]any
}

// Notebook is an nbformat 4 document.
type Notebook struct {
	Cells         []*Cell
	Metadata      map[string]any
	NBFormat      int
	NBFormatMinor int
}

// Format versions written for notebooks built from scratch.
const (
	DefaultFormat      = 4
	DefaultFormatMinor = 4
)

// New returns an empty notebook.
func New() *Notebook {
	return &Notebook{
		Metadata:      map[string]any{},
		NBFormat:      DefaultFormat,
		NBFormatMinor: DefaultFormatMinor,
	}
}

type rawNotebook struct {
	Cells         []map[string]any `json:"cells"`
	Metadata      map[string]any   `json:"metadata"`
	NBFormat      int              `json:"nbformat"`
	NBFormatMinor int              `json:"nbformat_minor"`
}

// Read decodes a notebook. Numbers are kept as json.Number so that they are
// written back exactly.
func Read(r io.Reader) (*Notebook, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var raw rawNotebook
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("notebook: decode: %w", err)
	}
	if raw.NBFormat != DefaultFormat {
		return nil, fmt.Errorf("notebook: unsupported nbformat %d", raw.NBFormat)
	}

	nb := &Notebook{
		Metadata:      raw.Metadata,
		NBFormat:      raw.NBFormat,
		NBFormatMinor: raw.NBFormatMinor,
	}
	if nb.Metadata == nil {
		nb.Metadata = map[string]any{}
	}
	for i, m := range raw.Cells {
		c, err := cellFromMap(m)
		if err != nil {
			return nil, fmt.Errorf("notebook: cell %d: %w", i, err)
		}
		nb.Cells = append(nb.Cells, c)
	}
	return nb, nil
}

// ReadFile decodes the notebook at path.
func ReadFile(path string) (*Notebook, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("notebook: open: %w", err)
	}
	defer f.Close()
	return Read(f)
}

func cellFromMap(m map[string]any) (*Cell, error) {
	c := &Cell{}
	for k, v := range m {
		switch k {
		case "cell_type":
			t, ok := v.(string)
			if !ok || t == "" {
				return nil, fmt.Errorf("missing cell_type")
			}
			c.Type = CellType(t)
		case "id":
			c.ID, _ = v.(string)
		case "source":
			src, err := sourceText(v)
			if err != nil {
				return nil, err
			}
			c.Source = src
		case "metadata":
			c.Metadata, _ = v.(map[string]any)
		case "execution_count":
			c.ExecutionCount = v
		case "outputs":
			c.Outputs, _ = v.([]any)
		case "attachments":
			c.Attachments, _ = v.(map[string]any)
		default:
			if c.Extra == nil {
				c.Extra = map[string]any{}
			}
			c.Extra[k] = v
		}
	}
	if c.Type == "" {
		return nil, fmt.Errorf("missing cell_type")
	}
	return c, nil
}

// sourceText accepts nbformat's multiline string: a string or a list of strings.
func sourceText(v any) (string, error) {
	switch s := v.(type) {
	case nil:
		return "", nil
	case string:
		return s, nil
	case []any:
		var b strings.Builder
		for _, part := range s {
			str, ok := part.(string)
			if !ok {
				return "", fmt.Errorf("source: non-string line %v", part)
			}
			b.WriteString(str)
		}
		return b.String(), nil
	default:
		return "", fmt.Errorf("source: unexpected type %T", v)
	}
}

// sourceLines splits text the way nbformat stores it: every line but the
// last keeps its trailing newline.
func sourceLines(text string) []string {
	if text == "" {
		return []string{}
	}
	lines := strings.SplitAfter(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func (c *Cell) toMap() map[string]any {
	m := make(map[string]any, len(c.Extra)+7)
	for k, v := range c.Extra {
		m[k] = v
	}
	m["cell_type"] = string(c.Type)
	m["source"] = sourceLines(c.Source)
	if c.Metadata != nil {
		m["metadata"] = c.Metadata
	} else {
		m["metadata"] = map[string]any{}
	}
	if c.ID != "" {
		m["id"] = c.ID
	}
	if c.Attachments != nil {
		m["attachments"] = c.Attachments
	}
	if c.Type == Code {
		m["execution_count"] = c.ExecutionCount
		if c.Outputs != nil {
			m["outputs"] = c.Outputs
		} else {
			m["outputs"] = []any{}
		}
	}
	return m
}

// Write encodes nb the way Jupyter does: one-space indent, sorted keys, no
// HTML escaping and a trailing newline.
func Write(w io.Writer, nb *Notebook) error {
	cells := make([]map[string]any, 0, len(nb.Cells))
	for _, c := range nb.Cells {
		cells = append(cells, c.toMap())
	}
	meta := nb.Metadata
	if meta == nil {
		meta = map[string]any{}
	}
	doc := map[string]any{
		"cells":          cells,
		"metadata":       meta,
		"nbformat":       nb.NBFormat,
		"nbformat_minor": nb.NBFormatMinor,
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", " ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("notebook: encode: %w", err)
	}
	return nil
}

// WriteFile atomically replaces the notebook at path.
func WriteFile(path string, nb *Notebook) error {
	var buf bytes.Buffer
	if err := Write(&buf, nb); err != nil {
		return err
	}
	store, err := storage.NewFS(filepath.Dir(path))
	if err != nil {
		return fmt.Errorf("notebook: %w", err)
	}
	return store.Write(filepath.Base(path), buf.Bytes())
}

// newCellID returns an nbformat 4.5 cell id.
func newCellID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
