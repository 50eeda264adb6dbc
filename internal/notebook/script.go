package notebook

import (
	"bytes"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/starford/kfmt/internal/magic"
)

const (
	headerDelim = "# ---"
	headerKey   = "jupyter"
)

func marker(t CellType) string {
	switch t {
	case Markdown:
		return "# %% [markdown]"
	case Raw:
		return "# %% [raw]"
	default:
		return "# %%"
	}
}

func cellTypeOf(markerLine string) CellType {
	switch magic.MarkerTag(markerLine) {
	case "markdown", "md":
		return Markdown
	case "raw":
		return Raw
	default:
		return Code
	}
}

// ToScript renders nb as a percent-format script. Notebook metadata goes
// into a commented YAML header; markdown and raw cells are commented out.
func ToScript(nb *Notebook) ([]byte, error) {
	var b strings.Builder

	header, err := encodeHeader(nb.Metadata)
	if err != nil {
		return nil, err
	}
	b.WriteString(header)

	for i, c := range nb.Cells {
		if i > 0 || header != "" {
			b.WriteString("\n")
		}
		b.WriteString(marker(c.Type))
		b.WriteString("\n")

		body := c.Source
		if c.Type != Code {
			body = commentText(body)
		}
		if body != "" {
			b.WriteString(body)
			if !strings.HasSuffix(body, "\n") {
				b.WriteString("\n")
			}
		}
	}
	return []byte(b.String()), nil
}

func commentText(text string) string {
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	for i, l := range lines {
		if l == "" {
			lines[i] = "#"
		} else {
			lines[i] = "# " + l
		}
	}
	return strings.Join(lines, "\n")
}

func uncommentLine(l string) string {
	if l == "#" {
		return ""
	}
	if rest, ok := strings.CutPrefix(l, "# "); ok {
		return rest
	}
	return l
}

func encodeHeader(meta map[string]any) (string, error) {
	if len(meta) == 0 {
		return "", nil
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(map[string]any{headerKey: plainValue(meta)}); err != nil {
		return "", fmt.Errorf("notebook: encode header: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("notebook: encode header: %w", err)
	}

	var b strings.Builder
	b.WriteString(headerDelim + "\n")
	for _, l := range strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n") {
		b.WriteString("# " + l + "\n")
	}
	b.WriteString(headerDelim + "\n")
	return b.String(), nil
}

// plainValue replaces json.Number with int64 or float64 so YAML renders
// numbers unquoted.
func plainValue(v any) any {
	switch x := v.(type) {
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i
		}
		if f, err := x.Float64(); err == nil {
			return f
		}
		return string(x)
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, v := range x {
			out[k] = plainValue(v)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, v := range x {
			out[i] = plainValue(v)
		}
		return out
	default:
		return v
	}
}

// decodeHeader parses a leading "# ---" header and returns the notebook
// metadata it holds plus the remaining lines. A block without a jupyter key
// is not a header: it returns nil metadata and lines unchanged.
func decodeHeader(lines []string) (map[string]any, []string, error) {
	if len(lines) == 0 || strings.TrimRight(lines[0], " \r") != headerDelim {
		return nil, lines, nil
	}
	end := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimRight(lines[i], " \r") == headerDelim {
			end = i
			break
		}
	}
	if end < 0 {
		return nil, lines, nil
	}

	yamlLines := make([]string, 0, end-1)
	for _, l := range lines[1:end] {
		yamlLines = append(yamlLines, uncommentLine(l))
	}
	var doc map[string]any
	if err := yaml.Unmarshal([]byte(strings.Join(yamlLines, "\n")), &doc); err != nil {
		if !hasHeaderKey(yamlLines) {
			return nil, lines, nil
		}
		return nil, nil, fmt.Errorf("notebook: parse header: %w", err)
	}
	raw, ok := doc[headerKey]
	if !ok {
		return nil, lines, nil
	}
	meta, _ := raw.(map[string]any)
	return meta, lines[end+1:], nil
}

func hasHeaderKey(lines []string) bool {
	for _, l := range lines {
		if strings.HasPrefix(l, headerKey+":") {
			return true
		}
	}
	return false
}

type pendingCell struct {
	typ   CellType
	lines []string
}

func (p *pendingCell) build() *Cell {
	lines := p.lines
	if p.typ != Code {
		out := make([]string, len(lines))
		for i, l := range lines {
			out[i] = uncommentLine(l)
		}
		lines = out
	}
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return &Cell{Type: p.typ, Source: strings.Join(lines, "\n")}
}

// blankEdges splits off the runs of blank lines that open and close text,
// including the final newline.
func blankEdges(text string) (lead, trail string) {
	lines := strings.Split(text, "\n")
	first, last := -1, -1
	for i, l := range lines {
		if strings.TrimSpace(l) != "" {
			if first < 0 {
				first = i
			}
			last = i
		}
	}
	if first < 0 {
		return text, ""
	}
	if first > 0 {
		lead = strings.Join(lines[:first], "\n") + "\n"
	}
	if last < len(lines)-1 {
		trail = "\n" + strings.Join(lines[last+1:], "\n")
	}
	return lead, trail
}

// FromScript parses a percent-format script. When base is non-nil its
// notebook metadata and format version are kept, and each cell inherits id,
// metadata, outputs and execution count from the base cell at the same
// position if both have the same type.
func FromScript(script []byte, base *Notebook) (*Notebook, error) {
	text := strings.ReplaceAll(string(script), "\r\n", "\n")
	meta, lines, err := decodeHeader(magic.SplitLines(text))
	if err != nil {
		return nil, err
	}

	var cells []*Cell
	cur := &pendingCell{typ: Code}
	started := false
	for _, l := range lines {
		if magic.IsCellMarker(l) {
			if started || !blank(cur.lines) {
				cells = append(cells, cur.build())
			}
			cur = &pendingCell{typ: cellTypeOf(l)}
			started = true
			continue
		}
		cur.lines = append(cur.lines, l)
	}
	if started || !blank(cur.lines) {
		cells = append(cells, cur.build())
	}

	nb := New()
	if meta != nil {
		nb.Metadata = meta
	}
	if base != nil {
		nb.Metadata = base.Metadata
		nb.NBFormat = base.NBFormat
		nb.NBFormatMinor = base.NBFormatMinor
	}
	for i, c := range cells {
		if base != nil && i < len(base.Cells) && base.Cells[i].Type == c.Type {
			inherit(c, base.Cells[i])
		}
		if c.ID == "" && nb.NBFormatMinor >= 5 {
			c.ID = newCellID()
		}
	}
	nb.Cells = cells
	return nb, nil
}

// inherit copies from's non-source fields onto c and restores the blank
// lines that opened and closed from's source, which the script form drops.
func inherit(c, from *Cell) {
	if c.Source != "" {
		lead, trail := blankEdges(from.Source)
		c.Source = lead + c.Source + trail
	} else if strings.TrimSpace(from.Source) == "" {
		c.Source = from.Source
	}
	c.ID = from.ID
	c.Metadata = from.Metadata
	c.ExecutionCount = from.ExecutionCount
	c.Outputs = from.Outputs
	c.Attachments = from.Attachments
	c.Extra = from.Extra
}

func blank(lines []string) bool {
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			return false
		}
	}
	return true
}
