// Package magic comments out IPython shell escapes and magics so that a
// Python formatter accepts percent-format scripts, and restores them after.
//
// Recognition is a line-prefix heuristic, not a parse of IPython syntax:
//
//   - "!cmd", "%%name" and "%name" at column 0 are active magic lines;
//   - "# " followed directly by one of those forms is a commented magic line;
//   - "# %%" alone or followed by whitespace is a cell-boundary marker and is
//     never a magic line.
//
// Lines after a "[markdown]" or "[raw]" marker belong to a non-code cell and
// are never rewritten, so commented markdown text such as "# !important"
// survives both directions.
package magic

import (
	"regexp"
	"strings"
)

// State is the magic state of a single line.
type State int

const (
	Plain State = iota
	Active
	Commented
)

func (s State) String() string {
	switch s {
	case Active:
		return "active"
	case Commented:
		return "commented"
	default:
		return "plain"
	}
}

// CommentPrefix is prepended to active magic lines.
const CommentPrefix = "# "

var (
	markerRe     = regexp.MustCompile(`^# %%(?:\s.*)?$`)
	markerKindRe = regexp.MustCompile(`\[(\w+)\]`)
)

// IsCellMarker reports whether line is a percent-format cell boundary.
func IsCellMarker(line string) bool {
	return markerRe.MatchString(line)
}

// MarkerTag returns the bracketed cell kind of a marker line, such as
// "markdown" for "# %% [markdown]", or "" when the marker has none.
func MarkerTag(marker string) string {
	m := markerKindRe.FindStringSubmatch(marker)
	if m == nil {
		return ""
	}
	return m[1]
}

// IsCodeTag reports whether a marker tag opens a code cell.
func IsCodeTag(tag string) bool {
	switch tag {
	case "markdown", "md", "raw":
		return false
	}
	return true
}

func isActive(line string) bool {
	if strings.HasPrefix(line, "!") {
		return true
	}
	rest, ok := strings.CutPrefix(line, "%")
	if !ok {
		return false
	}
	rest = strings.TrimPrefix(rest, "%")
	return rest != "" && isLetter(rest[0])
}

func isLetter(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

// Classify reports the magic state of a single line without cell context.
func Classify(line string) State {
	if IsCellMarker(line) {
		return Plain
	}
	if isActive(line) {
		return Active
	}
	if rest, ok := strings.CutPrefix(line, CommentPrefix); ok && isActive(rest) {
		return Commented
	}
	return Plain
}

// Comment prefixes every active magic line in a code cell with "# ".
// Already commented lines are left alone, so Comment is idempotent.
func Comment(lines []string) []string {
	return rewrite(lines, func(line string) string {
		if Classify(line) == Active {
			return CommentPrefix + line
		}
		return line
	})
}

// Uncomment strips the "# " prefix from every commented magic line in a code
// cell. It is the inverse of Comment for input without commented magic.
func Uncomment(lines []string) []string {
	return rewrite(lines, func(line string) string {
		if Classify(line) == Commented {
			return strings.TrimPrefix(line, CommentPrefix)
		}
		return line
	})
}

func rewrite(lines []string, fn func(string) string) []string {
	out := make([]string, len(lines))
	code := true
	for i, line := range lines {
		switch {
		case IsCellMarker(line):
			code = IsCodeTag(MarkerTag(line))
			out[i] = line
		case code:
			out[i] = fn(line)
		default:
			out[i] = line
		}
	}
	return out
}

// SplitLines splits text on "\n". JoinLines(SplitLines(s)) == s.
func SplitLines(text string) []string {
	return strings.Split(text, "\n")
}

// JoinLines joins lines with "\n".
func JoinLines(lines []string) string {
	return strings.Join(lines, "\n")
}
