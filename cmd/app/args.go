package main

import "strings"

// flagSpec lists the flags kfmt owns for one command and whether each takes a value.
type flagSpec map[string]bool

var (
	rootFlags = flagSpec{
		"-k": true, "--kernel": true,
		"-c": true, "--config": true,
		"-h": false, "--help": false,
	}
	localFlags = flagSpec{
		"-w": false, "--watch": false,
		"-c": true, "--config": true,
		"-h": false, "--help": false,
	}
	subcommands = map[string]flagSpec{
		"local": localFlags,
		"help":  {},
		"h":     {},
	}
)

// owns reports whether tok is one of s's flags and whether it
// consumes the next token as its value.
func (s flagSpec) owns(tok string) (ok, needsValue bool) {
	name, _, hasValue := strings.Cut(tok, "=")
	takesValue, ok := s[name]
	if !ok {
		return false, false
	}
	return true, takesValue && !hasValue
}

// cliArgs is argv split between the CLI parser and the formatter.
type cliArgs struct {
	own       []string // program name, kfmt flags and subcommand
	path      string   // PATH of the local subcommand
	formatter []string // forwarded verbatim to the formatter
}

// partitionArgs keeps kfmt's own flags and subcommand for the CLI parser and
// sets every other token aside for the formatter. A literal "--" forwards the
// remainder as is. For the local subcommand the first bare token is PATH.
func partitionArgs(argv []string) cliArgs {
	var out cliArgs
	if len(argv) == 0 {
		return out
	}

	var (
		own, sub, subOwn []string
		spec             = rootFlags
	)

	for i := 1; i < len(argv); i++ {
		tok := argv[i]

		if tok == "--" {
			rest := argv[i+1:]
			if sub != nil && sub[0] == "local" && out.path == "" && len(rest) > 0 {
				out.path, rest = rest[0], rest[1:]
			}
			out.formatter = append(out.formatter, rest...)
			break
		}

		if ok, needsValue := spec.owns(tok); ok {
			dst := &own
			if sub != nil {
				dst = &subOwn
			}
			*dst = append(*dst, tok)
			if needsValue && i+1 < len(argv) {
				i++
				*dst = append(*dst, argv[i])
			}
			continue
		}

		if sub == nil && len(out.formatter) == 0 {
			if s, ok := subcommands[tok]; ok {
				sub = []string{tok}
				spec = s
				continue
			}
		}

		if sub != nil && sub[0] == "local" && out.path == "" && !strings.HasPrefix(tok, "-") {
			out.path = tok
			continue
		}

		out.formatter = append(out.formatter, tok)
	}

	out.own = make([]string, 0, 1+len(own)+len(sub)+len(subOwn))
	out.own = append(out.own, argv[0])
	out.own = append(out.own, own...)
	out.own = append(out.own, sub...)
	out.own = append(out.own, subOwn...)
	return out
}
