package kernel

import (
	"fmt"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/kfmt/internal/apperr"
)

var slugRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// Ref identifies a remote kernel as owner/name.
type Ref struct {
	Owner string
	Name  string
}

// ParseRef parses and validates an owner/name identifier.
func ParseRef(s string) (Ref, error) {
	owner, name, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok {
		return Ref{}, fmt.Errorf("%w: %q: want <owner>/<kernel-name>", apperr.ErrInvalidRef, s)
	}
	ref := Ref{Owner: owner, Name: name}
	if err := ref.Validate(); err != nil {
		return Ref{}, fmt.Errorf("%w: %q: %v", apperr.ErrInvalidRef, s, err)
	}
	return ref, nil
}

// Validate checks that both parts are non-empty slugs.
func (r Ref) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Owner, validation.Required, validation.Match(slugRe)),
		validation.Field(&r.Name, validation.Required, validation.Match(slugRe)),
	)
}

func (r Ref) String() string {
	return r.Owner + "/" + r.Name
}
