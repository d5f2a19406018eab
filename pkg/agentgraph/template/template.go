package template

import (
	"fmt"
	"regexp"
	"strings"
)

// placeholder matches ${name}; name is an identifier.
var placeholder = regexp.MustCompile(`\$\{([a-zA-Z_][a-zA-Z0-9_]*)\}`)

// MissingAction specifies how Execute handles a placeholder with no value.
type MissingAction int

const (
	// MissingError fails with *UndefinedVariableError. This is the default:
	// a prompt with a hole in it is never sent.
	MissingError MissingAction = iota

	// MissingKeep leaves the placeholder in the output.
	MissingKeep

	// MissingEmpty replaces the placeholder with "".
	MissingEmpty
)

// Option configures a Template.
type Option func(*Template)

// WithMissingAction sets how missing variables are handled.
// Default: MissingError.
func WithMissingAction(action MissingAction) Option {
	return func(t *Template) {
		t.missing = action
	}
}

// Template is a parsed prompt template. It is immutable and safe for
// concurrent use.
type Template struct {
	name    string
	text    string
	vars    []string
	missing MissingAction
}

// New parses text. Placeholders are found once, up front.
func New(name, text string, opts ...Option) *Template {
	t := &Template{
		name:    name,
		text:    text,
		vars:    Placeholders(text),
		missing: MissingError,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Name returns the template name.
func (t *Template) Name() string { return t.name }

// Vars returns the distinct placeholder names in order of first use.
func (t *Template) Vars() []string {
	return append([]string(nil), t.vars...)
}

// Execute substitutes vars into the template in a single pass.
// Substituted values are not rescanned, so a value containing "${x}" is
// emitted verbatim.
//
// Strings are inserted as-is; other values are formatted with %v.
func (t *Template) Execute(vars map[string]any) (string, error) {
	var missing []string
	out := placeholder.ReplaceAllStringFunc(t.text, func(match string) string {
		name := match[2 : len(match)-1]
		if v, ok := vars[name]; ok {
			return format(v)
		}
		switch t.missing {
		case MissingEmpty:
			return ""
		case MissingError:
			missing = appendUnique(missing, name)
		}
		return match
	})
	if len(missing) > 0 {
		return "", &UndefinedVariableError{Template: t.name, Names: missing}
	}
	return out, nil
}

// MustExecute is Execute for templates whose variables are known to be
// supplied. It panics on error.
func (t *Template) MustExecute(vars map[string]any) string {
	out, err := t.Execute(vars)
	if err != nil {
		panic(fmt.Sprintf("template: %v", err))
	}
	return out
}

// Expand is a convenience for one-off strings: missing placeholders are kept.
func Expand(s string, vars map[string]any) string {
	out, _ := New("", s, WithMissingAction(MissingKeep)).Execute(vars)
	return out
}

// Placeholders returns the distinct ${name} placeholders in s, in order of
// first appearance.
func Placeholders(s string) []string {
	var names []string
	for _, m := range placeholder.FindAllStringSubmatch(s, -1) {
		names = appendUnique(names, m[1])
	}
	return names
}

// UndefinedVariableError is returned by Execute under MissingError.
type UndefinedVariableError struct {
	// Template is the template name, if any.
	Template string
	// Names lists the missing variables.
	Names []string
}

// Error implements the error interface.
func (e *UndefinedVariableError) Error() string {
	prefix := "undefined variable"
	if len(e.Names) > 1 {
		prefix += "s"
	}
	msg := fmt.Sprintf("%s: %s", prefix, strings.Join(e.Names, ", "))
	if e.Template != "" {
		return e.Template + ": " + msg
	}
	return msg
}

func format(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprintf("%v", val)
	}
}

func appendUnique(list []string, s string) []string {
	for _, existing := range list {
		if existing == s {
			return list
		}
	}
	return append(list, s)
}
