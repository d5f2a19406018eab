package view

import (
	"errors"
	"fmt"

	"github.com/randalmurphal/agentgraph/pkg/agentgraph"
	"github.com/randalmurphal/agentgraph/pkg/agentgraph/locale"
)

// ErrUnknownFormat is returned by Render and ParseFormat for an
// unsupported format name.
var ErrUnknownFormat = errors.New("unknown view format")

// Format names a view.
type Format string

// Supported formats.
const (
	FormatJSON      Format = "json"
	FormatMermaid   Format = "mermaid"
	FormatMarkdown  Format = "markdown"
	FormatSOPPrompt Format = "sop-prompt"
)

// Formats lists the supported formats.
var Formats = []Format{FormatJSON, FormatMermaid, FormatMarkdown, FormatSOPPrompt}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	for _, f := range Formats {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Render produces the view of w named by format. b localizes the formats
// that carry text.
func Render(format Format, w agentgraph.Workflow, b locale.Bundle) (string, error) {
	switch format {
	case FormatJSON:
		return JSON(w)
	case FormatMermaid:
		return Mermaid(w), nil
	case FormatMarkdown:
		return Markdown(w, b), nil
	case FormatSOPPrompt:
		return SOPPrompt(w, b)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}
