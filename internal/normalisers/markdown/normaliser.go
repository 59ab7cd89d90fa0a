package markdown

import (
	"context"
	"regexp"
	"strings"

	"github.com/custodia-labs/docchat-cli/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

var (
	fencedCodePattern = regexp.MustCompile("(?s)```[a-zA-Z0-9]*\n(.*?)```")
	inlineCodePattern = regexp.MustCompile("`([^`\n]+)`")
	imagePattern      = regexp.MustCompile(`!\[([^\]]*)\]\([^)]*\)`)
	linkPattern       = regexp.MustCompile(`\[([^\]]+)\]\([^)]*\)`)
	headingPattern    = regexp.MustCompile(`(?m)^#{1,6}[ \t]+`)
	emphasisPattern   = regexp.MustCompile(`(\*{1,3}|_{1,3})([^*_\n]+)(\*{1,3}|_{1,3})`)
)

// Normaliser strips markdown syntax down to plain text. Headings,
// links and emphasis keep their text so topic markers inside them
// survive; line positions are preserved where possible.
type Normaliser struct{}

// New creates a new markdown normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedExtensions returns the extensions this normaliser handles.
func (n *Normaliser) SupportedExtensions() []string {
	return []string{".md", ".markdown"}
}

// Normalise strips markdown formatting from the content.
func (n *Normaliser) Normalise(_ context.Context, _ string, content []byte) (string, error) {
	text := string(content)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	text = fencedCodePattern.ReplaceAllString(text, "$1")
	text = inlineCodePattern.ReplaceAllString(text, "$1")
	text = imagePattern.ReplaceAllString(text, "$1")
	text = linkPattern.ReplaceAllString(text, "$1")
	text = headingPattern.ReplaceAllString(text, "")
	text = emphasisPattern.ReplaceAllString(text, "$2")

	return text, nil
}
