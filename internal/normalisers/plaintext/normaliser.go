package plaintext

import (
	"context"
	"strings"

	"github.com/custodia-labs/docchat-cli/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles plain text documents.
type Normaliser struct{}

// New creates a new plain text normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedExtensions returns the extensions this normaliser handles.
func (n *Normaliser) SupportedExtensions() []string {
	return []string{
		".txt",
		".text",
		".log",
		".csv",
		".json",
		".yaml",
		".yml",
		".toml",
		".xml",
	}
}

// Normalise converts raw bytes to text, normalising line endings.
func (n *Normaliser) Normalise(_ context.Context, _ string, content []byte) (string, error) {
	text := string(content)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return text, nil
}
