package driven

import "context"

// Normaliser extracts plain text from raw file content.
// Each normaliser handles specific filename extensions.
type Normaliser interface {
	// SupportedExtensions returns lowercase extensions including the
	// dot, e.g. ".pdf".
	SupportedExtensions() []string

	// Normalise extracts text from raw bytes.
	Normalise(ctx context.Context, filename string, content []byte) (string, error)
}

// NormaliserRegistry dispatches to the normaliser matching a filename's
// extension.
type NormaliserRegistry interface {
	// Normalise extracts text using the matching normaliser. Returns
	// domain.ErrUnsupportedFormat when no normaliser handles the
	// extension.
	Normalise(ctx context.Context, filename string, content []byte) (string, error)

	// Register adds a normaliser to the registry.
	Register(n Normaliser)

	// SupportedExtensions returns all extensions that can be normalised.
	SupportedExtensions() []string
}
