// Package normalisers provides text extraction from uploaded file
// formats. Each subpackage handles one family of formats; the registry
// dispatches on filename extension.
package normalisers
