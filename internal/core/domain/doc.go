// Package domain contains the core business entities for docchat:
// documents, chunks, index entries, answers and the error taxonomy.
// It has no dependencies on adapters or infrastructure.
package domain
