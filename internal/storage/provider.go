// Package storage provides rooted, atomic access to kernel source files.
package storage

// LineFunc rewrites the lines of a file.
type LineFunc func(lines []string) ([]string, error)

// Provider is the interface for kernel file operations.
type Provider interface {
	// Read returns the raw bytes of the file at path (relative to root).
	Read(path string) ([]byte, error)
	// Write atomically writes content to path (relative to root).
	Write(path string, content []byte) error
	// Rewrite reads path, applies fn to its lines and atomically replaces it.
	Rewrite(path string, fn LineFunc) error
}
