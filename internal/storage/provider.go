// Package storage persists uploaded attachment files referenced by image
// blocks.
package storage

// Provider abstracts attachment file storage.
type Provider interface {
	// Write stores an attachment under its plain filename.
	Write(name string, data []byte) error
	// Resolve validates a filename and returns the absolute path it is
	// stored at. The file is not required to exist.
	Resolve(name string) (string, error)
	// Delete removes an attachment.
	Delete(name string) error
}
