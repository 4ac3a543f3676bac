// Package storage provides the filesystem abstraction the pipeline reads and
// writes datasets through.
//
// Two drivers are available:
//   - "local": a directory on the local filesystem (default)
//   - "s3": a key prefix inside an S3-compatible bucket (AWS S3, MinIO, R2)
//
// Quick start:
//
//	disk, err := storage.Open(ctx, "local", "synthetic_ecom_data")
//	err = disk.Put("orders.csv", data)
//	data, err := disk.Get("orders.csv")
//
// Paths are slash-separated and relative to the disk root. Get on a missing
// path returns an error wrapping fs.ErrNotExist for every driver.
package storage

// Disk is the filesystem driver interface. Every driver must implement this.
type Disk interface {
	// Put writes content to path, replacing it whole. A reader never
	// observes a partially written file.
	Put(path string, content []byte) error

	// Get returns the full content of the file at path.
	Get(path string) ([]byte, error)

	// Exists reports whether a file exists at path.
	Exists(path string) bool

	// Delete removes a file. Returns nil if the file did not exist.
	Delete(path string) error

	// Location describes where path lives, for log lines and CLI output.
	Location(path string) string
}
