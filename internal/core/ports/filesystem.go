package ports

// FileSystem performs the file operations of a task.
//
//go:generate go run go.uber.org/mock/mockgen -source=filesystem.go -destination=mocks/mock_filesystem.go -package=mocks
type FileSystem interface {
	// Exists reports whether path exists.
	Exists(path string) (bool, error)

	// Move relocates the file at src to dst, creating the parent directory of dst.
	Move(src, dst string) error

	// EnsureDir creates path and any missing parents.
	EnsureDir(path string) error

	// Copy copies the file at src to dst and returns the digest of the copied content.
	Copy(src, dst string) (string, error)
}
