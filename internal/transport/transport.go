// Package transport moves finished artifacts to the destination host and
// lists what is already published there.
package transport

import "context"

// Transport copies local files into the destination directory and lists its
// contents. The destination (user, host, port, base path) is fixed at
// construction; callers address files by bare remote name only. Failures are
// plain error values; callers translate them into their own failure kinds.
type Transport interface {
	// Copy uploads the file at localPath to remoteName inside the
	// destination directory, overwriting any existing file of that name.
	Copy(ctx context.Context, localPath, remoteName string) error

	// ListDir returns the filenames currently present in the destination
	// directory, in the order the remote reports them.
	ListDir(ctx context.Context) ([]string, error)
}
