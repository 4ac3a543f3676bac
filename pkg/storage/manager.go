package storage

import (
	"context"
	"fmt"
)

// Open returns the disk called name rooted at root: a directory for
// "local", a key prefix for "s3".
func Open(ctx context.Context, name, root string) (Disk, error) {
	switch name {
	case "", "local":
		return NewLocal(root), nil
	case "s3":
		d, err := NewS3(ctx, S3ConfigFromEnv(), root)
		if err != nil {
			return nil, err
		}
		return d, nil
	default:
		return nil, fmt.Errorf("storage: unsupported disk %q (supported: local, s3)", name)
	}
}
