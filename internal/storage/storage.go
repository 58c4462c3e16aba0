package storage

import (
	"context"
	"io"
)

// Publisher receives the finished report artifact.
type Publisher interface {
	Upload(ctx context.Context, key string, data io.Reader) error
}
