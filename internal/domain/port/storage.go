package port

import (
	"context"
	"io"
)

type ArchiveStorage interface {
	FetchObject(ctx context.Context, bucket, key string) ([]byte, error)
	UploadArchive(ctx context.Context, objectKey string, reader io.Reader, size int64) error
}
