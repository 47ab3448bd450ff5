package archive

import (
	"archive/zip"
	"bytes"
	"fmt"

	"github.com/pedropalhari/video-poster-image-generator/internal/domain/entity"
)

// Packager builds a zip archive in memory from named image buffers.
// Entries are written in input order with zeroed timestamps, so the same
// input always yields the same bytes. Duplicate entry names are kept
// as-is; deduplication is the caller's business.
type Packager struct{}

func NewPackager() *Packager {
	return &Packager{}
}

func (p *Packager) Package(images []entity.ExtractedImage) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for _, img := range images {
		header := &zip.FileHeader{
			Name:   img.Filename,
			Method: zip.Deflate,
		}
		w, err := zw.CreateHeader(header)
		if err != nil {
			zw.Close()
			return nil, &entity.PackagingError{Err: fmt.Errorf("create entry %s: %w", img.Filename, err)}
		}
		if _, err := w.Write(img.Bytes); err != nil {
			zw.Close()
			return nil, &entity.PackagingError{Err: fmt.Errorf("write entry %s: %w", img.Filename, err)}
		}
	}

	if err := zw.Close(); err != nil {
		return nil, &entity.PackagingError{Err: fmt.Errorf("finalize archive: %w", err)}
	}
	return buf.Bytes(), nil
}
