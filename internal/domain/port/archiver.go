package port

import "github.com/pedropalhari/video-poster-image-generator/internal/domain/entity"

type Archiver interface {
	Package(images []entity.ExtractedImage) ([]byte, error)
}
