package port

import "context"

type FrameExtractor interface {
	ExtractFrame(ctx context.Context, video []byte, frameIndex int) ([]byte, error)
}
