package ffmpeg

import (
	"context"
	"os"
	"os/exec"
	"testing"

	"github.com/pedropalhari/video-poster-image-generator/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestExtractFrameNegativeIndex(t *testing.T) {
	engine := NewEngine("ffmpeg", "ffprobe", zap.NewNop())
	x := NewExtractor(engine, t.TempDir(), 80, zap.NewNop())

	_, err := x.ExtractFrame(context.Background(), []byte("irrelevant"), -1)

	var notFound *entity.FrameNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, -1, notFound.FrameIndex)
}

func TestExtractFrameEngineUnavailable(t *testing.T) {
	engine := NewEngine("definitely-not-an-ffmpeg-binary", "ffprobe", zap.NewNop())
	x := NewExtractor(engine, t.TempDir(), 80, zap.NewNop())

	_, err := x.ExtractFrame(context.Background(), []byte("irrelevant"), 0)

	var decodeErr *entity.DecodeError
	require.ErrorAs(t, err, &decodeErr)
}

func TestExtractFrameInvalidVideoCleansScratch(t *testing.T) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not installed")
	}

	tempDir := t.TempDir()
	engine := NewEngine("ffmpeg", "ffprobe", zap.NewNop())
	x := NewExtractor(engine, tempDir, 80, zap.NewNop())

	_, err := x.ExtractFrame(context.Background(), []byte("this is not a video"), 0)

	var decodeErr *entity.DecodeError
	require.ErrorAs(t, err, &decodeErr)

	// Scratch directories are removed even on failure.
	entries, err := os.ReadDir(tempDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
