package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"
	"github.com/pedropalhari/video-poster-image-generator/internal/domain/entity"
	"go.uber.org/zap"
)

// Extractor decodes a video byte buffer and encodes one frame as WebP.
// Each call stages its input in a uniquely-named scratch directory under
// tempDir, removed on every exit path so failed extractions never leak
// files or collide with in-flight ones.
type Extractor struct {
	engine  *Engine
	tempDir string
	quality int
	logger  *zap.Logger
}

func NewExtractor(engine *Engine, tempDir string, quality int, logger *zap.Logger) *Extractor {
	return &Extractor{engine: engine, tempDir: tempDir, quality: quality, logger: logger}
}

func (x *Extractor) ExtractFrame(ctx context.Context, video []byte, frameIndex int) ([]byte, error) {
	if frameIndex < 0 {
		return nil, &entity.FrameNotFoundError{FrameIndex: frameIndex}
	}
	if err := x.engine.Ready(ctx); err != nil {
		return nil, &entity.DecodeError{Err: err}
	}

	scratch := filepath.Join(x.tempDir, "extract-"+uuid.NewString())
	if err := os.MkdirAll(scratch, 0755); err != nil {
		return nil, &entity.DecodeError{Err: fmt.Errorf("create scratch dir: %w", err)}
	}
	defer os.RemoveAll(scratch)

	inputPath := filepath.Join(scratch, "input.bin")
	if err := os.WriteFile(inputPath, video, 0644); err != nil {
		return nil, &entity.DecodeError{Err: fmt.Errorf("stage input: %w", err)}
	}

	outputPath := filepath.Join(scratch, "frame.webp")
	cmd := exec.CommandContext(ctx, x.engine.bin,
		"-hide_banner",
		"-loglevel", "error",
		"-i", inputPath,
		"-vf", fmt.Sprintf("select=eq(n\\,%d)", frameIndex),
		"-frames:v", "1",
		"-vsync", "vfr",
		"-c:v", "libwebp",
		"-quality", strconv.Itoa(x.quality),
		"-y",
		outputPath,
	)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, &entity.DecodeError{Err: fmt.Errorf("ffmpeg: %w, output: %s", err, bytes.TrimSpace(output))}
	}

	// ffmpeg exits zero but writes nothing when the select filter never
	// matches, i.e. the index is past the last frame.
	frame, err := os.ReadFile(outputPath)
	if os.IsNotExist(err) {
		return nil, x.frameRangeError(ctx, inputPath, frameIndex)
	}
	if err != nil {
		return nil, &entity.DecodeError{Err: fmt.Errorf("read frame: %w", err)}
	}
	if len(frame) == 0 {
		return nil, x.frameRangeError(ctx, inputPath, frameIndex)
	}

	x.logger.Debug("frame extracted",
		zap.Int("frame_index", frameIndex),
		zap.Int("bytes", len(frame)),
	)
	return frame, nil
}

// frameRangeError probes the staged video so the range error can name
// the actual frame count. The probe is best-effort; the error stands
// without it.
func (x *Extractor) frameRangeError(ctx context.Context, videoPath string, frameIndex int) error {
	count, err := x.frameCount(ctx, videoPath)
	if err != nil {
		x.logger.Warn("could not probe frame count", zap.Error(err))
		return &entity.FrameNotFoundError{FrameIndex: frameIndex}
	}
	return &entity.FrameNotFoundError{FrameIndex: frameIndex, FrameCount: count}
}

func (x *Extractor) frameCount(ctx context.Context, videoPath string) (int, error) {
	cmd := exec.CommandContext(ctx, x.engine.probeBin,
		"-v", "error",
		"-select_streams", "v:0",
		"-count_frames",
		"-show_entries", "stream=nb_read_frames",
		"-of", "default=noprint_wrappers=1:nokey=1",
		videoPath,
	)
	output, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe: %w", err)
	}
	count, err := strconv.Atoi(string(bytes.TrimSpace(output)))
	if err != nil {
		return 0, fmt.Errorf("parse frame count: %w", err)
	}
	return count, nil
}
