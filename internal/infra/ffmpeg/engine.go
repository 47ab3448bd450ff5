package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Engine wraps the ffmpeg/ffprobe binaries. The binary probe runs once
// per process: the first caller of Ready performs it and every
// concurrent or later caller observes the same outcome.
type Engine struct {
	bin      string
	probeBin string
	logger   *zap.Logger

	once    sync.Once
	initErr error
	version string
}

func NewEngine(bin, probeBin string, logger *zap.Logger) *Engine {
	return &Engine{bin: bin, probeBin: probeBin, logger: logger}
}

// Ready verifies the ffmpeg binary is present and runnable. Idempotent;
// concurrent callers block on the in-progress probe instead of
// repeating it.
func (e *Engine) Ready(ctx context.Context) error {
	e.once.Do(func() {
		if _, err := exec.LookPath(e.bin); err != nil {
			e.initErr = fmt.Errorf("ffmpeg binary %q not found: %w", e.bin, err)
			return
		}

		out, err := exec.CommandContext(ctx, e.bin, "-version").Output()
		if err != nil {
			e.initErr = fmt.Errorf("probe %s: %w", e.bin, err)
			return
		}

		if i := bytes.IndexByte(out, '\n'); i >= 0 {
			out = out[:i]
		}
		e.version = strings.TrimSpace(string(out))
		e.logger.Info("decoding engine ready", zap.String("version", e.version))
	})
	return e.initErr
}

func (e *Engine) Version() string { return e.version }
