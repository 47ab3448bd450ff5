package usecase

import (
	"context"
	"sync"

	"github.com/pedropalhari/video-poster-image-generator/internal/domain/entity"
	"github.com/pedropalhari/video-poster-image-generator/internal/domain/port"
	"github.com/pedropalhari/video-poster-image-generator/internal/infra/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// BatchOrchestrator runs fetch-then-extract over a list of video inputs.
// Each item succeeds or fails on its own; a failed item never stops the
// rest of the batch. With concurrency <= 1 items run sequentially in
// submission order. With concurrency > 1 a bounded worker pool runs
// them, and results are returned in submission order regardless.
type BatchOrchestrator struct {
	fetcher     port.MediaFetcher
	extractor   port.FrameExtractor
	concurrency int
	logger      *zap.Logger
}

func NewBatchOrchestrator(fetcher port.MediaFetcher, extractor port.FrameExtractor, concurrency int, logger *zap.Logger) *BatchOrchestrator {
	if concurrency < 1 {
		concurrency = 1
	}
	return &BatchOrchestrator{
		fetcher:     fetcher,
		extractor:   extractor,
		concurrency: concurrency,
		logger:      logger,
	}
}

type itemOutcome struct {
	image entity.ExtractedImage
	err   error
}

// ProcessBatch processes every input and returns the extracted images of
// the successful ones plus one failure record per failed one. It never
// returns an error: per-item errors are the failures list, and an empty
// input list yields empty results.
func (o *BatchOrchestrator) ProcessBatch(ctx context.Context, inputs []entity.VideoInput) ([]entity.ExtractedImage, []entity.ItemFailure) {
	if len(inputs) == 0 {
		return nil, nil
	}

	outcomes := make([]itemOutcome, len(inputs))

	if o.concurrency > 1 {
		o.runPooled(ctx, inputs, outcomes)
	} else {
		for i, in := range inputs {
			img, err := o.processItem(ctx, in)
			outcomes[i] = itemOutcome{image: img, err: err}
		}
	}

	results := make([]entity.ExtractedImage, 0, len(inputs))
	var failures []entity.ItemFailure
	for i, out := range outcomes {
		if out.err != nil {
			o.logger.Warn("batch item failed",
				zap.String("url", inputs[i].URL),
				zap.Int("frame_index", inputs[i].FrameIndex),
				zap.Error(out.err),
			)
			failures = append(failures, entity.ItemFailure{Input: inputs[i], Err: out.err})
			metrics.ItemsProcessedTotal.WithLabelValues("failed").Inc()
			continue
		}
		results = append(results, out.image)
		metrics.ItemsProcessedTotal.WithLabelValues("ok").Inc()
		metrics.ImagesExtractedTotal.Inc()
	}
	return results, failures
}

func (o *BatchOrchestrator) runPooled(ctx context.Context, inputs []entity.VideoInput, outcomes []itemOutcome) {
	jobs := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < o.concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				img, err := o.processItem(ctx, inputs[i])
				outcomes[i] = itemOutcome{image: img, err: err}
			}
		}()
	}

	for i := range inputs {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
}

func (o *BatchOrchestrator) processItem(ctx context.Context, in entity.VideoInput) (entity.ExtractedImage, error) {
	tracer := otel.Tracer("usecase")
	ctx, span := tracer.Start(ctx, "process_item")
	span.SetAttributes(
		attribute.String("item.url", in.URL),
		attribute.Int("item.frame_index", in.FrameIndex),
	)
	defer span.End()

	video, err := o.fetcher.Fetch(ctx, in.URL)
	if err != nil {
		return entity.ExtractedImage{}, err
	}

	frame, err := o.extractor.ExtractFrame(ctx, video, in.FrameIndex)
	if err != nil {
		return entity.ExtractedImage{}, err
	}

	return entity.ExtractedImage{
		Filename: entity.OutputFilename(in.URL),
		MimeType: entity.MimeTypeWebP,
		Bytes:    frame,
	}, nil
}
