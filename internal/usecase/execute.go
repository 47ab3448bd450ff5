package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/pedropalhari/video-poster-image-generator/internal/domain/entity"
	"github.com/pedropalhari/video-poster-image-generator/internal/domain/port"
	"github.com/pedropalhari/video-poster-image-generator/internal/infra/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type ProcessBatchUseCase struct {
	repo         port.JobRepository
	storage      port.ArchiveStorage
	orchestrator *BatchOrchestrator
	packager     port.Archiver
	publisher    port.StatusPublisher
	dlq          port.DLQPublisher
	notifier     port.FailureNotifier
	logger       *zap.Logger
	maxRetry     int
}

type ProcessBatchConfig struct {
	MaxRetries int
}

func NewProcessBatchUseCase(
	repo port.JobRepository,
	storage port.ArchiveStorage,
	orchestrator *BatchOrchestrator,
	packager port.Archiver,
	publisher port.StatusPublisher,
	dlq port.DLQPublisher,
	notifier port.FailureNotifier,
	logger *zap.Logger,
	cfg ProcessBatchConfig,
) *ProcessBatchUseCase {
	return &ProcessBatchUseCase{
		repo:         repo,
		storage:      storage,
		orchestrator: orchestrator,
		packager:     packager,
		publisher:    publisher,
		dlq:          dlq,
		notifier:     notifier,
		logger:       logger,
		maxRetry:     cfg.MaxRetries,
	}
}

func (uc *ProcessBatchUseCase) Execute(ctx context.Context, rawMsg []byte) error {
	tracer := otel.Tracer("usecase")
	ctx, span := tracer.Start(ctx, "ProcessBatchUseCase.Execute")
	defer span.End()

	totalTimer := time.Now()

	var msg entity.BatchProcessingMessage
	if err := json.Unmarshal(rawMsg, &msg); err != nil {
		uc.logger.Error("failed to unmarshal message", zap.Error(err), zap.ByteString("body", rawMsg))
		_ = uc.dlq.PublishToDLQ(ctx, rawMsg, "unmarshal_error: "+err.Error())
		return nil
	}

	span.SetAttributes(
		attribute.String("job.id", msg.JobID.String()),
		attribute.Int("job.item_count", len(msg.Items)),
	)

	log := uc.logger.With(zap.String("job_id", msg.JobID.String()), zap.Int("items", len(msg.Items)))

	job, err := uc.repo.FindByID(ctx, msg.JobID)
	if err != nil {
		job = entity.NewJob(msg.UserID, len(msg.Items), uc.maxRetry)
		job.ID = msg.JobID
		if err := uc.repo.Create(ctx, job); err != nil {
			log.Error("failed to create job record", zap.Error(err))
			return fmt.Errorf("create job: %w", err)
		}
	}

	if !job.CanRetry() {
		log.Warn("job exhausted retries, sending to DLQ")
		_ = uc.handlePermanentFailure(ctx, job, msg, rawMsg, "max retries exceeded")
		return nil
	}

	job.MarkProcessing()
	if err := uc.repo.Update(ctx, job); err != nil {
		log.Error("failed to update job to PROCESSING", zap.Error(err))
		return fmt.Errorf("update job: %w", err)
	}

	metrics.ActiveWorkers.Inc()
	defer metrics.ActiveWorkers.Dec()

	if err := uc.runPipeline(ctx, job, msg, rawMsg, log); err != nil {
		return err
	}

	metrics.BatchesProcessedTotal.WithLabelValues("completed").Inc()
	metrics.BatchStageDuration.WithLabelValues("total").Observe(time.Since(totalTimer).Seconds())

	return nil
}

func (uc *ProcessBatchUseCase) runPipeline(
	ctx context.Context,
	job *entity.Job,
	msg entity.BatchProcessingMessage,
	rawMsg []byte,
	log *zap.Logger,
) error {
	tracer := otel.Tracer("usecase")

	// Extract one poster per item. Item failures are isolated: they end
	// up in the status message, never abort the batch.
	exStart := time.Now()
	ctx2, spanEx := tracer.Start(ctx, "process_batch")
	images, failures := uc.orchestrator.ProcessBatch(ctx2, msg.Items)
	spanEx.End()
	metrics.BatchStageDuration.WithLabelValues("extract").Observe(time.Since(exStart).Seconds())

	// Package the successful images into one zip. A packaging error is
	// not isolated: the whole archive operation fails.
	zipStart := time.Now()
	_, spanZip := tracer.Start(ctx, "package_archive")
	archiveBytes, err := uc.packager.Package(images)
	spanZip.End()
	if err != nil {
		log.Error("archive packaging failed", zap.Error(err))
		return uc.handleRetryableFailure(ctx, job, msg, rawMsg, "package_archive: "+err.Error(), log)
	}
	metrics.BatchStageDuration.WithLabelValues("package").Observe(time.Since(zipStart).Seconds())

	// Upload the archive
	upStart := time.Now()
	ctx3, spanUp := tracer.Start(ctx, "upload_archive")
	archiveKey := fmt.Sprintf("%s/posters_%s.zip", msg.UserID, job.ID.String())
	err = uc.storage.UploadArchive(ctx3, archiveKey, bytes.NewReader(archiveBytes), int64(len(archiveBytes)))
	spanUp.End()
	if err != nil {
		log.Error("archive upload failed", zap.Error(err))
		return uc.handleRetryableFailure(ctx, job, msg, rawMsg, "upload_archive: "+err.Error(), log)
	}
	metrics.BatchStageDuration.WithLabelValues("upload").Observe(time.Since(upStart).Seconds())

	job.MarkCompleted(archiveKey, len(images), len(failures))
	if err := uc.repo.Update(ctx, job); err != nil {
		log.Error("failed to update job to COMPLETED", zap.Error(err))
		return fmt.Errorf("update job completed: %w", err)
	}

	uc.publishStatus(ctx, job, failures, log)

	log.Info("batch completed",
		zap.Int("image_count", len(images)),
		zap.Int("failure_count", len(failures)),
		zap.String("archive_key", archiveKey),
	)

	return nil
}

func (uc *ProcessBatchUseCase) handleRetryableFailure(
	ctx context.Context,
	job *entity.Job,
	msg entity.BatchProcessingMessage,
	rawMsg []byte,
	errMsg string,
	log *zap.Logger,
) error {
	job.MarkFailed(errMsg)
	_ = uc.repo.Update(ctx, job)

	if !job.CanRetry() {
		return uc.handlePermanentFailure(ctx, job, msg, rawMsg, errMsg)
	}

	metrics.RetryTotal.WithLabelValues(strconv.Itoa(job.Attempt)).Inc()
	uc.publishStatus(ctx, job, nil, log)

	return fmt.Errorf("retryable failure (attempt %d/%d): %s", job.Attempt, job.MaxAttempts, errMsg)
}

func (uc *ProcessBatchUseCase) handlePermanentFailure(
	ctx context.Context,
	job *entity.Job,
	msg entity.BatchProcessingMessage,
	rawMsg []byte,
	errMsg string,
) error {
	job.MarkFailed(errMsg)
	_ = uc.repo.Update(ctx, job)

	_ = uc.dlq.PublishToDLQ(ctx, rawMsg, errMsg)

	uc.publishStatus(ctx, job, nil, uc.logger)

	metrics.BatchesProcessedTotal.WithLabelValues("dlq").Inc()

	if msg.UserEmail != "" {
		_ = uc.notifier.NotifyFailure(ctx, msg.UserEmail, job.ID.String(), len(msg.Items), errMsg)
	}

	return nil
}

func (uc *ProcessBatchUseCase) publishStatus(ctx context.Context, job *entity.Job, failures []entity.ItemFailure, log *zap.Logger) {
	statusMsg := entity.BatchStatusMessage{
		JobID:        job.ID,
		UserID:       job.UserID,
		Status:       job.Status,
		ArchiveKey:   job.ArchiveKey,
		ItemCount:    job.ItemCount,
		ImageCount:   job.ImageCount,
		Failures:     entity.FailureReports(failures),
		ErrorMessage: job.ErrorMessage,
		Attempt:      job.Attempt,
		MaxAttempts:  job.MaxAttempts,
	}
	data, _ := json.Marshal(statusMsg)
	if err := uc.publisher.PublishStatus(ctx, data); err != nil {
		log.Error("failed to publish status", zap.Error(err))
	}
}
