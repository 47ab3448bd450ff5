package usecase

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/pedropalhari/video-poster-image-generator/internal/domain/entity"
	"github.com/pedropalhari/video-poster-image-generator/internal/domain/port"
	"github.com/pedropalhari/video-poster-image-generator/internal/infra/archive"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memRepo struct {
	mu   sync.Mutex
	jobs map[uuid.UUID]*entity.Job
}

func newMemRepo() *memRepo {
	return &memRepo{jobs: map[uuid.UUID]*entity.Job{}}
}

func (r *memRepo) Create(_ context.Context, job *entity.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *job
	r.jobs[job.ID] = &copied
	return nil
}

func (r *memRepo) Update(_ context.Context, job *entity.Job) error {
	return r.Create(context.Background(), job)
}

func (r *memRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if job, ok := r.jobs[id]; ok {
		copied := *job
		return &copied, nil
	}
	return nil, errNotFound
}

var errNotFound = errors.New("job not found")

type memStorage struct {
	uploads map[string][]byte
}

func newMemStorage() *memStorage {
	return &memStorage{uploads: map[string][]byte{}}
}

func (s *memStorage) FetchObject(_ context.Context, bucket, key string) ([]byte, error) {
	return nil, assert.AnError
}

func (s *memStorage) UploadArchive(_ context.Context, objectKey string, reader io.Reader, _ int64) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	s.uploads[objectKey] = data
	return nil
}

type memPublisher struct {
	messages [][]byte
}

func (p *memPublisher) PublishStatus(_ context.Context, msg []byte) error {
	p.messages = append(p.messages, msg)
	return nil
}

type memDLQ struct {
	messages [][]byte
	reasons  []string
}

func (p *memDLQ) PublishToDLQ(_ context.Context, msg []byte, reason string) error {
	p.messages = append(p.messages, msg)
	p.reasons = append(p.reasons, reason)
	return nil
}

type memNotifier struct {
	emails []string
}

func (n *memNotifier) NotifyFailure(_ context.Context, userEmail, _ string, _ int, _ string) error {
	n.emails = append(n.emails, userEmail)
	return nil
}

type failingArchiver struct{}

func (failingArchiver) Package(_ []entity.ExtractedImage) ([]byte, error) {
	return nil, &entity.PackagingError{Err: assert.AnError}
}

func newTestUseCase(t *testing.T, archiver port.Archiver) (*ProcessBatchUseCase, *memRepo, *memStorage, *memPublisher, *memDLQ, *memNotifier) {
	t.Helper()

	videos := map[string][]byte{
		"https://x.com/ok.mp4":    []byte("v1"),
		"https://x.com/other.mp4": []byte("v2"),
	}
	orchestrator := newTestOrchestrator(videos, 10, 1)

	repo := newMemRepo()
	storage := newMemStorage()
	pub := &memPublisher{}
	dlq := &memDLQ{}
	notifier := &memNotifier{}

	uc := NewProcessBatchUseCase(
		repo, storage, orchestrator, archiver,
		pub, dlq, notifier,
		zap.NewNop(),
		ProcessBatchConfig{MaxRetries: 2},
	)
	return uc, repo, storage, pub, dlq, notifier
}

func TestExecuteCompletesWithPartialFailures(t *testing.T) {
	uc, repo, storage, pub, dlq, _ := newTestUseCase(t, archive.NewPackager())

	msg := entity.BatchProcessingMessage{
		JobID:  uuid.New(),
		UserID: "user-1",
		Items: []entity.VideoInput{
			{URL: "https://x.com/ok.mp4", FrameIndex: 0},
			{URL: "https://x.com/gone.mp4", FrameIndex: 0},
			{URL: "https://x.com/other.mp4", FrameIndex: 2},
		},
	}
	raw, err := json.Marshal(msg)
	require.NoError(t, err)

	require.NoError(t, uc.Execute(context.Background(), raw))

	job, err := repo.FindByID(context.Background(), msg.JobID)
	require.NoError(t, err)
	assert.Equal(t, entity.JobStatusCompleted, job.Status)
	assert.Equal(t, 2, job.ImageCount)
	assert.Equal(t, 1, job.FailureCount)

	archiveBytes, ok := storage.uploads[job.ArchiveKey]
	require.True(t, ok)
	zr, err := zip.NewReader(bytes.NewReader(archiveBytes), int64(len(archiveBytes)))
	require.NoError(t, err)
	require.Len(t, zr.File, 2)
	assert.Equal(t, "ok.webp", zr.File[0].Name)
	assert.Equal(t, "other.webp", zr.File[1].Name)

	// Status message names the one failed item, not an aggregate.
	require.Len(t, pub.messages, 1)
	var status entity.BatchStatusMessage
	require.NoError(t, json.Unmarshal(pub.messages[0], &status))
	require.Len(t, status.Failures, 1)
	assert.Equal(t, "https://x.com/gone.mp4", status.Failures[0].URL)

	assert.Empty(t, dlq.messages)
}

func TestExecuteMalformedMessageGoesToDLQ(t *testing.T) {
	uc, _, _, _, dlq, _ := newTestUseCase(t, archive.NewPackager())

	require.NoError(t, uc.Execute(context.Background(), []byte(`{invalid json`)))

	require.Len(t, dlq.messages, 1)
	assert.Equal(t, `{invalid json`, string(dlq.messages[0]))
}

func TestExecutePackagingFailureIsRetryable(t *testing.T) {
	uc, repo, _, _, _, _ := newTestUseCase(t, failingArchiver{})

	msg := entity.BatchProcessingMessage{
		JobID:  uuid.New(),
		UserID: "user-1",
		Items:  []entity.VideoInput{{URL: "https://x.com/ok.mp4", FrameIndex: 0}},
	}
	raw, err := json.Marshal(msg)
	require.NoError(t, err)

	err = uc.Execute(context.Background(), raw)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "package_archive")

	job, ferr := repo.FindByID(context.Background(), msg.JobID)
	require.NoError(t, ferr)
	assert.Equal(t, entity.JobStatusFailed, job.Status)
}

func TestExecuteExhaustedRetriesNotifies(t *testing.T) {
	uc, repo, _, _, dlq, notifier := newTestUseCase(t, archive.NewPackager())

	jobID := uuid.New()
	job := entity.NewJob("user-1", 1, 2)
	job.ID = jobID
	job.Attempt = 2
	require.NoError(t, repo.Create(context.Background(), job))

	msg := entity.BatchProcessingMessage{
		JobID:     jobID,
		UserID:    "user-1",
		UserEmail: "user@example.com",
		Items:     []entity.VideoInput{{URL: "https://x.com/ok.mp4", FrameIndex: 0}},
	}
	raw, err := json.Marshal(msg)
	require.NoError(t, err)

	require.NoError(t, uc.Execute(context.Background(), raw))

	require.Len(t, dlq.messages, 1)
	assert.Equal(t, []string{"user@example.com"}, notifier.emails)

	stored, err := repo.FindByID(context.Background(), jobID)
	require.NoError(t, err)
	assert.Equal(t, entity.JobStatusFailed, stored.Status)
}
