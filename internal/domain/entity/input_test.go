package entity

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOutputFilename(t *testing.T) {
	cases := []struct {
		url  string
		want string
	}{
		{"https://x.com/a/clip.mp4", "clip.webp"},
		{"https://x.com/noext", "noext.webp"},
		{"https://x.com/a.b.c.mov", "a.b.webp"},
		{"clip.mp4", "clip.webp"},
		{"noslash", "noslash.webp"},
		{"https://cdn.example.com/videos/2024/intro.MOV", "intro.webp"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, OutputFilename(tc.url), "url=%s", tc.url)
	}
}

func TestItemFailureReason(t *testing.T) {
	f := ItemFailure{
		Input: VideoInput{URL: "https://x.com/clip.mp4", FrameIndex: 3},
		Err:   &FrameNotFoundError{FrameIndex: 3, FrameCount: 2},
	}
	assert.Equal(t, "frame 3 not found in video (2 frames)", f.Reason())

	assert.Empty(t, ItemFailure{}.Reason())
}

func TestFailureReports(t *testing.T) {
	failures := []ItemFailure{
		{Input: VideoInput{URL: "https://x.com/a.mp4", FrameIndex: 0}, Err: errors.New("boom")},
		{Input: VideoInput{URL: "https://x.com/b.mp4", FrameIndex: 9}, Err: &FrameNotFoundError{FrameIndex: 9}},
	}

	reports := FailureReports(failures)
	assert.Len(t, reports, 2)
	assert.Equal(t, "https://x.com/a.mp4", reports[0].URL)
	assert.Equal(t, "boom", reports[0].Reason)
	assert.Equal(t, 9, reports[1].FrameIndex)

	assert.Nil(t, FailureReports(nil))
}

func TestJobLifecycle(t *testing.T) {
	job := NewJob("user-1", 4, 3)
	assert.Equal(t, JobStatusPending, job.Status)
	assert.Equal(t, 4, job.ItemCount)
	assert.True(t, job.CanRetry())

	job.MarkProcessing()
	assert.Equal(t, JobStatusProcessing, job.Status)
	assert.Equal(t, 1, job.Attempt)

	job.MarkCompleted("user-1/posters_x.zip", 3, 1)
	assert.Equal(t, JobStatusCompleted, job.Status)
	assert.Equal(t, 3, job.ImageCount)
	assert.Equal(t, 1, job.FailureCount)
	assert.NotNil(t, job.CompletedAt)

	job.Attempt = 3
	assert.False(t, job.CanRetry())
}
