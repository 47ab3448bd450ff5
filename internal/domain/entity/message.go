package entity

import "github.com/google/uuid"

// BatchProcessingMessage is the inbound message from the poster.batch queue.
type BatchProcessingMessage struct {
	JobID     uuid.UUID    `json:"job_id"`
	UserID    string       `json:"user_id"`
	UserEmail string       `json:"user_email"`
	Items     []VideoInput `json:"items"`
}

// ItemFailureReport is one failed input in a status message. Each failed
// item is reported on its own, never folded into an aggregate message.
type ItemFailureReport struct {
	URL        string `json:"url"`
	FrameIndex int    `json:"frame_index"`
	Reason     string `json:"reason"`
}

// BatchStatusMessage is the outbound message published to the poster.status queue.
type BatchStatusMessage struct {
	JobID        uuid.UUID           `json:"job_id"`
	UserID       string              `json:"user_id"`
	Status       JobStatus           `json:"status"`
	ArchiveKey   string              `json:"archive_key,omitempty"`
	ItemCount    int                 `json:"item_count"`
	ImageCount   int                 `json:"image_count"`
	Failures     []ItemFailureReport `json:"failures,omitempty"`
	ErrorMessage string              `json:"error_message,omitempty"`
	Attempt      int                 `json:"attempt"`
	MaxAttempts  int                 `json:"max_attempts"`
}

// FailureReports converts orchestrator failures to their wire form.
func FailureReports(failures []ItemFailure) []ItemFailureReport {
	if len(failures) == 0 {
		return nil
	}
	reports := make([]ItemFailureReport, 0, len(failures))
	for _, f := range failures {
		reports = append(reports, ItemFailureReport{
			URL:        f.Input.URL,
			FrameIndex: f.Input.FrameIndex,
			Reason:     f.Reason(),
		})
	}
	return reports
}
