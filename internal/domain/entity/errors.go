package entity

import "fmt"

// FetchError means the video bytes for a URL could not be retrieved.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// DecodeError means the fetched bytes are not a video the decoding
// engine can read.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode video: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// FrameNotFoundError means the requested frame index is past the end of
// the decoded stream. FrameCount is zero when the total was not probed.
type FrameNotFoundError struct {
	FrameIndex int
	FrameCount int
}

func (e *FrameNotFoundError) Error() string {
	if e.FrameCount > 0 {
		return fmt.Sprintf("frame %d not found in video (%d frames)", e.FrameIndex, e.FrameCount)
	}
	return fmt.Sprintf("frame %d not found in video", e.FrameIndex)
}

// PackagingError means the archive could not be finalized. Unlike the
// per-item errors above it aborts the whole archive operation.
type PackagingError struct {
	Err error
}

func (e *PackagingError) Error() string {
	return fmt.Sprintf("package archive: %v", e.Err)
}

func (e *PackagingError) Unwrap() error { return e.Err }
